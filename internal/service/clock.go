package service

import "time"

// Clock 时间源，测试中替换为固定时间
type Clock func() time.Time

// SystemClock 系统时间
func SystemClock() time.Time {
	return time.Now()
}

package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	TooManyRequests     = 429
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrUserFollowSelf      = errors.New("用户不能关注自己")
	ErrUserBlockSelf       = errors.New("用户不能拉黑自己")
	ErrPostNotFound        = errors.New("帖子不存在")
	ErrPostCommentNotFound = errors.New("评论不存在")
	ErrCategoryNotFound    = errors.New("分类不存在")
	ErrQuotaExceeded       = errors.New("今日互动次数已达上限")
	ErrAccessDenied        = errors.New("无法与该用户互动")
	ErrStatusTransition    = errors.New("当前状态不允许该审核操作")
	ErrSysBoxNotFound      = errors.New("系统通知不存在")
	UnauthorizedError      = errors.New("权限不足")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrUserNotFound:        NotFound,
	ErrUserFollowSelf:      BadRequest,
	ErrUserBlockSelf:       BadRequest,
	ErrPostNotFound:        NotFound,
	ErrPostCommentNotFound: NotFound,
	ErrCategoryNotFound:    NotFound,
	ErrQuotaExceeded:       TooManyRequests,
	ErrAccessDenied:        Forbidden,
	ErrStatusTransition:    BadRequest,
	ErrSysBoxNotFound:      NotFound,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}

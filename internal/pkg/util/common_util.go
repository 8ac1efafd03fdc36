package util

// SentinelIDs 空集合替换为只含 0 的集合，保证 NOT IN 条件语法合法
// 只用于主键或用户 id，0 不会命中任何自增 id，查询结果与省略该条件一致
func SentinelIDs(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return []uint64{0}
	}
	return ids
}

// UniqueIDs 去重并保持首次出现的顺序
func UniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IDSet 将 id 列表转为集合
func IDSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

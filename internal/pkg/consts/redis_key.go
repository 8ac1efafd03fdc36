package consts

const (
	TokenBlacklistKey = "token:blacklist:"
	QuotaRemainingKey = "user:quota:remaining:"
)

const (
	InteractionLogCleanLock = "lock:job:interaction_log_clean"
	CounterReconcileLock    = "lock:job:counter_reconcile"
	PostIndexSyncLock       = "lock:job:post_index_sync"
)

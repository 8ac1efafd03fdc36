package cron

import log "log/slog"

// InitCron 注册全部任务后启动引擎，注册失败时不启动
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		log.Error("Cron Jobs register failed", "registered", mgr.JobNames(), "err", err)
		return err
	}
	log.Info("Cron Jobs starting...", "jobs", mgr.JobNames())
	mgr.Start()
	return nil
}

package cron

import (
	"Agora/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type scheduledJob struct {
	name string
	spec string
	job  cron.Job
}

type Manager struct {
	engine     *cron.Cron
	jobs       []scheduledJob
	registered []string
}

// NewCronManager postIndex 为 nil 时不同步检索索引
func NewCronManager(interactionLogClean *job.InteractionLogCleanJob, counterReconcile *job.CounterReconcileJob, postIndex *job.PostIndexJob) *Manager {
	mgr := &Manager{
		engine: cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs: []scheduledJob{
			{name: "interaction_log_clean", spec: "@daily", job: interactionLogClean},
			{name: "counter_reconcile", spec: "@hourly", job: counterReconcile},
		},
	}
	if postIndex != nil {
		mgr.jobs = append(mgr.jobs, scheduledJob{name: "post_index_sync", spec: "@every 5m", job: postIndex})
	}
	return mgr
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	for _, j := range s.jobs {
		if _, err := s.engine.AddJob(j.spec, j.job); err != nil {
			return err
		}
		s.registered = append(s.registered, j.name)
	}
	return nil
}

// JobNames 已注册的任务名，按注册顺序
func (s *Manager) JobNames() []string {
	return s.registered
}

// Entries 已注册的任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

package task

import (
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器，负责创建和管理所有任务
type Manager struct {
	app       *app.App
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器，任务运行在应用的 Worker Pool 上
func NewManager(appContainer *app.App, sc *safe_close.SafeClose) *Manager {
	lg := appContainer.Logger()
	timeout := time.Duration(appContainer.Config().App.DefaultContextTimeout) * time.Second
	return &Manager{
		app:       appContainer,
		scheduler: NewScheduler(lg, sc, appContainer.SubmitTaskAsync, timeout),
		logger:    lg,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		if err := m.scheduler.AddTask(t); err != nil {
			return err
		}
		m.logger.Info("task registered", zap.String("name", t.Name()), zap.String("schedule", t.Schedule()))
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}

// Scheduler 返回底层调度器
func (m *Manager) Scheduler() *Scheduler {
	return m.scheduler
}

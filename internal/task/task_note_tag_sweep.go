package task

import (
	"context"
	"strings"

	"github.com/haierkeys/fast-note-kb-service/internal/app"

	"go.uber.org/zap"
)

// NoteTagSweepTask 清理失效的笔记标签关联
type NoteTagSweepTask struct {
	app      *app.App
	schedule string
}

// Name 返回任务名称
func (t *NoteTagSweepTask) Name() string {
	return "NoteTagSweep"
}

// Schedule 返回执行计划
func (t *NoteTagSweepTask) Schedule() string {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *NoteTagSweepTask) IsStartupRun() bool {
	return true
}

// Run 执行清理
func (t *NoteTagSweepTask) Run(ctx context.Context) error {
	n, err := t.app.MaintenanceService.SweepNoteTags(ctx)
	if err != nil {
		return err
	}
	t.app.Logger().Debug("task log",
		zap.String("task", t.Name()),
		zap.Int64("removed", n))
	return nil
}

// NewNoteTagSweepTask 创建清理任务，未配置计划时返回 nil
func NewNoteTagSweepTask(appContainer *app.App) (Task, error) {
	schedule := strings.TrimSpace(appContainer.Config().Task.NoteTagSweep)
	if schedule == "" {
		return nil, nil
	}
	return &NoteTagSweepTask{app: appContainer, schedule: schedule}, nil
}

func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewNoteTagSweepTask(appContainer)
	})
}

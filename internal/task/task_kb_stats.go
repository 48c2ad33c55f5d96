package task

import (
	"context"
	"strings"

	"github.com/haierkeys/fast-note-kb-service/internal/app"

	"go.uber.org/zap"
)

// KBStatsTask 刷新笔记、标签与关联数量指标
type KBStatsTask struct {
	app      *app.App
	schedule string
}

func (t *KBStatsTask) Name() string {
	return "KBStats"
}

func (t *KBStatsTask) Schedule() string {
	return t.schedule
}

func (t *KBStatsTask) IsStartupRun() bool {
	return true
}

func (t *KBStatsTask) Run(ctx context.Context) error {
	total, owners, err := t.app.MaintenanceService.RefreshStats(ctx)
	if err != nil {
		return err
	}
	t.app.Logger().Debug("task log",
		zap.String("task", t.Name()),
		zap.Int("owners", owners),
		zap.Int64("notes", total.Notes),
		zap.Int64("tags", total.Tags),
		zap.Int64("links", total.Links))
	return nil
}

// NewKBStatsTask 创建统计任务，未配置计划时返回 nil
func NewKBStatsTask(appContainer *app.App) (Task, error) {
	schedule := strings.TrimSpace(appContainer.Config().Task.Stats)
	if schedule == "" {
		return nil, nil
	}
	return &KBStatsTask{app: appContainer, schedule: schedule}, nil
}

func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewKBStatsTask(appContainer)
	})
}

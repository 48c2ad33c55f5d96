package task

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/fast-note-kb-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() string              // cron 表达式或 @every 描述符
	IsStartupRun() bool            // 是否立即执行一次
}

// SubmitFunc hands a run to the worker pool without waiting for it
type SubmitFunc func(ctx context.Context, name string, fn func(context.Context) error) error

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, zap.Any("kv", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, zap.Error(err), zap.Any("kv", keysAndValues))
}

// Scheduler 任务调度器
type Scheduler struct {
	logger  *zap.Logger
	tasks   []Task
	sc      *safe_close.SafeClose
	submit  SubmitFunc
	timeout time.Duration
	cron    *cron.Cron
}

// NewScheduler 创建任务调度器
// timeout bounds a single run; 0 means no limit
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose, submit SubmitFunc, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		logger:  logger,
		tasks:   make([]Task, 0),
		sc:      sc,
		submit:  submit,
		timeout: timeout,
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
	}
}

// AddTask 添加任务，表达式无法解析时返回错误
func (s *Scheduler) AddTask(task Task) error {
	if _, err := s.cron.AddFunc(task.Schedule(), func() { s.dispatch(task) }); err != nil {
		return fmt.Errorf("task %s: invalid schedule %q: %w", task.Name(), task.Schedule(), err)
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Tasks 已添加的任务
func (s *Scheduler) Tasks() []Task {
	return append([]Task(nil), s.tasks...)
}

// dispatch submits one run to the pool
func (s *Scheduler) dispatch(task Task) {
	err := s.submit(context.Background(), "task:"+task.Name(), func(ctx context.Context) error {
		return s.runTask(ctx, task)
	})
	if err != nil {
		s.logger.Warn("task submit failed", zap.String("name", task.Name()), zap.Error(err))
	}
}

func (s *Scheduler) runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = fmt.Errorf("task %s panicked: %v", task.Name(), r)
		}
	}()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err = task.Run(ctx); err != nil {
		s.logger.Error("task running error", zap.String("name", task.Name()), zap.Error(err))
		return err
	}
	s.logger.Info("task log",
		zap.String("task", task.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.String("msg", "success"))
	return nil
}

// Start 启动所有任务，收到关闭信号后停止调度并等待正在执行的 cron 回调
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))
	for _, task := range s.tasks {
		if task.IsStartupRun() {
			s.dispatch(task)
		}
	}
	s.cron.Start()

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		<-s.cron.Stop().Done()
		s.logger.Info("tasks stopped")
	})
}

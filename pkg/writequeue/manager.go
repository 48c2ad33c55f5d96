// Package writequeue serializes writes per owner.
// Package writequeue 按所有者串行化写操作
//
// Each owner gets a lazily created lane drained by one goroutine, so writes for the
// same owner run in FIFO order. With Shared set every owner maps to one lane, which
// SQLite needs to avoid "database is locked".
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 当写队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 当写队列管理器已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 当写操作超时时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// sharedLane is the lane key used when Config.Shared is set
const sharedLane int64 = 0

// Config 写队列配置
type Config struct {
	// QueueCapacity 每条队列容量，默认 100
	QueueCapacity int
	// WriteTimeout 写操作超时时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲清理超时时间，默认 10 分钟
	IdleTimeout time.Duration
	// Shared routes every owner through one lane
	Shared bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

type lane struct {
	key      int64
	ch       chan writeOp
	lastUsed atomic.Int64
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func (l *lane) stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Manager owns all lanes
// Manager 管理所有写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool

	executed atomic.Int64
	rejected atomic.Int64

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// New creates a manager; nil cfg or logger fall back to defaults
// New 创建写队列管理器
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		c.Shared = cfg.Shared
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      c,
		logger:      logger,
		lanes:       make(map[int64]*lane),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
	go m.cleanupLoop()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Bool("shared", c.Shared))
	return m
}

// Execute runs fn on the owner's lane and waits for its result.
// Execute 在所有者的写队列上执行 fn 并等待结果
func (m *Manager) Execute(ctx context.Context, uid int64, fn func(ctx context.Context) error) error {
	l, err := m.acquire(uid)
	if err != nil {
		return err
	}

	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case l.ch <- op:
	default:
		m.rejected.Add(1)
		return ErrWriteQueueFull
	}

	timer := time.NewTimer(m.config.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) acquire(uid int64) (*lane, error) {
	key := uid
	if m.config.Shared {
		key = sharedLane
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrWriteQueueClosed
	}
	l, ok := m.lanes[key]
	if !ok {
		l = &lane{
			key:    key,
			ch:     make(chan writeOp, m.config.QueueCapacity),
			stopCh: make(chan struct{}),
			done:   make(chan struct{}),
		}
		m.lanes[key] = l
		go m.run(l)
		m.logger.Debug("write queue lane created", zap.Int64("uid", key))
	}
	l.lastUsed.Store(time.Now().UnixNano())
	return l, nil
}

func (m *Manager) run(l *lane) {
	defer close(l.done)
	for {
		select {
		case op := <-l.ch:
			m.execute(op)
		case <-l.stopCh:
			// drain what was accepted before the stop
			for {
				select {
				case op := <-l.ch:
					m.execute(op)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) execute(op writeOp) {
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}
	err := op.fn(op.ctx)
	m.executed.Add(1)
	op.result <- err
}

func (m *Manager) cleanupLoop() {
	defer close(m.cleanupDone)
	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCleanup:
			return
		case <-ticker.C:
			m.evictIdle(time.Now())
		}
	}
}

// evictIdle stops lanes unused for longer than IdleTimeout
func (m *Manager) evictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for key, l := range m.lanes {
		idle := now.Sub(time.Unix(0, l.lastUsed.Load()))
		if idle > m.config.IdleTimeout && len(l.ch) == 0 {
			l.stop()
			delete(m.lanes, key)
			evicted++
			m.logger.Debug("write queue lane evicted", zap.Int64("uid", key), zap.Duration("idle", idle))
		}
	}
	return evicted
}

// Shutdown stops accepting writes and waits for queued ones to finish
// Shutdown 关闭写队列管理器，等待已排队的写操作完成
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	lanes := make([]*lane, 0, len(m.lanes))
	for _, l := range m.lanes {
		l.stop()
		lanes = append(lanes, l)
	}
	m.mu.Unlock()

	close(m.stopCleanup)
	m.logger.Info("write queue manager shutting down", zap.Int("lanes", len(lanes)))

	for _, l := range lanes {
		select {
		case <-l.done:
		case <-ctx.Done():
			m.logger.Warn("write queue manager shutdown timeout")
			return ctx.Err()
		}
	}
	<-m.cleanupDone
	m.logger.Info("write queue manager shutdown completed")
	return nil
}

// Metrics 写队列管理器指标
type Metrics struct {
	QueueCapacity int
	ActiveLanes   int
	Executed      int64
	Rejected      int64
	IsClosed      bool
}

// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveLanes:   len(m.lanes),
		Executed:      m.executed.Load(),
		Rejected:      m.rejected.Load(),
		IsClosed:      m.closed,
	}
}

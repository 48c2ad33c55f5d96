// Package safe_close coordinates graceful shutdown of long running goroutines
// Package safe_close 协调长期运行协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached handler and waits for all of
// them to finish.
type SafeClose struct {
	once     sync.Once
	closeCh  chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	closeErr error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach runs fn in its own goroutine. fn must call done when it has finished and should
// return once closeSignal is closed.
// Attach 在独立协程中运行 fn，fn 结束时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.closeCh)
}

// SendCloseSignal closes the signal channel. The first non-nil error is kept.
// SendCloseSignal 发送关闭信号，仅保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if err != nil && s.closeErr == nil {
		s.closeErr = err
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.closeCh) })
}

// CloseSignal returns the channel closed by SendCloseSignal
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}

// WaitClosed blocks until every attached handler called done
// WaitClosed 阻塞直到所有处理器完成
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

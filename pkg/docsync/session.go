// Package docsync keeps a locally edited note document in step with the server.
// Package docsync 负责把本地编辑的笔记文档同步到服务端
//
// A Session owns the local buffer. Updates re-arm one debounce timer so a burst of edits
// produces a single save. Flush and Close save immediately, and Close always flushes.
package docsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/util"

	"go.uber.org/zap"
)

const (
	DefaultDebounce     = 800 * time.Millisecond
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 200 * time.Millisecond
	MaxRetryBackoff     = 5 * time.Second
)

// State save state of a session
type State int

const (
	StateClean State = iota
	StateDirty
	StateSaving
	StateConflict
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateConflict:
		return "conflict"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Saver persists a full document against baseVersion and returns the new version
type Saver interface {
	Save(ctx context.Context, noteID string, baseVersion int64, doc *document.Node) (int64, error)
}

// Fetcher loads the server copy of a note. A Saver that also implements it lets a session
// recognise its own write when the response to that write was lost.
type Fetcher interface {
	Fetch(ctx context.Context, noteID string) (*RemoteNote, error)
}

// Options session options; zero values take the defaults
type Options struct {
	Debounce     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
	// OnStateChange is called outside the session lock
	OnStateChange func(State, error)
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Session 单个笔记的编辑会话
type Session struct {
	noteID string
	saver  Saver
	opts   Options

	mu      sync.Mutex
	version int64
	doc     *document.Node
	// seq increments on every Update so a save can tell whether newer edits arrived
	seq     uint64
	saved   uint64
	state   State
	lastErr error
	closed  bool
	timer   *time.Timer

	// saveMu serializes saves
	saveMu sync.Mutex
}

// NewSession starts a clean session at the given server version
func NewSession(noteID string, version int64, doc *document.Node, saver Saver, opts Options) *Session {
	if doc == nil {
		doc = document.Empty()
	}
	return &Session{
		noteID:  noteID,
		saver:   saver,
		opts:    opts.withDefaults(),
		version: version,
		doc:     doc,
	}
}

// Update replaces the local buffer and schedules a debounced save
func (s *Session) Update(doc *document.Node) error {
	if doc == nil {
		doc = document.Empty()
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.doc = doc
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, s.debounced)
	changed := s.setState(StateDirty, nil)
	s.mu.Unlock()

	s.notify(changed, StateDirty, nil)
	return nil
}

func (s *Session) debounced() {
	if err := s.save(context.Background()); err != nil {
		s.opts.Logger.Warn("docsync debounced save failed", zap.String("noteId", s.noteID), zap.Error(err))
	}
}

// Flush cancels the pending timer and saves now if there are unsaved edits
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stopTimer()
	s.mu.Unlock()
	return s.save(ctx)
}

// Close flushes unconditionally and then refuses further updates
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopTimer()
	s.mu.Unlock()

	err := s.save(ctx)

	s.mu.Lock()
	changed := s.setState(StateClosed, err)
	s.mu.Unlock()
	s.notify(changed, StateClosed, err)
	return err
}

// Reset adopts a reloaded server state, dropping unsaved local edits
func (s *Session) Reset(version int64, doc *document.Node) error {
	if doc == nil {
		doc = document.Empty()
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stopTimer()
	s.version = version
	s.doc = doc
	s.saved = s.seq
	changed := s.setState(StateClean, nil)
	s.mu.Unlock()

	s.notify(changed, StateClean, nil)
	return nil
}

// Version last version confirmed by the server
func (s *Session) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// State current state and the error that caused it, if any
func (s *Session) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// Dirty reports whether there are edits the server has not confirmed
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != s.saved
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// setState must hold mu; returns whether anything changed
func (s *Session) setState(st State, err error) bool {
	if s.state == st && s.lastErr == err {
		return false
	}
	s.state = st
	s.lastErr = err
	return true
}

func (s *Session) notify(changed bool, st State, err error) {
	if changed && s.opts.OnStateChange != nil {
		s.opts.OnStateChange(st, err)
	}
}

// save writes the current buffer if dirty. Transient failures are retried with backoff.
func (s *Session) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.seq == s.saved {
		s.mu.Unlock()
		return nil
	}
	seq, base, doc := s.seq, s.version, s.doc
	changed := s.setState(StateSaving, nil)
	s.mu.Unlock()
	s.notify(changed, StateSaving, nil)

	version, err := s.saveWithRetry(ctx, base, doc)

	s.mu.Lock()
	var st State
	switch {
	case err == nil:
		s.version = version
		s.saved = seq
		st = StateClean
		if s.seq != seq {
			// edits arrived while saving; the armed timer will pick them up
			st = StateDirty
		}
	case errors.Is(err, ErrConflict):
		st = StateConflict
	default:
		st = StateFailed
	}
	changed = s.setState(st, err)
	s.mu.Unlock()
	s.notify(changed, st, err)

	if err != nil {
		s.opts.Logger.Warn("docsync save failed",
			zap.String("noteId", s.noteID),
			zap.Int64("baseVersion", base),
			zap.String("state", st.String()),
			zap.Error(err))
		return err
	}
	s.opts.Logger.Debug("docsync saved", zap.String("noteId", s.noteID), zap.Int64("version", version))
	return nil
}

func (s *Session) saveWithRetry(ctx context.Context, base int64, doc *document.Node) (int64, error) {
	var lastErr error
	retried := false
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := util.Backoff(s.opts.RetryBackoff, MaxRetryBackoff, attempt-1)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return 0, ctx.Err()
			case <-t.C:
			}
		}
		version, err := s.saver.Save(ctx, s.noteID, base, doc)
		if err == nil {
			return version, nil
		}
		if retried && errors.Is(err, ErrConflict) {
			if v, ok := s.appliedEarlier(ctx, base, doc); ok {
				return v, nil
			}
			return 0, err
		}
		if !IsTransient(err) {
			return 0, err
		}
		retried = true
		lastErr = err
		s.opts.Logger.Debug("docsync retrying save",
			zap.String("noteId", s.noteID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return 0, lastErr
}

// appliedEarlier checks whether an attempt that failed in transit was in fact applied:
// the server then holds exactly doc at base+1.
func (s *Session) appliedEarlier(ctx context.Context, base int64, doc *document.Node) (int64, bool) {
	f, ok := s.saver.(Fetcher)
	if !ok {
		return 0, false
	}
	remote, err := f.Fetch(ctx, s.noteID)
	if err != nil {
		s.opts.Logger.Debug("docsync fetch after conflict failed", zap.String("noteId", s.noteID), zap.Error(err))
		return 0, false
	}
	if remote == nil || remote.Version != base+1 || !document.Equal(remote.Content, doc) {
		return 0, false
	}
	s.opts.Logger.Debug("docsync earlier attempt was applied",
		zap.String("noteId", s.noteID),
		zap.Int64("version", remote.Version))
	return remote.Version, true
}

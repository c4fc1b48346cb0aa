// Package syncer keeps the remote document in step with the in-memory state:
// one load when a session starts, then debounced whole-document writes.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
)

// Status is the save indicator shown to the user.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusSaving Status = "saving"
	StatusError  Status = "error"
	// StatusLocal means no store is configured and nothing is ever written.
	StatusLocal Status = "local"
)

type Phase int

const (
	Idle Phase = iota
	Scheduled
	InFlight
	Failed
)

func (p Phase) String() string {
	switch p {
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "in-flight"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Timer is the part of *time.Timer the synchronizer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

const writeTimeout = 30 * time.Second

type Synchronizer struct {
	Store  storage.DocumentStore
	UserID string
	Delay  time.Duration
	Now    func() time.Time
	After  AfterFunc

	mu        sync.Mutex
	loaded    bool
	closed    bool
	phase     Phase
	status    Status
	pending   *models.AppState
	timer     Timer
	gen       uint64
	observers map[int]func(Status)
	nextObs   int
	inflight  sync.WaitGroup
}

// New returns a synchronizer for one user. A nil store disables syncing.
func New(store storage.DocumentStore, userID string) *Synchronizer {
	status := StatusSaved
	if store == nil {
		status = StatusLocal
	}
	return &Synchronizer{
		Store:     store,
		UserID:    userID,
		Delay:     constants.DefaultSaveDebounce,
		Now:       time.Now,
		After:     func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		status:    status,
		observers: make(map[int]func(Status)),
	}
}

// Load fetches the user's document. A missing document is the empty state.
// Any other failure is logged and also yields the empty state, together with
// the error. In every case saving is enabled afterwards.
func (s *Synchronizer) Load(ctx context.Context) (models.AppState, error) {
	defer func() {
		s.mu.Lock()
		s.loaded = true
		s.mu.Unlock()
	}()

	if s.Store == nil {
		return models.Empty(), nil
	}

	doc, err := s.Store.Get(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Debug("No stored document, starting empty", "user", s.UserID)
			return models.Empty(), nil
		}
		logger.Error("Failed to load document", "user", s.UserID, "error", err)
		return models.Empty(), err
	}

	state := doc.Content
	state.Normalize()
	logger.Debug("Loaded document", "user", s.UserID, "updatedAt", doc.UpdatedAt)
	return state, nil
}

// Loaded reports whether Load has completed.
func (s *Synchronizer) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Schedule arms a write of state after Delay, replacing any write still waiting.
// It returns false when the state was not accepted: before Load, after Close,
// or when syncing is disabled.
func (s *Synchronizer) Schedule(state models.AppState) bool {
	s.mu.Lock()
	if !s.loaded || s.closed || s.Store == nil {
		s.mu.Unlock()
		return false
	}

	snapshot := state.Clone()
	s.pending = &snapshot
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.phase = Scheduled
	changed := s.setStatusLocked(StatusSaving)
	s.timer = s.After(s.Delay, func() { s.fire(gen) })
	s.mu.Unlock()

	s.emit(changed)
	return true
}

func (s *Synchronizer) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed || s.pending == nil {
		s.mu.Unlock()
		return
	}
	state := *s.pending
	s.pending = nil
	s.timer = nil
	s.phase = InFlight
	s.inflight.Add(1)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	s.write(ctx, gen, state)
}

// write uploads state and records the outcome unless a newer write has been scheduled meanwhile.
func (s *Synchronizer) write(ctx context.Context, gen uint64, state models.AppState) error {
	defer s.inflight.Done()

	doc := models.Document{Content: state, UpdatedAt: s.Now()}
	err := s.Store.Upsert(ctx, s.UserID, doc)
	if err != nil {
		logger.Error("Failed to save document", "user", s.UserID, "error", err)
	} else {
		logger.Debug("Saved document", "user", s.UserID)
	}

	s.mu.Lock()
	var changed bool
	if gen == s.gen {
		if err != nil {
			s.phase = Failed
			changed = s.setStatusLocked(StatusError)
		} else {
			s.phase = Idle
			changed = s.setStatusLocked(StatusSaved)
		}
	}
	s.mu.Unlock()

	s.emit(changed)
	return err
}

// Flush writes any pending state now instead of waiting for the timer.
func (s *Synchronizer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil || s.closed {
		s.mu.Unlock()
		s.inflight.Wait()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	state := *s.pending
	s.pending = nil
	s.gen++
	gen := s.gen
	s.phase = InFlight
	s.inflight.Add(1)
	s.mu.Unlock()

	return s.write(ctx, gen, state)
}

// Close drops any write still waiting and stops accepting new ones.
// A write already in flight is allowed to finish.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.gen++
	if s.phase == Scheduled {
		s.phase = Idle
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnStatus registers fn to be called after every status change. The returned function unregisters it.
func (s *Synchronizer) OnStatus(fn func(Status)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Synchronizer) setStatusLocked(status Status) bool {
	if s.status == status {
		return false
	}
	s.status = status
	return true
}

func (s *Synchronizer) emit(changed bool) {
	if !changed {
		return
	}
	s.mu.Lock()
	status := s.status
	fns := make([]func(Status), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
}

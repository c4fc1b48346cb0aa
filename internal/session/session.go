// Package session owns the application state for one signed-in user and wires
// the reducer, achievements, the synchronizer and the reminder scheduler around it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/reducer"
	"github.com/julianstephens/streakly/internal/reminder"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/syncer"
)

type Options struct {
	Identity auth.Identity
	// Store is where the document lives. Nil keeps everything in memory.
	Store    storage.DocumentStore
	Location *time.Location
	// SaveDelay overrides the debounce delay when non-zero.
	SaveDelay time.Duration
	// Notifier enables the reminder scheduler when set.
	Notifier         notifier.Capability
	ReminderInterval time.Duration
	// Reducer overrides the default reducer (tests pin its clock and ids).
	Reducer *reducer.Reducer
	// Sync overrides the synchronizer built from Store.
	Sync *syncer.Synchronizer
}

// Outcome is what every mutation returns: the new state and the badge to celebrate, if any.
type Outcome struct {
	State     models.AppState
	Spotlight *achievements.Badge
}

type Session struct {
	identity auth.Identity
	reducer  *reducer.Reducer
	sync     *syncer.Synchronizer
	sched    *reminder.Scheduler
	handle   *reminder.Handle

	mu      sync.Mutex
	state   models.AppState
	seq     uint64
	started bool
	closed  bool
	subs    map[int]func(models.AppState)
	nextSub int

	// scheduleMu orders hand-offs to the synchronizer by seq so an older
	// state never replaces a newer pending save.
	scheduleMu sync.Mutex
	scheduled  uint64
}

func New(opts Options) *Session {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	r := opts.Reducer
	if r == nil {
		r = reducer.New(loc)
	}

	sy := opts.Sync
	if sy == nil {
		sy = syncer.New(opts.Store, opts.Identity.UserID)
		if opts.SaveDelay > 0 {
			sy.Delay = opts.SaveDelay
		}
	}

	s := &Session{
		identity: opts.Identity,
		reducer:  r,
		sync:     sy,
		state:    models.Empty(),
		subs:     make(map[int]func(models.AppState)),
	}

	if opts.Notifier != nil {
		s.sched = reminder.New(s.State, opts.Notifier, loc)
		s.sched.Now = r.Now
		if opts.ReminderInterval > 0 {
			s.sched.Interval = opts.ReminderInterval
		}
	}
	return s
}

// Start loads the stored document and starts reminders. A load failure is
// returned for display but the session is usable with the empty state.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	loaded, err := s.sync.Load(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return err
	}
	s.state = loaded
	if s.sched != nil {
		s.handle = s.sched.Start(context.WithoutCancel(ctx))
	}
	s.mu.Unlock()

	logger.Info("Session started", "user", s.identity.UserID, "habits", len(loaded.Habits), "goals", len(loaded.Goals))
	s.publish(loaded)
	return err
}

// Close stops reminders, drops any pending save and resets the state to empty.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handle := s.handle
	s.handle = nil
	s.state = models.Empty()
	s.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	s.sync.Close()
	logger.Info("Session closed", "user", s.identity.UserID)
}

func (s *Session) Identity() auth.Identity {
	return s.identity
}

// State returns a copy of the current state.
func (s *Session) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Today() string {
	return s.reducer.Today()
}

func (s *Session) SaveStatus() syncer.Status {
	return s.sync.Status()
}

func (s *Session) OnSaveStatus(fn func(syncer.Status)) func() {
	return s.sync.OnStatus(fn)
}

// Flush writes a pending save immediately.
func (s *Session) Flush(ctx context.Context) error {
	return s.sync.Flush(ctx)
}

// Subscribe registers fn to receive every new state. The returned function unregisters it.
func (s *Session) Subscribe(fn func(models.AppState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) AddHabit(in reducer.NewHabit) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.AddHabit(st, in) }, true)
}

func (s *Session) DeleteHabit(id string) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.DeleteHabit(st, id) }, false)
}

func (s *Session) ToggleHabit(id string) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.ToggleHabit(st, id) }, true)
}

func (s *Session) AddGoal(in reducer.NewGoal) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.AddGoal(st, in) }, true)
}

func (s *Session) DeleteGoal(id string) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.DeleteGoal(st, id) }, false)
}

func (s *Session) UpdateGoalProgress(id string, delta float64) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.UpdateGoalProgress(st, id, delta) }, true)
}

// ResetAll wipes the state only when confirmed is true.
func (s *Session) ResetAll(confirmed bool) Outcome {
	return s.apply(func(st models.AppState) (models.AppState, bool) { return s.reducer.ResetAll(st, confirmed) }, false)
}

func (s *Session) apply(op func(models.AppState) (models.AppState, bool), evaluate bool) Outcome {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{State: models.Empty()}
	}

	next, changed := op(s.state)

	var spotlight *achievements.Badge
	if evaluate {
		res := achievements.Evaluate(next, s.reducer.Today())
		next = res.State
		changed = changed || len(res.Newly) > 0
		if b, ok := res.Spotlight(); ok {
			spotlight = &b
			logger.Info("Badge earned", "badge", b.ID(), "user", s.identity.UserID)
		}
	}

	if !changed {
		s.mu.Unlock()
		return Outcome{State: next.Clone()}
	}
	s.state = next
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.schedule(seq, next)
	s.publishIfCurrent(seq, next)
	return Outcome{State: next.Clone(), Spotlight: spotlight}
}

func (s *Session) schedule(seq uint64, state models.AppState) {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()
	if seq <= s.scheduled {
		return
	}
	s.scheduled = seq
	s.sync.Schedule(state)
}

func (s *Session) publishIfCurrent(seq uint64, state models.AppState) {
	s.mu.Lock()
	current := s.seq == seq
	s.mu.Unlock()
	if current {
		s.publish(state)
	}
}

func (s *Session) publish(state models.AppState) {
	s.mu.Lock()
	fns := make([]func(models.AppState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}

// Package reminder polls the session state and notifies about habits whose reminder time has come.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/utils"
)

type Phase int

const (
	Idle Phase = iota
	Checking
)

func (p Phase) String() string {
	if p == Checking {
		return "checking"
	}
	return "idle"
}

type Scheduler struct {
	Interval time.Duration
	Now      func() time.Time
	Location *time.Location
	// State returns a snapshot of the current session state. It is never mutated.
	State    func() models.AppState
	Notifier notifier.Capability

	// newTicker is swapped in tests.
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu         sync.Mutex
	phase      Phase
	lastMinute string
}

func New(state func() models.AppState, n notifier.Capability, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Interval: constants.DefaultReminderInterval,
		Now:      time.Now,
		Location: loc,
		State:    state,
		Notifier: n,
	}
}

// Handle controls a running scheduler loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for it to exit. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start requests notification permission if it is still undecided, then checks
// immediately and on every tick until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	if s.Notifier != nil && s.Notifier.Permission() == notifier.PermissionDefault {
		perm := s.Notifier.RequestPermission(ctx)
		logger.Debug("Notification permission", "permission", perm)
	}

	interval := s.Interval
	if interval <= 0 {
		interval = constants.DefaultReminderInterval
	}
	newTicker := s.newTicker
	if newTicker == nil {
		newTicker = func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		}
	}
	ticks, stop := newTicker(interval)

	go func() {
		defer close(h.done)
		defer stop()

		s.Check(ctx, s.now())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				s.Check(ctx, s.now())
			}
		}
	}()

	return h
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Check compares now, truncated to the minute, against every habit reminder and
// returns the habits that were due. A minute already checked yields nothing.
// Notifications are only emitted when permission is granted.
func (s *Scheduler) Check(ctx context.Context, now time.Time) []models.Habit {
	minute := utils.MinuteKey(now, s.Location)

	s.mu.Lock()
	if minute == s.lastMinute {
		s.mu.Unlock()
		return nil
	}
	s.lastMinute = minute
	s.phase = Checking
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.phase = Idle
		s.mu.Unlock()
	}()

	if s.State == nil {
		return nil
	}
	state := s.State()
	today := state.Log(utils.DateKey(now, s.Location))

	var due []models.Habit
	for _, h := range state.Habits {
		if !h.HasReminder() || *h.ReminderTime != minute || today.IsCompleted(h.ID) {
			continue
		}
		due = append(due, h)
	}

	if len(due) == 0 || s.Notifier == nil || s.Notifier.Permission() != notifier.PermissionGranted {
		return due
	}

	for _, h := range due {
		if err := s.Notifier.Show(ctx, "⏰ "+constants.ReminderTitle, Message(h)); err != nil {
			logger.Warn("Failed to send reminder", "habit", h.ID, "error", err)
		}
	}
	return due
}

// Message is the notification body for a habit reminder.
func Message(h models.Habit) string {
	return fmt.Sprintf("Time to %s (%s)", h.Title, h.Category)
}

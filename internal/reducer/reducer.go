// Package reducer implements the state transitions applied to an AppState.
//
// Every operation takes the current state and returns the next one along with
// whether anything changed. The input is never modified in place; invalid input
// yields the input unchanged and false.
package reducer

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

// Reducer holds the clock, id source and location used to resolve "today".
type Reducer struct {
	Now      func() time.Time
	NewID    func() string
	Location *time.Location
}

// New returns a reducer using the wall clock, random UUIDs and loc.
func New(loc *time.Location) *Reducer {
	if loc == nil {
		loc = time.Local
	}
	return &Reducer{
		Now:      time.Now,
		NewID:    func() string { return uuid.New().String() },
		Location: loc,
	}
}

// Today returns the local date key used for daily logs.
func (r *Reducer) Today() string {
	return utils.DateKey(r.Now(), r.Location)
}

type NewHabit struct {
	Title        string
	Category     models.Category
	Frequency    models.Frequency
	ReminderTime string
}

// AddHabit appends a habit with a fresh id and a zero streak.
func (r *Reducer) AddHabit(s models.AppState, in NewHabit) (models.AppState, bool) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return s, false
	}
	category := in.Category
	if !category.IsValid() {
		category = models.CategoryOther
	}
	frequency := in.Frequency
	if !frequency.IsValidForHabit() {
		frequency = models.FrequencyDaily
	}

	habit := models.Habit{
		ID:        r.NewID(),
		Title:     title,
		Category:  category,
		CreatedAt: r.Now().UnixMilli(),
		Frequency: frequency,
		Streak:    0,
	}
	if rt := strings.TrimSpace(in.ReminderTime); rt != "" {
		if models.ValidateReminderTime(rt) != nil {
			return s, false
		}
		habit.ReminderTime = &rt
	}

	next := s.Clone()
	next.Habits = append(next.Habits, habit)
	return next, true
}

// DeleteHabit removes a habit. Historical logs keep its id.
func (r *Reducer) DeleteHabit(s models.AppState, id string) (models.AppState, bool) {
	idx := s.FindHabit(id)
	if idx < 0 {
		return s, false
	}
	next := s.Clone()
	next.Habits = append(next.Habits[:idx], next.Habits[idx+1:]...)
	return next, true
}

// ToggleHabit flips the habit's completion in today's log. Daily habits gain
// a streak point on completion and lose one, floored at zero, on undo.
func (r *Reducer) ToggleHabit(s models.AppState, id string) (models.AppState, bool) {
	idx := s.FindHabit(id)
	if idx < 0 {
		return s, false
	}

	today := r.Today()
	next := s.Clone()
	log := next.Log(today)

	completing := !log.IsCompleted(id)
	if completing {
		log.CompletedHabitIDs = append(log.CompletedHabitIDs, id)
	} else {
		kept := log.CompletedHabitIDs[:0]
		for _, hid := range log.CompletedHabitIDs {
			if hid != id {
				kept = append(kept, hid)
			}
		}
		log.CompletedHabitIDs = kept
	}
	next.Logs[today] = log

	habit := &next.Habits[idx]
	if habit.Frequency == models.FrequencyDaily {
		if completing {
			habit.Streak++
		} else if habit.Streak > 0 {
			habit.Streak--
		}
	}
	return next, true
}

type NewGoal struct {
	Title     string
	Target    float64
	Unit      string
	Frequency models.Frequency
	Deadline  string
}

// AddGoal appends a goal starting at zero progress.
func (r *Reducer) AddGoal(s models.AppState, in NewGoal) (models.AppState, bool) {
	title := strings.TrimSpace(in.Title)
	if title == "" || math.IsNaN(in.Target) || math.IsInf(in.Target, 0) || in.Target <= 0 {
		return s, false
	}
	frequency := in.Frequency
	if !frequency.IsValid() {
		frequency = models.FrequencyOnce
	}

	goal := models.Goal{
		ID:        r.NewID(),
		Title:     title,
		Current:   0,
		Target:    in.Target,
		Unit:      strings.TrimSpace(in.Unit),
		Frequency: frequency,
	}
	if d := strings.TrimSpace(in.Deadline); d != "" {
		if _, err := utils.ParseDateInLocation(d, r.Location); err != nil {
			return s, false
		}
		goal.Deadline = &d
	}

	next := s.Clone()
	next.Goals = append(next.Goals, goal)
	return next, true
}

// DeleteGoal removes a goal.
func (r *Reducer) DeleteGoal(s models.AppState, id string) (models.AppState, bool) {
	idx := s.FindGoal(id)
	if idx < 0 {
		return s, false
	}
	next := s.Clone()
	next.Goals = append(next.Goals[:idx], next.Goals[idx+1:]...)
	return next, true
}

// UpdateGoalProgress adds delta to the goal's progress, clamped at zero with no
// upper bound. The applied delta is accumulated in today's log. A delta that
// would overflow the progress to infinity is rejected.
func (r *Reducer) UpdateGoalProgress(s models.AppState, id string, delta float64) (models.AppState, bool) {
	idx := s.FindGoal(id)
	if idx < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return s, false
	}

	before := s.Goals[idx].Current
	current := math.Max(0, before+delta)
	if math.IsInf(current, 0) {
		return s, false
	}
	applied := current - before
	if applied == 0 {
		return s, false
	}

	next := s.Clone()
	next.Goals[idx].Current = current
	today := r.Today()
	log := next.Log(today)
	log.GoalProgress[id] += applied
	next.Logs[today] = log
	return next, true
}

// ResetAll returns the empty aggregate when confirmed, otherwise s. It reports
// a change only when s held any data.
func (r *Reducer) ResetAll(s models.AppState, confirmed bool) (models.AppState, bool) {
	if !confirmed {
		return s, false
	}
	empty := len(s.Habits) == 0 && len(s.Goals) == 0 && len(s.Logs) == 0 && len(s.EarnedBadges) == 0
	return models.Empty(), !empty
}

package models

import (
	"encoding/json"
	"slices"
	"time"
)

// AppState is the aggregate root for one user session.
type AppState struct {
	Habits       []Habit             `json:"habits"`
	Goals        []Goal              `json:"goals"`
	Logs         map[string]DailyLog `json:"logs"`
	EarnedBadges []string            `json:"earnedBadges"`
}

// Empty returns the empty aggregate: no habits, goals, logs or badges.
func Empty() AppState {
	return AppState{
		Habits:       []Habit{},
		Goals:        []Goal{},
		Logs:         map[string]DailyLog{},
		EarnedBadges: []string{},
	}
}

// Clone returns a deep copy. Reducers work on clones so a reader holding the
// previous value never observes a partial update.
func (s AppState) Clone() AppState {
	c := AppState{
		Habits:       make([]Habit, len(s.Habits)),
		Goals:        make([]Goal, len(s.Goals)),
		Logs:         make(map[string]DailyLog, len(s.Logs)),
		EarnedBadges: slices.Clone(s.EarnedBadges),
	}
	for i, h := range s.Habits {
		if h.ReminderTime != nil {
			t := *h.ReminderTime
			h.ReminderTime = &t
		}
		c.Habits[i] = h
	}
	for i, g := range s.Goals {
		if g.Deadline != nil {
			d := *g.Deadline
			g.Deadline = &d
		}
		c.Goals[i] = g
	}
	for k, l := range s.Logs {
		c.Logs[k] = l.clone()
	}
	if c.EarnedBadges == nil {
		c.EarnedBadges = []string{}
	}
	return c
}

// Normalize replaces nil collections with empty ones.
func (s *AppState) Normalize() {
	if s.Habits == nil {
		s.Habits = []Habit{}
	}
	if s.Goals == nil {
		s.Goals = []Goal{}
	}
	if s.Logs == nil {
		s.Logs = map[string]DailyLog{}
	}
	if s.EarnedBadges == nil {
		s.EarnedBadges = []string{}
	}
	for k, l := range s.Logs {
		if l.CompletedHabitIDs == nil {
			l.CompletedHabitIDs = []string{}
		}
		if l.GoalProgress == nil {
			l.GoalProgress = map[string]float64{}
		}
		if l.Date == "" {
			l.Date = k
		}
		s.Logs[k] = l
	}
}

func (s AppState) HasBadge(id string) bool {
	return slices.Contains(s.EarnedBadges, id)
}

// FindHabit returns the index of the habit with the given id, or -1.
func (s AppState) FindHabit(id string) int {
	return slices.IndexFunc(s.Habits, func(h Habit) bool { return h.ID == id })
}

// FindGoal returns the index of the goal with the given id, or -1.
func (s AppState) FindGoal(id string) int {
	return slices.IndexFunc(s.Goals, func(g Goal) bool { return g.ID == id })
}

// Log returns the log for a date, or an empty one if none exists yet.
func (s AppState) Log(date string) DailyLog {
	if l, ok := s.Logs[date]; ok {
		return l
	}
	return NewDailyLog(date)
}

// UnmarshalJSON fills missing collections with empty values so documents
// written before a field existed still load.
func (s *AppState) UnmarshalJSON(data []byte) error {
	type raw AppState
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*s = AppState(r)
	s.Normalize()
	return nil
}

// Document is the stored representation of a user's state.
type Document struct {
	Content   AppState  `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

package models

import "slices"

// DailyLog is the record of what was completed or progressed on one date.
type DailyLog struct {
	Date              string             `json:"date"` // YYYY-MM-DD format
	CompletedHabitIDs []string           `json:"completedHabitIds"`
	GoalProgress      map[string]float64 `json:"goalProgress"`
}

// NewDailyLog returns an empty log for the given date.
func NewDailyLog(date string) DailyLog {
	return DailyLog{
		Date:              date,
		CompletedHabitIDs: []string{},
		GoalProgress:      map[string]float64{},
	}
}

func (l DailyLog) IsCompleted(habitID string) bool {
	return slices.Contains(l.CompletedHabitIDs, habitID)
}

func (l DailyLog) CompletedCount() int {
	return len(l.CompletedHabitIDs)
}

func (l DailyLog) clone() DailyLog {
	c := DailyLog{
		Date:              l.Date,
		CompletedHabitIDs: slices.Clone(l.CompletedHabitIDs),
		GoalProgress:      make(map[string]float64, len(l.GoalProgress)),
	}
	if c.CompletedHabitIDs == nil {
		c.CompletedHabitIDs = []string{}
	}
	for k, v := range l.GoalProgress {
		c.GoalProgress[k] = v
	}
	return c
}

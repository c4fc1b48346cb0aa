package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
)

type Category string

const (
	CategoryHealth      Category = "Health"
	CategoryWork        Category = "Work"
	CategoryLearning    Category = "Learning"
	CategoryMindfulness Category = "Mindfulness"
	CategoryOther       Category = "Other"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryHealth, CategoryWork, CategoryLearning, CategoryMindfulness, CategoryOther}
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryHealth, CategoryWork, CategoryLearning, CategoryMindfulness, CategoryOther:
		return true
	default:
		return false
	}
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(input string) (Category, error) {
	s := strings.TrimSpace(input)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category: %q", input)
}

type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
	FrequencyOnce    Frequency = "Once"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyOnce:
		return true
	default:
		return false
	}
}

// IsValidForHabit reports whether a habit may use this frequency. Habits recur,
// so Once is reserved for goals.
func (f Frequency) IsValidForHabit() bool {
	return f.IsValid() && f != FrequencyOnce
}

// ParseFrequency matches a frequency name case-insensitively.
func ParseFrequency(input string) (Frequency, error) {
	s := strings.TrimSpace(input)
	for _, f := range []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyOnce} {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid frequency: %q", input)
}

// Habit represents a recurring practice to track
type Habit struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     Category  `json:"category"`
	CreatedAt    int64     `json:"createdAt"` // unix milliseconds
	Frequency    Frequency `json:"frequency"`
	Streak       int       `json:"streak"`
	ReminderTime *string   `json:"reminderTime,omitempty"` // HH:MM format
}

// Created returns the creation timestamp as a time.Time.
func (h Habit) Created() time.Time {
	return time.UnixMilli(h.CreatedAt)
}

// HasReminder reports whether the habit carries a reminder time.
func (h Habit) HasReminder() bool {
	return h.ReminderTime != nil && *h.ReminderTime != ""
}

// ValidateReminderTime checks a 24h HH:MM reminder time.
func ValidateReminderTime(s string) error {
	if len(s) != len(constants.TimeFormat) {
		return fmt.Errorf("invalid reminder time %q (expected HH:MM)", s)
	}
	if _, err := time.Parse(constants.TimeFormat, s); err != nil {
		return fmt.Errorf("invalid reminder time %q (expected HH:MM): %w", s, err)
	}
	return nil
}

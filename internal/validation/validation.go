package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

// ConflictType represents the type of problem found in a document
type ConflictType string

const (
	ConflictDuplicateID      ConflictType = "duplicate_id"
	ConflictDuplicateTitle   ConflictType = "duplicate_title"
	ConflictMissingField     ConflictType = "missing_field"
	ConflictInvalidCategory  ConflictType = "invalid_category"
	ConflictInvalidFrequency ConflictType = "invalid_frequency"
	ConflictInvalidReminder  ConflictType = "invalid_reminder"
	ConflictInvalidNumber    ConflictType = "invalid_number"
	ConflictInvalidDate      ConflictType = "invalid_date"
	ConflictLogDateMismatch  ConflictType = "log_date_mismatch"
	ConflictUnknownBadge     ConflictType = "unknown_badge"
)

// Conflict represents a detected problem in a user's state
type Conflict struct {
	Type        ConflictType
	Description string
	// Severe conflicts make the document unsafe to store. The rest are
	// reported but tolerated.
	Severe bool
	Date   string   // YYYY-MM-DD format (if applicable)
	Items  []string // Titles involved
	IDs    []string // Habit or goal IDs involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors returns true if any conflict is severe
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severe {
			return true
		}
	}
	return false
}

// Errors returns the descriptions of the severe conflicts.
func (vr *ValidationResult) Errors() []string {
	var out []string
	for _, c := range vr.Conflicts {
		if c.Severe {
			out = append(out, c.Description)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No problems detected."
	}

	var b strings.Builder
	b.WriteString("Problems detected:\n")
	for _, c := range vr.Conflicts {
		mark := "⚠"
		if c.Severe {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(c Conflict) {
	vr.Conflicts = append(vr.Conflicts, c)
}

// Validator checks a user's state for problems the reducer would never produce
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateState checks habits, goals, logs and badges. The result lists conflicts
// in a stable order.
func (v *Validator) ValidateState(state models.AppState) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	v.validateHabits(state.Habits, &result)
	v.validateGoals(state.Goals, &result)
	v.validateLogs(state, &result)
	v.validateBadges(state.EarnedBadges, &result)
	return result
}

func (v *Validator) validateHabits(habits []models.Habit, result *ValidationResult) {
	ids := make(map[string][]string)
	titles := make(map[string][]string)
	for _, h := range habits {
		if h.ID == "" {
			result.add(Conflict{
				Type:        ConflictMissingField,
				Description: fmt.Sprintf("Habit %q has no id", h.Title),
				Severe:      true,
				Items:       []string{h.Title},
			})
		} else {
			ids[h.ID] = append(ids[h.ID], h.Title)
		}
		if strings.TrimSpace(h.Title) == "" {
			result.add(Conflict{
				Type:        ConflictMissingField,
				Description: fmt.Sprintf("Habit %s has no title", h.ID),
				Severe:      true,
				IDs:         []string{h.ID},
			})
		} else {
			key := strings.ToLower(strings.TrimSpace(h.Title))
			titles[key] = append(titles[key], h.ID)
		}

		if !h.Category.IsValid() {
			result.add(Conflict{
				Type:        ConflictInvalidCategory,
				Description: fmt.Sprintf("Habit %q has unknown category %q", h.Title, h.Category),
				Items:       []string{h.Title},
				IDs:         []string{h.ID},
			})
		}
		if !h.Frequency.IsValidForHabit() {
			result.add(Conflict{
				Type:        ConflictInvalidFrequency,
				Description: fmt.Sprintf("Habit %q has frequency %q; habits must recur", h.Title, h.Frequency),
				Items:       []string{h.Title},
				IDs:         []string{h.ID},
			})
		}
		if h.ReminderTime != nil && *h.ReminderTime != "" {
			if err := models.ValidateReminderTime(*h.ReminderTime); err != nil {
				result.add(Conflict{
					Type:        ConflictInvalidReminder,
					Description: fmt.Sprintf("Habit %q: %v", h.Title, err),
					Items:       []string{h.Title},
					IDs:         []string{h.ID},
				})
			}
		}
		if h.Streak < 0 {
			result.add(Conflict{
				Type:        ConflictInvalidNumber,
				Description: fmt.Sprintf("Habit %q has negative streak %d", h.Title, h.Streak),
				Severe:      true,
				Items:       []string{h.Title},
				IDs:         []string{h.ID},
			})
		}
	}

	for _, id := range sortedKeys(ids) {
		if names := ids[id]; len(names) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateID,
				Description: fmt.Sprintf("Duplicate habit id %s (%s)", id, strings.Join(names, ", ")),
				Severe:      true,
				Items:       names,
				IDs:         []string{id},
			})
		}
	}
	for _, title := range sortedKeys(titles) {
		if hids := titles[title]; len(hids) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateTitle,
				Description: fmt.Sprintf("Duplicate habit title: %q (IDs: %v)", title, hids),
				Items:       []string{title},
				IDs:         hids,
			})
		}
	}
}

func (v *Validator) validateGoals(goals []models.Goal, result *ValidationResult) {
	ids := make(map[string][]string)
	for _, g := range goals {
		if g.ID == "" {
			result.add(Conflict{
				Type:        ConflictMissingField,
				Description: fmt.Sprintf("Goal %q has no id", g.Title),
				Severe:      true,
				Items:       []string{g.Title},
			})
		} else {
			ids[g.ID] = append(ids[g.ID], g.Title)
		}
		if strings.TrimSpace(g.Title) == "" {
			result.add(Conflict{
				Type:        ConflictMissingField,
				Description: fmt.Sprintf("Goal %s has no title", g.ID),
				Severe:      true,
				IDs:         []string{g.ID},
			})
		}

		if !isFinite(g.Target) || g.Target <= 0 {
			result.add(Conflict{
				Type:        ConflictInvalidNumber,
				Description: fmt.Sprintf("Goal %q has non-positive target %v", g.Title, g.Target),
				Severe:      true,
				Items:       []string{g.Title},
				IDs:         []string{g.ID},
			})
		}
		if !isFinite(g.Current) || g.Current < 0 {
			result.add(Conflict{
				Type:        ConflictInvalidNumber,
				Description: fmt.Sprintf("Goal %q has invalid progress %v", g.Title, g.Current),
				Severe:      true,
				Items:       []string{g.Title},
				IDs:         []string{g.ID},
			})
		}
		if !g.Frequency.IsValid() {
			result.add(Conflict{
				Type:        ConflictInvalidFrequency,
				Description: fmt.Sprintf("Goal %q has unknown frequency %q", g.Title, g.Frequency),
				Items:       []string{g.Title},
				IDs:         []string{g.ID},
			})
		}
		if g.Deadline != nil && !utils.IsValidDate(*g.Deadline) {
			result.add(Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Goal %q has invalid deadline %q", g.Title, *g.Deadline),
				Items:       []string{g.Title},
				IDs:         []string{g.ID},
			})
		}
	}

	for _, id := range sortedKeys(ids) {
		if names := ids[id]; len(names) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateID,
				Description: fmt.Sprintf("Duplicate goal id %s (%s)", id, strings.Join(names, ", ")),
				Severe:      true,
				Items:       names,
				IDs:         []string{id},
			})
		}
	}
}

// validateLogs checks date keys and amounts. Logs may name deleted habits and
// goals, so ids are not cross-checked.
func (v *Validator) validateLogs(state models.AppState, result *ValidationResult) {
	dates := sortedKeys(state.Logs)
	for _, date := range dates {
		log := state.Logs[date]
		if !utils.IsValidDate(date) {
			result.add(Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Log key %q is not a YYYY-MM-DD date", date),
				Severe:      true,
				Date:        date,
			})
			continue
		}
		if log.Date != date {
			result.add(Conflict{
				Type:        ConflictLogDateMismatch,
				Description: fmt.Sprintf("Log %s is labelled %q", date, log.Date),
				Date:        date,
			})
		}
		for goalID, amount := range log.GoalProgress {
			if !isFinite(amount) {
				result.add(Conflict{
					Type:        ConflictInvalidNumber,
					Description: fmt.Sprintf("%s: progress for goal %s is %v", date, goalID, amount),
					Severe:      true,
					Date:        date,
					IDs:         []string{goalID},
				})
			}
		}
	}
}

func (v *Validator) validateBadges(earned []string, result *ValidationResult) {
	for _, id := range earned {
		if _, ok := achievements.Lookup(id); !ok {
			result.add(Conflict{
				Type:        ConflictUnknownBadge,
				Description: fmt.Sprintf("Unknown badge %q", id),
				Items:       []string{id},
			})
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

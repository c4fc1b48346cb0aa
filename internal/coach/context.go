package coach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

// recentDays bounds how much history is sent to the model.
const recentDays = 7

// Snapshot is the read-only view of a user's state the coach is allowed to see.
type Snapshot struct {
	Today  string
	Habits []models.Habit
	Goals  []models.Goal
	Logs   []models.DailyLog
	Badges []string
}

// NewSnapshot copies the parts of state the coach needs. Logs are the most recent days, oldest first.
func NewSnapshot(state models.AppState, today string) Snapshot {
	c := state.Clone()

	dates := make([]string, 0, len(c.Logs))
	for d := range c.Logs {
		if d <= today {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	if len(dates) > recentDays {
		dates = dates[len(dates)-recentDays:]
	}

	logs := make([]models.DailyLog, 0, len(dates))
	for _, d := range dates {
		logs = append(logs, c.Logs[d])
	}

	var badges []string
	for _, id := range c.EarnedBadges {
		if b, ok := achievements.Lookup(id); ok {
			badges = append(badges, b.Title)
		}
	}

	return Snapshot{Today: today, Habits: c.Habits, Goals: c.Goals, Logs: logs, Badges: badges}
}

// BuildContext renders a snapshot as plain text for the model's system instruction.
func BuildContext(s Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Today is %s.\n", s.Today)

	titles := make(map[string]string, len(s.Habits))
	if len(s.Habits) == 0 {
		b.WriteString("The user has no habits yet.\n")
	} else {
		b.WriteString("Habits:\n")
		for _, h := range s.Habits {
			titles[h.ID] = h.Title
			fmt.Fprintf(&b, "- %s [%s, %s]", h.Title, h.Category, h.Frequency)
			if h.Frequency == models.FrequencyDaily {
				fmt.Fprintf(&b, " streak %d", h.Streak)
			}
			if h.HasReminder() {
				fmt.Fprintf(&b, " reminder %s", *h.ReminderTime)
			}
			b.WriteString("\n")
		}
	}

	if len(s.Goals) == 0 {
		b.WriteString("The user has no goals yet.\n")
	} else {
		b.WriteString("Goals:\n")
		for _, g := range s.Goals {
			fmt.Fprintf(&b, "- %s: %s/%s %s (%.0f%%)", g.Title, utils.FormatAmount(g.Current), utils.FormatAmount(g.Target), g.Unit, g.Percent())
			if g.Deadline != nil {
				fmt.Fprintf(&b, " due %s", *g.Deadline)
			}
			if g.IsComplete() {
				b.WriteString(" complete")
			}
			b.WriteString("\n")
		}
	}

	if len(s.Logs) > 0 {
		b.WriteString("Recent days:\n")
		for _, l := range s.Logs {
			done := make([]string, 0, len(l.CompletedHabitIDs))
			for _, id := range l.CompletedHabitIDs {
				if t, ok := titles[id]; ok {
					done = append(done, t)
				}
			}
			if len(done) == 0 {
				fmt.Fprintf(&b, "- %s: nothing completed\n", l.Date)
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", l.Date, strings.Join(done, ", "))
		}
	}

	if len(s.Badges) > 0 {
		fmt.Fprintf(&b, "Badges earned: %s\n", strings.Join(s.Badges, ", "))
	}

	return b.String()
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/models"
)

// FindHabit resolves ref as a 1-based list position, an id, or a title (case-insensitive).
func FindHabit(state models.AppState, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.Habits) {
		return state.Habits[n-1], nil
	}
	if idx := state.FindHabit(ref); idx >= 0 {
		return state.Habits[idx], nil
	}
	var matches []models.Habit
	for _, h := range state.Habits {
		if strings.EqualFold(h.Title, ref) {
			matches = append(matches, h)
		}
	}
	return pick(matches, "habit", ref, "streakly habit list")
}

// FindGoal resolves ref the same way as FindHabit.
func FindGoal(state models.AppState, ref string) (models.Goal, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.Goals) {
		return state.Goals[n-1], nil
	}
	if idx := state.FindGoal(ref); idx >= 0 {
		return state.Goals[idx], nil
	}
	var matches []models.Goal
	for _, g := range state.Goals {
		if strings.EqualFold(g.Title, ref) {
			matches = append(matches, g)
		}
	}
	return pick(matches, "goal", ref, "streakly goal list")
}

func pick[T any](matches []T, kind, ref, listCmd string) (T, error) {
	var zero T
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return zero, apperrors.WithHint(fmt.Errorf("no %s matches %q", kind, ref), fmt.Sprintf("run '%s' to see positions and ids", listCmd))
	default:
		return zero, apperrors.WithHint(fmt.Errorf("%d %ss are titled %q", len(matches), kind, ref), "use the position or id instead")
	}
}

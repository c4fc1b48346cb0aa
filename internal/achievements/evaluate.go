package achievements

import (
	"github.com/julianstephens/streakly/internal/models"
)

// Result is the outcome of one evaluation pass.
type Result struct {
	State models.AppState
	Newly []Kind
}

// Spotlight returns the first newly earned badge in catalog order, if any.
func (r Result) Spotlight() (Badge, bool) {
	if len(r.Newly) == 0 {
		return Badge{}, false
	}
	return r.Newly[0].Badge(), true
}

// Evaluate checks every badge against the cumulative state and returns a new
// state with newly earned ids appended. The input is never modified and
// already earned badges are never revoked or re-reported.
func Evaluate(state models.AppState, today string) Result {
	var newly []Kind
	for _, k := range Kinds() {
		if state.HasBadge(k.ID()) {
			continue
		}
		if earned(k, state, today) {
			newly = append(newly, k)
		}
	}

	if len(newly) == 0 {
		return Result{State: state}
	}

	next := state.Clone()
	for _, k := range newly {
		next.EarnedBadges = append(next.EarnedBadges, k.ID())
	}
	return Result{State: next, Newly: newly}
}

// Status pairs a badge with whether it has been earned.
type Status struct {
	Badge  Badge
	Earned bool
}

// Progress lists the whole catalog with earned flags taken from the state.
func Progress(state models.AppState) []Status {
	out := make([]Status, 0, kindCount)
	for _, b := range Catalog() {
		out = append(out, Status{Badge: b, Earned: state.HasBadge(b.ID())})
	}
	return out
}

func earned(k Kind, s models.AppState, today string) bool {
	switch k {
	case FirstStep:
		return len(s.Habits) >= 1
	case Streak3:
		return maxStreak(s) >= streakShortTarget
	case Streak7:
		return maxStreak(s) >= streakWeekTarget
	case Streak30:
		return maxStreak(s) >= streakMonthTarget
	case Architect:
		return len(s.Habits) >= architectHabits
	case GoalGetter:
		return anyGoalComplete(s)
	case Consistent:
		return totalCompletions(s) >= consistentTotal
	case HighFlyer:
		return len(s.Habits) > 0 && s.Log(today).CompletedCount() == len(s.Habits)
	default:
		return false
	}
}

func maxStreak(s models.AppState) int {
	best := 0
	for _, h := range s.Habits {
		if h.Streak > best {
			best = h.Streak
		}
	}
	return best
}

func anyGoalComplete(s models.AppState) bool {
	for _, g := range s.Goals {
		if g.IsComplete() {
			return true
		}
	}
	return false
}

func totalCompletions(s models.AppState) int {
	total := 0
	for _, l := range s.Logs {
		total += l.CompletedCount()
	}
	return total
}

// Package achievements evaluates which badges a user has earned.
//
// Badges form a closed set. Each Kind has exactly one predicate, and Evaluate
// walks the kinds in catalog order, so when several unlock together the first
// one in that order is the one surfaced to the user.
package achievements

import "fmt"

// Kind identifies a badge.
type Kind int

const (
	FirstStep Kind = iota
	Streak3
	Streak7
	Streak30
	Architect
	GoalGetter
	Consistent
	HighFlyer

	kindCount
)

const (
	architectHabits   = 5
	consistentTotal   = 50
	streakShortTarget = 3
	streakWeekTarget  = 7
	streakMonthTarget = 30
)

// Badge is a static catalog entry.
type Badge struct {
	Kind        Kind
	Title       string
	Description string
	Icon        string
	Color       string
	Condition   string
}

// ID is the persisted identifier of the badge.
func (b Badge) ID() string { return b.Kind.ID() }

var catalog = [kindCount]Badge{
	FirstStep:  {FirstStep, "First Step", "You started your journey.", "🌱", "emerald", "Create your first habit"},
	Streak3:    {Streak3, "Heating Up", "Three days in a row.", "🔥", "orange", "Reach a 3 day streak"},
	Streak7:    {Streak7, "Week Warrior", "A full week of consistency.", "⚡", "amber", "Reach a 7 day streak"},
	Streak30:   {Streak30, "Unstoppable", "A month without missing a beat.", "🏆", "yellow", "Reach a 30 day streak"},
	Architect:  {Architect, "Architect", "You are building a real system.", "🏗", "blue", "Track 5 habits at once"},
	GoalGetter: {GoalGetter, "Goal Getter", "Target reached.", "🎯", "rose", "Complete a goal"},
	Consistent: {Consistent, "Consistent", "Fifty check-ins and counting.", "📈", "indigo", "Complete habits 50 times"},
	HighFlyer:  {HighFlyer, "High Flyer", "Every habit done today.", "🚀", "violet", "Complete all habits in a single day"},
}

// ID returns the persisted identifier of the kind.
func (k Kind) ID() string {
	switch k {
	case FirstStep:
		return "first_step"
	case Streak3:
		return "streak_3"
	case Streak7:
		return "streak_7"
	case Streak30:
		return "streak_30"
	case Architect:
		return "architect"
	case GoalGetter:
		return "goal_getter"
	case Consistent:
		return "consistent"
	case HighFlyer:
		return "high_flyer"
	default:
		return fmt.Sprintf("unknown_%d", int(k))
	}
}

func (k Kind) String() string { return k.ID() }

// Badge returns the catalog entry for the kind.
func (k Kind) Badge() Badge {
	if k < 0 || k >= kindCount {
		return Badge{Kind: k, Title: k.ID()}
	}
	return catalog[k]
}

// Kinds returns every kind in catalog order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Catalog returns a copy of every badge definition in catalog order.
func Catalog() []Badge {
	out := make([]Badge, kindCount)
	copy(out, catalog[:])
	return out
}

// ParseID maps a persisted identifier back to its kind.
func ParseID(id string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.ID() == id {
			return k, true
		}
	}
	return 0, false
}

// Lookup returns the badge for a persisted identifier.
func Lookup(id string) (Badge, bool) {
	k, ok := ParseID(id)
	if !ok {
		return Badge{}, false
	}
	return catalog[k], true
}

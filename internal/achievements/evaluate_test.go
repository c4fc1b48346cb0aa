package achievements

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/streakly/internal/models"
)

const today = "2025-06-15"

func stateWithHabits(streaks ...int) models.AppState {
	s := models.Empty()
	for i, streak := range streaks {
		s.Habits = append(s.Habits, models.Habit{
			ID:        fmt.Sprintf("h%d", i+1),
			Title:     fmt.Sprintf("Habit %d", i+1),
			Category:  models.CategoryHealth,
			Frequency: models.FrequencyDaily,
			Streak:    streak,
		})
	}
	return s
}

func kindIDs(kinds []Kind) []string {
	ids := make([]string, len(kinds))
	for i, k := range kinds {
		ids[i] = k.ID()
	}
	return ids
}

func TestKindIDsRoundTrip(t *testing.T) {
	want := []string{"first_step", "streak_3", "streak_7", "streak_30", "architect", "goal_getter", "consistent", "high_flyer"}
	if diff := cmp.Diff(want, kindIDs(Kinds())); diff != "" {
		t.Fatalf("catalog order mismatch (-want +got):\n%s", diff)
	}
	for _, id := range want {
		k, ok := ParseID(id)
		if !ok || k.ID() != id {
			t.Errorf("ParseID(%q) = %v, %v", id, k, ok)
		}
		if b, ok := Lookup(id); !ok || b.Title == "" {
			t.Errorf("Lookup(%q) returned no catalog entry", id)
		}
	}
	if _, ok := ParseID("mystery"); ok {
		t.Error("ParseID should reject unknown ids")
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		state func() models.AppState
		want  []string
	}{
		{
			name:  "empty state earns nothing",
			state: models.Empty,
			want:  nil,
		},
		{
			name:  "first habit",
			state: func() models.AppState { return stateWithHabits(0) },
			want:  []string{"first_step"},
		},
		{
			name:  "streak thresholds are cumulative",
			state: func() models.AppState { return stateWithHabits(1, 30) },
			want:  []string{"first_step", "streak_3", "streak_7", "streak_30"},
		},
		{
			name:  "architect needs five habits",
			state: func() models.AppState { return stateWithHabits(0, 0, 0, 0, 0) },
			want:  []string{"first_step", "architect"},
		},
		{
			name: "goal getter",
			state: func() models.AppState {
				s := models.Empty()
				s.Goals = append(s.Goals, models.Goal{ID: "g1", Title: "Read", Current: 10, Target: 10})
				return s
			},
			want: []string{"goal_getter"},
		},
		{
			name: "consistent counts every logged completion",
			state: func() models.AppState {
				s := models.Empty()
				for d := 1; d <= 25; d++ {
					date := fmt.Sprintf("2025-01-%02d", d)
					s.Logs[date] = models.DailyLog{Date: date, CompletedHabitIDs: []string{"a", "b"}}
				}
				return s
			},
			want: []string{"consistent"},
		},
		{
			name: "high flyer when every habit is done today",
			state: func() models.AppState {
				s := stateWithHabits(0, 0)
				s.Logs[today] = models.DailyLog{Date: today, CompletedHabitIDs: []string{"h1", "h2"}}
				return s
			},
			want: []string{"first_step", "high_flyer"},
		},
		{
			name: "high flyer never with zero habits",
			state: func() models.AppState {
				s := models.Empty()
				s.Logs[today] = models.NewDailyLog(today)
				return s
			},
			want: nil,
		},
		{
			name: "partial day is not high flyer",
			state: func() models.AppState {
				s := stateWithHabits(0, 0)
				s.Logs[today] = models.DailyLog{Date: today, CompletedHabitIDs: []string{"h1"}}
				return s
			},
			want: []string{"first_step"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.state(), today)
			got := kindIDs(res.Newly)
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("newly earned mismatch (-want +got):\n%s", diff)
			}
			for _, id := range tt.want {
				if !res.State.HasBadge(id) {
					t.Errorf("state missing earned badge %q", id)
				}
			}
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	states := []models.AppState{
		models.Empty(),
		stateWithHabits(3),
		stateWithHabits(31, 2, 0, 0, 9),
	}
	for i, s := range states {
		first := Evaluate(s, today)
		second := Evaluate(first.State, today)
		if len(second.Newly) != 0 {
			t.Errorf("state %d: second pass earned %v", i, kindIDs(second.Newly))
		}
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	s := stateWithHabits(7)
	before := s.Clone()

	res := Evaluate(s, today)
	if len(res.Newly) == 0 {
		t.Fatal("expected badges to be earned")
	}
	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("input state was modified (-before +after):\n%s", diff)
	}
}

func TestSpotlightUsesCatalogOrder(t *testing.T) {
	res := Evaluate(stateWithHabits(30), today)
	b, ok := res.Spotlight()
	if !ok {
		t.Fatal("expected a spotlight badge")
	}
	if b.Kind != FirstStep {
		t.Errorf("spotlight = %s, want first_step", b.ID())
	}

	s := stateWithHabits(30)
	s.EarnedBadges = []string{"first_step"}
	b, _ = Evaluate(s, today).Spotlight()
	if b.Kind != Streak3 {
		t.Errorf("spotlight = %s, want streak_3 (earliest in catalog, not the most significant)", b.ID())
	}
}

func TestBadgesAreNeverRevoked(t *testing.T) {
	s := stateWithHabits(3)
	s = Evaluate(s, today).State
	s.Habits[0].Streak = 0

	res := Evaluate(s, today)
	if !res.State.HasBadge("streak_3") {
		t.Error("streak_3 was revoked after the streak dropped")
	}
}

func TestProgress(t *testing.T) {
	s := models.Empty()
	s.EarnedBadges = []string{"architect"}
	statuses := Progress(s)
	if len(statuses) != len(Kinds()) {
		t.Fatalf("Progress returned %d entries, want %d", len(statuses), len(Kinds()))
	}
	for _, st := range statuses {
		if st.Earned != (st.Badge.Kind == Architect) {
			t.Errorf("%s earned = %v", st.Badge.ID(), st.Earned)
		}
	}
}

package models

import (
	"encoding/json"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"Health", CategoryHealth, false},
		{"mindfulness", CategoryMindfulness, false},
		{"  WORK ", CategoryWork, false},
		{"sleep", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFrequencyIsValidForHabit(t *testing.T) {
	if !FrequencyDaily.IsValidForHabit() || !FrequencyWeekly.IsValidForHabit() || !FrequencyMonthly.IsValidForHabit() {
		t.Error("expected Daily, Weekly and Monthly to be valid habit frequencies")
	}
	if FrequencyOnce.IsValidForHabit() {
		t.Error("Once should not be a valid habit frequency")
	}
	if !FrequencyOnce.IsValid() {
		t.Error("Once should be a valid goal frequency")
	}
}

func TestValidateReminderTime(t *testing.T) {
	valid := []string{"00:00", "07:30", "23:59"}
	for _, s := range valid {
		if err := ValidateReminderTime(s); err != nil {
			t.Errorf("ValidateReminderTime(%q) unexpected error: %v", s, err)
		}
	}
	invalid := []string{"", "7:30", "24:00", "12:60", "noon"}
	for _, s := range invalid {
		if err := ValidateReminderTime(s); err == nil {
			t.Errorf("ValidateReminderTime(%q) expected error", s)
		}
	}
}

func TestGoalIsComplete(t *testing.T) {
	g := Goal{Current: 9, Target: 10}
	if g.IsComplete() {
		t.Error("9/10 should not be complete")
	}
	g.Current = 10
	if !g.IsComplete() {
		t.Error("10/10 should be complete")
	}
	g.Current = 15
	if !g.IsComplete() || g.Percent() != 100 {
		t.Errorf("15/10 should be complete and capped at 100%%, got %v", g.Percent())
	}
}

func TestCloneIsDeep(t *testing.T) {
	reminder := "08:00"
	s := Empty()
	s.Habits = append(s.Habits, Habit{ID: "h1", Title: "Run", ReminderTime: &reminder})
	s.Logs["2025-01-01"] = DailyLog{Date: "2025-01-01", CompletedHabitIDs: []string{"h1"}, GoalProgress: map[string]float64{"g1": 2}}
	s.EarnedBadges = append(s.EarnedBadges, "first_step")

	c := s.Clone()
	c.Habits[0].Title = "Walk"
	*c.Habits[0].ReminderTime = "09:00"
	c.Logs["2025-01-01"].GoalProgress["g1"] = 5
	log := c.Logs["2025-01-01"]
	log.CompletedHabitIDs[0] = "h2"
	c.EarnedBadges[0] = "architect"

	if s.Habits[0].Title != "Run" || *s.Habits[0].ReminderTime != "08:00" {
		t.Error("clone shares habit data with original")
	}
	if s.Logs["2025-01-01"].GoalProgress["g1"] != 2 || s.Logs["2025-01-01"].CompletedHabitIDs[0] != "h1" {
		t.Error("clone shares log data with original")
	}
	if s.EarnedBadges[0] != "first_step" {
		t.Error("clone shares badge slice with original")
	}
}

func TestUnmarshalDefaultsMissingFields(t *testing.T) {
	// Documents written before earnedBadges existed.
	data := []byte(`{"habits":[{"id":"h1","title":"Read","category":"Learning","createdAt":1700000000000,"frequency":"Daily","streak":4}],"goals":[],"logs":{"2025-03-01":{"completedHabitIds":["h1"]}}}`)

	var s AppState
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.EarnedBadges == nil || len(s.EarnedBadges) != 0 {
		t.Errorf("EarnedBadges = %v, want empty non-nil slice", s.EarnedBadges)
	}
	log := s.Logs["2025-03-01"]
	if log.Date != "2025-03-01" {
		t.Errorf("log date = %q, want it filled from the key", log.Date)
	}
	if log.GoalProgress == nil {
		t.Error("GoalProgress should default to an empty map")
	}
	if s.Habits[0].Streak != 4 || s.Habits[0].Category != CategoryLearning {
		t.Errorf("unexpected habit: %+v", s.Habits[0])
	}
}

func TestMarshalDocumentShape(t *testing.T) {
	s := Empty()
	s.Logs["2025-03-01"] = NewDailyLog("2025-03-01")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	for _, key := range []string{"habits", "goals", "logs", "earnedBadges"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("missing top-level key %q in %s", key, data)
		}
	}
	log := generic["logs"].(map[string]any)["2025-03-01"].(map[string]any)
	for _, key := range []string{"date", "completedHabitIds", "goalProgress"} {
		if _, ok := log[key]; !ok {
			t.Errorf("missing log key %q in %s", key, data)
		}
	}
}

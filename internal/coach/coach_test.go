package coach

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/streakly/internal/models"
)

type fakeModel struct {
	system  string
	history []Turn
	reply   string
	err     error
	audio   []byte
}

func (f *fakeModel) Generate(ctx context.Context, system string, history []Turn) (string, error) {
	f.system = system
	f.history = append([]Turn(nil), history...)
	return f.reply, f.err
}

func (f *fakeModel) Speak(ctx context.Context, text string) ([]byte, error) {
	return f.audio, f.err
}

func reminderAt(s string) *string { return &s }

func sampleState() models.AppState {
	s := models.Empty()
	s.Habits = []models.Habit{
		{ID: "h1", Title: "Read", Category: models.CategoryLearning, Frequency: models.FrequencyDaily, Streak: 5, ReminderTime: reminderAt("21:00")},
		{ID: "h2", Title: "Review budget", Category: models.CategoryWork, Frequency: models.FrequencyWeekly},
	}
	deadline := "2025-12-31"
	s.Goals = []models.Goal{
		{ID: "g1", Title: "Run", Current: 12.5, Target: 50, Unit: "km", Frequency: models.FrequencyMonthly, Deadline: &deadline},
		{ID: "g2", Title: "Books", Current: 3, Target: 3, Unit: "books", Frequency: models.FrequencyOnce},
	}
	for i, d := range []string{"2025-06-05", "2025-06-06", "2025-06-07", "2025-06-08", "2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12", "2025-06-16"} {
		l := models.NewDailyLog(d)
		if i%2 == 0 {
			l.CompletedHabitIDs = []string{"h1", "gone"}
		}
		s.Logs[d] = l
	}
	s.EarnedBadges = []string{"first_step", "streak_3", "unknown"}
	return s
}

func TestNewSnapshot(t *testing.T) {
	snap := NewSnapshot(sampleState(), "2025-06-15")

	var dates []string
	for _, l := range snap.Logs {
		dates = append(dates, l.Date)
	}
	want := []string{"2025-06-06", "2025-06-07", "2025-06-08", "2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12"}
	if diff := cmp.Diff(want, dates); diff != "" {
		t.Errorf("log dates mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Badges) != 2 {
		t.Errorf("Badges = %v, unknown ids should be dropped", snap.Badges)
	}
}

func TestNewSnapshotDoesNotAlias(t *testing.T) {
	state := sampleState()
	snap := NewSnapshot(state, "2025-06-15")
	snap.Habits[0].Title = "changed"
	if state.Habits[0].Title != "Read" {
		t.Error("snapshot shares memory with state")
	}
}

func TestBuildContext(t *testing.T) {
	text := BuildContext(NewSnapshot(sampleState(), "2025-06-15"))

	for _, want := range []string{
		"Today is 2025-06-15.",
		"- Read [Learning, Daily] streak 5 reminder 21:00",
		"- Review budget [Work, Weekly]\n",
		"- Run: 12.5/50 km (25%) due 2025-12-31",
		"- Books: 3/3 books (100%) complete",
		"- 2025-06-07: Read\n",
		"- 2025-06-06: nothing completed",
		"Badges earned: ",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("context missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "gone") {
		t.Error("deleted habit ids should not be rendered")
	}
}

func TestBuildContextEmpty(t *testing.T) {
	text := BuildContext(NewSnapshot(models.Empty(), "2025-06-15"))
	if !strings.Contains(text, "no habits yet") || !strings.Contains(text, "no goals yet") {
		t.Errorf("empty context = %q", text)
	}
}

func TestOverview(t *testing.T) {
	m := &fakeModel{reply: "  Keep going!  "}
	c := NewWithModel(m)

	got, err := c.Overview(context.Background(), NewSnapshot(sampleState(), "2025-06-15"))
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if got != "Keep going!" {
		t.Errorf("Overview() = %q", got)
	}
	if !strings.HasPrefix(m.system, overviewInstruction) || !strings.Contains(m.system, "Habits:") {
		t.Errorf("system instruction = %q", m.system)
	}
}

func TestChatKeepsHistory(t *testing.T) {
	m := &fakeModel{reply: "Try mornings."}
	chat := NewWithModel(m).NewChat(NewSnapshot(sampleState(), "2025-06-15"), []Turn{{Role: RoleModel, Text: "Hi!"}})
	ctx := context.Background()

	if _, err := chat.Send(ctx, "When should I read?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	m.reply = "Ten pages."
	if _, err := chat.Send(ctx, "How much?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	want := []Turn{
		{Role: RoleModel, Text: "Hi!"},
		{Role: RoleUser, Text: "When should I read?"},
		{Role: RoleModel, Text: "Try mornings."},
		{Role: RoleUser, Text: "How much?"},
	}
	if diff := cmp.Diff(want, m.history); diff != "" {
		t.Errorf("history sent mismatch (-want +got):\n%s", diff)
	}
	if got := len(chat.History()); got != 5 {
		t.Errorf("History() length = %d, want 5", got)
	}
}

func TestChatFailedTurnNotKept(t *testing.T) {
	m := &fakeModel{err: errors.New("quota")}
	chat := NewWithModel(m).NewChat(NewSnapshot(models.Empty(), "2025-06-15"), nil)

	if _, err := chat.Send(context.Background(), "hello"); err == nil {
		t.Fatal("Send() error = nil, want model error")
	}
	if len(chat.History()) != 0 {
		t.Errorf("History() = %v, want empty after failure", chat.History())
	}
	if _, err := chat.Send(context.Background(), "   "); err == nil {
		t.Error("Send() accepted an empty message")
	}
}

func TestNewWithoutKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("New() error = %v, want ErrNotConfigured", err)
	}
}

func TestWriteWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	var buf bytes.Buffer
	if err := WriteWAV(&buf, pcm); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	out := buf.Bytes()
	if len(out) != 44+len(pcm) {
		t.Fatalf("length = %d, want %d", len(out), 44+len(pcm))
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" || string(out[36:40]) != "data" {
		t.Errorf("bad chunk ids: %q", out[:40])
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d", got)
	}
	if !bytes.Equal(out[44:], pcm) {
		t.Error("payload not copied")
	}
}

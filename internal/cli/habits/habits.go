package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/streakly/internal/cli"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/reducer"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's status."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark a habit done for today, or undo it."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit. Past completions are kept."`
}

type HabitAddCmd struct {
	Title     string `arg:"" help:"Habit title."`
	Category  string `help:"Health, Work, Learning, Mindfulness or Other." default:"Other"`
	Frequency string `help:"Daily, Weekly or Monthly." default:"Daily"`
	Reminder  string `help:"Reminder time (HH:MM, 24h)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	in, err := c.validate()
	if err != nil {
		return err
	}

	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	out := s.AddHabit(in)
	habit := out.State.Habits[len(out.State.Habits)-1]
	ctx.Printf("Added habit: %s [%s, %s]\n", habit.Title, habit.Category, habit.Frequency)
	if habit.HasReminder() {
		ctx.Printf("Reminder set for %s\n", *habit.ReminderTime)
	}
	ctx.ReportSpotlight(out.Spotlight)
	return closeFn()
}

func (c *HabitAddCmd) validate() (reducer.NewHabit, error) {
	if strings.TrimSpace(c.Title) == "" {
		return reducer.NewHabit{}, errors.New("habit title cannot be empty")
	}
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return reducer.NewHabit{}, err
	}
	frequency, err := models.ParseFrequency(c.Frequency)
	if err != nil {
		return reducer.NewHabit{}, err
	}
	if !frequency.IsValidForHabit() {
		return reducer.NewHabit{}, apperrors.WithHint(fmt.Errorf("habits cannot use frequency %s", frequency), "one-off targets are goals: try 'streakly goal add'")
	}
	if c.Reminder != "" {
		if err := models.ValidateReminderTime(c.Reminder); err != nil {
			return reducer.NewHabit{}, err
		}
	}
	return reducer.NewHabit{
		Title:        c.Title,
		Category:     category,
		Frequency:    frequency,
		ReminderTime: c.Reminder,
	}, nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	state := s.State()
	if len(state.Habits) == 0 {
		ctx.Println("No habits yet. Add one with 'streakly habit add'.")
		return nil
	}

	today := state.Log(s.Today())
	for i, h := range state.Habits {
		mark := " "
		if today.IsCompleted(h.ID) {
			mark = "✓"
		}
		line := fmt.Sprintf("%2d. [%s] %s (%s, %s) 🔥 %d", i+1, mark, h.Title, h.Category, h.Frequency, h.Streak)
		if h.HasReminder() {
			line += " ⏰ " + *h.ReminderTime
		}
		ctx.Println(line)
	}
	ctx.Printf("\n%d of %d done today\n", today.CompletedCount(), len(state.Habits))
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Position, id or title of the habit."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	habit, err := cli.FindHabit(s.State(), c.Habit)
	if err != nil {
		closeFn()
		return err
	}

	out := s.ToggleHabit(habit.ID)
	updated := out.State.Habits[out.State.FindHabit(habit.ID)]
	if out.State.Log(s.Today()).IsCompleted(habit.ID) {
		ctx.Printf("✓ %s done for today (streak %d)\n", updated.Title, updated.Streak)
	} else {
		ctx.Printf("↺ %s marked not done (streak %d)\n", updated.Title, updated.Streak)
	}
	ctx.ReportSpotlight(out.Spotlight)
	return closeFn()
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Position, id or title of the habit."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	habit, err := cli.FindHabit(s.State(), c.Habit)
	if err != nil {
		closeFn()
		return err
	}

	s.DeleteHabit(habit.ID)
	ctx.Printf("Deleted habit: %s\n", habit.Title)
	return closeFn()
}

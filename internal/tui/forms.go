package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/reducer"
	"github.com/julianstephens/streakly/internal/utils"
)

func categoryOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, c := range models.Categories() {
		opts = append(opts, huh.NewOption(string(c), string(c)))
	}
	return opts
}

func frequencyOptions(includeOnce bool) []huh.Option[string] {
	opts := []huh.Option[string]{
		huh.NewOption("Daily", string(models.FrequencyDaily)),
		huh.NewOption("Weekly", string(models.FrequencyWeekly)),
		huh.NewOption("Monthly", string(models.FrequencyMonthly)),
	}
	if includeOnce {
		opts = append(opts, huh.NewOption("Once", string(models.FrequencyOnce)))
	}
	return opts
}

func validateReminder(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return models.ValidateReminderTime(strings.TrimSpace(s))
}

func validateTarget(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return errors.New("target must be a positive number")
	}
	return nil
}

func validateAmount(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("enter a number (negative to undo)")
	}
	return nil
}

func validateDeadline(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || utils.IsValidDate(s) {
		return nil
	}
	return fmt.Errorf("use YYYY-MM-DD")
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (m *Model) openHabitForm() tea.Cmd {
	m.habitForm = &HabitFormModel{
		Category:  string(models.CategoryHealth),
		Frequency: string(models.FrequencyDaily),
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Placeholder("Read 20 pages").
				Value(&m.habitForm.Title).
				Validate(validateRequired("title")),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions()...).
				Value(&m.habitForm.Category),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(frequencyOptions(false)...).
				Value(&m.habitForm.Frequency),
			huh.NewInput().
				Title("Reminder").
				Description("Optional, HH:MM in 24h time").
				Value(&m.habitForm.Reminder).
				Validate(validateReminder),
		),
	).WithShowHelp(true)
	m.formError = ""
	m.previousState = constants.StateHabits
	m.state = constants.StateAddHabit
	return m.form.Init()
}

func (f HabitFormModel) toInput() reducer.NewHabit {
	return reducer.NewHabit{
		Title:        strings.TrimSpace(f.Title),
		Category:     models.Category(f.Category),
		Frequency:    models.Frequency(f.Frequency),
		ReminderTime: strings.TrimSpace(f.Reminder),
	}
}

func (m *Model) openGoalForm() tea.Cmd {
	m.goalForm = &GoalFormModel{
		Frequency: string(models.FrequencyOnce),
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Goal").
				Placeholder("Run a half marathon").
				Value(&m.goalForm.Title).
				Validate(validateRequired("title")),
			huh.NewInput().
				Title("Target").
				Placeholder("21.1").
				Value(&m.goalForm.Target).
				Validate(validateTarget),
			huh.NewInput().
				Title("Unit").
				Placeholder("km").
				Value(&m.goalForm.Unit),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(frequencyOptions(true)...).
				Value(&m.goalForm.Frequency),
			huh.NewInput().
				Title("Deadline").
				Description("Optional, YYYY-MM-DD").
				Value(&m.goalForm.Deadline).
				Validate(validateDeadline),
		),
	).WithShowHelp(true)
	m.formError = ""
	m.previousState = constants.StateGoals
	m.state = constants.StateAddGoal
	return m.form.Init()
}

func (f GoalFormModel) toInput() (reducer.NewGoal, error) {
	target, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		return reducer.NewGoal{}, fmt.Errorf("invalid target: %w", err)
	}
	return reducer.NewGoal{
		Title:     strings.TrimSpace(f.Title),
		Target:    target,
		Unit:      strings.TrimSpace(f.Unit),
		Frequency: models.Frequency(f.Frequency),
		Deadline:  strings.TrimSpace(f.Deadline),
	}, nil
}

func (m *Model) openProgressForm(goalID, title string) tea.Cmd {
	m.progressForm = &ProgressFormModel{GoalID: goalID}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Log progress for %s", title)).
				Description("Negative amounts undo progress").
				Value(&m.progressForm.Amount).
				Validate(validateAmount),
		),
	)
	m.formError = ""
	m.previousState = constants.StateGoals
	m.state = constants.StateLogProgress
	return m.form.Init()
}

func (m *Model) openSignInForm() tea.Cmd {
	m.signInForm = &SignInFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to streakly").
				Description("Sign in to load your habits and goals."),
			huh.NewInput().
				Title("Email").
				Value(&m.signInForm.Email).
				Validate(validateRequired("email")),
			huh.NewInput().
				Title("Name").
				Description("Optional").
				Value(&m.signInForm.Name),
		),
	)
	m.state = constants.StateSignIn
	return m.form.Init()
}

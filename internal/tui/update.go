package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/session"
	"github.com/julianstephens/streakly/internal/tui/components/goals"
	"github.com/julianstephens/streakly/internal/tui/components/habits"
)

const (
	spotlightDuration = 4 * time.Second
	flushTimeout      = 10 * time.Second
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		listHeight := msg.Height - v - 4
		m.habitsModel.SetSize(msg.Width-h, listHeight)
		m.goalsModel.SetSize(msg.Width-h, listHeight)
		m.badgesModel.SetSize(msg.Width - h)
		m.help.Width = msg.Width
		return m, nil

	case SessionMsg:
		if msg.Session == m.session {
			return m, nil
		}
		m.loadErr = nil
		return m, m.setSession(msg.Session)

	case saveStatusMsg:
		m.status = msg.status
		if m.statusWatch == nil {
			return m, nil
		}
		return m, m.statusWatch.wait()

	case clearSpotlightMsg:
		if msg.seq == m.spotlightSeq {
			m.spotlight = nil
		}
		return m, nil

	case accountResultMsg:
		if msg.err != nil {
			m.formError = msg.err.Error()
			if m.session == nil {
				return m, m.openSignInForm()
			}
		}
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateAddGoal, constants.StateLogProgress, constants.StateSignIn:
		return m.updateForm(msg)
	case constants.StateConfirmDelete, constants.StateConfirmReset:
		return m.updateConfirm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := m.handleGlobalKeys(keyMsg); handled {
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		return m, m.openHabitForm()
	case habits.ToggleHabitMsg:
		return m, m.applyOutcome(m.session.ToggleHabit(msg.ID))
	case habits.DeleteHabitMsg:
		return m.confirmDelete(deleteTarget{id: msg.ID, title: msg.Title})
	case goals.AddGoalMsg:
		return m, m.openGoalForm()
	case goals.ProgressMsg:
		return m, m.applyOutcome(m.session.UpdateGoalProgress(msg.ID, msg.Delta))
	case goals.CustomProgressMsg:
		return m, m.openProgressForm(msg.ID, msg.Title)
	case goals.DeleteGoalMsg:
		return m.confirmDelete(deleteTarget{goal: true, id: msg.ID, title: msg.Title})
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.StateGoals:
		m.goalsModel, cmd = m.goalsModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % (constants.StateBadges + 1)
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = (m.state + constants.StateBadges) % (constants.StateBadges + 1)
		return true, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Reset):
		m.previousState = m.state
		m.state = constants.StateConfirmReset
		return true, nil
	case key.Matches(msg, m.keys.SignOut):
		return true, m.signOut()
	}
	return false, nil
}

func (m Model) confirmDelete(t deleteTarget) (tea.Model, tea.Cmd) {
	m.pendingDelete = t
	m.previousState = m.state
	m.state = constants.StateConfirmDelete
	return m, nil
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		if m.state == constants.StateConfirmReset {
			cmd = m.applyOutcome(m.session.ResetAll(true))
		} else if m.pendingDelete.goal {
			cmd = m.applyOutcome(m.session.DeleteGoal(m.pendingDelete.id))
		} else {
			cmd = m.applyOutcome(m.session.DeleteHabit(m.pendingDelete.id))
		}
	case key.Matches(keyMsg, m.keys.No):
	default:
		return m, nil
	}

	m.pendingDelete = deleteTarget{}
	m.state = m.previousState
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if keyMsg.Type == tea.KeyEsc && m.state != constants.StateSignIn {
			m.state = m.previousState
			return m, nil
		}
	}

	// A completed sign-in form waits here for the SessionMsg.
	if m.form.State == huh.StateCompleted {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submitForm(cmd)
	case huh.StateAborted:
		if m.state == constants.StateSignIn {
			m.quitting = true
			return m, tea.Quit
		}
		m.state = m.previousState
	}
	return m, cmd
}

func (m Model) submitForm(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	state := m.state
	m.state = m.previousState

	switch state {
	case constants.StateAddHabit:
		return m, tea.Batch(cmd, m.applyOutcome(m.session.AddHabit(m.habitForm.toInput())))

	case constants.StateAddGoal:
		in, err := m.goalForm.toInput()
		if err != nil {
			m.formError = err.Error()
			return m, cmd
		}
		return m, tea.Batch(cmd, m.applyOutcome(m.session.AddGoal(in)))

	case constants.StateLogProgress:
		amount, err := strconv.ParseFloat(strings.TrimSpace(m.progressForm.Amount), 64)
		if err != nil {
			m.formError = err.Error()
			return m, cmd
		}
		return m, tea.Batch(cmd, m.applyOutcome(m.session.UpdateGoalProgress(m.progressForm.GoalID, amount)))

	case constants.StateSignIn:
		m.state = constants.StateSignIn
		return m, tea.Batch(cmd, m.signIn(m.signInForm.Email, m.signInForm.Name))
	}
	return m, cmd
}

// applyOutcome refreshes the views and starts the spotlight timer when a badge was unlocked.
func (m *Model) applyOutcome(out session.Outcome) tea.Cmd {
	m.formError = ""
	m.refresh()
	if out.Spotlight == nil {
		return nil
	}
	m.spotlight = out.Spotlight
	m.spotlightSeq++
	seq := m.spotlightSeq
	return tea.Tick(spotlightDuration, func(time.Time) tea.Msg {
		return clearSpotlightMsg{seq: seq}
	})
}

func (m Model) signIn(email, name string) tea.Cmd {
	accounts := m.accounts
	return func() tea.Msg {
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}
		_, err := accounts.SignIn(email, name)
		return accountResultMsg{err: err}
	}
}

// signOut flushes the pending save first; switching users cancels it otherwise.
func (m Model) signOut() tea.Cmd {
	s := m.session
	accounts := m.accounts
	return func() tea.Msg {
		if s != nil {
			ctx, cancel := flushContext()
			if err := s.Flush(ctx); err != nil {
				logger.Warn("Failed to save before sign-out", "error", err)
			}
			cancel()
		}
		return accountResultMsg{err: accounts.SignOut()}
	}
}

func flushContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flushTimeout)
}

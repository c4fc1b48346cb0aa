package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/syncer"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StateGoals:
		content = docStyle.Render(m.goalsModel.View())
	case constants.StateBadges:
		content = docStyle.Render(m.badgesModel.View())
	case constants.StateAddHabit, constants.StateAddGoal, constants.StateLogProgress:
		content = docStyle.Render(m.form.View())
	case constants.StateSignIn:
		return m.viewSignIn()
	case constants.StateConfirmDelete:
		content = m.viewConfirm(
			dangerStyle.Render(fmt.Sprintf("Delete %q?", m.pendingDelete.title)),
			"",
		)
	case constants.StateConfirmReset:
		content = m.viewConfirm(
			dangerStyle.Render("Erase all habits, goals, history and badges?"),
			"This cannot be undone.",
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewBanner(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	var tabs []string
	for i, title := range []string{"Habits", "Goals", "Badges"} {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	right := statusLabel(m.status)
	if m.session != nil {
		right = mutedStyle.Render(m.session.Identity().Email) + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}

// statusLabel renders the save indicator.
func statusLabel(s syncer.Status) string {
	switch s {
	case syncer.StatusSaving:
		return savingStyle.Render("⟳ Saving…")
	case syncer.StatusError:
		return dangerStyle.Render("⚠ Sync Error")
	case syncer.StatusLocal:
		return mutedStyle.Render("○ Local only")
	default:
		return savedStyle.Render("✓ Saved")
	}
}

func (m Model) viewBanner() string {
	switch {
	case m.spotlight != nil:
		b := m.spotlight
		return spotlightStyle.Render(fmt.Sprintf("%s Badge unlocked: %s. %s", b.Icon, b.Title, b.Description))
	case m.formError != "":
		return warningStyle.Render("⚠ " + m.formError)
	case m.loadErr != nil:
		return warningStyle.Render("⚠ Couldn't load saved data. Starting empty; new changes will still be saved.")
	}
	return ""
}

func (m Model) viewConfirm(title, detail string) string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			title,
			detail,
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewSignIn() string {
	form := m.form.View()
	if m.form.State == huh.StateCompleted {
		form = mutedStyle.Render("Signing in…")
	}
	if m.formError != "" {
		form = lipgloss.JoinVertical(lipgloss.Left, form, "", warningStyle.Render("⚠ "+m.formError))
	}
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		docStyle.Render(form),
	)
}

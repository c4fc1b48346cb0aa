package goals

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

type AddGoalMsg struct{}

// ProgressMsg asks for Delta to be added to the goal's progress.
type ProgressMsg struct {
	ID    string
	Delta float64
}

// CustomProgressMsg asks for an amount to be entered for the goal.
type CustomProgressMsg struct {
	ID    string
	Title string
}

type DeleteGoalMsg struct {
	ID    string
	Title string
}

type Item struct {
	Goal models.Goal
	bar  *progress.Model
}

func (i Item) Title() string {
	if i.Goal.IsComplete() {
		return "✓ " + i.Goal.Title
	}
	return "○ " + i.Goal.Title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s %s/%s %s", i.bar.ViewAs(i.Goal.Percent()/100),
		utils.FormatAmount(i.Goal.Current), utils.FormatAmount(i.Goal.Target), i.Goal.Unit)
	if i.Goal.Deadline != nil {
		desc += " · due " + *i.Goal.Deadline
	}
	return desc
}

func (i Item) FilterValue() string { return i.Goal.Title }

type KeyMap struct {
	Add       key.Binding
	Increment key.Binding
	Decrement key.Binding
	Custom    key.Binding
	Delete    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "progress +1"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "progress -1"),
		),
		Custom: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "log amount"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	bar  *progress.Model
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Goals"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	all := func() []key.Binding {
		return []key.Binding{keys.Add, keys.Increment, keys.Decrement, keys.Custom, keys.Delete}
	}
	l.AdditionalShortHelpKeys = all
	l.AdditionalFullHelpKeys = all

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))
	return Model{
		list: l,
		keys: keys,
		bar:  &bar,
	}
}

func (m *Model) SetState(state models.AppState) {
	items := make([]list.Item, len(state.Goals))
	for i, g := range state.Goals {
		items[i] = Item{Goal: g, bar: m.bar}
	}
	m.list.SetItems(items)
}

func (m Model) Keys() KeyMap { return m.keys }

func (m Model) Len() int { return len(m.list.Items()) }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		selected, ok := m.list.SelectedItem().(Item)
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddGoalMsg{} }
		case key.Matches(msg, m.keys.Increment):
			if ok {
				return m, func() tea.Msg { return ProgressMsg{ID: selected.Goal.ID, Delta: 1} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Decrement):
			if ok {
				return m, func() tea.Msg { return ProgressMsg{ID: selected.Goal.ID, Delta: -1} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Custom):
			if ok {
				return m, func() tea.Msg { return CustomProgressMsg{ID: selected.Goal.ID, Title: selected.Goal.Title} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if ok {
				return m, func() tea.Msg { return DeleteGoalMsg{ID: selected.Goal.ID, Title: selected.Goal.Title} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No goals yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

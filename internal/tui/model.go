package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/session"
	"github.com/julianstephens/streakly/internal/syncer"
	"github.com/julianstephens/streakly/internal/tui/components/badges"
	"github.com/julianstephens/streakly/internal/tui/components/goals"
	"github.com/julianstephens/streakly/internal/tui/components/habits"
)

// Accounts signs the user in and out. The session itself arrives later as a SessionMsg.
type Accounts interface {
	SignIn(email, displayName string) (*auth.Identity, error)
	SignOut() error
}

// SessionMsg reports that the live session changed. A nil Session means signed out.
type SessionMsg struct {
	Session *session.Session
}

type saveStatusMsg struct {
	status syncer.Status
}

type clearSpotlightMsg struct {
	seq int
}

type accountResultMsg struct {
	err error
}

type HabitFormModel struct {
	Title     string
	Category  string
	Frequency string
	Reminder  string
}

type GoalFormModel struct {
	Title     string
	Target    string
	Unit      string
	Frequency string
	Deadline  string
}

type ProgressFormModel struct {
	GoalID string
	Amount string
}

type SignInFormModel struct {
	Email string
	Name  string
}

// deleteTarget is the item awaiting confirmation.
type deleteTarget struct {
	goal  bool
	id    string
	title string
}

type Model struct {
	session  *session.Session
	accounts Accounts

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	goalsModel    goals.Model
	badgesModel   badges.Model

	form         *huh.Form
	habitForm    *HabitFormModel
	goalForm     *GoalFormModel
	progressForm *ProgressFormModel
	signInForm   *SignInFormModel
	formError    string

	pendingDelete deleteTarget
	status        syncer.Status
	statusWatch   *statusWatch
	spotlight     *achievements.Badge
	spotlightSeq  int
	loadErr       error

	quitting bool
	width    int
	height   int
}

// NewModel builds the UI around s, which may be nil when nobody is signed in.
// loadErr is shown as a warning; the session stays usable.
func NewModel(s *session.Session, accounts Accounts, loadErr error) Model {
	m := Model{
		accounts:    accounts,
		state:       constants.StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(0, 0),
		goalsModel:  goals.New(0, 0),
		badgesModel: badges.New(0),
		loadErr:     loadErr,
	}
	m.setSession(s)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.session == nil {
		return m.form.Init()
	}
	return m.statusWatch.wait()
}

// setSession swaps the live session and returns the command that follows its save status.
func (m *Model) setSession(s *session.Session) tea.Cmd {
	if m.statusWatch != nil {
		m.statusWatch.stop()
		m.statusWatch = nil
	}
	m.session = s
	m.spotlight = nil

	if s == nil {
		m.status = syncer.StatusLocal
		return m.openSignInForm()
	}

	m.statusWatch = watchStatus(s)
	m.status = s.SaveStatus()
	m.refresh()
	if m.state == constants.StateSignIn {
		m.state = constants.StateHabits
	}
	return m.statusWatch.wait()
}

// refresh pushes the session's current state into every component.
func (m *Model) refresh() {
	if m.session == nil {
		return
	}
	state := m.session.State()
	m.habitsModel.SetState(state, m.session.Today())
	m.goalsModel.SetState(state)
	m.badgesModel.SetState(state)
}

// statusWatch turns save-status callbacks into messages without blocking the
// synchronizer. Bursts collapse into one wake-up; the handler re-reads the status.
type statusWatch struct {
	session     *session.Session
	ch          chan struct{}
	done        chan struct{}
	unsubscribe func()
}

func watchStatus(s *session.Session) *statusWatch {
	w := &statusWatch{
		session: s,
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.unsubscribe = s.OnSaveStatus(func(syncer.Status) {
		select {
		case w.ch <- struct{}{}:
		default:
		}
	})
	return w
}

func (w *statusWatch) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.ch:
			return saveStatusMsg{status: w.session.SaveStatus()}
		case <-w.done:
			return nil
		}
	}
}

func (w *statusWatch) stop() {
	w.unsubscribe()
	close(w.done)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateHabits:
		hk := m.habitsModel.Keys()
		keys = append(keys, hk.Add, hk.Toggle, hk.Delete)
	case constants.StateGoals:
		gk := m.goalsModel.Keys()
		keys = append(keys, gk.Add, gk.Increment, gk.Decrement, gk.Custom)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Reset, m.keys.SignOut}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateHabits:
		hk := m.habitsModel.Keys()
		actions = []key.Binding{hk.Add, hk.Toggle, hk.Delete}
	case constants.StateGoals:
		gk := m.goalsModel.Keys()
		actions = []key.Binding{gk.Add, gk.Increment, gk.Decrement, gk.Custom, gk.Delete}
	}

	return [][]key.Binding{global, navigation, actions}
}

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
	Help     key.Binding
	Reset    key.Binding
	SignOut  key.Binding
	Yes      key.Binding
	No       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev view"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset all data"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "sign out"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

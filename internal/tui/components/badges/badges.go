package badges

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/models"
)

// palette maps catalog colour names to terminal colours.
var palette = map[string]lipgloss.Color{
	"emerald": lipgloss.Color("42"),
	"orange":  lipgloss.Color("208"),
	"amber":   lipgloss.Color("214"),
	"yellow":  lipgloss.Color("226"),
	"blue":    lipgloss.Color("33"),
	"rose":    lipgloss.Color("204"),
	"indigo":  lipgloss.Color("63"),
	"violet":  lipgloss.Color("135"),
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(30)

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type Model struct {
	statuses []achievements.Status
	width    int
}

func New(width int) Model {
	return Model{width: width}
}

func (m *Model) SetState(state models.AppState) {
	m.statuses = achievements.Progress(state)
}

func (m *Model) SetSize(width int) {
	m.width = width
}

func (m Model) Earned() int {
	n := 0
	for _, s := range m.statuses {
		if s.Earned {
			n++
		}
	}
	return n
}

func (m Model) View() string {
	cards := make([]string, 0, len(m.statuses))
	for _, s := range m.statuses {
		cards = append(cards, card(s))
	}

	perRow := m.width / (cardStyle.GetWidth() + 2)
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	header := fmt.Sprintf("%d of %d badges earned", m.Earned(), len(m.statuses))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(rows, "\n"))
}

func card(s achievements.Status) string {
	b := s.Badge
	if !s.Earned {
		return cardStyle.BorderForeground(lipgloss.Color("238")).Render(
			lockedStyle.Render(fmt.Sprintf("🔒 %s\n%s", b.Title, b.Condition)),
		)
	}
	color := palette[b.Color]
	title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(b.Icon + " " + b.Title)
	return cardStyle.BorderForeground(color).Render(title + "\n" + b.Description)
}

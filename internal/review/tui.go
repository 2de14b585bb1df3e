// Package review is the interactive TUI for triaging stored matches:
// accept, dismiss, or restore them to pending.
package review

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobscout/jobscout/internal/model"
)

// Lines per match item in the list view (title + subtitle + blank separator).
const matchItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	matchTitleStyle = lipgloss.NewStyle().
			Bold(true)

	matchSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	acceptedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dismissedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// statusUpdatedMsg is sent when an async status write completes.
type statusUpdatedMsg struct {
	matchID string
	status  model.MatchStatus
	err     error
}

type reviewModel struct {
	userID  string
	matches []model.ScoredMatch
	store   model.MatchStore

	listViewport   viewport.Model
	detailViewport viewport.Model
	cursor         int
	width          int
	height         int
	ready          bool

	view     viewState
	errorMsg string
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case statusUpdatedMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("status update failed: %v", msg.err)
		} else {
			m.errorMsg = ""
			for i := range m.matches {
				if m.matches[i].ID == msg.matchID {
					m.matches[i].Status = msg.status
					break
				}
			}
		}
		m.recalcContent()
		if m.view == viewDetail {
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.matches)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.matches)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "a":
		return m, m.setStatusCmd(model.StatusAccepted)
	case "d":
		return m, m.setStatusCmd(model.StatusDismissed)
	case "r":
		return m, m.setStatusCmd(model.StatusPending)
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.recalcContent()
		return m, nil
	case "o":
		if len(m.matches) > 0 && m.matches[m.cursor].Link != "" {
			openURL(m.matches[m.cursor].Link)
		}
		return m, nil
	case "a":
		return m, m.setStatusCmd(model.StatusAccepted)
	case "d":
		return m, m.setStatusCmd(model.StatusDismissed)
	case "r":
		return m, m.setStatusCmd(model.StatusPending)
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// setStatusCmd writes the new status for the match under the cursor. Accepted
// and dismissed only move from pending; restore only moves back to pending.
func (m reviewModel) setStatusCmd(status model.MatchStatus) tea.Cmd {
	if len(m.matches) == 0 {
		return nil
	}
	match := m.matches[m.cursor]
	if match.Status == status {
		return nil
	}

	store := m.store
	userID := m.userID
	return func() tea.Msg {
		err := store.UpdateStatus(context.Background(), userID, match.ID, status)
		return statusUpdatedMsg{matchID: match.ID, status: status, err: err}
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) ensureCursorVisible() {
	cursorTop := m.cursor * matchItemHeight
	cursorBottom := cursorTop + matchItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m *reviewModel) recalcLayout() {
	width := max(m.width-2, 20)
	// Header (1) + border (2) + status bar (1).
	height := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.listViewport.Width = width
		m.listViewport.Height = height
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.listViewport.SetContent(renderMatches(m.matches, m.cursor))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) viewList() string {
	pending, accepted, dismissed := 0, 0, 0
	for _, match := range m.matches {
		switch match.Status {
		case model.StatusAccepted:
			accepted++
		case model.StatusDismissed:
			dismissed++
		default:
			pending++
		}
	}

	header := headerStyle.Render(fmt.Sprintf(" Matches (%d)", len(m.matches)))
	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := fmt.Sprintf(" %d pending | %d accepted | %d dismissed    ↑/↓ cursor  a accept  d dismiss  r restore  Enter detail  q quit",
		pending, accepted, dismissed)
	if m.errorMsg != "" {
		statusText = " " + m.errorMsg
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Match Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " a accept  d dismiss  r restore  o open link  esc back  ↑/↓ scroll  q quit"
	if m.errorMsg != "" {
		statusText = " " + m.errorMsg
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	match := m.matches[m.cursor]
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", match.Title)
	addField("Company", match.Company)
	addField("Location", match.Location)
	addField("Source", match.Source)
	addField("Score", fmt.Sprintf("%.0f", match.Score))
	addField("Status", string(match.Status))
	addField("Link", match.Link)

	wrapWidth := max(m.width-8, 20)
	section := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		b.WriteByte('\n')
		b.WriteString(sectionStyle.Render(label+fill) + "\n")
		for _, item := range items {
			if item != "" {
				b.WriteString("  • " + wordWrap(item, wrapWidth-4) + "\n")
			}
		}
	}

	section("── Pros ", match.Reasoning.Pros)
	section("── Cons ", match.Reasoning.Cons)
	section("── Risk Factors ", match.Reasoning.RiskFactors)

	if match.Description != "" {
		fill := strings.Repeat("─", max(wrapWidth-len("── Description "), 3))
		b.WriteByte('\n')
		b.WriteString(sectionStyle.Render("── Description "+fill) + "\n\n")
		b.WriteString(wordWrap(match.Description, wrapWidth) + "\n")
	}

	if m.errorMsg != "" {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.errorMsg) + "\n")
	}

	return b.String()
}

func statusBadge(status model.MatchStatus) string {
	switch status {
	case model.StatusAccepted:
		return acceptedStyle.Render("[accepted]")
	case model.StatusDismissed:
		return dismissedStyle.Render("[dismissed]")
	default:
		return pendingStyle.Render("[pending]")
	}
}

func renderMatches(matches []model.ScoredMatch, cursor int) string {
	if len(matches) == 0 {
		return "  (no matches — run a scan first)"
	}

	var b strings.Builder
	for i, match := range matches {
		titleSt := matchTitleStyle
		subtitleSt := matchSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%.0f  %s", match.Score, match.Title)))
		b.WriteString(" " + statusBadge(match.Status))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", match.Company, match.Location, match.Source)))
		b.WriteByte('\n')

		if i < len(matches)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive review TUI over the user's stored matches.
func Run(ctx context.Context, store model.MatchStore, userID string) error {
	matches, err := store.MatchesByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading matches for review: %w", err)
	}

	m := reviewModel{
		userID:  userID,
		matches: matches,
		store:   store,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

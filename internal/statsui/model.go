// Package statsui provides the Bubble Tea profile and leaderboard browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/stats"
)

const (
	tabProfile = iota
	tabLeaderboard
	tabAchievements
	tabTasks
	tabFriends
)

const (
	chartHeight  = 8
	historyLimit = 50
	curveWindow  = 3
)

// gameTypes cycles the leaderboard mode filter.
var gameTypes = []string{"all", "typing", "aim"}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	unlockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Backend is what the browser reads and the friend actions it performs.
type Backend interface {
	stats.Source
	Leaderboard(ctx context.Context, req backend.LeaderboardRequest) ([]model.LeaderboardEntry, error)
	Friends(ctx context.Context, userID string) ([]model.Friend, error)
	PendingRequests(ctx context.Context, userID string) ([]model.FriendRequest, error)
	SendFriendRequest(ctx context.Context, fromID, toName string) (model.FriendRequest, error)
	RespondFriendRequest(ctx context.Context, userID, requestID string, accept bool) (model.FriendRequest, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	backend Backend
	user    model.User

	report  stats.Report
	entries []model.LeaderboardEntry
	friends []model.Friend
	pending []model.FriendRequest
	errMsg  string
	notice  string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	board     table.Model

	boardIndex int
	typeIndex  int

	width  int
	height int

	addMode  bool
	addInput textinput.Model
}

// NewModel constructs a stats UI model for user.
func NewModel(b Backend, user model.User) *Model {
	m := &Model{
		backend: b,
		user:    user,
		tabs:    []string{"Profile", "Leaderboard", "Achievements", "Daily Tasks", "Friends"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.board = newBoardTable()
	m.addInput = textinput.New()
	m.addInput.Prompt = "Player: "
	m.addInput.Placeholder = "display name"
	m.addInput.CharLimit = 32
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.addMode {
			return m.updateAddFriend(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l", "tab":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "r":
		m.refresh()
		return m, nil
	}
	switch m.activeTab {
	case tabLeaderboard:
		switch msg.String() {
		case "b":
			m.boardIndex = (m.boardIndex + 1) % len(backend.Boards)
			m.loadLeaderboard()
			return m, nil
		case "m":
			m.typeIndex = (m.typeIndex + 1) % len(gameTypes)
			m.loadLeaderboard()
			return m, nil
		}
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd
	case tabFriends:
		switch msg.String() {
		case "a":
			m.addMode = true
			m.addInput.SetValue("")
			return m, m.addInput.Focus()
		case "y":
			m.answerFirstRequest(true)
			return m, nil
		case "n":
			m.answerFirstRequest(false)
			return m, nil
		}
	}
	vp := m.viewports[m.activeTab]
	var cmd tea.Cmd
	vp, cmd = vp.Update(msg)
	m.viewports[m.activeTab] = vp
	return m, cmd
}

func (m *Model) updateAddFriend(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.addMode = false
		m.addInput.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.addInput.Value())
		m.addMode = false
		m.addInput.Blur()
		if name == "" {
			return m, nil
		}
		if _, err := m.backend.SendFriendRequest(context.Background(), m.user.ID, name); err != nil {
			m.errMsg = err.Error()
			m.notice = ""
		} else {
			m.errMsg = ""
			m.notice = fmt.Sprintf("Friend request sent to %s", name)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m *Model) answerFirstRequest(accept bool) {
	if len(m.pending) == 0 {
		return
	}
	req := m.pending[0]
	if _, err := m.backend.RespondFriendRequest(context.Background(), m.user.ID, req.ID, accept); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	if accept {
		m.notice = fmt.Sprintf("You are now friends with %s", req.FromName)
	} else {
		m.notice = fmt.Sprintf("Declined %s", req.FromName)
	}
	m.refresh()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.addMode {
		return m.renderAddModal()
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(lipgloss.Height(activeNavStyle.Render("X")), 1) + 1
	footerHeight = 1
	if m.errMsg != "" || m.notice != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.board.SetWidth(m.width)
	m.board.SetHeight(max(1, bodyHeight-1))
	m.addInput.Width = max(10, modalWidth(m.width)-lipgloss.Width(m.addInput.Prompt)-6)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabLeaderboard {
		m.board.Focus()
	} else {
		m.board.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Player: %s  Coins: %d", m.user.DisplayName, m.report.Currency.Coins)
	if m.activeTab == tabLeaderboard {
		summary = fmt.Sprintf("Board: %s  Mode: %s", m.currentBoard(), gameTypes[m.typeIndex])
	}
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down  Refresh: r  Quit: q"
	switch m.activeTab {
	case tabLeaderboard:
		help = "Nav: left/right  Board: b  Mode: m  Refresh: r  Quit: q"
	case tabFriends:
		help = "Nav: left/right  Add: a  Accept: y  Decline: n  Refresh: r  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.notice != "":
		return m.renderHelp() + "\n" + noticeStyle.Render(m.notice)
	}
	return m.renderHelp()
}

func (m *Model) renderBody() string {
	if m.activeTab == tabLeaderboard {
		if len(m.entries) == 0 {
			return "No scores yet."
		}
		return tableMutedStyle.Render(m.board.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderAddModal() string {
	body := []string{
		cardValueStyle.Render("Add Friend"),
		m.addInput.View(),
		headerStyle.Render("Enter to send / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) currentBoard() backend.Board {
	return backend.Boards[m.boardIndex]
}

// refresh reloads everything; the first failure is shown in the footer.
func (m *Model) refresh() {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, m.backend, m.user, historyLimit)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if err := m.loadFriends(ctx); err != nil {
		m.errMsg = err.Error()
	}
	m.loadLeaderboard()
	m.renderTabContents()
}

func (m *Model) loadFriends(ctx context.Context) error {
	friends, err := m.backend.Friends(ctx, m.user.ID)
	if err != nil {
		return err
	}
	pending, err := m.backend.PendingRequests(ctx, m.user.ID)
	if err != nil {
		return err
	}
	m.friends, m.pending = friends, pending
	return nil
}

func (m *Model) loadLeaderboard() {
	entries, err := m.backend.Leaderboard(context.Background(), backend.LeaderboardRequest{
		Board:    m.currentBoard(),
		GameType: gameTypes[m.typeIndex],
		UserID:   m.user.ID,
	})
	if err != nil {
		m.errMsg = err.Error()
		entries = nil
	}
	m.entries = entries
	m.board.SetRows(boardRows(entries, m.user.ID))
	m.board.GotoTop()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabProfile].SetContent(renderProfile(m.report, width))
	m.viewports[tabAchievements].SetContent(renderAchievements(m.report.Progress.Achievements))
	m.viewports[tabTasks].SetContent(renderTasks(m.report.Daily))
	m.viewports[tabFriends].SetContent(renderFriends(m.friends, m.pending))
}

func renderProfile(r stats.Report, width int) string {
	st := r.Progress.Stats
	cards := []string{
		metricCard("Games", fmt.Sprintf("%d", st.TotalGamesPlayed)),
		metricCard("Coins", fmt.Sprintf("%d", r.Currency.Coins)),
		metricCard("Highest Wave", fmt.Sprintf("%d", st.HighestWave)),
		metricCard("Kills", fmt.Sprintf("%d", st.TotalKills)),
		metricCard("Best Acc", fmt.Sprintf("%d%%", st.BestAccuracy)),
		metricCard("Streak", fmt.Sprintf("%d", r.Daily.Streak)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	parts := []string{summary}
	for _, mode := range []model.Mode{model.ModeTyping, model.ModeAim} {
		best, ok := r.Best[mode]
		if !ok {
			continue
		}
		title := fmt.Sprintf("%s  best %d (%d%% accuracy)", mode, best.Score, best.Accuracy)
		var buf bytes.Buffer
		if err := stats.RenderHistory(&buf, title, r.History[mode], curveWindow, width-8, chartHeight, true); err != nil {
			parts = append(parts, fmt.Sprintf("Failed to render history: %v", err))
			continue
		}
		parts = append(parts, strings.TrimRight(buf.String(), "\n"))
	}
	if len(r.Best) == 0 {
		parts = append(parts, "No games played yet.")
	}
	return strings.Join(parts, "\n\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderAchievements(achievements []model.Achievement) string {
	if len(achievements) == 0 {
		return "No achievements."
	}
	var b strings.Builder
	category := ""
	for _, a := range achievements {
		if a.Category != category {
			if category != "" {
				b.WriteString("\n")
			}
			category = a.Category
			b.WriteString(headerStyle.Render(strings.ToUpper(category)) + "\n")
		}
		line := fmt.Sprintf("%-18s %-42s %d/%d  +%d", a.Title, a.Description, min(a.Progress, a.Target), a.Target, a.CoinReward)
		if a.Unlocked {
			b.WriteString(unlockedStyle.Render("★ "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTasks(daily model.DailyTasks) string {
	var buf bytes.Buffer
	if err := stats.RenderTasks(&buf, daily); err != nil {
		return fmt.Sprintf("Failed to render tasks: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderFriends(friends []model.Friend, pending []model.FriendRequest) string {
	var lines []string
	if len(pending) > 0 {
		lines = append(lines, headerStyle.Render("PENDING REQUESTS"))
		for i, req := range pending {
			marker := "  "
			if i == 0 {
				marker = "> "
			}
			lines = append(lines, marker+req.FromName+headerStyle.Render(" · "+req.CreatedAt.Local().Format("2006-01-02")))
		}
		lines = append(lines, "")
	}
	lines = append(lines, headerStyle.Render(fmt.Sprintf("FRIENDS (%d)", len(friends))))
	if len(friends) == 0 {
		lines = append(lines, "No friends yet. Press a to send a request.")
	}
	for _, f := range friends {
		lines = append(lines, "  "+f.DisplayName+headerStyle.Render(" · since "+f.AddedAt.Local().Format("2006-01-02")))
	}
	return strings.Join(lines, "\n")
}

func newBoardTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Player", Width: 16},
		{Title: "Mode", Width: 7},
		{Title: "Score", Width: 8},
		{Title: "Acc", Width: 5},
		{Title: "Wave", Width: 5},
		{Title: "Kills", Width: 6},
		{Title: "Date", Width: 10},
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

// boardRows marks the viewer's own entries with a star.
func boardRows(entries []model.LeaderboardEntry, userID string) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for i, e := range entries {
		name := e.DisplayName
		if e.UserID == userID {
			name = "★ " + name
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			name,
			e.GameType,
			fmt.Sprintf("%d", e.Score),
			fmt.Sprintf("%d%%", e.Accuracy),
			optionalInt(e.Wave),
			optionalInt(e.Kills),
			e.CreatedAt.Local().Format("2006-01-02"),
		})
	}
	return rows
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 60))
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

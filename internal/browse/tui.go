package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobfinder/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	sourceErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	sourceCachedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Italic(true)
)

type resultsModel struct {
	result        *model.RankedResult
	jobs          []model.JobRecord
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=jobs, 1=sources
	cursor        int
	width         int
	height        int
	ready         bool

	view           viewState
	detailJob      model.JobRecord
	detailViewport viewport.Model

	// openURL is swapped out in tests.
	openURL func(string)
}

func newResultsModel(result *model.RankedResult) resultsModel {
	var jobs []model.JobRecord
	if result != nil {
		jobs = result.Jobs
	}
	return resultsModel{
		result:  result,
		jobs:    jobs,
		openURL: openURL,
	}
}

func (m resultsModel) Init() tea.Cmd {
	return nil
}

func (m resultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m resultsModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		if m.activePane == 0 {
			m.cursor = clamp(m.cursor-1, 0, max(len(m.jobs)-1, 0))
			m.recalcContent()
			m.ensureCursorVisible()
			return m, nil
		}
	case "down", "j":
		if m.activePane == 0 {
			m.cursor = clamp(m.cursor+1, 0, max(len(m.jobs)-1, 0))
			m.recalcContent()
			m.ensureCursorVisible()
			return m, nil
		}
	case "enter":
		if m.activePane == 0 {
			return m.openDetailView()
		}
		return m, nil
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m resultsModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if link := m.detailJob.ApplyLink; link != "" && link != model.DefaultLink {
			m.openURL(link)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *resultsModel) ensureCursorVisible() {
	vp := &m.leftViewport
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m resultsModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.jobs) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailJob = m.jobs[m.cursor]
	m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *resultsModel) recalcLayout() {
	// Jobs pane takes two thirds; 2 border chars per pane + 1 gap.
	usable := max(m.width-5, 30)
	leftWidth := usable * 2 / 3
	rightWidth := usable - leftWidth

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(leftWidth, paneHeight)
		m.rightViewport = viewport.New(rightWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = leftWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = rightWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *resultsModel) recalcContent() {
	m.leftViewport.SetContent(renderJobs(m.jobs, m.cursor, m.activePane == 0))
	var sources []model.SourceOutcome
	if m.result != nil {
		sources = m.result.Sources
	}
	m.rightViewport.SetContent(renderSources(sources, m.rightViewport.Width))
}

func (m resultsModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m resultsModel) viewList() string {
	leftWidth := m.leftViewport.Width
	rightWidth := m.rightViewport.Width

	leftHeader := fmt.Sprintf(" Ranked Jobs (%d)", len(m.jobs))
	rightHeader := " Sources"

	leftHeaderRendered := inactiveHeaderStyle.Render(leftHeader)
	rightHeaderRendered := inactiveHeaderStyle.Render(rightHeader)
	leftBorder := inactiveBorderStyle.Width(leftWidth)
	rightBorder := inactiveBorderStyle.Width(rightWidth)
	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		leftBorder = activeBorderStyle.Width(leftWidth)
	} else {
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		rightBorder = activeBorderStyle.Width(rightWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(leftWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(rightWidth+2).Render(rightHeaderRendered),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	statusText := fmt.Sprintf(" %d jobs    ←/→/Tab switch  ↑/↓ cursor  Enter detail  q quit", len(m.jobs))
	if m.result != nil && m.result.RequestID != "" {
		statusText += "    " + m.result.RequestID
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m resultsModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" o open apply link  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m resultsModel) renderDetail() string {
	j := m.detailJob
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(wordWrap(value, max(m.width-24, 20))))
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Location", j.Location)
	b.WriteByte('\n')
	addField("Experience", j.Experience)
	addField("Job Nature", j.JobNature)
	addField("Salary", j.Salary)
	addField("Similarity", fmt.Sprintf("%.1f", j.Similarity))
	addField("Source", j.Source)
	b.WriteByte('\n')
	addField("Apply Link", j.ApplyLink)

	return b.String()
}

func renderJobs(jobs []model.JobRecord, cursor int, isActive bool) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, j := range jobs {
		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if isActive && i == cursor {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%5.1f  %s", j.Similarity, j.Title)))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("       %s · %s · %s", j.Company, j.Location, j.Source)))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderSources(sources []model.SourceOutcome, width int) string {
	if len(sources) == 0 {
		return "  (no sources)"
	}

	var b strings.Builder
	for _, s := range sources {
		line := fmt.Sprintf("  %s  %d fetched", s.Source, s.Fetched)
		b.WriteString(jobTitleStyle.Render(line))
		if s.Cached {
			b.WriteString(sourceCachedStyle.Render(" (cached)"))
		}
		b.WriteByte('\n')
		if s.Error != "" {
			msg := wordWrap(s.Error, max(width-4, 10))
			for _, l := range strings.Split(msg, "\n") {
				b.WriteString(sourceErrorStyle.Render("    " + l))
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
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

// RunResults launches the two-pane results browser: ranked jobs on the
// left, per-source outcomes on the right.
func RunResults(result *model.RankedResult) error {
	p := tea.NewProgram(newResultsModel(result), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobfinder/internal/model"
)

// ErrCancelled is returned when the user aborts a running search.
var ErrCancelled = errors.New("cancelled")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type searchDoneMsg struct {
	result *model.RankedResult
	err    error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label    string
	ctx      context.Context
	searchFn func(ctx context.Context) (*model.RankedResult, error)
	frame    int
	started  time.Time
	result   *model.RankedResult
	err      error
	done     bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doSearch(), m.tick())
}

func (m loaderModel) doSearch() tea.Cmd {
	ctx, searchFn := m.ctx, m.searchFn
	return func() tea.Msg {
		res, err := searchFn(ctx)
		return searchDoneMsg{result: res, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	elapsed := time.Since(m.started).Round(time.Second)
	return fmt.Sprintf("%s Searching for %s... %s\n", spinner, m.label, elapsed)
}

// RunLoader shows a spinner while searchFn runs. It renders inline (no alt
// screen). Actor runs take minutes, so the elapsed time is shown.
func RunLoader(ctx context.Context, label string, searchFn func(ctx context.Context) (*model.RankedResult, error)) (*model.RankedResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:    label,
		ctx:      ctx,
		searchFn: searchFn,
		started:  time.Now(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}

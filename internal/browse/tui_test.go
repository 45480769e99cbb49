package browse

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobfinder/internal/model"
	"github.com/amishk599/jobfinder/internal/store"
)

func testResult() *model.RankedResult {
	return &model.RankedResult{
		RequestID: "req-1",
		Jobs: []model.JobRecord{
			{Title: "Go Developer", Company: "Acme", Location: "Berlin", Similarity: 91, Source: "linkedin", ApplyLink: "https://acme.example/apply"},
			{Title: "Backend Engineer", Company: "Globex", Location: "Remote", Similarity: 72, Source: "indeed", ApplyLink: model.DefaultLink},
		},
		Sources: []model.SourceOutcome{
			{Source: "linkedin", Fetched: 1},
			{Source: "indeed", Fetched: 1, Cached: true},
			{Source: "glassdoor", Error: "HTTP 503: unavailable"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(m resultsModel) resultsModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(resultsModel)
}

func press(t *testing.T, m resultsModel, k string) (resultsModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	return next.(resultsModel), cmd
}

func TestResults_ListShowsJobsAndSources(t *testing.T) {
	m := sized(newResultsModel(testResult()))

	out := m.View()
	for _, want := range []string{"Ranked Jobs (2)", "Go Developer", "Backend Engineer", "glassdoor", "HTTP 503", "(cached)", "req-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("list view missing %q", want)
		}
	}
}

func TestResults_NotReadyBeforeSize(t *testing.T) {
	m := newResultsModel(testResult())
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestResults_DetailAndOpenLink(t *testing.T) {
	var opened []string
	m := sized(newResultsModel(testResult()))
	m.openURL = func(u string) { opened = append(opened, u) }

	m, _ = press(t, m, "enter")
	if m.view != viewDetail {
		t.Fatalf("view = %v, want detail", m.view)
	}
	detail := m.renderDetail()
	for _, want := range []string{"Go Developer", "Acme", "91.0", "linkedin", "https://acme.example/apply"} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail missing %q", want)
		}
	}

	m, _ = press(t, m, "o")
	if len(opened) != 1 || opened[0] != "https://acme.example/apply" {
		t.Errorf("opened = %v", opened)
	}

	m, _ = press(t, m, "esc")
	if m.view != viewList {
		t.Errorf("esc should return to list")
	}
}

func TestResults_NoLinkIsNotOpened(t *testing.T) {
	var opened []string
	m := sized(newResultsModel(testResult()))
	m.openURL = func(u string) { opened = append(opened, u) }

	m, _ = press(t, m, "down")
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m, _ = press(t, m, "enter")
	_, _ = press(t, m, "o")
	if len(opened) != 0 {
		t.Errorf("opened = %v, want none", opened)
	}
}

func TestResults_CursorClamped(t *testing.T) {
	m := sized(newResultsModel(testResult()))
	for range 5 {
		m, _ = press(t, m, "down")
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestResults_EnterOnSourcesPaneIgnored(t *testing.T) {
	m := sized(newResultsModel(testResult()))
	m, _ = press(t, m, "tab")
	m, _ = press(t, m, "enter")
	if m.view != viewList {
		t.Errorf("enter on sources pane should stay on list")
	}
}

func TestResults_EmptyResult(t *testing.T) {
	m := sized(newResultsModel(&model.RankedResult{Jobs: []model.JobRecord{}}))
	m, _ = press(t, m, "enter")
	if m.view != viewList {
		t.Errorf("enter with no jobs should stay on list")
	}
	if !strings.Contains(m.View(), "(no jobs)") {
		t.Errorf("expected empty placeholder")
	}
}

func TestResults_QuitReturnsQuitCmd(t *testing.T) {
	m := sized(newResultsModel(testResult()))
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestPicker_ChooseAndQuit(t *testing.T) {
	entries := []store.SearchEntry{
		{Position: "Go Developer", Location: "Berlin", Fetched: 10, Returned: 3, CreatedAt: time.Now()},
		{Position: "SRE", Location: "Remote", Fetched: 4, Returned: 1, CreatedAt: time.Now()},
	}
	m := pickerModel{entries: entries, chosen: -1}

	next, _ := m.Update(key("j"))
	next, _ = next.Update(key("enter"))
	if got := next.(pickerModel).chosen; got != 1 {
		t.Errorf("chosen = %d, want 1", got)
	}

	next, _ = m.Update(key("q"))
	if got := next.(pickerModel).chosen; got != -2 {
		t.Errorf("chosen after quit = %d, want -2", got)
	}

	if !strings.Contains(m.View(), "Go Developer in Berlin") {
		t.Errorf("picker view missing entry label")
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wordWrap = %q, want %q", got, want)
	}
	if wordWrap("   ", 10) != "" {
		t.Errorf("blank input should wrap to empty")
	}
}

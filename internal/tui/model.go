package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docseek/internal/retrieval"
)

// SearchPort is the TUI-facing subset of the service.
type SearchPort interface {
	Search(ctx context.Context, query string, opts retrieval.Options) (*retrieval.Response, error)
}

// Model is the Bubble Tea model for the interactive search screen.
type Model struct {
	ctx      context.Context
	service  SearchPort
	opts     retrieval.Options
	input    textinput.Model
	viewport viewport.Model
	resp     *retrieval.Response
	summary  string
	status   string
	cursor   int
	ready    bool
}

func New(ctx context.Context, service SearchPort, opts retrieval.Options, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		service:  service,
		opts:     opts,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Loaded. Type to search.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		// header, summary, status and one spacer
		reserved := 4 + qh
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.search(q)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if n := m.resultCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if n := m.resultCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) search(q string) {
	m.cursor = 0
	resp, err := m.service.Search(m.ctx, q, m.opts)
	if err != nil {
		m.resp = nil
		m.status = "Error: " + err.Error()
		return
	}
	m.resp = resp
	switch {
	case resp.AllStrategiesFailed():
		m.status = fmt.Sprintf("Search failed: %v", resp.Err())
	case resp.Degraded():
		m.status = fmt.Sprintf("%d results for %q (%d of %d strategies failed)",
			len(resp.Results), q, len(resp.Failures), resp.Strategies)
	default:
		m.status = fmt.Sprintf("%d results for %q", len(resp.Results), q)
	}
}

func (m Model) resultCount() int {
	if m.resp == nil {
		return 0
	}
	return len(m.resp.Results)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docseek")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.resp != nil && m.resp.Degraded() {
		status = warnStyle.Render(m.status)
	}
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if m.resultCount() == 0 {
		return "No results yet."
	}
	r := m.resp.Results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s  score=%.1f  %s  page %d",
		m.cursor+1, len(m.resp.Results), r.MatchType, r.Score, r.Chunk.Key(), r.Chunk.PageNumber)
	return title + "\n\n" + renderHighlights(r.Chunk.Content, r.HighlightTags)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderHighlights styles every word of content listed in tags. It reads the
// raw chunk text, so markup-like text inside a chunk is shown verbatim.
func renderHighlights(content string, tags []string) string {
	if len(tags) == 0 {
		return content
	}
	marked := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		marked[t] = struct{}{}
	}
	var b strings.Builder
	for len(content) > 0 {
		ws := strings.IndexFunc(content, func(r rune) bool { return !unicode.IsSpace(r) })
		if ws < 0 {
			b.WriteString(content)
			break
		}
		b.WriteString(content[:ws])
		content = content[ws:]
		end := strings.IndexFunc(content, unicode.IsSpace)
		if end < 0 {
			end = len(content)
		}
		prefix, core, suffix := retrieval.SplitWord(content[:end])
		content = content[end:]
		if _, ok := marked[core]; ok && core != "" {
			b.WriteString(prefix + highlightStyle.Render(core) + suffix)
			continue
		}
		b.WriteString(prefix + core + suffix)
	}
	return b.String()
}

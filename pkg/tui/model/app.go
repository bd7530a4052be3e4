package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/modoterra/jstern/pkg/core"
	"github.com/modoterra/jstern/pkg/pipeline"
	"github.com/modoterra/jstern/pkg/render"
)

// maxLines bounds the scrollback kept in memory.
const maxLines = 5000

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// App is the root Bubble Tea model of the log viewer.
type App struct {
	source string
	layout render.Options

	// State
	lines       []core.LogLine
	records     uint64
	passthrough uint64
	following   bool
	ended       bool
	stats       pipeline.Stats

	// UI
	mode     Mode
	search   textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	statusMsg string
}

// New creates a viewer for the named source. Separator and padding are
// applied around records as they are on standard output.
func New(source string, layout render.Options) App {
	si := textinput.New()
	si.Placeholder = "search..."
	si.CharLimit = 64

	return App{
		source:    source,
		layout:    layout,
		search:    si,
		mode:      ModeNormal,
		following: true,
		statusMsg: "streaming",
	}
}

// LogLineMsg carries one printed line from the pipeline.
type LogLineMsg core.LogLine

// StreamEndedMsg reports that the pipeline reached the end of its input.
type StreamEndedMsg struct {
	Stats pipeline.Stats
}

// Init sets the window title.
func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle("jstern " + a.source)
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		h := max(msg.Height-chromeHeight, 1)
		if !a.ready {
			a.viewport = viewport.New(msg.Width, h)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = h
		}
		a.refresh()
		return a, nil

	case LogLineMsg:
		a.lines = append(a.lines, core.LogLine(msg))
		if len(a.lines) > maxLines {
			a.lines = a.lines[len(a.lines)-maxLines:]
		}
		switch msg.Kind {
		case core.LineRecord:
			a.records++
		case core.LinePassthrough:
			a.passthrough++
		}
		a.refresh()
		return a, nil

	case StreamEndedMsg:
		a.ended = true
		a.stats = msg.Stats
		a.statusMsg = "stream ended"
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search mode
	if a.mode == ModeSearch {
		switch msg.String() {
		case "esc":
			a.mode = ModeNormal
			a.search.SetValue("")
			a.search.Blur()
		case "enter":
			a.mode = ModeNormal
			a.search.Blur()
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			a.refresh()
			return a, cmd
		}
		a.refresh()
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "/":
		a.mode = ModeSearch
		a.search.Focus()
		return a, textinput.Blink

	case " ", "f":
		a.following = !a.following
		if a.following {
			a.viewport.GotoBottom()
		}
		return a, nil

	case "g", "home":
		a.following = false
		a.viewport.GotoTop()
		return a, nil

	case "G", "end":
		a.following = true
		a.viewport.GotoBottom()
		return a, nil

	case "c":
		a.lines = nil
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	if !a.viewport.AtBottom() {
		a.following = false
	}
	return a, cmd
}

// refresh rebuilds the viewport content from the visible lines.
func (a *App) refresh() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(strings.Join(a.visibleLines(), "\n"))
	if a.following {
		a.viewport.GotoBottom()
	}
}

// visibleLines returns the lines matching the search, with the separator
// and padding laid out around each record.
func (a App) visibleLines() []string {
	q := strings.ToLower(a.search.Value())
	out := make([]string, 0, len(a.lines))
	for _, l := range a.lines {
		if q != "" && !strings.Contains(strings.ToLower(ansi.Strip(l.Text)), q) {
			continue
		}
		if l.Kind != core.LineRecord {
			out = append(out, l.Text)
			continue
		}
		if a.layout.Separator {
			out = append(out, ruleStyle.Render(strings.Repeat("─", max(a.width, 1))))
			if a.layout.Padding {
				out = append(out, "")
			}
		}
		out = append(out, l.Text)
		if a.layout.Padding {
			out = append(out, "")
		}
	}
	return out
}

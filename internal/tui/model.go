// Package tui is the terminal client: a live view of the time since the
// last reset, with a key binding to trigger one.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"grimm.is/sincelast/internal/client"
	"grimm.is/sincelast/internal/clock"
	"grimm.is/sincelast/internal/elapsed"
	"grimm.is/sincelast/internal/i18n"
)

// viewState tracks whether the epoch has been loaded yet.
type viewState int

const (
	stateLoading viewState = iota
	stateReady
)

// Messages
type (
	tickMsg        time.Time
	countMsg       int64 // epoch fetched from the server
	fetchErrMsg    struct{ err error }
	resetDoneMsg   int64 // epoch the server accepted
	resetErrMsg    struct{ err error }
	remoteResetMsg int64 // epoch pushed over the websocket
	watchClosedMsg struct{ err error }
)

// Model is the terminal client state.
type Model struct {
	Backend client.APIClient

	clock   clock.Clock
	printer *message.Printer
	spinner spinner.Model

	state     viewState
	reference int64 // persisted reset epoch
	now       int64 // advanced once per second
	errText   string
	flash     string

	resets chan int64
	width  int
}

// NewModel creates the initial model. A nil clock defaults to the real
// one; resets may be nil when no websocket watch is running.
func NewModel(backend client.APIClient, lang language.Tag, clk clock.Clock, resets chan int64) Model {
	if clk == nil {
		clk = &clock.RealClock{}
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorIce)

	return Model{
		Backend: backend,
		clock:   clk,
		printer: i18n.NewPrinter(lang),
		spinner: sp,
		state:   stateLoading,
		resets:  resets,
	}
}

// Init starts the initial fetch, the display tick, and the reset watch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchCount(), m.tick()}
	if m.resets != nil {
		cmds = append(cmds, m.waitForReset())
	}
	return tea.Batch(cmds...)
}

// fetchCount loads the epoch, offering the current time as the value an
// empty store should initialize to.
func (m Model) fetchCount() tea.Cmd {
	fallback := m.clock.NowUnix()
	return func() tea.Msg {
		epoch, err := m.Backend.GetCount(fallback)
		if err != nil {
			return fetchErrMsg{err}
		}
		return countMsg(epoch)
	}
}

// resetCount persists the given epoch. The timestamp is taken at the
// keypress, not inside the command, so the value shown and the value
// stored are the same.
func (m Model) resetCount(epoch int64) tea.Cmd {
	return func() tea.Msg {
		stored, err := m.Backend.ResetCount(epoch)
		if err != nil {
			return resetErrMsg{err}
		}
		return resetDoneMsg(stored)
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForReset() tea.Cmd {
	return func() tea.Msg {
		epoch, ok := <-m.resets
		if !ok {
			return watchClosedMsg{}
		}
		return remoteResetMsg(epoch)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.state != stateReady {
				return m, nil
			}
			m.errText = ""
			m.flash = ""
			return m, m.resetCount(m.clock.NowUnix())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		if m.state == stateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tickMsg:
		m.now = m.clock.NowUnix()
		return m, m.tick()

	case countMsg:
		m.state = stateReady
		m.reference = int64(msg)
		m.now = m.clock.NowUnix()
		m.errText = ""

	case fetchErrMsg:
		m.errText = msg.err.Error()
		// Retry; the store may just not be reachable yet.
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
			return retryMsg{}
		})

	case retryMsg:
		return m, m.fetchCount()

	case resetDoneMsg:
		// Adopt the confirmed epoch immediately so the display snaps to
		// zero, then re-fetch to reconcile with what the store holds.
		m.reference = int64(msg)
		m.now = m.clock.NowUnix()
		m.flash = m.printer.Sprintf("Counter was reset")
		return m, m.fetchCount()

	case resetErrMsg:
		m.errText = m.printer.Sprintf("Reset failed") + ": " + msg.err.Error()

	case remoteResetMsg:
		m.reference = int64(msg)
		m.now = m.clock.NowUnix()
		m.flash = m.printer.Sprintf("Counter was reset")
		return m, tea.Batch(m.fetchCount(), m.waitForReset())

	case watchClosedMsg:
		// Live updates are gone but the local ticker still works.
	}

	return m, nil
}

// View renders the counter.
func (m Model) View() string {
	title := StyleTitle.Render(m.printer.Sprintf("Time since the last reset"))

	var body string
	switch m.state {
	case stateLoading:
		body = m.spinner.View() + " " + StyleSubtitle.Render(m.printer.Sprintf("Loading value"))
	case stateReady:
		var diff uint64
		if m.now > m.reference {
			diff = uint64(m.now - m.reference)
		}
		body = StyleSentence.Render(elapsed.Sentence(m.printer, elapsed.Compute(diff)))
	}

	card := StyleCard.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))

	var footer string
	if m.errText != "" {
		footer = StyleError.Render(m.errText)
	} else if m.flash != "" {
		footer = StyleFlash.Render(m.flash)
	}

	help := StyleHelp.Render("[r] " + m.printer.Sprintf("Reset") + "  [q] Quit")

	return StyleApp.Render(lipgloss.JoinVertical(lipgloss.Left, card, footer, help))
}

type retryMsg struct{}

// Run starts the terminal client against the given server and blocks
// until the user quits. Remote resets are streamed in over the
// websocket for as long as the connection holds.
func Run(ctx context.Context, backend client.APIClient, lang language.Tag) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resets := make(chan int64, 4)
	go func() {
		defer close(resets)
		// Best effort: the ticker keeps counting without live pushes.
		_ = backend.WatchResets(ctx, func(epoch int64) {
			select {
			case resets <- epoch:
			case <-ctx.Done():
			}
		})
	}()

	m := NewModel(backend, lang, nil, resets)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

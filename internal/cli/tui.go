package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/recorder"
)

const (
	connectTimeout = 30 * time.Second
	recentMoves    = 24
)

// modeOrder is the tab cycle.
var modeOrder = []string{"cfop", "f2l", "oll"}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	nextMoveStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("226"))

	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("255"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Messages
type (
	tickMsg      time.Time
	stateMsg     smartcube.SessionState
	eventMsg     smartcube.Event
	movesMsg     []smartcube.TimedMove
	savedMsg     recorder.Saved
	errMsg       struct{ err error }
	connectedMsg struct {
		conn *smartcube.Conn
		name string
	}
	modeChangedMsg struct{ name string }
)

// trainModel is the training TUI. It reads the session on every tick and
// receives session callbacks as messages.
type trainModel struct {
	ctx      context.Context
	session  *smartcube.Session
	recorder *recorder.Recorder
	state    *recorder.StateFile

	// Device
	sim        *simDriver
	conn       *smartcube.Conn
	mac        string
	key        []byte
	deviceName string
	connecting bool

	// Session view
	sessionState smartcube.SessionState
	moves        []string
	events       []string
	lastSolve    *recorder.Saved

	// UI
	width    int
	err      error
	quitting bool
}

func newTrainModel(ctx context.Context, state *recorder.StateFile) *trainModel {
	return &trainModel{
		ctx:   ctx,
		state: state,
	}
}

func (m *trainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.sim != nil {
		if cfg.Training.AutoScramble {
			cmds = append(cmds, m.scrambleCmd())
		}
	} else {
		m.connecting = true
		cmds = append(cmds, m.connectCmd())
	}
	return tea.Batch(cmds...)
}

func (m *trainModel) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// scrambleCmd requests a scramble off the event loop; the session reports
// the state change through a callback.
func (m *trainModel) scrambleCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.RequestScramble(m.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *trainModel) switchModeCmd(name string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		mode, err := newMode(name)
		if err != nil {
			return errMsg{err}
		}
		session.SetMode(mode)
		if err := session.RequestScramble(m.ctx); err != nil {
			return errMsg{err}
		}
		return modeChangedMsg{name: name}
	}
}

func (m *trainModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, connectTimeout)
		defer cancel()

		devices, err := smartcube.Scan(ctx, scanTimeout)
		if err != nil {
			return errMsg{fmt.Errorf("scan failed: %w", err)}
		}
		if len(devices) == 0 {
			return errMsg{fmt.Errorf("%w: is it awake and disconnected from other apps?", smartcube.ErrDeviceNotFound)}
		}

		target := devices[0]
		preferred := cfg.Device.Address
		if preferred == "" && m.state != nil {
			preferred = m.state.State().LastDeviceAddress
		}
		for _, d := range devices {
			if strings.EqualFold(d.Address, preferred) {
				target = d
				break
			}
		}

		conn, err := smartcube.Connect(ctx, target, m.mac, m.key, m.session)
		if err != nil {
			return errMsg{fmt.Errorf("connection failed: %w", err)}
		}
		conn.OnError(func(err error) {
			logger.Debug("notification error", zap.Error(err))
		})
		m.recorder.SetDeviceName(target.Name)
		if m.state != nil {
			if err := m.state.SetLastDevice(target.Address, target.Name); err != nil {
				logger.Warn("failed to update state file", zap.Error(err))
			}
		}
		return connectedMsg{conn: conn, name: target.Name}
	}
}

func (m *trainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, m.tickCmd()

	case connectedMsg:
		m.connecting = false
		m.conn = msg.conn
		m.deviceName = msg.name
		m.err = nil
		if cfg.Training.AutoScramble {
			return m, m.scrambleCmd()
		}

	case stateMsg:
		m.sessionState = smartcube.SessionState(msg)
		if m.sessionState == smartcube.StateScrambling {
			m.moves = nil
			m.events = nil
		}

	case eventMsg:
		m.events = append(m.events, describeEvent(smartcube.Event(msg)))

	case movesMsg:
		for _, tm := range msg {
			m.moves = append(m.moves, tm.Move.Notation())
		}
		if len(m.moves) > recentMoves {
			m.moves = m.moves[len(m.moves)-recentMoves:]
		}

	case savedMsg:
		saved := recorder.Saved(msg)
		m.lastSolve = &saved
		if saved.Err != nil {
			m.err = fmt.Errorf("solve not saved: %w", saved.Err)
		}

	case modeChangedMsg:
		m.err = nil

	case errMsg:
		m.connecting = false
		m.err = msg.err
	}

	return m, nil
}

func (m *trainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case " ":
		m.err = nil
		return m, m.scrambleCmd()

	case "tab":
		return m, m.switchModeCmd(nextMode(m.session.Mode().Name()))
	}

	if m.sim == nil {
		return m, nil
	}
	switch key {
	case "s":
		if rest := m.session.RemainingScramble(); len(rest) > 0 {
			m.sim.submit(simOp{moves: rest})
		}
	case "z":
		m.sim.submit(simOp{undo: true})
	default:
		if move, ok := keyMove(key); ok {
			m.sim.submit(simOp{moves: []smartcube.Move{move}})
		}
	}
	return m, nil
}

// keyMove maps u r f d l b to clockwise turns and their capitals to
// counter-clockwise turns.
func keyMove(key string) (smartcube.Move, bool) {
	upper := strings.ToUpper(key)
	face := smartcube.Face(upper)
	if !face.Valid() {
		return smartcube.Move{}, false
	}
	turn := smartcube.CW
	if key == upper {
		turn = smartcube.CCW
	}
	return smartcube.Move{Face: face, Turn: turn}, true
}

func nextMode(current string) string {
	for i, name := range modeOrder {
		if name == current {
			return modeOrder[(i+1)%len(modeOrder)]
		}
	}
	return modeOrder[0]
}

func describeEvent(e smartcube.Event) string {
	switch e.Kind {
	case smartcube.EventCrossSolved:
		return fmt.Sprintf("cross on %s", e.Face)
	case smartcube.EventF2LProgress:
		return fmt.Sprintf("pair %d", e.Count)
	case smartcube.EventF2LComplete:
		return "F2L"
	case smartcube.EventOLL:
		return "OLL"
	case smartcube.EventSolved:
		return "solved"
	default:
		return e.Kind.String()
	}
}

func (m *trainModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	mode := m.session.Mode().Name()
	b.WriteString(titleStyle.Render("smartcube · " + strings.ToUpper(mode)))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n\n")

	state := m.session.State()
	switch state {
	case smartcube.StateIdle:
		b.WriteString("Press space for a scramble.\n")

	case smartcube.StateScrambling:
		b.WriteString(phaseStyle.Render("Scramble"))
		b.WriteString("\n")
		b.WriteString(renderScramble(m.session.RemainingScramble()))
		b.WriteString("\n")

	case smartcube.StateInspecting:
		b.WriteString(phaseStyle.Render("Inspection"))
		b.WriteString("\n")
		b.WriteString(timerStyle.Render(fmt.Sprintf("%.0f", m.session.InspectionRemaining().Seconds())))
		b.WriteString("\n")

	case smartcube.StateWaiting:
		b.WriteString(phaseStyle.Render("Ready"))
		b.WriteString("  first turn starts the timer\n")

	case smartcube.StateSolving:
		b.WriteString(phaseStyle.Render(m.session.Phase().DisplayName()))
		b.WriteString("\n")
		b.WriteString(timerStyle.Render(formatDuration(m.session.Elapsed())))
		b.WriteString("\n")
		b.WriteString(renderSplits(m.session.Splits(), nil))
		if len(m.events) > 0 {
			b.WriteString(statusStyle.Render(strings.Join(m.events, " → ")))
			b.WriteString("\n")
		}

	case smartcube.StateLive:
		b.WriteString(m.solveSummary())
	}

	if len(m.moves) > 0 {
		b.WriteString("\n")
		b.WriteString(moveStyle.Render(strings.Join(m.moves, " ")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m *trainModel) statusLine() string {
	device := m.deviceName
	switch {
	case m.connecting:
		device = "connecting..."
	case device == "":
		device = "not connected"
	}
	battery := "?"
	if level := m.session.Battery(); level >= 0 {
		battery = fmt.Sprintf("%d%%", level)
	}
	return fmt.Sprintf("%s | battery %s | %s", device, battery, m.session.State())
}

func (m *trainModel) solveSummary() string {
	var b strings.Builder
	if m.lastSolve == nil {
		b.WriteString(phaseStyle.Render("Solved"))
		b.WriteString("\n")
		return b.String()
	}

	rec := m.lastSolve.Record
	b.WriteString(phaseStyle.Render("Solved"))
	b.WriteString("\n")
	b.WriteString(timerStyle.Render(formatDuration(rec.Duration)))
	b.WriteString(fmt.Sprintf(" %d moves", len(rec.Moves)))
	b.WriteString("\n")

	splits := make([]time.Duration, len(rec.Checkpoints))
	labels := make([]string, len(rec.Checkpoints))
	for i, cp := range rec.Checkpoints {
		splits[i] = cp.Elapsed
		labels[i] = cp.Kind.String()
	}
	b.WriteString(renderSplits(splits, labels))
	if m.lastSolve.ID != "" {
		b.WriteString(statusStyle.Render("saved " + m.lastSolve.ID))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *trainModel) help() string {
	help := "space: scramble • tab: mode • q: quit"
	if m.sim != nil {
		help += "\nurfdlb: turn • URFDLB: prime • s: finish scramble • z: undo to solved"
	}
	return help
}

// renderScramble shows the remaining turns with the next one highlighted.
func renderScramble(rest []smartcube.Move) string {
	if len(rest) == 0 {
		return ""
	}
	parts := make([]string, len(rest))
	for i, mv := range rest {
		if i == 0 {
			parts[i] = nextMoveStyle.Render(mv.Notation())
			continue
		}
		parts[i] = mv.Notation()
	}
	return strings.Join(parts, " ")
}

func renderSplits(splits []time.Duration, labels []string) string {
	var b strings.Builder
	var prev time.Duration
	for i, s := range splits {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		fmt.Fprintf(&b, "  %-14s %8s  +%s\n", label, formatDuration(s), formatDuration(s-prev))
		prev = s
	}
	return b.String()
}

package cmd

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"

	g "github.com/Johan-su/terminal-minesweeper/pkg"
)

const (
	HIDE  = '.'
	FLAG  = 'F'
	MINE  = '*'
	BOOM  = 'X'
	WRONG = 'x'
	EMPTY = ' '
)

var (
	color      = termenv.EnvColorProfile().Color
	oneMines   = termenv.Style{}.Foreground(color("4")).Styled
	twoMines   = termenv.Style{}.Foreground(color("2")).Styled
	threeMines = termenv.Style{}.Foreground(color("1")).Styled
	fourMines  = termenv.Style{}.Foreground(color("5")).Styled
	fiveMines  = termenv.Style{}.Foreground(color("3")).Styled
	sixMines   = termenv.Style{}.Foreground(color("6")).Styled
	sevenMines = termenv.Style{}.Foreground(color("7")).Styled
	eightMines = termenv.Style{}.Foreground(color("8")).Styled

	mainStyle       = termenv.Style{}.Foreground(color("11")).Styled
	modelFieldStyle = termenv.Style{}.Foreground(color("39")).Styled
	modelValStyle   = termenv.Style{}.Foreground(color("87")).Styled

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
	lostStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	wonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	fieldStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func styled(r rune) string {
	s := string(r)
	switch r {
	case '1':
		return oneMines(s)
	case '2':
		return twoMines(s)
	case '3':
		return threeMines(s)
	case '4':
		return fourMines(s)
	case '5':
		return fiveMines(s)
	case '6':
		return sixMines(s)
	case '7':
		return sevenMines(s)
	case '8':
		return eightMines(s)
	}
	return s
}

// Session is anything that runs commands and hands back frames: a local
// game or a connection to a remote one.
type Session interface {
	Apply(c g.Command) (g.Result, error)
	Snapshot() g.Snapshot
}

type keyMap struct {
	Up, Left, Down, Right key.Binding
	Flag, Sweep, Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("w", "up"), key.WithHelp("w/↑", "up")),
		Left:  key.NewBinding(key.WithKeys("a", "left"), key.WithHelp("a/←", "left")),
		Down:  key.NewBinding(key.WithKeys("s", "down"), key.WithHelp("s/↓", "down")),
		Right: key.NewBinding(key.WithKeys("d", "right"), key.WithHelp("d/→", "right")),
		Flag:  key.NewBinding(key.WithKeys("f", "enter"), key.WithHelp("f", "flag")),
		Sweep: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "sweep/play")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help(phase g.Phase) string {
	bs := []key.Binding{k.Sweep, k.Quit}
	if phase == g.Active {
		bs = []key.Binding{k.Up, k.Left, k.Down, k.Right, k.Flag, k.Sweep, k.Quit}
	}
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// commandFor maps a key to a command. The play key starts a round outside of
// active play and sweeps during it.
func (k keyMap) commandFor(msg tea.KeyMsg, phase g.Phase) (g.Command, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return g.MoveUp, true
	case key.Matches(msg, k.Left):
		return g.MoveLeft, true
	case key.Matches(msg, k.Down):
		return g.MoveDown, true
	case key.Matches(msg, k.Right):
		return g.MoveRight, true
	case key.Matches(msg, k.Flag):
		return g.Flag, true
	case key.Matches(msg, k.Sweep):
		if phase == g.Active {
			return g.Sweep, true
		}
		return g.StartRound, true
	case key.Matches(msg, k.Quit):
		return g.Quit, true
	}
	return 0, false
}

type PlayModel struct {
	s      Session
	snap   g.Snapshot
	keys   keyMap
	status string
	err    error

	logs g.Logger
	log  logrus.FieldLogger
	dbg  bool
}

func NewPlayModel(s Session, logs g.Logger, log logrus.FieldLogger, dbg bool) PlayModel {
	return PlayModel{
		s:    s,
		snap: s.Snapshot(),
		keys: defaultKeyMap(),
		logs: logs,
		log:  log,
		dbg:  dbg,
	}
}

// Err is the transport error that ended the program, if any.
func (m PlayModel) Err() error {
	return m.err
}

func (m PlayModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	c, ok := m.keys.commandFor(km, m.snap.Phase)
	if !ok {
		m.status = "invalid input"
		return m, nil
	}

	res, err := m.s.Apply(c)
	m.snap = m.s.Snapshot()
	if err != nil {
		if !errors.Is(err, g.ErrInvalidCommand) {
			m.log.WithError(err).Error("session failed")
			m.err = err
			return m, tea.Quit
		}
		m.log.WithField("command", c.String()).Debug("rejected")
		m.status = "invalid input"
		return m, nil
	}

	m.status = ""
	switch res.Effect {
	case g.EffectQuit:
		return m, tea.Quit
	case g.EffectHitMine:
		m.status = "YOU LOST! :("
	case g.EffectWon:
		m.status = "YOU WON! :)"
	}
	return m, nil
}

func (m PlayModel) View() string {
	frames := []string{
		titleStyle.Render("*** Minesweeper ***"),
		fieldStyle.Render(FieldFrame(m.snap)),
		m.statusFrame(),
		helpStyle.Render(m.keys.help(m.snap.Phase)),
	}
	if m.dbg {
		frames = append(frames, DebugWidget(m.snap), LogsWidget(m.logs, 10))
	}
	return strings.Join(frames, "\n") + "\n"
}

func (m PlayModel) statusFrame() string {
	line := statusStyle.Render(fmt.Sprintf("%s  mines left: %d", m.snap.Phase, m.snap.MinesLeft))
	switch m.snap.Phase {
	case g.Idle:
		line += "  press p to play"
	case g.Lost:
		line += "  " + lostStyle.Render(m.status)
		return line
	case g.Won:
		line += "  " + wonStyle.Render(m.status)
		return line
	}
	if m.status != "" {
		line += "  " + m.status
	}
	return line
}

// Glyph is the character drawn for (x, y). Once the round is lost wrong flags
// and missed mines get their own markers.
func Glyph(s g.Snapshot, x, y int) rune {
	o := s.At(x, y)
	if s.Phase == g.Lost {
		mine := s.MineAt(x, y)
		switch {
		case o.Visual == g.Detonated:
			return BOOM
		case o.Visual == g.Flagged && !mine:
			return WRONG
		case o.Visual != g.Flagged && mine:
			return MINE
		}
	}
	switch o.Visual {
	case g.Hidden:
		return HIDE
	case g.Flagged:
		return FLAG
	case g.Detonated:
		return BOOM
	}
	if o.Count == 0 {
		return EMPTY
	}
	return rune('0' + o.Count)
}

func FieldFrame(s g.Snapshot) string {
	lines := make([]string, 0, s.Height)
	for y := 0; y < s.Height; y++ {
		var line string
		for x := 0; x < s.Width; x++ {
			lo, hi := " ", " "
			if s.Cursor[0] == x && s.Cursor[1] == y {
				lo, hi = "[", "]"
			}
			line += lo
			line += styled(Glyph(s, x, y))
			line += hi
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func DebugWidget(s g.Snapshot) string {
	return strings.Join([]string{
		mainStyle("= = = = = DEBUG = = = = ="),
		getModelFrame(s),
		mainStyle("= = = = = ----- = = = = ="),
	}, "\n")
}

func getModelFrame(v any) string {
	e := reflect.ValueOf(v)
	n := e.NumField()
	res := make([]string, 0, n)

	for i := 0; i < n; i++ {
		varType := e.Type().Field(i).Type
		if varType.Kind() == reflect.Slice {
			continue
		}
		varName := e.Type().Field(i).Name
		varValue := e.Field(i).Interface()

		res = append(res, fmt.Sprintf(
			"%-40s %-20s %-30s",
			mainStyle("| ")+modelFieldStyle(varName),
			"["+varType.String()+"]",
			modelValStyle(fmt.Sprintf("%v", varValue)),
		))
	}

	return strings.Join(res, "\n")
}

type LoggedModel interface {
	GetLogs() []string
}

var levelColors = map[string]string{
	"level=debug":   "245",
	"level=info":    "39",
	"level=warning": "11",
	"level=error":   "1",
	"level=fatal":   "1",
}

func LogsWidget(m LoggedModel, tail int) string {
	// tail should be less than 23 (visible ASCII colors 232-255)
	if tail == 0 {
		tail = 10
	}
	logs := m.GetLogs()

	title := termenv.Style{}.Bold().Styled("LOGS:")
	var logLines []string

	limit := len(logs)
	if limit > tail {
		limit = tail
	}

	// Use gradient of colors from light to dark (255-232) for older lines
	clrCode := 255
	clrStep := 23 / tail
	if clrStep < 1 {
		clrStep = 1
	}

	for i := len(logs) - 1; i >= len(logs)-limit; i-- {
		line := strings.TrimRight(logs[i], "\n")

		clr := strconv.Itoa(clrCode)
		for lvl, c := range levelColors {
			if strings.Contains(line, lvl) {
				clr = c
				break
			}
		}
		logLines = append(logLines, termenv.Style{}.Foreground(color(clr)).Styled(line))

		clrCode -= clrStep
		if clrCode < 232 {
			clrCode = 232
		}
	}

	g.ReverseStrings(logLines)

	return strings.Join([]string{
		title,
		strings.Join(logLines, "\n"),
	}, "\n")
}

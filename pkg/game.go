package game

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWidth  = 10
	DefaultHeight = 10
	DefaultMines  = 10
)

var (
	ErrTooManyMines   = errors.New("mine count must be below cell count")
	ErrBadDimensions  = errors.New("grid must be at least 1x1")
	ErrInvalidCommand = errors.New("command not accepted")
)

// Point is an (x, y) cell position.
type Point [2]int

func (p *Point) String() string {
	return fmt.Sprintf("[%d:%d]", p[0], p[1])
}

type Phase int

const (
	Idle Phase = iota
	Active
	Lost
	Won
)

func (p Phase) String() string {
	titles := []string{
		"Idle",
		"Active",
		"Lost",
		"Won",
	}
	if p < 0 || int(p) >= len(titles) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return titles[p]
}

// Game is one session: a board, the cursor, the remaining-mine counter and
// the phase machine. It is not safe for concurrent use; every session owns
// its own Game.
type Game struct {
	board  *Board
	mines  int
	phase  Phase
	placed bool
	cursor Point
	left   int

	place func(b *Board, exclude Point)
	log   logrus.FieldLogger
}

type Option func(*Game)

// WithLogger routes round lifecycle events to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Game) {
		g.log = l
	}
}

// New builds an idle session on a w×h grid with the given mine count.
func New(w, h, mines int, opts ...Option) (*Game, error) {
	b, err := NewBoard(w, h, mines)
	if err != nil {
		return nil, fmt.Errorf("can't create game: %w", err)
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	g := &Game{
		board: b,
		mines: mines,
		phase: Idle,
		left:  mines,
		place: (*Board).PlaceMines,
		log:   quiet,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewDefault builds a session with the shipped grid and mine count.
func NewDefault(opts ...Option) (*Game, error) {
	return New(DefaultWidth, DefaultHeight, DefaultMines, opts...)
}

func (g *Game) Width() int  { return g.board.Width() }
func (g *Game) Height() int { return g.board.Height() }

// Mines is the configured mine count of a round.
func (g *Game) Mines() int { return g.mines }

func (g *Game) Phase() Phase      { return g.phase }
func (g *Game) Cursor() Point     { return g.cursor }
func (g *Game) MinesLeft() int    { return g.left }
func (g *Game) MinesPlaced() bool { return g.placed }

// Overlay reports what the player sees at (x, y).
func (g *Game) Overlay(x, y int) (Overlay, bool) {
	if !g.board.InBounds(x, y) {
		return Overlay{}, false
	}
	return g.board.Overlay(g.board.Index(x, y)), true
}

// Ground exposes the truth at (x, y), but only once the round is lost.
func (g *Game) Ground(x, y int) (Ground, bool) {
	if g.phase != Lost || !g.board.InBounds(x, y) {
		return Empty, false
	}
	return g.board.Ground(g.board.Index(x, y)), true
}

func (g *Game) String() string {
	return fmt.Sprintf("phase=%s cursor=%s left=%d", g.phase, g.cursor.String(), g.left)
}

// Accepts reports whether c is valid in the current phase.
func (g *Game) Accepts(c Command) bool {
	switch g.phase {
	case Idle, Lost, Won:
		return c == StartRound || c == Quit
	case Active:
		switch c {
		case MoveUp, MoveLeft, MoveDown, MoveRight, Flag, Sweep, Quit:
			return true
		}
	}
	return false
}

// Apply runs one command to completion. A command the current phase does not
// accept changes nothing and yields an error wrapping ErrInvalidCommand.
func (g *Game) Apply(c Command) (Result, error) {
	if !g.Accepts(c) {
		return Result{Effect: EffectInvalid}, fmt.Errorf("%w: %s while %s", ErrInvalidCommand, c, g.phase)
	}

	switch c {
	case MoveUp:
		g.move(0, -1)
	case MoveLeft:
		g.move(-1, 0)
	case MoveDown:
		g.move(0, 1)
	case MoveRight:
		g.move(1, 0)
	case Flag:
		return g.flag(), nil
	case Sweep:
		return g.sweep(), nil
	case Quit:
		return Result{Accepted: true, Effect: EffectQuit}, nil
	case StartRound:
		g.startRound()
	}
	return Result{Accepted: true, Effect: EffectNone}, nil
}

func (g *Game) move(dx, dy int) {
	w, h := g.board.Width(), g.board.Height()
	g.cursor[0] = ((g.cursor[0]+dx)%w + w) % w
	g.cursor[1] = ((g.cursor[1]+dy)%h + h) % h
}

// startRound re-arms the board. From Lost or Won this also acknowledges the
// finished round, so there is no separate stop in Idle before play resumes.
func (g *Game) startRound() {
	g.board.Reset()
	g.left = g.mines
	g.placed = false
	g.phase = Active
	g.log.WithFields(logrus.Fields{
		"cursor": g.cursor.String(),
		"mines":  g.mines,
	}).Debug("round started")
}

func (g *Game) flag() Result {
	i := g.board.Index(g.cursor[0], g.cursor[1])
	v, changed := g.board.toggleFlag(i)
	if !changed || g.board.Ground(i) != Mine {
		return Result{Accepted: true, Effect: EffectNone}
	}

	if v == Hidden {
		g.left++
		return Result{Accepted: true, Effect: EffectNone}
	}
	g.left--
	if g.left == 0 {
		g.phase = Won
		g.log.WithField("cursor", g.cursor.String()).Debug("round won")
		return Result{Accepted: true, Effect: EffectWon}
	}
	return Result{Accepted: true, Effect: EffectNone}
}

func (g *Game) sweep() Result {
	if !g.placed {
		g.place(g.board, g.cursor)
		g.placed = true
		// flags set before placement may now sit on mines
		g.left = g.mines - g.board.flaggedMines()
		g.log.WithFields(logrus.Fields{
			"exclude": g.cursor.String(),
			"mines":   g.board.Mines(),
			"left":    g.left,
		}).Debug("mines placed")
	}

	outcome, opened := g.board.Reveal(g.cursor[0], g.cursor[1])
	g.log.WithFields(logrus.Fields{
		"cursor":  g.cursor.String(),
		"outcome": outcome.String(),
		"opened":  opened,
	}).Debug("sweep")

	if outcome == HitMine {
		g.phase = Lost
		g.log.WithField("cursor", g.cursor.String()).Debug("round lost")
		return Result{Accepted: true, Effect: EffectHitMine}
	}
	if g.left == 0 {
		g.phase = Won
		g.log.WithField("cursor", g.cursor.String()).Debug("round won")
		return Result{Accepted: true, Effect: EffectWon}
	}
	return Result{Accepted: true, Effect: EffectNone}
}

// Snapshot is a read-only copy of everything a shell needs to draw a frame.
// Ground is only filled in once the round is lost.
type Snapshot struct {
	Width, Height int
	Cursor        Point
	Phase         Phase
	MinesLeft     int
	MinesPlaced   bool
	Cells         []Overlay
	Ground        []Ground
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Width:       g.board.Width(),
		Height:      g.board.Height(),
		Cursor:      g.cursor,
		Phase:       g.phase,
		MinesLeft:   g.left,
		MinesPlaced: g.placed,
		Cells:       make([]Overlay, g.board.Len()),
	}
	copy(s.Cells, g.board.over)
	if g.phase == Lost {
		s.Ground = make([]Ground, g.board.Len())
		copy(s.Ground, g.board.ground)
	}
	return s
}

// At returns the overlay at (x, y) of the snapshot.
func (s Snapshot) At(x, y int) Overlay {
	return s.Cells[x+y*s.Width]
}

// MineAt reports whether (x, y) holds a mine. It is always false before the
// round is lost.
func (s Snapshot) MineAt(x, y int) bool {
	if s.Ground == nil {
		return false
	}
	return s.Ground[x+y*s.Width] == Mine
}

package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Ground is the hidden truth of a cell.
type Ground uint8

const (
	Empty Ground = iota
	Mine
)

func (g Ground) String() string {
	if g == Mine {
		return "mine"
	}
	return "empty"
}

// Visual is what the player can see of a cell.
type Visual uint8

const (
	Hidden Visual = iota
	Flagged
	Revealed
	Detonated
)

// Overlay is the player-visible state of one cell. Count is only meaningful
// when Visual is Revealed.
type Overlay struct {
	Visual Visual
	Count  uint8
}

func (o Overlay) IsRevealed() bool {
	return o.Visual == Revealed || o.Visual == Detonated
}

func (o Overlay) String() string {
	switch o.Visual {
	case Hidden:
		return "hidden"
	case Flagged:
		return "flagged"
	case Detonated:
		return "detonated"
	default:
		return fmt.Sprintf("revealed(%d)", o.Count)
	}
}

// RevealOutcome reports what a reveal did.
type RevealOutcome int

const (
	NoChange RevealOutcome = iota
	Opened
	HitMine
)

func (r RevealOutcome) String() string {
	titles := []string{
		"NoChange",
		"Opened",
		"HitMine",
	}
	return titles[r]
}

var dirs = [8]Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Board owns the ground truth and the overlay of a W×H grid. Cells are
// addressed by x + y*W everywhere.
type Board struct {
	w, h   int
	quota  int
	ground []Ground
	over   []Overlay
	placed int

	rnd *rand.Rand
}

// NewBoard returns an all hidden, all empty board. It fails when the grid is
// degenerate or cannot hold mines plus at least one safe cell.
func NewBoard(w, h, mines int) (*Board, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, w, h)
	}
	if mines < 0 || mines >= w*h {
		return nil, fmt.Errorf("%w: %d mines on %d cells", ErrTooManyMines, mines, w*h)
	}
	return &Board{
		w:      w,
		h:      h,
		quota:  mines,
		ground: make([]Ground, w*h),
		over:   make([]Overlay, w*h),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (b *Board) Width() int  { return b.w }
func (b *Board) Height() int { return b.h }
func (b *Board) Len() int    { return len(b.ground) }

// Quota is the number of mines the board is configured for.
func (b *Board) Quota() int { return b.quota }

// Mines is the number of mines placed so far.
func (b *Board) Mines() int { return b.placed }

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.w && y >= 0 && y < b.h
}

func (b *Board) Index(x, y int) int { return x + y*b.w }

func (b *Board) Point(i int) Point { return Point{i % b.w, i / b.w} }

func (b *Board) Overlay(i int) Overlay { return b.over[i] }

func (b *Board) Ground(i int) Ground { return b.ground[i] }

// PlaceMines fills the board with its quota of mines, never at exclude.
// Each pass walks all cells and accepts a free cell with probability
// 1/(N/M+1); passes repeat until the quota is met.
func (b *Board) PlaceMines(exclude Point) {
	if b.quota == 0 {
		return
	}
	skip := -1
	if b.InBounds(exclude[0], exclude[1]) {
		skip = b.Index(exclude[0], exclude[1])
	}
	odds := len(b.ground)/b.quota + 1

	for b.placed < b.quota {
		for i := range b.ground {
			if b.placed == b.quota {
				break
			}
			if i == skip || b.ground[i] == Mine {
				continue
			}
			if b.rnd.Intn(odds) == 0 {
				b.ground[i] = Mine
				b.placed++
			}
		}
	}
}

// NeighborCount counts mines among the up to 8 cells around (x, y).
func (b *Board) NeighborCount(x, y int) uint8 {
	var n uint8
	for _, d := range dirs {
		nx, ny := x+d[0], y+d[1]
		if b.InBounds(nx, ny) && b.ground[b.Index(nx, ny)] == Mine {
			n++
		}
	}
	return n
}

// Reveal opens (x, y). Zero-count cells open their neighbours in turn, so one
// call may open a whole area; the int result is how many cells changed.
// Flagged cells are opened like hidden ones.
func (b *Board) Reveal(x, y int) (RevealOutcome, int) {
	if !b.InBounds(x, y) {
		return NoChange, 0
	}
	start := b.Index(x, y)
	if b.over[start].IsRevealed() {
		return NoChange, 0
	}
	if b.ground[start] == Mine {
		b.over[start] = Overlay{Visual: Detonated}
		return HitMine, 1
	}

	opened := 0
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.over[i].IsRevealed() {
			continue
		}
		p := b.Point(i)
		n := b.NeighborCount(p[0], p[1])
		b.over[i] = Overlay{Visual: Revealed, Count: n}
		opened++
		if n != 0 {
			continue
		}
		// a zero cell has no mined neighbours, so everything pushed is safe
		for _, d := range dirs {
			nx, ny := p[0]+d[0], p[1]+d[1]
			if b.InBounds(nx, ny) && !b.over[b.Index(nx, ny)].IsRevealed() {
				stack = append(stack, b.Index(nx, ny))
			}
		}
	}
	return Opened, opened
}

// toggleFlag flips Hidden and Flagged at i and reports the new visual.
// Revealed cells are left alone.
func (b *Board) toggleFlag(i int) (Visual, bool) {
	switch b.over[i].Visual {
	case Hidden:
		b.over[i] = Overlay{Visual: Flagged}
	case Flagged:
		b.over[i] = Overlay{Visual: Hidden}
	default:
		return b.over[i].Visual, false
	}
	return b.over[i].Visual, true
}

// flaggedMines counts mine cells that carry a flag.
func (b *Board) flaggedMines() int {
	n := 0
	for i, gr := range b.ground {
		if gr == Mine && b.over[i].Visual == Flagged {
			n++
		}
	}
	return n
}

// Reset returns every cell to hidden and empty.
func (b *Board) Reset() {
	for i := range b.ground {
		b.ground[i] = Empty
		b.over[i] = Overlay{}
	}
	b.placed = 0
}

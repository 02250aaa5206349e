package game

import (
	"errors"
	"testing"
)

// setMines marks the given cells as mines.
func (b *Board) setMines(idx ...int) {
	for _, i := range idx {
		if b.ground[i] != Mine {
			b.ground[i] = Mine
			b.placed++
		}
	}
}

func mustBoard(t *testing.T, w, h, mines int) *Board {
	t.Helper()
	b, err := NewBoard(w, h, mines)
	if err != nil {
		t.Fatalf("NewBoard(%d, %d, %d) failed: %v", w, h, mines, err)
	}
	return b
}

func TestNewBoardRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		w, h, m int
		want    error
	}{
		{"full", 5, 5, 25, ErrTooManyMines},
		{"overfull", 5, 5, 30, ErrTooManyMines},
		{"single cell", 1, 1, 1, ErrTooManyMines},
		{"negative", 3, 3, -1, ErrTooManyMines},
		{"no width", 0, 5, 1, ErrBadDimensions},
		{"no height", 5, 0, 1, ErrBadDimensions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBoard(tc.w, tc.h, tc.m)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewBoardIsHiddenAndEmpty(t *testing.T) {
	b := mustBoard(t, 4, 3, 2)
	if b.Len() != 12 {
		t.Fatalf("expected 12 cells, got %d", b.Len())
	}
	for i := 0; i < b.Len(); i++ {
		if b.Ground(i) != Empty || b.Overlay(i).Visual != Hidden {
			t.Fatalf("cell %d not fresh: %v %v", i, b.Ground(i), b.Overlay(i))
		}
	}
}

func TestPlaceMinesExactCountNeverAtExclude(t *testing.T) {
	cases := []struct {
		name    string
		w, h, m int
		exclude Point
	}{
		{"two cells", 1, 2, 1, Point{0, 1}},
		{"all but one", 5, 5, 24, Point{2, 2}},
		{"default", 10, 10, 10, Point{0, 0}},
		{"non square dense", 3, 7, 20, Point{2, 6}},
		{"nearly full", 10, 10, 99, Point{9, 0}},
		{"none", 4, 4, 0, Point{1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for run := 0; run < 20; run++ {
				b := mustBoard(t, tc.w, tc.h, tc.m)
				b.PlaceMines(tc.exclude)

				count := 0
				for i := 0; i < b.Len(); i++ {
					if b.Ground(i) == Mine {
						count++
					}
				}
				if count != tc.m || b.Mines() != tc.m {
					t.Fatalf("expected %d mines, counted %d (Mines()=%d)", tc.m, count, b.Mines())
				}
				if b.Ground(b.Index(tc.exclude[0], tc.exclude[1])) == Mine {
					t.Fatalf("mine placed at excluded cell %v", tc.exclude)
				}
			}
		})
	}
}

func TestIndexUsesWidthAsStride(t *testing.T) {
	b := mustBoard(t, 4, 2, 1)
	if got := b.Index(3, 1); got != 7 {
		t.Fatalf("Index(3, 1) = %d, want 7", got)
	}
	if p := b.Point(7); p != (Point{3, 1}) {
		t.Fatalf("Point(7) = %v, want [3 1]", p)
	}
	b.setMines(7)
	if n := b.NeighborCount(2, 0); n != 1 {
		t.Fatalf("NeighborCount(2, 0) = %d, want 1", n)
	}
	if n := b.NeighborCount(0, 0); n != 0 {
		t.Fatalf("NeighborCount(0, 0) = %d, want 0", n)
	}
}

func TestNeighborCount(t *testing.T) {
	// * . *
	// . . .
	// * . *
	b := mustBoard(t, 3, 3, 4)
	b.setMines(0, 2, 6, 8)

	cases := []struct {
		x, y int
		want uint8
	}{
		{1, 1, 4},
		{1, 0, 2},
		{0, 1, 2},
		{2, 1, 2},
		{1, 2, 2},
	}
	for _, tc := range cases {
		if got := b.NeighborCount(tc.x, tc.y); got != tc.want {
			t.Errorf("NeighborCount(%d, %d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestRevealOpensAreaUpToNumbers(t *testing.T) {
	b := mustBoard(t, 5, 5, 1)
	b.setMines(24)

	outcome, opened := b.Reveal(0, 0)
	if outcome != Opened || opened != 24 {
		t.Fatalf("expected Opened with 24 cells, got %s with %d", outcome, opened)
	}
	for i := 0; i < b.Len(); i++ {
		o := b.Overlay(i)
		switch i {
		case 24:
			if o.Visual != Hidden {
				t.Fatalf("mine cell should stay hidden, got %s", o)
			}
		case 18, 19, 23:
			if o.Visual != Revealed || o.Count != 1 {
				t.Fatalf("cell %d: expected revealed(1), got %s", i, o)
			}
		default:
			if o.Visual != Revealed || o.Count != 0 {
				t.Fatalf("cell %d: expected revealed(0), got %s", i, o)
			}
		}
	}
}

func TestRevealStopsAtNonZero(t *testing.T) {
	b := mustBoard(t, 5, 1, 1)
	b.setMines(2)

	outcome, opened := b.Reveal(0, 0)
	if outcome != Opened || opened != 2 {
		t.Fatalf("expected 2 opened, got %s with %d", outcome, opened)
	}
	if o := b.Overlay(1); o.Visual != Revealed || o.Count != 1 {
		t.Fatalf("cell 1: expected revealed(1), got %s", o)
	}
	for _, i := range []int{2, 3, 4} {
		if b.Overlay(i).Visual != Hidden {
			t.Fatalf("cell %d should be hidden, got %s", i, b.Overlay(i))
		}
	}
}

func TestRevealIsIdempotent(t *testing.T) {
	b := mustBoard(t, 5, 5, 1)
	b.setMines(24)
	b.Reveal(4, 3)

	before := make([]Overlay, b.Len())
	copy(before, b.over)

	outcome, opened := b.Reveal(4, 3)
	if outcome != NoChange || opened != 0 {
		t.Fatalf("second reveal: expected NoChange, got %s with %d", outcome, opened)
	}
	for i := range before {
		if before[i] != b.Overlay(i) {
			t.Fatalf("cell %d changed on second reveal: %s -> %s", i, before[i], b.Overlay(i))
		}
	}

	if outcome, _ := b.Reveal(4, 4); outcome != HitMine {
		t.Fatalf("expected HitMine, got %s", outcome)
	}
	if outcome, _ := b.Reveal(4, 4); outcome != NoChange {
		t.Fatalf("revealing a detonated cell again should be a no-op, got %s", outcome)
	}
}

func TestRevealOutOfBoundsIsNoop(t *testing.T) {
	b := mustBoard(t, 3, 3, 1)
	for _, p := range []Point{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {7, 7}} {
		if outcome, opened := b.Reveal(p[0], p[1]); outcome != NoChange || opened != 0 {
			t.Fatalf("Reveal(%v): expected NoChange, got %s with %d", p, outcome, opened)
		}
	}
}

func TestRevealOpensFlaggedCells(t *testing.T) {
	b := mustBoard(t, 3, 3, 1)
	b.setMines(8)
	b.toggleFlag(0)
	b.toggleFlag(1)

	b.Reveal(0, 0)
	for _, i := range []int{0, 1} {
		if b.Overlay(i).Visual != Revealed {
			t.Fatalf("flagged cell %d should be revealed, got %s", i, b.Overlay(i))
		}
	}
}

func TestRevealVisitsEachCellOnce(t *testing.T) {
	b := mustBoard(t, 100, 100, 0)
	b.PlaceMines(Point{0, 0})

	outcome, opened := b.Reveal(50, 50)
	if outcome != Opened || opened != b.Len() {
		t.Fatalf("expected all %d cells opened once, got %s with %d", b.Len(), outcome, opened)
	}
}

func TestToggleFlagSkipsRevealed(t *testing.T) {
	b := mustBoard(t, 3, 3, 1)
	b.setMines(8)
	b.Reveal(2, 1)

	if _, changed := b.toggleFlag(b.Index(2, 1)); changed {
		t.Fatal("revealed cell should not take a flag")
	}
	if v, changed := b.toggleFlag(0); !changed || v != Flagged {
		t.Fatalf("expected hidden cell to become flagged, got %v %v", v, changed)
	}
	if v, changed := b.toggleFlag(0); !changed || v != Hidden {
		t.Fatalf("expected flagged cell to become hidden, got %v %v", v, changed)
	}
}

func TestReset(t *testing.T) {
	b := mustBoard(t, 3, 3, 2)
	b.PlaceMines(Point{0, 0})
	b.Reveal(0, 0)
	b.Reset()

	if b.Mines() != 0 {
		t.Fatalf("expected 0 mines after reset, got %d", b.Mines())
	}
	for i := 0; i < b.Len(); i++ {
		if b.Ground(i) != Empty || b.Overlay(i).Visual != Hidden {
			t.Fatalf("cell %d not reset", i)
		}
	}
}

// Package othello is a minimal 8x8 board model: move application, legal
// moves and the heuristic features used to fit evaluation weights.
package othello

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/freeeve/othellobook/internal/graph"
)

// ErrIllegalMove is returned by Apply for occupied squares, moves that flip
// nothing and passes while a move is available.
var ErrIllegalMove = errors.New("illegal move")

// Color is a disc color.
type Color uint8

const (
	Black Color = iota
	White
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

const size = 8

var directions = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// Board is a position with the side to move. The zero value is an empty
// board with black to move; use NewBoard for the starting position.
type Board struct {
	discs [2]uint64 // bit y*8+x
	turn  Color
}

func bit(x, y int) uint64 {
	return 1 << uint(y*size+x)
}

func onBoard(x, y int) bool {
	return x >= 0 && x < size && y >= 0 && y < size
}

// NewBoard returns the standard starting position, black to move.
func NewBoard() *Board {
	return &Board{
		discs: [2]uint64{
			Black: bit(3, 4) | bit(4, 3),
			White: bit(3, 3) | bit(4, 4),
		},
		turn: Black,
	}
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Turn returns the side to move.
func (b *Board) Turn() Color {
	return b.turn
}

// Count returns the number of discs of color c.
func (b *Board) Count(c Color) int {
	return bits.OnesCount64(b.discs[c])
}

func (b *Board) occupied() uint64 {
	return b.discs[Black] | b.discs[White]
}

// flips returns the discs c would turn over by playing (x, y).
func (b *Board) flips(c Color, x, y int) uint64 {
	if b.occupied()&bit(x, y) != 0 {
		return 0
	}
	own, opp := b.discs[c], b.discs[c.Opponent()]
	var all uint64
	for _, d := range directions {
		var line uint64
		cx, cy := x+d[0], y+d[1]
		for onBoard(cx, cy) && opp&bit(cx, cy) != 0 {
			line |= bit(cx, cy)
			cx, cy = cx+d[0], cy+d[1]
		}
		if line != 0 && onBoard(cx, cy) && own&bit(cx, cy) != 0 {
			all |= line
		}
	}
	return all
}

// LegalMoves returns every square c may play, in code order.
func (b *Board) LegalMoves(c Color) []graph.Code {
	var moves []graph.Code
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if b.flips(c, x, y) != 0 {
				moves = append(moves, graph.Encode(x, y))
			}
		}
	}
	return moves
}

// Mobility returns the number of legal moves for c.
func (b *Board) Mobility(c Color) int {
	n := 0
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if b.flips(c, x, y) != 0 {
				n++
			}
		}
	}
	return n
}

// Apply plays a move code for the side to move. graph.Pass is only legal
// when the side to move has no move.
func (b *Board) Apply(code graph.Code) error {
	if code == graph.Pass {
		if b.Mobility(b.turn) > 0 {
			return fmt.Errorf("%w: %s passes with moves available", ErrIllegalMove, b.turn)
		}
		b.turn = b.turn.Opponent()
		return nil
	}
	if !code.IsCoord() {
		return fmt.Errorf("%w: code %s", ErrIllegalMove, code)
	}
	x, y := code.X(), code.Y()
	f := b.flips(b.turn, x, y)
	if f == 0 {
		return fmt.Errorf("%w: %s plays %s", ErrIllegalMove, b.turn, code)
	}
	b.discs[b.turn] |= f | bit(x, y)
	b.discs[b.turn.Opponent()] &^= f
	b.turn = b.turn.Opponent()
	return nil
}

// placeWeights is the classic positional table; corners high, X/C squares low.
var placeWeights = [size][size]int{
	{120, -20, 20, 5, 5, 20, -20, 120},
	{-20, -40, -5, -5, -5, -5, -40, -20},
	{20, -5, 15, 3, 3, 15, -5, 20},
	{5, -5, 3, 3, 3, 3, -5, 5},
	{5, -5, 3, 3, 3, 3, -5, 5},
	{20, -5, 15, 3, 3, 15, -5, 20},
	{-20, -40, -5, -5, -5, -5, -40, -20},
	{120, -20, 20, 5, 5, 20, -20, 120},
}

// PlaceScore sums the positional weight of every disc of color c.
func (b *Board) PlaceScore(c Color) int {
	score := 0
	m := b.discs[c]
	for m != 0 {
		i := bits.TrailingZeros64(m)
		m &= m - 1
		score += placeWeights[i/size][i%size]
	}
	return score
}

// StableCount returns how many discs of color c can never be flipped.
// A disc is stable when, along each of the four axes, its line is full or it
// touches the edge or a stable disc of its own color on one side.
func (b *Board) StableCount(c Color) int {
	return bits.OnesCount64(b.stable(c))
}

var axes = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

func (b *Board) stable(c Color) uint64 {
	own := b.discs[c]
	occ := b.occupied()
	var st uint64

	for changed := true; changed; {
		changed = false
		for m := own &^ st; m != 0; m &= m - 1 {
			i := bits.TrailingZeros64(m)
			x, y := i%size, i/size
			ok := true
			for _, a := range axes {
				if !b.anchored(x, y, a, own, st, occ) {
					ok = false
					break
				}
			}
			if ok {
				st |= bit(x, y)
				changed = true
			}
		}
	}
	return st
}

// anchored checks one axis through (x, y) for StableCount.
func (b *Board) anchored(x, y int, a [2]int, own, st, occ uint64) bool {
	for _, s := range [2]int{1, -1} {
		nx, ny := x+s*a[0], y+s*a[1]
		if !onBoard(nx, ny) || (own&st&bit(nx, ny)) != 0 {
			return true
		}
	}
	// Full line: nothing can be played on it, so nothing flips along it.
	for _, s := range [2]int{1, -1} {
		nx, ny := x+s*a[0], y+s*a[1]
		for onBoard(nx, ny) {
			if occ&bit(nx, ny) == 0 {
				return false
			}
			nx, ny = nx+s*a[0], ny+s*a[1]
		}
	}
	return true
}

// Replay applies codes from the starting position.
func Replay(codes []graph.Code) (*Board, error) {
	b := NewBoard()
	for i, c := range codes {
		if err := b.Apply(c); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return b, nil
}

package eval

import (
	"fmt"

	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/othello"
)

// TurnSamples holds the design rows and targets observed at one turn.
type TurnSamples struct {
	X []float64 // row-major, NumFeatures columns
	Y []float64
}

// Rows returns the number of samples.
func (s *TurnSamples) Rows() int {
	return len(s.Y)
}

func (s *TurnSamples) add(f [NumFeatures]float64, target float64) {
	s.X = append(s.X, f[:]...)
	s.Y = append(s.Y, target)
}

// Collect walks t breadth-first, replaying every move on a board, and groups
// one sample per scored node by turn. Nodes nobody finished a game through
// (plays 0) carry no target and are skipped, as are turns past Turns.
func Collect(t *graph.Tree) ([]TurnSamples, error) {
	samples := make([]TurnSamples, Turns)

	type item struct {
		id    graph.NodeID
		turn  int
		board *othello.Board
	}
	queue := []item{{id: graph.Root, board: othello.NewBoard()}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.turn >= Turns {
			continue
		}

		n := t.Node(it.id)
		if n.Plays > 0 {
			samples[it.turn].add(Features(it.board), n.Score)
		}

		for _, c := range t.Children(it.id) {
			child, _ := t.Child(it.id, c)
			next := it.board.Clone()
			if err := next.Apply(c); err != nil {
				return nil, fmt.Errorf("turn %d: %w", it.turn+1, err)
			}
			queue = append(queue, item{id: child, turn: it.turn + 1, board: next})
		}
	}
	return samples, nil
}

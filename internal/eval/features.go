// Package eval fits per-turn evaluation weights from a game tree.
//
// Every node of the tree is a position reached in real games. For each
// position the board features are taken from black's point of view and
// paired with the node's mean final differential; one least-squares fit per
// turn yields the weights of the three features.
package eval

import (
	"github.com/freeeve/othellobook/internal/othello"
)

// Feature indices within a sample row and a turn's weights.
const (
	Place = iota
	Stable
	Mobility
	NumFeatures
)

// Turns is the number of turns weights are fitted for.
const Turns = 60

// Features returns [place, stable, mobility], each black minus white.
func Features(b *othello.Board) [NumFeatures]float64 {
	var f [NumFeatures]float64
	f[Place] = float64(b.PlaceScore(othello.Black) - b.PlaceScore(othello.White))
	f[Stable] = float64(b.StableCount(othello.Black) - b.StableCount(othello.White))
	f[Mobility] = float64(b.Mobility(othello.Black) - b.Mobility(othello.White))
	return f
}

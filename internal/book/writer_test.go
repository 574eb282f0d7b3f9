package book

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freeeve/othellobook/internal/graph"
)

func scenarioTree(t *testing.T) *graph.Tree {
	t.Helper()
	tree := graph.NewTree(graph.Options{TurnLimit: graph.OpeningTurns, Canonicalize: true})
	require.NoError(t, tree.AddPlay(graph.NewRecord([]graph.Code{0x23, 0x10}, 35, 29).Encode()))
	require.NoError(t, tree.AddPlay(graph.NewRecord([]graph.Code{0x32, 0x01}, 35, 29).Encode()))
	return tree
}

func TestWriteScenario(t *testing.T) {
	var buf bytes.Buffer
	stats, err := Write(&buf, scenarioTree(t))
	require.NoError(t, err)
	require.Equal(t, Stats{Blocks: 3, Entries: 2, Bytes: 72}, stats)

	data := buf.Bytes()
	require.Len(t, data, 72)

	// Root block: one entry, pointing at the depth-1 block at offset 32.
	require.Equal(t, uint64(32), binary.BigEndian.Uint64(data[0:8]))
	require.Equal(t, byte(0x23), data[15])
	require.Equal(t, 6.0, math.Float64frombits(binary.BigEndian.Uint64(data[16:24])))
	require.Equal(t, uint64(32), binary.BigEndian.Uint64(data[24:32]))

	// Depth-1 block: one entry whose child is a leaf, so the pointer is 0.
	require.Equal(t, uint64(32), binary.BigEndian.Uint64(data[32:40]))
	require.Equal(t, byte(0x10), data[47])
	require.Equal(t, 6.0, math.Float64frombits(binary.BigEndian.Uint64(data[48:56])))
	require.Zero(t, binary.BigEndian.Uint64(data[56:64]))

	// Depth-2 block: empty leaf.
	require.Equal(t, uint64(8), binary.BigEndian.Uint64(data[64:72]))
}

func TestWriteEmptyTree(t *testing.T) {
	var buf bytes.Buffer
	stats, err := Write(&buf, graph.NewTree(graph.Options{TurnLimit: 10}))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Blocks)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 8}, buf.Bytes())
}

func TestPlanAddressesAreCumulative(t *testing.T) {
	tree := graph.NewTree(graph.Options{TurnLimit: 10})
	tree.Add(graph.NewRecord([]graph.Code{0x23, 0x22, 0x32}, 1, 0))
	tree.Add(graph.NewRecord([]graph.Code{0x32, 0x33}, 1, 0))
	tree.Add(graph.NewRecord([]graph.Code{0x23, 0x24}, 1, 0))

	l := plan(tree)
	require.Len(t, l.blocks, tree.Len())
	var running uint64
	for id, b := range l.blocks {
		require.Equal(t, running, l.addrs[id], "block %d", id)
		running += b.size
	}
	require.Equal(t, running, l.total)

	// Root children get ids 1 and 2 in first-seen order (c4, d3).
	require.Equal(t, []int{1, 2}, l.blocks[0].children)
	// c4's children (c3, c5) come before d3's child (d4).
	require.Equal(t, []int{3, 4}, l.blocks[1].children)
	require.Equal(t, []int{5}, l.blocks[2].children)
}

type failingWriter struct {
	after int
	n     int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.after {
		return 0, errDiskFull
	}
	w.n += len(p)
	return len(p), nil
}

func TestWritePropagatesIOError(t *testing.T) {
	_, err := Write(&failingWriter{after: 0}, scenarioTree(t))
	require.Error(t, err)
	require.ErrorIs(t, err, errDiskFull)
}

// randomTree builds a tree from pseudo-random games over a small move
// alphabet so prefixes are shared.
func randomTree(seed int64, games, turnLimit int, canonical bool) *graph.Tree {
	rng := rand.New(rand.NewSource(seed))
	tree := graph.NewTree(graph.Options{TurnLimit: turnLimit, Canonicalize: canonical})
	alphabet := []graph.Code{0x23, 0x32, 0x54, 0x45, 0x22, 0x24, 0x42, 0x55, graph.Pass}
	for g := 0; g < games; g++ {
		n := rng.Intn(graph.MaxMoves + 1)
		moves := make([]graph.Code, n)
		for i := range moves {
			moves[i] = alphabet[rng.Intn(len(alphabet))]
		}
		black := uint8(rng.Intn(65))
		tree.Add(graph.NewRecord(moves, black, 64-black))
	}
	return tree
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name      string
		turns     int
		canonical bool
	}{
		{"opening", graph.OpeningTurns, true},
		{"shallow", 4, true},
		{"plain", 12, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tree := randomTree(42, 300, tc.turns, tc.canonical)

			var buf bytes.Buffer
			stats, err := Write(&buf, tree)
			require.NoError(t, err)
			require.Equal(t, tree.Len(), stats.Blocks)
			require.Equal(t, tree.Len()-1, stats.Entries)
			require.Equal(t, uint64(buf.Len()), stats.Bytes)

			r := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), 0)
			checkSubtree(t, tree, r, graph.Root, 0)

			var scanned int
			require.NoError(t, r.Scan(func(*Block) error {
				scanned++
				return nil
			}))
			require.Equal(t, tree.Len(), scanned)
		})
	}
}

// checkSubtree asserts that the block at offset matches node id exactly.
func checkSubtree(t *testing.T, tree *graph.Tree, r *Reader, id graph.NodeID, offset uint64) {
	t.Helper()
	b, err := r.ReadBlock(offset)
	require.NoError(t, err)

	codes := tree.Children(id)
	require.Len(t, b.Entries, len(codes))
	for i, c := range codes {
		e := b.Entries[i]
		require.Equal(t, c, e.Move)
		child, ok := tree.Child(id, c)
		require.True(t, ok)
		require.Equal(t, tree.Node(child).Score, e.Score)
		if tree.Node(child).NumChildren() == 0 {
			require.Zero(t, e.Child)
			continue
		}
		require.NotZero(t, e.Child)
		checkSubtree(t, tree, r, child, e.Child)
	}
}

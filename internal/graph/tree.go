package graph

// NodeID addresses a node in a Tree's arena.
type NodeID int32

// Root is the empty-prefix node every tree starts with.
const Root NodeID = 0

// Default turn limits used by the generators.
const (
	OpeningTurns  = 25
	EvaluateTurns = 64
)

// Node is one move prefix. Children are kept twice: a map for lookup during
// ingestion and the first-seen order, which is what gets serialized.
type Node struct {
	Score float64 // mean differential of every game that passed through
	Plays float64 // number of such games

	children map[Code]NodeID
	order    []Code
}

// NumChildren returns the number of distinct moves played from this prefix.
func (n *Node) NumChildren() int {
	return len(n.order)
}

// Options configures tree construction.
type Options struct {
	TurnLimit    int  // plies considered per game; moves at index >= TurnLimit are dropped
	Canonicalize bool // fold symmetric games onto one path
}

// Tree is a move-prefix tree built from recorded games.
type Tree struct {
	opts      Options
	nodes     []Node
	records   int64
	transform Transform
}

// NewTree creates a tree holding only the root.
func NewTree(opts Options) *Tree {
	t := &Tree{
		opts:  opts,
		nodes: make([]Node, 1, 1024),
	}
	t.transform.fill(Identity)
	return t
}

// Options returns the options the tree was built with.
func (t *Tree) Options() Options {
	return t.opts
}

// AddPlay parses a raw 64-byte record and adds it to the tree.
func (t *Tree) AddPlay(buf []byte) error {
	rec, err := ParseRecord(buf)
	if err != nil {
		return err
	}
	t.Add(rec)
	return nil
}

// Add walks the record's moves from the root, updating the running average
// of every node visited and creating missing children in first-seen order.
func (t *Tree) Add(rec Record) {
	t.records++
	score := rec.Differential()

	id := Root
	for turn := 0; ; turn++ {
		if turn >= t.opts.TurnLimit || turn >= len(rec.Moves) {
			return
		}
		p := rec.Moves[turn]

		n := &t.nodes[id]
		n.Score = (n.Score*n.Plays + score) / (n.Plays + 1)
		n.Plays++

		if p == End {
			return
		}
		if turn == 0 && t.opts.Canonicalize {
			t.transform.Init(p.X(), p.Y())
		}
		p = t.transform.Get(p)

		child, ok := n.children[p]
		if !ok {
			child = t.newChild(id, p)
		}
		id = child
	}
}

// newChild appends a node to the arena and links it under parent.
func (t *Tree) newChild(parent NodeID, c Code) NodeID {
	child := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{})

	// The append may have moved the arena; take the parent again.
	p := &t.nodes[parent]
	if p.children == nil {
		p.children = make(map[Code]NodeID, 4)
	}
	p.children[c] = child
	p.order = append(p.order, c)
	return child
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Children returns the child move codes of id in first-seen order.
// The slice must not be modified.
func (t *Tree) Children(id NodeID) []Code {
	return t.nodes[id].order
}

// Child looks up the child reached by playing c from id.
func (t *Tree) Child(id NodeID, c Code) (NodeID, bool) {
	child, ok := t.nodes[id].children[c]
	return child, ok
}

// Lookup follows a sequence of (already canonical) codes from the root.
func (t *Tree) Lookup(codes []Code) (NodeID, bool) {
	id := Root
	for _, c := range codes {
		next, ok := t.Child(id, c)
		if !ok {
			return 0, false
		}
		id = next
	}
	return id, true
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Records returns how many records have been added.
func (t *Tree) Records() int64 {
	return t.records
}

// Walk visits every node breadth-first, children in first-seen order.
// depth is the number of moves from the root. Returning false stops the walk.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	type item struct {
		id    NodeID
		depth int
	}
	queue := []item{{Root, 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if !fn(it.id, it.depth) {
			return
		}
		n := &t.nodes[it.id]
		for _, c := range n.order {
			queue = append(queue, item{n.children[c], it.depth + 1})
		}
	}
}

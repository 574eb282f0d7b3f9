package book

import (
	"bufio"
	"fmt"
	"io"

	"github.com/freeeve/othellobook/internal/graph"
)

// Stats describes a written book.
type Stats struct {
	Blocks  int    // blocks written, leaves included
	Entries int    // entries across all blocks
	Bytes   uint64 // file length
}

// plannedBlock is a node whose size and address are known.
type plannedBlock struct {
	node     graph.NodeID
	size     uint64
	children []int // block ids, in the node's first-seen child order
}

// layout is the result of the sizing pass.
type layout struct {
	blocks []plannedBlock // indexed by block id, which is also write order
	addrs  []uint64       // indexed by block id
	total  uint64
}

// plan visits the tree breadth-first from the root, assigning block ids to
// children in first-seen order and an address to every block as soon as its
// size is known. Block ids are handed out in the same order blocks leave the
// queue, so the finished list is also the write order.
func plan(t *graph.Tree) *layout {
	type pending struct {
		id   int
		node graph.NodeID
	}

	l := &layout{
		blocks: make([]plannedBlock, 0, t.Len()),
		addrs:  make([]uint64, 1, t.Len()),
	}
	queue := []pending{{id: 0, node: graph.Root}}
	next := 1

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		codes := t.Children(p.node)
		b := plannedBlock{
			node:     p.node,
			children: make([]int, len(codes)),
		}
		for i, c := range codes {
			child, _ := t.Child(p.node, c)
			b.children[i] = next
			queue = append(queue, pending{id: next, node: child})
			l.addrs = append(l.addrs, 0)
			next++
		}

		b.size = BlockSize(len(codes))
		l.addrs[p.id] = l.total
		l.total += b.size
		l.blocks = append(l.blocks, b)
	}
	return l
}

// pointer resolves the child pointer stored for block id.
func (l *layout) pointer(id int) uint64 {
	if len(l.blocks[id].children) == 0 {
		return 0
	}
	return l.addrs[id]
}

// Write serializes t to w. The whole layout is computed before anything is
// written. Any write error aborts; the output is then incomplete.
func Write(w io.Writer, t *graph.Tree) (Stats, error) {
	l := plan(t)

	var stats Stats
	bw := bufio.NewWriterSize(w, 1<<20)
	buf := make([]byte, EntrySize)

	for _, b := range l.blocks {
		encodeHeader(buf, b.size)
		if _, err := bw.Write(buf[:HeaderSize]); err != nil {
			return stats, fmt.Errorf("write block %d header: %w", stats.Blocks, err)
		}
		codes := t.Children(b.node)
		for i, childID := range b.children {
			child, _ := t.Child(b.node, codes[i])
			encodeEntry(buf, Entry{
				Move:  codes[i],
				Score: t.Node(child).Score,
				Child: l.pointer(childID),
			})
			if _, err := bw.Write(buf); err != nil {
				return stats, fmt.Errorf("write block %d entry %d: %w", stats.Blocks, i, err)
			}
		}
		stats.Blocks++
		stats.Entries += len(b.children)
		stats.Bytes += b.size
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush book: %w", err)
	}
	return stats, nil
}

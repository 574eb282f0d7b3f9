package book

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/freeeve/othellobook/internal/graph"
)

// Reader provides random access to a book through an io.ReaderAt.
// It is safe for concurrent use.
type Reader struct {
	r      io.ReaderAt
	size   int64
	cache  *BlockCache
	closer io.Closer
}

// Open opens a book file. cachedBlocks sets the block cache size; 0 disables it.
func Open(path string, cachedBlocks int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r := NewReader(f, fi.Size(), cachedBlocks)
	r.closer = f
	return r, nil
}

// NewReader reads a book of the given size from r.
func NewReader(r io.ReaderAt, size int64, cachedBlocks int) *Reader {
	return &Reader{
		r:     r,
		size:  size,
		cache: NewBlockCache(cachedBlocks),
	}
}

// Close releases the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Size returns the book length in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// CacheStats returns block cache counters.
func (r *Reader) CacheStats() CacheStats {
	return r.cache.Stats()
}

// ReadBlock decodes the block starting at offset.
func (r *Reader) ReadBlock(offset uint64) (*Block, error) {
	if r.cache != nil {
		if b := r.cache.Get(offset); b != nil {
			return b, nil
		}
	}

	if offset > uint64(r.size) || uint64(r.size)-offset < HeaderSize {
		return nil, fmt.Errorf("%w: block at %d past end of book (%d bytes)", ErrCorrupt, offset, r.size)
	}
	var hdr [HeaderSize]byte
	if _, err := r.r.ReadAt(hdr[:], int64(offset)); err != nil {
		return nil, fmt.Errorf("read block header at %d: %w", offset, err)
	}
	size := binary.BigEndian.Uint64(hdr[:])
	if _, err := EntryCount(size); err != nil {
		return nil, fmt.Errorf("block at %d: %w", offset, err)
	}
	if size > uint64(r.size)-offset {
		return nil, fmt.Errorf("%w: block at %d size %d runs past end of book", ErrCorrupt, offset, size)
	}

	data := make([]byte, size)
	if _, err := r.r.ReadAt(data, int64(offset)); err != nil {
		return nil, fmt.Errorf("read block at %d: %w", offset, err)
	}
	b, err := DecodeBlock(offset, data)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Put(b)
	}
	return b, nil
}

// Root returns the first block of the book.
func (r *Reader) Root() (*Block, error) {
	return r.ReadBlock(0)
}

// Find follows codes from the root and returns the entry of the last move.
// codes must already be in the book's canonical orientation.
func (r *Reader) Find(codes []graph.Code) (Entry, error) {
	if len(codes) == 0 {
		return Entry{}, fmt.Errorf("%w: empty move sequence", ErrNotFound)
	}
	b, err := r.Lookup(codes[:len(codes)-1])
	if err != nil {
		return Entry{}, err
	}
	last := codes[len(codes)-1]
	e, ok := b.Find(last)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s after %s", ErrNotFound, last, graph.FormatMoves(codes[:len(codes)-1]))
	}
	return e, nil
}

// Lookup returns the block of continuations after codes. A line that is in
// the book but has no further data yields an empty block with offset 0.
func (r *Reader) Lookup(codes []graph.Code) (*Block, error) {
	b, err := r.Root()
	if err != nil {
		return nil, err
	}
	for i, c := range codes {
		e, ok := b.Find(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s after %s", ErrNotFound, c, graph.FormatMoves(codes[:i]))
		}
		if !e.HasChild() {
			if i == len(codes)-1 {
				return &Block{}, nil
			}
			return nil, fmt.Errorf("%w: line ends at %s", ErrNotFound, graph.FormatMoves(codes[:i+1]))
		}
		if b, err = r.ReadBlock(e.Child); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Walk visits every referenced block breadth-first, starting with the root,
// passing the move sequence that leads to it. Returning an error stops the
// walk and is returned. A block referenced twice is ErrCorrupt; a book
// written by Write is a tree.
func (r *Reader) Walk(fn func(path []graph.Code, b *Block) error) error {
	type item struct {
		offset uint64
		path   []graph.Code
	}
	queue := []item{{offset: 0}}
	seen := map[uint64]bool{0: true}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		b, err := r.ReadBlock(it.offset)
		if err != nil {
			return err
		}
		if err := fn(it.path, b); err != nil {
			return err
		}
		for _, e := range b.Entries {
			if !e.HasChild() {
				continue
			}
			if seen[e.Child] {
				return fmt.Errorf("%w: block at %d referenced twice (from %d)", ErrCorrupt, e.Child, b.Offset)
			}
			seen[e.Child] = true
			path := make([]graph.Code, len(it.path)+1)
			copy(path, it.path)
			path[len(it.path)] = e.Move
			queue = append(queue, item{offset: e.Child, path: path})
		}
	}
	return nil
}

// Scan decodes every block in file order, leaves included, and checks that
// the blocks tile the file exactly.
func (r *Reader) Scan(fn func(b *Block) error) error {
	var offset uint64
	for offset < uint64(r.size) {
		b, err := r.ReadBlock(offset)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		offset += b.Size()
	}
	return nil
}

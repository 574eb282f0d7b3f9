package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/freeeve/othellobook/internal/graph"
)

// Block layout:
//   size (8): total block length, header included
//   entries (24 each):
//     - padding (7): zero
//     - move (1): move code
//     - score (8): IEEE-754 float64
//     - child (8): absolute offset of the child block, 0 if none

const (
	HeaderSize = 8
	EntrySize  = 24

	entryMoveOffset  = 7
	entryScoreOffset = 8
	entryChildOffset = 16
)

var (
	// ErrCorrupt is returned for blocks whose size field is not a valid
	// block length or runs past the end of the file.
	ErrCorrupt = errors.New("corrupt book block")
	// ErrNotFound is returned when a move sequence leaves the book.
	ErrNotFound = errors.New("position not in book")
)

// Entry is one move out of a block.
type Entry struct {
	Move  graph.Code
	Score float64
	Child uint64 // offset of the child block, 0 if the line ends here
}

// HasChild reports whether the entry leads to another block.
func (e Entry) HasChild() bool {
	return e.Child != 0
}

// Block is one decoded node.
type Block struct {
	Offset  uint64
	Entries []Entry
}

// Size returns the encoded length of the block.
func (b *Block) Size() uint64 {
	return BlockSize(len(b.Entries))
}

// Find returns the entry for move c.
func (b *Block) Find(c graph.Code) (Entry, bool) {
	for _, e := range b.Entries {
		if e.Move == c {
			return e, true
		}
	}
	return Entry{}, false
}

// BlockSize returns the encoded length of a block with n entries.
func BlockSize(n int) uint64 {
	return HeaderSize + EntrySize*uint64(n)
}

// EntryCount recovers the number of entries from a size field.
func EntryCount(size uint64) (int, error) {
	if size < HeaderSize || (size-HeaderSize)%EntrySize != 0 {
		return 0, fmt.Errorf("%w: size %d", ErrCorrupt, size)
	}
	return int((size - HeaderSize) / EntrySize), nil
}

func encodeHeader(buf []byte, size uint64) {
	binary.BigEndian.PutUint64(buf[0:HeaderSize], size)
}

func encodeEntry(buf []byte, e Entry) {
	// Move code is the low byte of a big-endian u64.
	binary.BigEndian.PutUint64(buf[0:entryScoreOffset], uint64(e.Move))
	binary.BigEndian.PutUint64(buf[entryScoreOffset:entryChildOffset], math.Float64bits(e.Score))
	binary.BigEndian.PutUint64(buf[entryChildOffset:EntrySize], e.Child)
}

func decodeEntry(buf []byte) (Entry, error) {
	if len(buf) < EntrySize {
		return Entry{}, fmt.Errorf("%w: entry too short: got %d bytes, need %d", ErrCorrupt, len(buf), EntrySize)
	}
	for _, b := range buf[:entryMoveOffset] {
		if b != 0 {
			return Entry{}, fmt.Errorf("%w: non-zero entry padding", ErrCorrupt)
		}
	}
	return Entry{
		Move:  graph.Code(buf[entryMoveOffset]),
		Score: math.Float64frombits(binary.BigEndian.Uint64(buf[entryScoreOffset:entryChildOffset])),
		Child: binary.BigEndian.Uint64(buf[entryChildOffset:EntrySize]),
	}, nil
}

// EncodeBlock returns the wire form of b.
func EncodeBlock(b *Block) []byte {
	buf := make([]byte, b.Size())
	encodeHeader(buf, b.Size())
	for i, e := range b.Entries {
		off := HeaderSize + i*EntrySize
		encodeEntry(buf[off:off+EntrySize], e)
	}
	return buf
}

// DecodeBlock decodes a block whose wire form starts at data[0]. offset is
// recorded on the result and used in error messages.
func DecodeBlock(offset uint64, data []byte) (*Block, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: block at %d: header truncated", ErrCorrupt, offset)
	}
	size := binary.BigEndian.Uint64(data[0:HeaderSize])
	n, err := EntryCount(size)
	if err != nil {
		return nil, fmt.Errorf("block at %d: %w", offset, err)
	}
	if uint64(len(data)) < size {
		return nil, fmt.Errorf("%w: block at %d: need %d bytes, have %d", ErrCorrupt, offset, size, len(data))
	}

	b := &Block{Offset: offset, Entries: make([]Entry, n)}
	for i := 0; i < n; i++ {
		off := HeaderSize + i*EntrySize
		e, err := decodeEntry(data[off : off+EntrySize])
		if err != nil {
			return nil, fmt.Errorf("block at %d entry %d: %w", offset, i, err)
		}
		b.Entries[i] = e
	}
	return b, nil
}

package graph

import (
	"errors"
	"fmt"
)

// Record layout constants.
const (
	RecordSize = 64 // bytes per recorded game
	MaxMoves   = 60 // move codes at the start of a record
	blackIdx   = 62
	whiteIdx   = 63
)

// ErrShortRecord is returned when fewer than RecordSize bytes are supplied.
var ErrShortRecord = errors.New("short record")

// Record is one recorded game.
type Record struct {
	Moves [MaxMoves]Code
	Black uint8 // final black disc count
	White uint8 // final white disc count
}

// ParseRecord decodes a 64-byte record.
func ParseRecord(buf []byte) (Record, error) {
	var rec Record
	if len(buf) < RecordSize {
		return rec, fmt.Errorf("%w: got %d bytes, need %d", ErrShortRecord, len(buf), RecordSize)
	}
	for i := 0; i < MaxMoves; i++ {
		rec.Moves[i] = Code(buf[i])
	}
	rec.Black = buf[blackIdx]
	rec.White = buf[whiteIdx]
	return rec, nil
}

// Encode writes the record back into its 64-byte form. Byte 61 is zero.
func (r Record) Encode() []byte {
	buf := make([]byte, RecordSize)
	for i, c := range r.Moves {
		buf[i] = byte(c)
	}
	buf[blackIdx] = r.Black
	buf[whiteIdx] = r.White
	return buf
}

// Differential is black minus white, the score every node on the game's
// path receives.
func (r Record) Differential() float64 {
	return float64(r.Black) - float64(r.White)
}

// NewRecord builds a record from a move list, padding with zeros after an
// End sentinel when the list is shorter than MaxMoves.
func NewRecord(moves []Code, black, white uint8) Record {
	rec := Record{Black: black, White: white}
	n := copy(rec.Moves[:], moves)
	if n < MaxMoves {
		rec.Moves[n] = End
	}
	return rec
}

package graph

import (
	"fmt"
	"strings"
)

// Move code encoding (uint8):
//   bits 4-7: x (column, 0-7)
//   bits 0-3: y (row, 0-7)
// Two codes fall outside the coordinate space: Pass and End.

// Code is a single-byte move code as stored in records and books.
type Code uint8

const (
	// Pass is a real move with no disc placed.
	Pass Code = 0x88
	// End marks the end of a game that finished before 60 plies.
	End Code = 0xff
)

const (
	codeXShift = 4
	codeYMask  = 0x0F
	boardSize  = 8
)

// Encode creates a Code from board coordinates.
// x, y: 0-7. Out-of-range coordinates return End.
func Encode(x, y int) Code {
	if x < 0 || x >= boardSize || y < 0 || y >= boardSize {
		return End
	}
	return Code(x<<codeXShift | y)
}

// X returns the column nibble.
func (c Code) X() int {
	return int(c >> codeXShift)
}

// Y returns the row nibble.
func (c Code) Y() int {
	return int(c & codeYMask)
}

// IsCoord reports whether c addresses a board square.
func (c Code) IsCoord() bool {
	return c.X() < boardSize && c.Y() < boardSize
}

// String returns the conventional notation ("c4"), "pass" or "end".
func (c Code) String() string {
	switch {
	case c == Pass:
		return "pass"
	case c == End:
		return "end"
	case c.IsCoord():
		return string([]byte{byte('a' + c.X()), byte('1' + c.Y())})
	default:
		return fmt.Sprintf("0x%02x", uint8(c))
	}
}

// ParseCode parses a single move in notation form ("c4", "pass").
func ParseCode(s string) (Code, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "pass" || s == "ps" {
		return Pass, nil
	}
	if len(s) != 2 {
		return End, fmt.Errorf("invalid move %q", s)
	}
	x := int(s[0] - 'a')
	y := int(s[1] - '1')
	if x < 0 || x >= boardSize || y < 0 || y >= boardSize {
		return End, fmt.Errorf("invalid square in move %q", s)
	}
	return Encode(x, y), nil
}

// ParseMoves parses a compact move string such as "c4c3d3" or "c4 pass e3".
// Whitespace and commas between moves are ignored.
func ParseMoves(s string) ([]Code, error) {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "", ",", "", "\t", "").Replace(s)
	codes := make([]Code, 0, len(s)/2)
	for len(s) > 0 {
		if strings.HasPrefix(s, "pass") {
			codes = append(codes, Pass)
			s = s[4:]
			continue
		}
		if len(s) < 2 {
			return nil, fmt.Errorf("trailing input %q", s)
		}
		c, err := ParseCode(s[:2])
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
		s = s[2:]
	}
	return codes, nil
}

// FormatMoves renders codes back into the compact notation used by ParseMoves.
func FormatMoves(codes []Code) string {
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(c.String())
	}
	return b.String()
}

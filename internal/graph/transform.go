package graph

// Symmetry identifies one of the four board transforms that map the legal
// first moves of an empty board onto each other.
type Symmetry uint8

const (
	// Identity keeps (x, y).
	Identity Symmetry = iota
	// Transposed maps (x, y) to (y, x).
	Transposed
	// Rotated180 maps (x, y) to (7-x, 7-y).
	Rotated180
	// RotatedTranspose maps (x, y) to (7-y, 7-x).
	RotatedTranspose
)

func (s Symmetry) String() string {
	switch s {
	case Identity:
		return "identity"
	case Transposed:
		return "transpose"
	case Rotated180:
		return "rotate180"
	case RotatedTranspose:
		return "rotate-transpose"
	default:
		return "unknown"
	}
}

// CanonicalFirst is the first move every game is folded onto.
var CanonicalFirst = Encode(2, 3)

// Transform remaps move codes so that symmetric games share one tree path.
// The zero value maps every code to 0; use NewTransform or Init.
type Transform struct {
	table [256]Code
	kind  Symmetry
}

// NewTransform builds the transform selected by the first move (x, y).
func NewTransform(x, y int) *Transform {
	t := &Transform{}
	t.Init(x, y)
	return t
}

// IdentityTransform returns a transform that leaves every code unchanged.
func IdentityTransform() *Transform {
	t := &Transform{}
	t.fill(Identity)
	return t
}

// Init rebuilds the table for a game whose first move is (x, y).
func (t *Transform) Init(x, y int) {
	switch {
	case x == 2 && y == 3:
		t.fill(Identity)
	case x == 3 && y == 2:
		t.fill(Transposed)
	case x == 5 && y == 4:
		t.fill(Rotated180)
	default:
		t.fill(RotatedTranspose)
	}
}

func (t *Transform) fill(kind Symmetry) {
	t.kind = kind
	for i := range t.table {
		c := Code(i)
		if !c.IsCoord() {
			// Pass, End and unused codes are fixed points.
			t.table[i] = c
			continue
		}
		x, y := c.X(), c.Y()
		switch kind {
		case Identity:
			t.table[i] = Encode(x, y)
		case Transposed:
			t.table[i] = Encode(y, x)
		case Rotated180:
			t.table[i] = Encode(7-x, 7-y)
		case RotatedTranspose:
			t.table[i] = Encode(7-y, 7-x)
		}
	}
}

// Get returns the canonical code for c.
func (t *Transform) Get(c Code) Code {
	return t.table[c]
}

// Kind reports which symmetry the table applies.
func (t *Transform) Kind() Symmetry {
	return t.kind
}

// Apply maps every code of a sequence, returning a new slice.
func (t *Transform) Apply(codes []Code) []Code {
	out := make([]Code, len(codes))
	for i, c := range codes {
		out[i] = t.table[c]
	}
	return out
}

// Canonicalize folds a move sequence the way the tree builder does: the
// transform is derived from the first move and applied to all of them.
func Canonicalize(codes []Code) []Code {
	if len(codes) == 0 {
		return nil
	}
	return NewTransform(codes[0].X(), codes[0].Y()).Apply(codes)
}

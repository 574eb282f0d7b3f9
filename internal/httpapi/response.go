package httpapi

import (
	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/openings"
)

// BookResponse is the JSON-friendly response for a book query.
type BookResponse struct {
	Moves     string            `json:"moves"`     // queried line, as given
	Canonical string            `json:"canonical"` // same line in book orientation
	Opening   *openings.Opening `json:"opening,omitempty"`
	Score     *float64          `json:"score,omitempty"` // of the queried line itself
	Legal     []string          `json:"legal"`           // moves for the side to move, caller's orientation
	Entries   []EntryResponse   `json:"entries"`
}

type EntryResponse struct {
	Move        string  `json:"move"`      // in the caller's orientation
	Canonical   string  `json:"canonical"` // as stored in the book
	Score       float64 `json:"score"`     // mean final disc differential, black minus white
	HasChildren bool    `json:"has_children"`
	Opening     string  `json:"opening,omitempty"`
}

// StatsResponse describes the served book.
type StatsResponse struct {
	BookBytes int64           `json:"book_bytes"`
	Canonical bool            `json:"canonical"`
	Openings  int             `json:"openings"`
	Cache     book.CacheStats `json:"cache"`
}

// ToBookResponse converts a decoded block to a response. line is the
// canonical prefix leading to b and tr maps book moves back to the caller's
// orientation.
func ToBookResponse(query []graph.Code, line []graph.Code, b *book.Block, tr *graph.Transform, names *openings.Database) *BookResponse {
	resp := &BookResponse{
		Moves:     graph.FormatMoves(query),
		Canonical: graph.FormatMoves(line),
		Legal:     []string{},
		Entries:   make([]EntryResponse, 0, len(b.Entries)),
	}
	if names != nil {
		resp.Opening = names.Lookup(line)
	}

	next := make([]graph.Code, len(line)+1)
	copy(next, line)
	for _, e := range b.Entries {
		er := EntryResponse{
			Move:        tr.Get(e.Move).String(),
			Canonical:   e.Move.String(),
			Score:       e.Score,
			HasChildren: e.HasChild(),
		}
		if names != nil {
			next[len(line)] = e.Move
			if o := names.Lookup(next); o != nil {
				er.Opening = o.Name
			}
		}
		resp.Entries = append(resp.Entries, er)
	}
	return resp
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"

	"github.com/rs/zerolog"

	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/openings"
	"github.com/freeeve/othellobook/internal/othello"
)

// BookReader is the read side of a book used by the handlers.
type BookReader interface {
	Lookup(codes []graph.Code) (*book.Block, error)
	Find(codes []graph.Code) (book.Entry, error)
	CacheStats() book.CacheStats
	Size() int64
}

// Handler serves lookups against one book.
type Handler struct {
	rd        BookReader
	names     *openings.Database
	canonical bool
	log       zerolog.Logger
}

// NewRouter creates the HTTP router. canonical tells whether the book was
// built with symmetric lines folded; queries are then folded the same way
// and answers mapped back. names is optional.
func NewRouter(log zerolog.Logger, rd BookReader, names *openings.Database, canonical bool) http.Handler {
	h := &Handler{
		rd:        rd,
		names:     names,
		canonical: canonical,
		log:       log,
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(h.health))
	mux.Handle("/readyz", http.HandlerFunc(h.health))
	mux.Handle("/v1/book", http.HandlerFunc(h.lookup))
	mux.Handle("/v1/stats", http.HandlerFunc(h.stats))

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return CORS(RequestID(AccessLog(log, mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		BookBytes: h.rd.Size(),
		Canonical: h.canonical,
		Cache:     h.rd.CacheStats(),
	}
	if h.names != nil {
		resp.Openings = h.names.Count()
	}
	writeJSON(w, resp)
}

// orient returns the transform for a query and the query in book orientation.
func (h *Handler) orient(query []graph.Code) (*graph.Transform, []graph.Code) {
	if !h.canonical || len(query) == 0 {
		tr := graph.IdentityTransform()
		return tr, tr.Apply(query)
	}
	// Every symmetry used is its own inverse, so tr also maps answers back.
	tr := graph.NewTransform(query[0].X(), query[0].Y())
	return tr, tr.Apply(query)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query, err := graph.ParseMoves(r.URL.Query().Get("moves"))
	if err != nil {
		http.Error(w, "invalid moves: "+err.Error(), http.StatusBadRequest)
		return
	}
	board, err := othello.Replay(query)
	if err != nil {
		http.Error(w, "illegal line: "+err.Error(), http.StatusBadRequest)
		return
	}

	tr, line := h.orient(query)
	b, err := h.rd.Lookup(line)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			http.Error(w, "line not in book", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("book lookup")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := ToBookResponse(query, line, b, tr, h.names)
	for _, c := range board.LegalMoves(board.Turn()) {
		resp.Legal = append(resp.Legal, c.String())
	}
	if len(line) > 0 {
		e, err := h.rd.Find(line)
		if err != nil {
			h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("book find")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		resp.Score = &e.Score
	}
	writeJSON(w, resp)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

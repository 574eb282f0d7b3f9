package eval

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/othellobook/internal/graph"
)

// Config configures an Exporter.
type Config struct {
	Logger  zerolog.Logger
	Workers int // concurrent per-turn fits; 0 means GOMAXPROCS
}

// Exporter turns a game tree into evaluation weights.
type Exporter struct {
	cfg Config
	log zerolog.Logger
}

// NewExporter creates an exporter, filling config defaults.
func NewExporter(cfg Config) *Exporter {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Exporter{cfg: cfg, log: cfg.Logger}
}

// Export collects samples from t and fits every turn. Turns are independent,
// so fits run concurrently; the result does not depend on scheduling.
func (e *Exporter) Export(ctx context.Context, t *graph.Tree) (*Weights, error) {
	start := time.Now()
	samples, err := Collect(t)
	if err != nil {
		return nil, err
	}
	total := 0
	for i := range samples {
		total += samples[i].Rows()
	}
	e.log.Info().
		Int("samples", total).
		Dur("elapsed", time.Since(start)).
		Msg("collected samples")

	w := new(Weights)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for turn := range samples {
		turn := turn
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w[turn] = Fit(samples[turn])
			e.log.Debug().
				Int("turn", turn).
				Int("samples", samples[turn].Rows()).
				Float64("place", w[turn][Place]).
				Float64("stable", w[turn][Stable]).
				Float64("mobility", w[turn][Mobility]).
				Msg("fitted turn")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.Info().
		Int("turns", Turns).
		Dur("elapsed", time.Since(start)).
		Msg("fitted weights")
	return w, nil
}

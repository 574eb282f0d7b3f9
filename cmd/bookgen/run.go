package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/eval"
	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/ingest"
)

// run builds the tree from cfg.input and writes the artifact for cfg.mode.
// The output is opened first so a collision fails before any work; it is
// removed again if anything later fails.
func run(ctx context.Context, cfg config, log zerolog.Logger) (err error) {
	start := time.Now()
	out, err := createOutput(cfg.output, cfg.replace)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
		if err != nil {
			if rerr := os.Remove(cfg.output); rerr != nil {
				log.Warn().Err(rerr).Str("out", cfg.output).Msg("remove partial output")
			}
		}
	}()

	icfg := cfg.ingest
	icfg.Logger = log.With().Str("component", "ingest").Logger()
	tree, res, err := ingest.BuildTree(ctx, cfg.input, cfg.tree, icfg)
	if err != nil {
		return err
	}
	root := tree.Node(graph.Root)
	log.Info().
		Int64("plays", res.Records).
		Float64("score", root.Score).
		Int("nodes", tree.Len()).
		Msg("tree built")

	switch cfg.mode {
	case modeOpening:
		err = writeOpening(out, tree, log)
	case modeEvaluate:
		err = writeEvaluate(ctx, out, tree, log)
	default:
		err = errMode
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("out", cfg.output).
		Dur("elapsed", time.Since(start)).
		Msg("done")
	return nil
}

func writeOpening(w io.Writer, tree *graph.Tree, log zerolog.Logger) error {
	stats, err := book.Write(w, tree)
	if err != nil {
		return err
	}
	log.Info().
		Int("blocks", stats.Blocks).
		Int("entries", stats.Entries).
		Uint64("bytes", stats.Bytes).
		Msg("opening book written")
	return nil
}

func writeEvaluate(ctx context.Context, w io.Writer, tree *graph.Tree, log zerolog.Logger) error {
	exp := eval.NewExporter(eval.Config{
		Logger: log.With().Str("component", "eval").Logger(),
	})
	weights, err := exp.Export(ctx, tree)
	if err != nil {
		return err
	}
	n, err := weights.WriteTo(w)
	if err != nil {
		return err
	}
	log.Info().Int64("bytes", n).Msg("evaluation weights written")
	return nil
}

// Command bookgen builds an opening book or evaluation weights from a file
// of recorded games.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/freeeve/othellobook/internal/logx"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookgen:", err)
		fmt.Fprintln(os.Stderr, "Usage: bookgen (--opening | --evaluate) [-f records.db] [-o out.db] [-r] [-t turns]")
		os.Exit(2)
	}

	logger := logx.New(os.Stdout, cfg.level).With().
		Str("run", uuid.NewString()).
		Logger()
	logger.Info().
		Str("mode", cfg.mode.String()).
		Str("file", cfg.input).
		Str("out", cfg.output).
		Int("turns", cfg.tree.TurnLimit).
		Bool("canonicalize", cfg.tree.Canonicalize).
		Bool("replace", cfg.replace).
		Msg("starting bookgen")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("bookgen failed")
	}
}

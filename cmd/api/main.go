// Command api serves read-only lookups over a built opening book.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/httpapi"
	"github.com/freeeve/othellobook/internal/logx"
	"github.com/freeeve/othellobook/internal/openings"
)

func main() {
	defaultBook := "./data/opening.db"
	if v := os.Getenv("OTHELLOBOOK_BOOK"); v != "" {
		defaultBook = v
	}
	defaultCache := 4096
	if v := os.Getenv("OTHELLOBOOK_CACHED_BLOCKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			defaultCache = n
		}
	}

	var (
		bookPath     = flag.String("book", defaultBook, "opening book file")
		addr         = flag.String("addr", ":8007", "listen address")
		cachedBlocks = flag.Int("cached-blocks", defaultCache, "number of decoded blocks to cache (0 = disabled)")
		canonical    = flag.Bool("canonical", true, "book was built with symmetric lines folded")
		openingsDir  = flag.String("openings-dir", "./data/openings", "directory containing opening name .tsv files")
		logLevel     = flag.String("log-level", os.Getenv("OTHELLOBOOK_LOG_LEVEL"), "log level (debug, info, warn, error)")
	)
	flag.Parse()

	level, err := logx.ParseLevel(*logLevel)
	if err != nil {
		l := logx.NewLogger()
		l.Fatal().Err(err).Msg("parse flags")
	}
	logger := logx.New(os.Stdout, level).With().Str("run", uuid.NewString()).Logger()

	rd, err := book.Open(*bookPath, *cachedBlocks)
	if err != nil {
		logger.Fatal().Err(err).Msg("open book")
	}
	defer rd.Close()

	// Fail early on a file that is not a book.
	root, err := rd.Root()
	if err != nil {
		logger.Fatal().Err(err).Str("book", *bookPath).Msg("read root block")
	}
	logger.Info().
		Str("book", *bookPath).
		Int64("bytes", rd.Size()).
		Int("first_moves", len(root.Entries)).
		Msg("opened book")

	var names *openings.Database
	if *openingsDir != "" {
		names = openings.NewDatabase()
		if err := names.LoadDir(*openingsDir); err != nil {
			logger.Warn().Err(err).Str("dir", *openingsDir).Msg("failed to load opening names")
			names = nil
		} else {
			logger.Info().Int("openings", names.Count()).Msg("opening names loaded")
		}
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      httpapi.NewRouter(logger, rd, names, *canonical),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("api server")
	}

	stats := rd.CacheStats()
	logger.Info().
		Uint64("cache_hits", stats.Hits).
		Uint64("cache_misses", stats.Misses).
		Msg("shutdown complete")
}

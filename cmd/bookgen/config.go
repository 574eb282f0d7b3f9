package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/ingest"
	"github.com/freeeve/othellobook/internal/logx"
)

const (
	defaultRecordPath  = "./data/record.db"
	defaultOpeningPath = "./data/opening.db"
	defaultEvalPath    = "./data/eval.db"
)

type mode int

const (
	modeOpening mode = iota + 1
	modeEvaluate
)

func (m mode) String() string {
	switch m {
	case modeOpening:
		return "opening"
	case modeEvaluate:
		return "evaluate"
	default:
		return "none"
	}
}

var errMode = errors.New("exactly one of --opening or --evaluate is required")

type config struct {
	input   string
	output  string
	replace bool
	mode    mode
	tree    graph.Options
	ingest  ingest.Config
	level   zerolog.Level
}

// parseConfig reads flags, with OTHELLOBOOK_* environment variables as
// defaults. Turn limit, canonicalization and output path default per mode.
func parseConfig(args []string, getenv func(string) string, stderr io.Writer) (config, error) {
	defaultInput := defaultRecordPath
	if v := getenv("OTHELLOBOOK_RECORD"); v != "" {
		defaultInput = v
	}
	defaultProgress := int64(100)
	if v := getenv("OTHELLOBOOK_PROGRESS_EVERY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			defaultProgress = n
		}
	}

	var (
		cfg          config
		opening      bool
		evaluate     bool
		turns        int
		canonicalize bool
		level        string
	)
	fs := flag.NewFlagSet("bookgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.input, "f", defaultInput, "input record file (supports .zst)")
	fs.StringVar(&cfg.input, "file", defaultInput, "input record file (supports .zst)")
	fs.StringVar(&cfg.output, "o", "", "output file (default "+defaultOpeningPath+" or "+defaultEvalPath+")")
	fs.StringVar(&cfg.output, "out", "", "output file (default "+defaultOpeningPath+" or "+defaultEvalPath+")")
	fs.BoolVar(&cfg.replace, "r", false, "replace an existing output file")
	fs.BoolVar(&cfg.replace, "replace", false, "replace an existing output file")
	fs.BoolVar(&opening, "opening", false, "generate an opening book")
	fs.BoolVar(&evaluate, "evaluate", false, "generate evaluation weights")
	fs.IntVar(&turns, "t", 0, "turns to consider per game (default 25 opening, 64 evaluate)")
	fs.IntVar(&turns, "turn", 0, "turns to consider per game (default 25 opening, 64 evaluate)")
	fs.BoolVar(&canonicalize, "canonicalize", false, "fold symmetric games onto one line (default true for opening)")
	fs.Int64Var(&cfg.ingest.ProgressEvery, "progress-every", defaultProgress, "log progress every N records")
	fs.Int64Var(&cfg.ingest.MaxRecords, "max-records", 0, "stop after N records (0 = all)")
	fs.StringVar(&level, "log-level", getenv("OTHELLOBOOK_LOG_LEVEL"), "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	switch {
	case opening && !evaluate:
		cfg.mode = modeOpening
		cfg.tree = graph.Options{TurnLimit: graph.OpeningTurns, Canonicalize: true}
		if cfg.output == "" {
			cfg.output = defaultOpeningPath
		}
	case evaluate && !opening:
		cfg.mode = modeEvaluate
		cfg.tree = graph.Options{TurnLimit: graph.EvaluateTurns}
		if cfg.output == "" {
			cfg.output = defaultEvalPath
		}
	default:
		return cfg, errMode
	}
	if set["t"] || set["turn"] {
		if turns < 0 {
			return cfg, fmt.Errorf("turn must be >= 0, got %d", turns)
		}
		cfg.tree.TurnLimit = turns
	}
	if set["canonicalize"] {
		cfg.tree.Canonicalize = canonicalize
	}
	lvl, err := logx.ParseLevel(level)
	if err != nil {
		return cfg, err
	}
	cfg.level = lvl
	return cfg, nil
}

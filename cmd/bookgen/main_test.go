package main

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/eval"
	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/ingest"
)

func noEnv(string) string { return "" }

func TestParseConfigDefaults(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		mode         mode
		output       string
		turns        int
		canonicalize bool
	}{
		{"opening", []string{"--opening"}, modeOpening, defaultOpeningPath, graph.OpeningTurns, true},
		{"evaluate", []string{"--evaluate"}, modeEvaluate, defaultEvalPath, graph.EvaluateTurns, false},
		{"short flags", []string{"--opening", "-t", "10", "-o", "x.db", "-r"}, modeOpening, "x.db", 10, true},
		{"long flags", []string{"--evaluate", "--turn=30", "--out", "w.db", "--canonicalize"}, modeEvaluate, "w.db", 30, true},
		{"no canonicalize", []string{"--opening", "--canonicalize=false"}, modeOpening, defaultOpeningPath, graph.OpeningTurns, false},
		{"zero turns", []string{"--opening", "-t", "0"}, modeOpening, defaultOpeningPath, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig(tt.args, noEnv, io.Discard)
			require.NoError(t, err)
			require.Equal(t, tt.mode, cfg.mode)
			require.Equal(t, tt.output, cfg.output)
			require.Equal(t, tt.turns, cfg.tree.TurnLimit)
			require.Equal(t, tt.canonicalize, cfg.tree.Canonicalize)
			require.Equal(t, defaultRecordPath, cfg.input)
			require.Equal(t, zerolog.InfoLevel, cfg.level)
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no mode", nil},
		{"both modes", []string{"--opening", "--evaluate"}},
		{"negative turn", []string{"--opening", "-t", "-1"}},
		{"bad turn", []string{"--opening", "-t", "many"}},
		{"bad level", []string{"--opening", "--log-level", "loud"}},
		{"extra args", []string{"--opening", "more"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(tt.args, noEnv, io.Discard)
			require.Error(t, err)
		})
	}

	_, err := parseConfig(nil, noEnv, io.Discard)
	require.ErrorIs(t, err, errMode)
}

func TestParseConfigEnv(t *testing.T) {
	env := map[string]string{
		"OTHELLOBOOK_RECORD":         "/data/games.db.zst",
		"OTHELLOBOOK_LOG_LEVEL":      "debug",
		"OTHELLOBOOK_PROGRESS_EVERY": "5000",
	}
	cfg, err := parseConfig([]string{"--opening"}, func(k string) string { return env[k] }, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "/data/games.db.zst", cfg.input)
	require.Equal(t, zerolog.DebugLevel, cfg.level)
	require.Equal(t, int64(5000), cfg.ingest.ProgressEvery)

	cfg, err = parseConfig([]string{"--opening", "-f", "local.db"}, func(k string) string { return env[k] }, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "local.db", cfg.input)
}

func TestCreateOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.db")

	f, err := createOutput(path, false)
	require.NoError(t, err)
	_, err = f.Write([]byte("previous contents"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = createOutput(path, false)
	require.ErrorIs(t, err, fs.ErrExist)

	f, err = createOutput(path, true)
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func writeRecords(t *testing.T, recs ...graph.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "record.db")
	var data []byte
	for _, r := range recs {
		data = append(data, r.Encode()...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testConfig(t *testing.T, m mode, input string) config {
	t.Helper()
	cfg := config{
		input: input,
		mode:  m,
		level: zerolog.InfoLevel,
	}
	switch m {
	case modeOpening:
		cfg.output = filepath.Join(t.TempDir(), "opening.db")
		cfg.tree = graph.Options{TurnLimit: graph.OpeningTurns, Canonicalize: true}
	case modeEvaluate:
		cfg.output = filepath.Join(t.TempDir(), "eval.db")
		cfg.tree = graph.Options{TurnLimit: graph.EvaluateTurns}
	}
	return cfg
}

func TestRunOpening(t *testing.T) {
	input := writeRecords(t,
		graph.NewRecord([]graph.Code{0x23, 0x10}, 35, 29),
		graph.NewRecord([]graph.Code{0x32, 0x01}, 35, 29),
	)
	cfg := testConfig(t, modeOpening, input)
	require.NoError(t, run(context.Background(), cfg, zerolog.Nop()))

	data, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	require.Len(t, data, 32+32+8)

	rd, err := book.Open(cfg.output, 0)
	require.NoError(t, err)
	defer rd.Close()
	e, err := rd.Find([]graph.Code{0x23, 0x10})
	require.NoError(t, err)
	require.Equal(t, 6.0, e.Score)
	require.False(t, e.HasChild())

	// A second run must not clobber the book.
	err = run(context.Background(), cfg, zerolog.Nop())
	require.ErrorIs(t, err, fs.ErrExist)
	again, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	require.Equal(t, data, again)

	cfg.replace = true
	require.NoError(t, run(context.Background(), cfg, zerolog.Nop()))
}

func TestRunEvaluate(t *testing.T) {
	input := writeRecords(t,
		graph.NewRecord([]graph.Code{graph.Encode(2, 3), graph.Encode(2, 2)}, 40, 24),
		graph.NewRecord([]graph.Code{graph.Encode(5, 4), graph.Encode(3, 5)}, 20, 44),
	)
	cfg := testConfig(t, modeEvaluate, input)
	require.NoError(t, run(context.Background(), cfg, zerolog.Nop()))

	f, err := os.Open(cfg.output)
	require.NoError(t, err)
	defer f.Close()
	w, err := eval.ReadWeights(f)
	require.NoError(t, err)
	require.Equal(t, [eval.NumFeatures]float64{}, w[0])
}

func TestRunRemovesOutputOnFailure(t *testing.T) {
	input := filepath.Join(t.TempDir(), "record.db")
	require.NoError(t, os.WriteFile(input, make([]byte, graph.RecordSize+1), 0o644))

	cfg := testConfig(t, modeOpening, input)
	err := run(context.Background(), cfg, zerolog.Nop())
	require.ErrorIs(t, err, ingest.ErrRecordSize)

	_, err = os.Stat(cfg.output)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/othellobook/internal/graph"
)

func sampleRecords() []byte {
	var buf bytes.Buffer
	buf.Write(graph.NewRecord([]graph.Code{0x23, 0x10}, 35, 29).Encode())
	buf.Write(graph.NewRecord([]graph.Code{0x32, 0x01}, 35, 29).Encode())
	buf.Write(graph.NewRecord([]graph.Code{0x54, 0x55, 0x45}, 20, 44).Encode())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeZstd(t *testing.T, name string, data []byte) string {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return writeFile(t, name, enc.EncodeAll(data, nil))
}

func opening() graph.Options {
	return graph.Options{TurnLimit: graph.OpeningTurns, Canonicalize: true}
}

func TestBuildTreePlain(t *testing.T) {
	path := writeFile(t, "record.db", sampleRecords())

	tree, res, err := BuildTree(context.Background(), path, opening(), Config{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Records)
	require.Equal(t, int64(3), tree.Records())
	require.Equal(t, 3.0, tree.Node(graph.Root).Plays)
	require.Equal(t, []graph.Code{graph.CanonicalFirst}, tree.Children(graph.Root))
}

func TestBuildTreeZstd(t *testing.T) {
	path := writeZstd(t, "record.db.zst", sampleRecords())

	src, err := Open(path)
	require.NoError(t, err)
	require.True(t, src.Compressed())
	require.Equal(t, int64(-1), src.Records())
	require.NoError(t, src.Close())

	tree, res, err := BuildTree(context.Background(), path, opening(), Config{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Records)
	require.Equal(t, 3.0, tree.Node(graph.Root).Plays)
}

func TestOpenRejectsPartialRecord(t *testing.T) {
	data := append(sampleRecords(), 0x23, 0x10)
	path := writeFile(t, "record.db", data)

	_, err := Open(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRecordSize))
}

func TestZstdPartialRecord(t *testing.T) {
	data := append(sampleRecords(), 0x23, 0x10)
	path := writeZstd(t, "record.db.zst", data)

	_, _, err := BuildTree(context.Background(), path, opening(), Config{Logger: zerolog.Nop()})
	require.ErrorIs(t, err, ErrRecordSize)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunMaxRecords(t *testing.T) {
	tree := graph.NewTree(opening())
	w := NewWorker(Config{MaxRecords: 2, Logger: zerolog.Nop()})
	res, err := w.Run(context.Background(), bytes.NewReader(sampleRecords()), tree)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Records)
	require.Equal(t, 2.0, tree.Node(graph.Root).Plays)
}

func TestRunLogsProgressAtInfo(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs).Level(zerolog.InfoLevel)

	tree := graph.NewTree(opening())
	w := NewWorker(Config{ProgressEvery: 1, Logger: log})
	_, err := w.Run(context.Background(), bytes.NewReader(sampleRecords()), tree)
	require.NoError(t, err)
	require.Equal(t, 3, bytes.Count(logs.Bytes(), []byte(`"message":"ingest progress"`)))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree := graph.NewTree(opening())
	res, err := NewWorker(Config{Logger: zerolog.Nop()}).Run(ctx, bytes.NewReader(sampleRecords()), tree)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, res.Records)
}

type brokenReader struct{}

var errBroken = errors.New("device unplugged")

func (brokenReader) Read([]byte) (int, error) { return 0, errBroken }

func TestRunReadError(t *testing.T) {
	tree := graph.NewTree(opening())
	_, err := NewWorker(Config{Logger: zerolog.Nop()}).Run(context.Background(), io.MultiReader(bytes.NewReader(sampleRecords()[:64]), brokenReader{}), tree)
	require.ErrorIs(t, err, errBroken)
}

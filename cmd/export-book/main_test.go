package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/eval"
	"github.com/freeeve/othellobook/internal/graph"
)

func TestExportBook(t *testing.T) {
	tree := graph.NewTree(graph.Options{TurnLimit: graph.OpeningTurns, Canonicalize: true})
	tree.Add(graph.NewRecord([]graph.Code{0x23, 0x10}, 35, 29))
	tree.Add(graph.NewRecord([]graph.Code{0x32, 0x01}, 35, 29))

	var buf bytes.Buffer
	_, err := book.Write(&buf, tree)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "opening.db")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	var out bytes.Buffer
	rows, err := exportBook(&out, path)
	require.NoError(t, err)
	require.Equal(t, 2, rows)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"line", "move", "score", "block", "child"},
		{"", "c4", "6", "0", "32"},
		{"c4", "b1", "6", "32", "0"},
	}, records)
}

func TestExportWeights(t *testing.T) {
	var w eval.Weights
	w[3] = [eval.NumFeatures]float64{1.5, -2, 0.25}

	path := filepath.Join(t.TempDir(), "eval.db")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var out bytes.Buffer
	rows, err := exportWeights(&out, path)
	require.NoError(t, err)
	require.Equal(t, eval.Turns, rows)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, eval.Turns+1)
	require.Equal(t, []string{"3", "1.5", "-2", "0.25"}, records[4])
}

func TestExportBookMissingFile(t *testing.T) {
	_, err := exportBook(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
}

// Command export-book dumps an opening book as CSV, one row per entry, or an
// evaluation weight file, one row per turn.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/freeeve/othellobook/internal/book"
	"github.com/freeeve/othellobook/internal/eval"
	"github.com/freeeve/othellobook/internal/graph"
)

func main() {
	var (
		bookPath    = flag.String("book", "./data/opening.db", "opening book file")
		weightsPath = flag.String("weights", "", "evaluation weight file; dumps weights instead of the book")
		outputPath  = flag.String("output", "", "output CSV file (default stdout)")
	)
	flag.Parse()

	out := io.Writer(os.Stdout)
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	var (
		rows int
		err  error
	)
	if *weightsPath != "" {
		rows, err = exportWeights(out, *weightsPath)
	} else {
		rows, err = exportBook(out, *bookPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	if *outputPath != "" {
		fmt.Fprintf(os.Stderr, "Done! exported %d rows to %s\n", rows, *outputPath)
	}
}

// exportBook writes every entry reachable from the root, breadth-first.
func exportBook(w io.Writer, path string) (int, error) {
	rd, err := book.Open(path, 0)
	if err != nil {
		return 0, err
	}
	defer rd.Close()

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"line", "move", "score", "block", "child"}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	err = rd.Walk(func(prefix []graph.Code, b *book.Block) error {
		line := graph.FormatMoves(prefix)
		for _, e := range b.Entries {
			row := []string{
				line,
				e.Move.String(),
				strconv.FormatFloat(e.Score, 'g', -1, 64),
				strconv.FormatUint(b.Offset, 10),
				strconv.FormatUint(e.Child, 10),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return rows, err
	}

	writer.Flush()
	return rows, writer.Error()
}

// exportWeights writes one row per turn.
func exportWeights(w io.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	weights, err := eval.ReadWeights(f)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"turn", "place", "stable", "mobility"}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for turn, tw := range weights {
		row := []string{
			strconv.Itoa(turn),
			strconv.FormatFloat(tw[eval.Place], 'g', -1, 64),
			strconv.FormatFloat(tw[eval.Stable], 'g', -1, 64),
			strconv.FormatFloat(tw[eval.Mobility], 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return turn, fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return eval.Turns, writer.Error()
}

// Package openings names well-known opening lines.
package openings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/freeeve/othellobook/internal/graph"
	"github.com/freeeve/othellobook/internal/othello"
)

// Opening is a named line.
type Opening struct {
	Name  string `json:"name"`
	Moves string `json:"moves"` // canonical orientation
}

// Database holds openings indexed by canonical move prefix.
type Database struct {
	byPrefix map[string]Opening
	longest  int
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{
		byPrefix: make(map[string]Opening),
	}
}

// LoadDir loads all .tsv files from a directory.
func (db *Database) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tsv files found in %s", dir)
	}

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFile loads a single TSV file.
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return db.Load(f)
}

// Load reads "name<TAB>moves" lines. A leading "name\tmoves" header is
// skipped; lines that do not parse or replay legally are ignored, and so are
// lines folding onto a line already loaded.
func (db *Database) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if lineNum == 1 && strings.HasPrefix(line, "name\t") {
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		codes, err := graph.ParseMoves(parts[1])
		if err != nil || len(codes) == 0 {
			continue
		}
		if _, err := othello.Replay(codes); err != nil {
			continue
		}

		db.add(parts[0], graph.Canonicalize(codes))
	}

	return scanner.Err()
}

// add keeps the first name seen for a canonical line; later lines that fold
// onto it are ignored.
func (db *Database) add(name string, codes []graph.Code) {
	key := graph.FormatMoves(codes)
	if _, ok := db.byPrefix[key]; ok {
		return
	}
	db.byPrefix[key] = Opening{Name: name, Moves: key}
	if len(codes) > db.longest {
		db.longest = len(codes)
	}
}

// Lookup returns the opening with the longest prefix of codes, or nil.
// codes must be in canonical orientation.
func (db *Database) Lookup(codes []graph.Code) *Opening {
	n := len(codes)
	if n > db.longest {
		n = db.longest
	}
	for ; n > 0; n-- {
		if o, ok := db.byPrefix[graph.FormatMoves(codes[:n])]; ok {
			return &o
		}
	}
	return nil
}

// Count returns the number of distinct canonical lines loaded.
func (db *Database) Count() int {
	return len(db.byPrefix)
}

package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/freeeve/othellobook/internal/graph"
)

// ErrRecordSize is returned when the input is not a whole number of records.
var ErrRecordSize = errors.New("input length is not a multiple of the record size")

// Adder receives raw records. *graph.Tree implements it.
type Adder interface {
	AddPlay(buf []byte) error
}

// Source is a stream of fixed-size records from a plain or zstd file.
type Source struct {
	Path string

	r       io.Reader
	size    int64 // on-disk size, compressed for .zst
	zstd    bool
	closers []func() error
}

// Open opens a record file. Files ending in .zst are decompressed on the fly.
// Plain files are rejected up front when their length is not a multiple of
// the record size; compressed streams are checked as they are read.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	src := &Source{
		Path:    path,
		size:    fi.Size(),
		zstd:    isZstdFile(path),
		closers: []func() error{f.Close},
	}

	if src.zstd {
		dec, err := zstd.NewReader(bufio.NewReaderSize(f, 1<<20))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		src.r = dec
		src.closers = append(src.closers, func() error {
			dec.Close()
			return nil
		})
		return src, nil
	}

	if fi.Size()%graph.RecordSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrRecordSize, path, fi.Size())
	}
	src.r = bufio.NewReaderSize(f, 1<<20)
	return src, nil
}

// Read implements io.Reader.
func (s *Source) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Records returns the number of records in a plain file, or -1 when the
// source is compressed and the count is not known in advance.
func (s *Source) Records() int64 {
	if s.zstd {
		return -1
	}
	return s.size / graph.RecordSize
}

// Compressed reports whether the source is a zstd stream.
func (s *Source) Compressed() bool {
	return s.zstd
}

// Close releases the decoder and the file.
func (s *Source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Config configures a Worker.
type Config struct {
	ProgressEvery int64          // Log progress every N records (default 100)
	MaxRecords    int64          // Stop after N records (0 = unlimited)
	Logger        zerolog.Logger // Logger
}

// Worker feeds records from a source into a tree.
type Worker struct {
	cfg Config
	log zerolog.Logger
}

// Result summarises one run.
type Result struct {
	Records int64
	Elapsed time.Duration
}

// NewWorker creates a worker, filling in defaults.
func NewWorker(cfg Config) *Worker {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	return &Worker{
		cfg: cfg,
		log: cfg.Logger,
	}
}

// Run reads src to the end, one record at a time, adding each to dst.
// A trailing partial record is ErrRecordSize. Cancellation is checked
// between records.
func (w *Worker) Run(ctx context.Context, src io.Reader, dst Adder) (Result, error) {
	startTime := time.Now()
	var res Result
	buf := make([]byte, graph.RecordSize)

	for {
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(startTime)
			return res, ctx.Err()
		default:
		}

		if w.cfg.MaxRecords > 0 && res.Records >= w.cfg.MaxRecords {
			w.log.Info().Int64("records", res.Records).Msg("reached max records limit")
			break
		}

		_, err := io.ReadFull(src, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			res.Elapsed = time.Since(startTime)
			return res, fmt.Errorf("%w: trailing partial record after %d records", ErrRecordSize, res.Records)
		}
		if err != nil {
			res.Elapsed = time.Since(startTime)
			return res, fmt.Errorf("read record %d: %w", res.Records, err)
		}

		if err := dst.AddPlay(buf); err != nil {
			res.Elapsed = time.Since(startTime)
			return res, fmt.Errorf("add record %d: %w", res.Records, err)
		}
		res.Records++

		if res.Records%w.cfg.ProgressEvery == 0 {
			w.log.Info().Int64("records", res.Records).Msg("ingest progress")
		}
	}

	res.Elapsed = time.Since(startTime)
	w.log.Info().
		Int64("records", res.Records).
		Dur("elapsed", res.Elapsed).
		Float64("records_per_sec", float64(res.Records)/res.Elapsed.Seconds()).
		Msg("ingest complete")
	return res, nil
}

// BuildTree opens path, ingests every record into a new tree and returns it.
func BuildTree(ctx context.Context, path string, opts graph.Options, cfg Config) (*graph.Tree, Result, error) {
	src, err := Open(path)
	if err != nil {
		return nil, Result{}, err
	}
	defer src.Close()

	log := cfg.Logger
	log.Info().
		Str("file", filepath.Base(path)).
		Bool("zstd", src.Compressed()).
		Int64("records", src.Records()).
		Int("turns", opts.TurnLimit).
		Bool("canonicalize", opts.Canonicalize).
		Msg("loaded record file")

	tree := graph.NewTree(opts)
	res, err := NewWorker(cfg).Run(ctx, src, tree)
	if err != nil {
		return nil, res, err
	}
	return tree, res, nil
}

func isZstdFile(name string) bool {
	return filepath.Ext(name) == ".zst"
}

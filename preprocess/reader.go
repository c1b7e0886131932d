package preprocess

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"
)

// RawRecord is one source row projected onto the schema. Values holds one
// entry per schema column; absent optional columns hold "".
type RawRecord struct {
	Line   int
	Values []string
}

// ReadStats counts rows seen by a Reader.
type ReadStats struct {
	Rows      int
	Malformed int
}

// Reader streams projected records from a delimited source.
type Reader struct {
	csv     *csv.Reader
	closer  io.Closer
	schema  *Schema
	binding *Binding
	logger  *slog.Logger
	stats   ReadStats
	err     error

	delimiter  rune
	lazyQuotes bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithDelimiter sets the field delimiter. The default is tab.
func WithDelimiter(d rune) ReaderOption {
	return func(r *Reader) {
		r.delimiter = d
	}
}

// WithLazyQuotes toggles tolerant quote handling. The default is on.
func WithLazyQuotes(lazy bool) ReaderOption {
	return func(r *Reader) {
		r.lazyQuotes = lazy
	}
}

// WithReaderLogger sets the logger used for skipped-row diagnostics.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// OpenSource opens the file at path and reads its header.
func OpenSource(path string, schema *Schema, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	r, err := NewReader(f, schema, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header from src and binds it to schema. Header
// problems are returned here; row problems are counted while iterating.
func NewReader(src io.Reader, schema *Schema, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		schema:     schema,
		logger:     slog.Default(),
		delimiter:  '\t',
		lazyQuotes: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	// skip BOM if present
	br := bufio.NewReaderSize(src, 1<<20)
	if first3, _ := br.Peek(3); len(first3) == 3 && first3[0] == 0xEF && first3[1] == 0xBB && first3[2] == 0xBF {
		br.Discard(3)
	}

	r.csv = csv.NewReader(br)
	r.csv.Comma = r.delimiter
	r.csv.LazyQuotes = r.lazyQuotes
	r.csv.FieldsPerRecord = -1
	r.csv.ReuseRecord = true

	header, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrSourceUnreadable, err)
	}

	r.binding, err = schema.Bind(header)
	if err != nil {
		return nil, err
	}
	if absent := r.binding.Absent(); len(absent) > 0 {
		r.logger.Warn("optional columns missing from source", "columns", strings.Join(absent, ","))
	}
	return r, nil
}

// Records yields projected rows lazily. Malformed rows are skipped and
// counted. Iteration stops on the first I/O error, which Err then returns.
func (r *Reader) Records() iter.Seq[RawRecord] {
	return func(yield func(RawRecord) bool) {
		for {
			record, err := r.csv.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					r.skip(perr.StartLine, err)
					continue
				}
				r.err = fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
				return
			}

			line, _ := r.csv.FieldPos(0)
			values, ok := r.binding.Project(record)
			if !ok {
				r.skip(line, fmt.Errorf("%d fields, header has %d", len(record), r.binding.width))
				continue
			}

			r.stats.Rows++
			if !yield(RawRecord{Line: line, Values: values}) {
				return
			}
		}
	}
}

func (r *Reader) skip(line int, cause error) {
	r.stats.Malformed++
	r.logger.Debug("skipping malformed row", "line", line, "error", cause)
}

// Schema returns the schema the reader projects onto.
func (r *Reader) Schema() *Schema {
	return r.schema
}

// Err returns the I/O error that ended iteration, if any.
func (r *Reader) Err() error {
	return r.err
}

// Stats returns row counters accumulated so far.
func (r *Reader) Stats() ReadStats {
	return r.stats
}

// Close closes the underlying file when the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

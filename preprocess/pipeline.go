// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package preprocess

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/foodfacts/core"
)

// Options configures one preprocessing run.
type Options struct {
	SourcePath  string
	Delimiter   rune
	LazyQuotes  bool
	OutputPath  string
	Indent      int
	TargetCount int
	Seed        uint64
	Schema      *Schema
	Logger      *slog.Logger
}

// DefaultOptions returns Options for the standard tab separated export.
func DefaultOptions() Options {
	return Options{
		SourcePath:  "en.openfoodfacts.org.products.tsv",
		Delimiter:   '\t',
		LazyQuotes:  true,
		OutputPath:  "openfoodfacts_cleaned.json",
		Indent:      2,
		TargetCount: 166288,
		Seed:        42,
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.SourcePath) == "" {
		return fmt.Errorf("%w: source path is empty", ErrInvalidOptions)
	}
	if strings.TrimSpace(o.OutputPath) == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidOptions)
	}
	if o.TargetCount < 0 {
		return fmt.Errorf("%w: target count %d is negative", ErrInvalidOptions, o.TargetCount)
	}
	if o.Indent < 0 {
		return fmt.Errorf("%w: indent %d is negative", ErrInvalidOptions, o.Indent)
	}
	return nil
}

// Result is the outcome of Run.
type Result struct {
	Summary  *Summary
	Products []*core.Product
	Elapsed  time.Duration
}

// Run reads, cleans, samples and exports the source described by opts.
// Source and export failures are fatal; malformed rows are skipped and
// counted in the summary.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	schema := opts.Schema
	if schema == nil {
		schema = DefaultSchema()
	}
	start := time.Now()

	reader, err := OpenSource(opts.SourcePath, schema,
		WithDelimiter(opts.Delimiter),
		WithLazyQuotes(opts.LazyQuotes),
		WithReaderLogger(logger))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	logger.Info("reading source", "path", opts.SourcePath)

	cleaner := NewCleaner(schema, WithCleanerLogger(logger))
	products := cleaner.Clean(reader.Records())
	if err := reader.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := cleaner.Stats()
	logger.Info("cleaned records",
		"rows", reader.Stats().Rows,
		"malformed", reader.Stats().Malformed,
		"kept", len(products),
		"missing_code", stats.MissingCode)

	sampled := Sample(products, opts.TargetCount, opts.Seed)
	logger.Info("sampled records", "target", opts.TargetCount, "seed", opts.Seed, "selected", len(sampled))

	size, err := Export(opts.OutputPath, sampled, opts.Indent)
	if err != nil {
		return nil, err
	}
	logger.Info("exported artifact", "path", opts.OutputPath, "bytes", size)

	summary := Summarize(sampled, 5)
	summary.Read = reader.Stats()
	summary.Clean = stats
	summary.OutputPath = opts.OutputPath
	summary.SizeBytes = size

	return &Result{
		Summary:  summary,
		Products: sampled,
		Elapsed:  time.Since(start),
	}, nil
}

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

package importer

import (
	"io"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Progress reports bulk load throughput on a single, rewritten line.
// It is safe for concurrent use by pool workers.
type Progress struct {
	printer  *message.Printer
	writer   io.Writer
	total    int
	every    int
	done     int
	failed   int
	reported int
	start    time.Time
	mu       sync.Mutex
}

// NewProgress creates a tracker for total documents that reports every
// `every` documents. A nil writer disables output.
func NewProgress(writer io.Writer, total, every int) *Progress {
	if writer == nil {
		writer = io.Discard
	}
	if every < 1 {
		every = 1
	}
	return &Progress{
		printer: message.NewPrinter(language.English),
		writer:  writer,
		total:   total,
		every:   every,
		start:   time.Now(),
	}
}

// Add records a finished batch of inserted and failed documents.
func (p *Progress) Add(inserted, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done += inserted + failed
	p.failed += failed
	if p.done-p.reported >= p.every {
		p.report()
		p.reported = p.done
	}
}

// Done returns the documents processed so far.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish prints the final line followed by a newline.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	p.printer.Fprintln(p.writer)
}

// Elapsed returns the time since the tracker was created.
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.start)
}

// report must be called with the lock held.
func (p *Progress) report() {
	rate := 0.0
	if secs := time.Since(p.start).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	p.printer.Fprintf(p.writer, "\rImported: %d/%d (%.1f%%), %d failed - %.0f records/s",
		p.done, p.total, pct, p.failed, rate)
}

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

package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/importer"
	"github.com/poiesic/foodfacts/storage"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Verifier compares an artifact with the store.
type Verifier struct {
	products  storage.ProductRepository
	manifests storage.ManifestRepository
	logger    *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewVerifier creates a Verifier. manifests may be nil, in which case the
// digest check is skipped.
func NewVerifier(products storage.ProductRepository, manifests storage.ManifestRepository, opts ...Option) (*Verifier, error) {
	if products == nil {
		return nil, ErrProductRepositoryRequired
	}
	v := &Verifier{products: products, manifests: manifests, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Report is the outcome of Verify.
type Report struct {
	Artifact      string
	SizeBytes     int64
	ArtifactCount int
	StoreCount    int
	Digest        string
	// Manifest is the last import, or nil when none was recorded.
	Manifest *core.ImportManifest
}

// Match reports whether both counts agree.
func (r *Report) Match() bool {
	return r.ArtifactCount == r.StoreCount
}

// Difference is StoreCount minus ArtifactCount.
func (r *Report) Difference() int {
	return r.StoreCount - r.ArtifactCount
}

// DigestMatch reports whether the artifact is the one last imported. It is
// false when no manifest exists.
func (r *Report) DigestMatch() bool {
	return r.Manifest != nil && r.Manifest.Digest == r.Digest
}

// Err returns ErrCountMismatch or ErrDigestMismatch when the check failed.
func (r *Report) Err() error {
	if !r.Match() {
		return fmt.Errorf("%w: artifact has %d, store has %d", ErrCountMismatch, r.ArtifactCount, r.StoreCount)
	}
	if r.Manifest != nil && !r.DigestMatch() {
		return ErrDigestMismatch
	}
	return nil
}

// Verify streams the artifact at path and compares it with the store. The
// returned error covers failures to perform the check; use Report.Err for
// the verdict.
func (v *Verifier) Verify(ctx context.Context, path string) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	report := &Report{Artifact: path, SizeBytes: info.Size()}

	if report.ArtifactCount, err = importer.CountArtifact(path); err != nil {
		return nil, err
	}
	if report.Digest, err = core.DigestFile(path); err != nil {
		return nil, err
	}
	if report.StoreCount, err = v.products.CountProducts(ctx); err != nil {
		return nil, err
	}
	if v.manifests != nil {
		manifest, err := v.manifests.LoadManifest(ctx)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			v.logger.Warn("no import manifest recorded")
		case err != nil:
			return nil, err
		default:
			report.Manifest = manifest
		}
	}

	v.logger.Debug("verification complete",
		"artifact", report.ArtifactCount,
		"store", report.StoreCount,
		"digest_match", report.DigestMatch())
	return report, nil
}

// Write renders the report as human readable text.
func (r *Report) Write(w io.Writer) error {
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("=", 70)
	var b strings.Builder

	p.Fprintf(&b, "%s\nARTIFACT VERIFICATION\n%s\n", rule, rule)
	p.Fprintf(&b, "\nFile:      %s\n", r.Artifact)
	p.Fprintf(&b, "File size: %.2f MB\n", float64(r.SizeBytes)/(1024*1024))
	p.Fprintf(&b, "\nRecords in artifact: %d\n", r.ArtifactCount)
	p.Fprintf(&b, "Records in store:    %d\n", r.StoreCount)
	if r.Match() {
		p.Fprintf(&b, "Match: YES\n")
	} else {
		p.Fprintf(&b, "Match: NO\n")
		diff := r.Difference()
		p.Fprintf(&b, "Difference: %d records\n", abs(diff))
		if diff < 0 {
			p.Fprintf(&b, "  Missing in store: %d records\n", -diff)
		} else {
			p.Fprintf(&b, "  Extra in store:   %d records\n", diff)
		}
	}

	p.Fprintf(&b, "\nDigest: %s\n", r.Digest)
	switch {
	case r.Manifest == nil:
		p.Fprintf(&b, "No import recorded for this store.\n")
	case r.DigestMatch():
		p.Fprintf(&b, "Matches import %s (%s)\n", r.Manifest.RunID, r.Manifest.FinishedAt.Format("2006-01-02 15:04:05"))
	default:
		p.Fprintf(&b, "Differs from import %s, which loaded %s\n", r.Manifest.RunID, r.Manifest.Digest)
	}
	p.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

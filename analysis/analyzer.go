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

package analysis

import (
	"log/slog"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/storage"
)

// Analyzer runs aggregation queries against a product repository.
type Analyzer struct {
	products  storage.ProductRepository
	logger    *slog.Logger
	maxEnergy float64
	monitor   QueryMonitor
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithMaxEnergy excludes products whose energy is at or above max from
// energy queries. Zero disables the bound.
func WithMaxEnergy(max float64) Option {
	return func(a *Analyzer) error {
		if max < 0 {
			max = 0
		}
		a.maxEnergy = max
		return nil
	}
}

// WithMonitor observes every query.
func WithMonitor(monitor QueryMonitor) Option {
	return func(a *Analyzer) error {
		if monitor == nil {
			monitor = noopMonitor{}
		}
		a.monitor = monitor
		return nil
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(products storage.ProductRepository, opts ...Option) (*Analyzer, error) {
	if products == nil {
		return nil, ErrProductRepositoryRequired
	}

	a := &Analyzer{
		products: products,
		logger:   slog.Default(),
		monitor:  noopMonitor{},
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// MaxEnergy returns the energy bound, or 0 when unbounded.
func (a *Analyzer) MaxEnergy() float64 {
	return a.maxEnergy
}

// accepts reports whether value passes the metric filter: strictly
// positive, and below the energy bound for energy.
func (a *Analyzer) accepts(metric core.Metric, value float64) bool {
	if value <= 0 {
		return false
	}
	if metric == core.MetricEnergy && a.maxEnergy > 0 && value >= a.maxEnergy {
		return false
	}
	return true
}

// QueryMonitor provides hooks to observe query execution.
type QueryMonitor interface {
	Start(query string)
	// Finish reports the number of documents read and rows returned.
	Finish(query string, scanned, rows int, err error)
}

type noopMonitor struct{}

var _ QueryMonitor = noopMonitor{}

func (noopMonitor) Start(string)                   {}
func (noopMonitor) Finish(string, int, int, error) {}

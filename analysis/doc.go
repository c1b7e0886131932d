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

// Package analysis runs aggregation queries over the stored products.
//
// The Analyzer answers the questions of the food analytics report:
//   - average of a nutrition metric per countries value
//   - product count per countries value
//   - the products ranking highest on a metric
//   - collection wide averages and maxima
//
// Grouping keys are the raw countries string of each product. Results are
// sorted by value descending with ties broken by key ascending, so two runs
// over the same data always agree. Ranking queries use the numeric
// secondary indexes when they have been built and fall back to a full scan
// otherwise.
package analysis

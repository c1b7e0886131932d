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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
)

var products = []string{
	"Pâte à tartiner aux noisettes",
	"Crème fraîche épaisse",
	"Müsli Früchte",
	"Lebkuchen",
	"Baguette tradition",
	"Organic peanut butter",
	"Sparkling mineral water",
	"Dark chocolate 70%",
	"Greek yoghurt",
	"Corn flakes",
	"Jamón serrano",
	"Smörgåsbröd",
	"緑茶",
	"Kimchi 김치",
	"Tomato ketchup",
	"Gummy bears",
	"Oat drink",
	"Salted butter",
	"Penne rigate",
	"Extra virgin olive oil",
}

var brands = []string{"Ferrero", "Danone", "Nestlé", "Haribo", "Barilla", "Oatly", "", "Carrefour", "Migros", "Lidl"}

var countries = []string{
	"France", "Germany", "United States", "Spain", "Switzerland", "Italy",
	"United Kingdom", "Sweden", "Japan", "South Korea", "France,Germany", "",
}

var categories = []string{"Spreads", "Dairies", "Beverages", "Snacks", "Breakfasts", "Meats", "Condiments", ""}

// naTokens are cells a pandas reader treats as missing.
var naTokens = []string{"", "NA", "NaN", "null", "N/A", " "}

var header = []string{
	"code", "url", "creator", "product_name", "generic_name", "brands", "categories",
	"categories_tags", "countries", "countries_tags", "ingredients_text", "allergens",
	"additives_tags", "serving_size", "energy_100g", "fat_100g", "saturated-fat_100g",
	"carbohydrates_100g", "sugars_100g", "fiber_100g", "proteins_100g", "salt_100g",
	"sodium_100g", "nutrition-score-fr_100g",
}

var (
	outFileName = flag.String("out", "en.openfoodfacts.org.products.tsv", "output TSV file")
	rowCount    = flag.Int("rows", 10000, "number of data rows to write")
	seed        = flag.Uint64("seed", 7, "generator seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

type generator struct {
	rng  *rand.Rand
	seen []string
}

func newGenerator(seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (g *generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

func (g *generator) number(limit float64) string {
	switch g.rng.IntN(20) {
	case 0:
		return g.pick(naTokens)
	case 1:
		return "unknown"
	}
	return strconv.FormatFloat(float64(int(g.rng.Float64()*limit*100))/100, 'f', -1, 64)
}

// row builds one record. Roughly one in twenty rows repeats an earlier code
// and one in twenty has no product name.
func (g *generator) row(i int) []string {
	code := fmt.Sprintf("%013d", 3000000000000+i)
	if len(g.seen) > 0 && g.rng.IntN(20) == 0 {
		code = g.seen[g.rng.IntN(len(g.seen))]
	} else {
		g.seen = append(g.seen, code)
	}

	name := g.pick(products)
	if g.rng.IntN(20) == 0 {
		name = g.pick(naTokens)
	}
	country := g.pick(countries)
	category := g.pick(categories)

	energy, fat, carbs, sugars, proteins := g.number(3800), g.number(100), g.number(100), g.number(100), g.number(50)
	if g.rng.IntN(25) == 0 {
		energy, fat, carbs, sugars, proteins = "", "", "", "", ""
	}

	return []string{
		code,
		"http://world-en.openfoodfacts.org/product/" + code,
		"seeder",
		name,
		"",
		g.pick(brands),
		category,
		strings.ToLower("en:" + category),
		country,
		strings.ToLower("en:" + strings.ReplaceAll(country, " ", "-")),
		"sugar, salt",
		"",
		"",
		"100 g",
		energy, fat, g.number(50), carbs, sugars, g.number(20), proteins, g.number(5), g.number(2), g.number(40),
	}
}

// malformed returns a line with more fields than the header, which the
// reader must skip.
func (g *generator) malformed(i int) string {
	fields := make([]string, len(header)+1+g.rng.IntN(4))
	for j := range fields {
		fields[j] = strconv.Itoa(i)
	}
	return strings.Join(fields, "\t")
}

// rows yields n formatted lines, with an occasional malformed one.
func (g *generator) rows(n int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range n {
			line := strings.Join(g.row(i), "\t")
			if g.rng.IntN(100) == 0 {
				line = g.malformed(i)
			}
			if !yield(line) {
				return
			}
		}
	}
}

func write(w io.Writer, lines iter.Seq[string]) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return 0, err
	}
	count := 0
	for line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return count, err
		}
		count++
	}
	return count, bw.Flush()
}

func main() {
	flag.Parse()

	f, err := os.Create(*outFileName)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	count, err := write(f, newGenerator(*seed).rows(*rowCount))
	if err != nil {
		panic(err)
	}
	slog.Info("wrote synthetic export", "path", *outFileName, "rows", count, "seed", *seed)
}

package preprocess

import (
	"math/rand/v2"
	"slices"

	"github.com/poiesic/foodfacts/core"
)

// Sample returns min(target, len(products)) products chosen uniformly
// without replacement.
//
// When len(products) <= target the input is returned unchanged. Otherwise
// a PCG generator seeded with (seed, seed) drives a partial Fisher-Yates
// shuffle over the record indices; each draw in [0, n) uses rejection
// sampling on Uint64 so it is unbiased and independent of platform. The
// chosen indices are emitted in ascending order, so the sample preserves
// source order and is bit-for-bit reproducible for a given input and seed.
func Sample(products []*core.Product, target int, seed uint64) []*core.Product {
	n := len(products)
	if target < 0 {
		target = 0
	}
	if n <= target {
		return products
	}

	src := rand.NewPCG(seed, seed)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < target; i++ {
		j := i + int(uniform(src, uint64(n-i)))
		idx[i], idx[j] = idx[j], idx[i]
	}

	chosen := idx[:target]
	slices.Sort(chosen)

	out := make([]*core.Product, target)
	for k, i := range chosen {
		out[k] = products[i]
	}
	return out
}

// uniform returns a value in [0, bound) drawn from src. Values below
// 2^64 mod bound are rejected so every residue is equally likely.
func uniform(src rand.Source, bound uint64) uint64 {
	threshold := -bound % bound
	for {
		r := src.Uint64()
		if r >= threshold {
			return r % bound
		}
	}
}

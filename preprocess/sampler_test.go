package preprocess

import (
	"math/rand/v2"
	"testing"

	"github.com/poiesic/foodfacts/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_SmallInputUnchanged(t *testing.T) {
	in := numbered(3)

	out := Sample(in, 5, 42)

	assert.Equal(t, in, out)
}

func TestSample_ExactTargetUnchanged(t *testing.T) {
	in := numbered(5)
	assert.Equal(t, in, Sample(in, 5, 42))
}

func TestSample_ReproducibleSubset(t *testing.T) {
	in := numbered(100)

	first := Sample(in, 2, 42)
	second := Sample(in, 2, 42)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first[0].Code, first[1].Code)
}

func TestSample_KnownSubset(t *testing.T) {
	cases := []struct {
		n, target int
		seed      uint64
		want      []string
	}{
		{n: 100, target: 2, seed: 42, want: []string{"10", "78"}},
		{n: 10, target: 3, seed: 7, want: []string{"5", "6", "8"}},
		{n: 12, target: 4, seed: 42, want: []string{"0", "1", "2", "4"}},
	}
	for _, tc := range cases {
		out := Sample(numbered(tc.n), tc.target, tc.seed)
		codes := make([]string, len(out))
		for i, p := range out {
			codes[i] = p.Code
		}
		assert.Equal(t, tc.want, codes, "n=%d target=%d seed=%d", tc.n, tc.target, tc.seed)
	}
}

func TestSample_PreservesSourceOrder(t *testing.T) {
	in := numbered(1000)
	position := make(map[*core.Product]int, len(in))
	for i, p := range in {
		position[p] = i
	}

	out := Sample(in, 250, 7)

	require.Len(t, out, 250)
	for i := 1; i < len(out); i++ {
		assert.Less(t, position[out[i-1]], position[out[i]])
	}
}

func TestSample_WithoutReplacement(t *testing.T) {
	in := numbered(500)
	out := Sample(in, 499, 1)

	seen := make(map[*core.Product]bool)
	for _, p := range out {
		assert.False(t, seen[p])
		seen[p] = true
	}
	assert.Len(t, seen, 499)
}

func TestSample_SeedChangesSelection(t *testing.T) {
	in := numbered(10000)

	a := Sample(in, 10, 42)
	b := Sample(in, 10, 43)

	assert.NotEqual(t, a, b)
}

func TestSample_ZeroAndNegativeTarget(t *testing.T) {
	in := numbered(10)
	assert.Empty(t, Sample(in, 0, 42))
	assert.Empty(t, Sample(in, -3, 42))
	assert.Empty(t, Sample(nil, 10, 42))
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	in := numbered(50)
	before := append([]*core.Product(nil), in...)

	Sample(in, 10, 42)

	assert.Equal(t, before, in)
}

func TestUniform_InRange(t *testing.T) {
	src := rand.NewPCG(1, 1)
	for _, bound := range []uint64{1, 2, 3, 7, 1 << 33, 1<<63 + 5} {
		for i := 0; i < 100; i++ {
			assert.Less(t, uniform(src, bound), bound)
		}
	}
}

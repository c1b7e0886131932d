package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/poiesic/foodfacts/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	_, err := write(&a, newGenerator(1).rows(200))
	require.NoError(t, err)
	_, err = write(&b, newGenerator(1).rows(200))
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestWrite_ReadableByCleaner(t *testing.T) {
	var buf bytes.Buffer
	n, err := write(&buf, newGenerator(3).rows(2000))
	require.NoError(t, err)
	assert.Equal(t, 2000, n)

	reader, err := preprocess.NewReader(strings.NewReader(buf.String()), preprocess.DefaultSchema())
	require.NoError(t, err)
	cleaner := preprocess.NewCleaner(preprocess.DefaultSchema())
	products := cleaner.Clean(reader.Records())
	require.NoError(t, reader.Err())

	stats := cleaner.Stats()
	assert.Greater(t, reader.Stats().Malformed, 0)
	assert.Less(t, stats.AfterName, stats.Rows)
	assert.Less(t, stats.AfterDedupe, stats.AfterNutrition)
	assert.NotEmpty(t, products)
}

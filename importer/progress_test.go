package importer

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_ReportsEvery(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 100, 50)

	p.Add(20, 0)
	assert.Empty(t, buf.String())

	p.Add(25, 5)
	assert.Contains(t, buf.String(), "50/100")
	assert.Contains(t, buf.String(), "5 failed")
	assert.Equal(t, 50, p.Done())
}

func TestProgress_Finish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2000, 10000)

	p.Add(2000, 0)
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "2,000/2,000")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "records/s")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestProgress_EmptyTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 0, 1)
	p.Finish()
	assert.Contains(t, buf.String(), "0/0 (100.0%)")
}

func TestProgress_Concurrent(t *testing.T) {
	p := NewProgress(nil, 1000, 10)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				p.Add(9, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, p.Done())
}

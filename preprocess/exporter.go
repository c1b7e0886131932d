package preprocess

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/foodfacts/core"
)

// WriteJSON encodes products as a JSON array of flat objects. Keys follow
// the projection order, non-ASCII text is written unescaped and an empty
// input produces "[]".
func WriteJSON(w io.Writer, products []*core.Product, indent int) error {
	if products == nil {
		products = []*core.Product{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	return enc.Encode(products)
}

// Export writes products to path atomically: the array is written to a
// temporary file in the same directory, synced and renamed over path. On
// failure the temporary file is removed and path is left untouched. It
// returns the size of the written artifact in bytes.
func Export(path string, products []*core.Product, indent int) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err := WriteJSON(bw, products, indent); err != nil {
		return 0, fmt.Errorf("%w: encoding: %w", ErrExportFailed, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	committed = true
	return info.Size(), nil
}

package badger

import (
	"encoding/binary"
	"math"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/foodfacts/core"
)

// Key prefixes for different data types
const (
	productPrefix     = "prodrec"
	productIDSeq      = "prodrecseq"
	productIndexDef   = "prodidxdef"
	productIndex      = "prodidx"
	importManifestKey = "impmanifest"
)

// makeProductKey generates a key for a product by ID.
// Format: prefix:id, with the ID big endian so iteration follows insertion order.
func makeProductKey(id core.ID) []byte {
	prefix := productPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// productIDFromKey extracts the ID from a product or index key.
func productIDFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeIndexDefKey generates the key marking field as indexed.
func makeIndexDefKey(field string) []byte {
	return []byte(productIndexDef + ":" + field)
}

// makeIndexFieldPrefix generates the prefix shared by all entries of one index.
// Format: prefix:field:
func makeIndexFieldPrefix(field string) []byte {
	return []byte(productIndex + ":" + field + ":")
}

// maxIndexedText is the longest text value stored verbatim in an index key.
// Badger rejects keys over 65000 bytes.
const maxIndexedText = 1024

// textDigestSize is the length of the hash suffix of a capped text value.
const textDigestSize = 16

// isCappedText reports whether value is too long to be stored verbatim in an
// index key. Lookups of capped values must re-check the stored product.
func isCappedText(value string) bool {
	return len(value) > maxIndexedText
}

// indexedText returns the value part of a text index key. Long values keep
// their first maxIndexedText bytes followed by 0xFF and a BLAKE2b digest of
// the whole value, so capped and verbatim values never share a length.
func indexedText(value string) []byte {
	if !isCappedText(value) {
		return []byte(value)
	}
	sum := blake2b.Sum256([]byte(value))
	buf := make([]byte, 0, maxIndexedText+1+textDigestSize)
	buf = append(buf, value[:maxIndexedText]...)
	buf = append(buf, 0xFF)
	return append(buf, sum[:textDigestSize]...)
}

// makeTextIndexPrefix generates the prefix for entries with an exact text value.
// Format: prefix:field:indexedText(value)\x00
func makeTextIndexPrefix(field, value string) []byte {
	prefix := makeIndexFieldPrefix(field)
	text := indexedText(value)
	buf := make([]byte, len(prefix)+len(text)+1)
	offset := copy(buf, prefix)
	copy(buf[offset:], text)
	return buf
}

// makeIndexKey generates an index entry for product under field.
// Text fields: prefix:field:indexedText(value)\x00id
// Numeric fields: prefix:field:sortable(value)id
func makeIndexKey(field string, product *core.Product) []byte {
	var head []byte
	if v, ok := product.Number(field); ok {
		prefix := makeIndexFieldPrefix(field)
		head = make([]byte, len(prefix)+8)
		offset := copy(head, prefix)
		binary.BigEndian.PutUint64(head[offset:], sortableFloat(v))
	} else {
		value, _ := product.Text(field)
		head = makeTextIndexPrefix(field, value)
	}
	buf := make([]byte, len(head)+8)
	offset := copy(buf, head)
	binary.BigEndian.PutUint64(buf[offset:], uint64(product.Id))
	return buf
}

// sortableFloat maps a float64 onto a uint64 whose unsigned order matches
// the numeric order of the input.
func sortableFloat(v float64) uint64 {
	bits := math.Float64bits(v)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// seekPastPrefix returns a key that sorts after every key under prefix
// whose suffix is at most n bytes long. Used as the start of reverse scans.
func seekPastPrefix(prefix []byte, n int) []byte {
	buf := make([]byte, len(prefix)+n)
	offset := copy(buf, prefix)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}

package docid

import (
	"fmt"
	"strconv"
	"strings"
)

// Documents are identified as "<prefix>_<row>", where row is the zero-based
// index into the flat corpus table. The visualization layer depends on this
// encoding to map retrieved ids back to plotted points, so it must stay
// bit-exact with the ingestion pipeline.
//
// NOTE: the encoding breaks if a prefix ever contains an underscore followed
// by digits at the end. The default prefix "doc" is safe.

const DefaultPrefix = "doc"

// Encode builds a document id from a prefix and a corpus row index.
func Encode(prefix string, row int) string {
	return fmt.Sprintf("%s_%d", prefix, row)
}

// Decode extracts the corpus row index from a document id.
// It returns an error for ids without an integer suffix.
func Decode(id string) (int, error) {
	idx := strings.LastIndex(id, "_")
	if idx < 0 || idx == len(id)-1 {
		return 0, fmt.Errorf("docid: %q has no row suffix", id)
	}
	row, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("docid: %q has non-integer row suffix: %w", id, err)
	}
	if row < 0 {
		return 0, fmt.Errorf("docid: %q has negative row suffix", id)
	}
	return row, nil
}

package answer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MetadataRendering is the outcome of serializing a metadata mapping for
// the context block. Structured reports whether the JSON form was used or
// the best-effort fallback string.
type MetadataRendering struct {
	Text       string
	Structured bool
}

// RenderMetadata serializes metadata as indented JSON, falling back to a
// plain key=value rendering when marshalling fails. The fallback never
// blocks the turn.
func RenderMetadata(metadata map[string]string) MetadataRendering {
	if len(metadata) == 0 {
		return MetadataRendering{Text: "", Structured: true}
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err == nil {
		return MetadataRendering{Text: string(data), Structured: true}
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s; ", k, metadata[k])
	}
	return MetadataRendering{Text: strings.TrimSuffix(sb.String(), "; "), Structured: false}
}

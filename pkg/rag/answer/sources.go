package answer

import (
	"fmt"
	"strings"

	"pergunte-ao-passado/pkg/store"
)

// RenderSources builds the "Fontes" block appended under an answer that
// had retrieved context. Items are numbered from 1 in retrieval order.
// Returns "" for an empty item list so callers can append unconditionally.
func RenderSources(items []store.RetrievedItem) string {
	if len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("**Fontes:**\n")
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, sourceLabel(item)))
	}
	return sb.String()
}

// sourceLabel picks the most useful reference available in the metadata.
func sourceLabel(item store.RetrievedItem) string {
	title := item.Metadata["parent_title"]
	link := item.Metadata["link"]
	if link == "" {
		link = item.Metadata["parent_linkToArchive"]
	}

	switch {
	case title != "" && link != "":
		return fmt.Sprintf("[%s](%s)", title, link)
	case link != "":
		return link
	case title != "":
		return title
	default:
		return item.ID
	}
}

package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pergunte-ao-passado/internal/entity"
	"pergunte-ao-passado/pkg/docid"
)

// Entry is one processed archive chunk: a child page of an archived
// Publico capture, flattened with its parent capture metadata.
type Entry struct {
	Source                 string `json:"source"`
	Link                   string `json:"link"`
	Text                   string `json:"text"`
	ChildId                int    `json:"child_id"`
	ParentId               string `json:"parent_id"`
	ParentTitle            string `json:"parent_title"`
	ParentOriginalURL      string `json:"parent_originalURL"`
	ParentLinkToArchive    string `json:"parent_linkToArchive"`
	ParentLinkToNoFrame    string `json:"parent_linkToNoFrame"`
	ParentTstamp           string `json:"parent_tstamp"`
	ParentLinkToScreenshot string `json:"parent_linkToScreenshot"`
}

// Metadata flattens the entry into the per-document metadata map stored
// alongside the embedding. Empty fields are omitted.
func (e Entry) Metadata() map[string]string {
	meta := map[string]string{
		"source":    e.Source,
		"link":      e.Link,
		"child_id":  fmt.Sprintf("%d", e.ChildId),
		"parent_id": e.ParentId,
	}
	optional := map[string]string{
		"parent_title":            e.ParentTitle,
		"parent_originalURL":      e.ParentOriginalURL,
		"parent_linkToArchive":    e.ParentLinkToArchive,
		"parent_linkToNoFrame":    e.ParentLinkToNoFrame,
		"parent_tstamp":           e.ParentTstamp,
		"parent_linkToScreenshot": e.ParentLinkToScreenshot,
	}
	for k, v := range optional {
		if v != "" {
			meta[k] = v
		}
	}
	return meta
}

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
	multiLineRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText strips HTML tags, normalizes line breaks and trims the
// whitespace noise typical of scraped archive pages.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = htmlTagRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiLineRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// archiveParent mirrors one timestamped capture in a raw archive dump.
type archiveParent struct {
	Title            string         `json:"title"`
	OriginalURL      string         `json:"originalURL"`
	LinkToArchive    string         `json:"linkToArchive"`
	LinkToNoFrame    string         `json:"linkToNoFrame"`
	Tstamp           string         `json:"tstamp"`
	LinkToScreenshot string         `json:"linkToScreenshot"`
	Children         []archiveChild `json:"children"`
}

type archiveChild struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// ParseArchiveFile turns a raw archive dump (timestamp -> capture with
// children) into cleaned entries. Children with no text after cleaning
// are dropped.
func ParseArchiveFile(data []byte, sourceName string) ([]Entry, error) {
	var parents map[string]archiveParent
	if err := json.Unmarshal(data, &parents); err != nil {
		return nil, fmt.Errorf("failed to parse archive file %s: %w", sourceName, err)
	}

	// Sorted by capture timestamp so repeated ingestion of the same dump
	// assigns the same row ids.
	parentIds := make([]string, 0, len(parents))
	for parentId := range parents {
		parentIds = append(parentIds, parentId)
	}
	sort.Strings(parentIds)

	var entries []Entry
	for _, parentId := range parentIds {
		parent := parents[parentId]
		for i, child := range parent.Children {
			text := CleanText(child.Text)
			if text == "" {
				continue
			}
			entries = append(entries, Entry{
				Source:                 fmt.Sprintf("%s/%s", sourceName, parentId),
				Link:                   child.Link,
				Text:                   text,
				ChildId:                i,
				ParentId:               parentId,
				ParentTitle:            parent.Title,
				ParentOriginalURL:      parent.OriginalURL,
				ParentLinkToArchive:    parent.LinkToArchive,
				ParentLinkToNoFrame:    parent.LinkToNoFrame,
				ParentTstamp:           parent.Tstamp,
				ParentLinkToScreenshot: parent.LinkToScreenshot,
			})
		}
	}
	return entries, nil
}

// LoadEntries reads a single archive JSON file or every .json file in a
// directory.
func LoadEntries(inputPath string) ([]Entry, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	var files []string
	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(inputPath, "*.json"))
		if err != nil {
			return nil, err
		}
		files = matches
	} else {
		files = []string{inputPath}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSON files found in %s", inputPath)
	}

	var entries []Entry
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseArchiveFile(data, filepath.Base(file))
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

// ToDocuments assigns each entry its stable "doc_<row>" id in load order
// and builds the storable documents, embeddings still unset.
func ToDocuments(entries []Entry) []*entity.Document {
	documents := make([]*entity.Document, len(entries))
	for i, e := range entries {
		documents[i] = &entity.Document{
			Id:       docid.Encode(docid.DefaultPrefix, i),
			RowIndex: i,
			Text:     e.Text,
			Metadata: e.Metadata(),
		}
	}
	return documents
}

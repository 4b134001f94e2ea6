// Package mdparse turns the three hand-edited Markdown documents into
// structured records. Every parser is a single-pass line scanner and treats
// missing input as an empty document.
package mdparse

import (
	"bufio"
	"regexp"
	"sort"
	"strings"

	"github.com/cathedral-dev/codexc/internal/fileutil"
	"github.com/cathedral-dev/codexc/internal/model"
)

var (
	pdfTokenRe = regexp.MustCompile(`(?i)[a-z0-9][a-z0-9_\-.]*\.pdf`)
	nodeIDRe   = regexp.MustCompile(`C144N-[0-9]{3}`)
)

// BibliographyDoc is the structured result of scanning the bibliography.
type BibliographyDoc struct {
	// PendingRefs lists every .pdf filename mentioned, sorted and unique.
	// The writer synthesizes a placeholder citation file for each.
	PendingRefs []string
	// Seeds maps node ids to study-seed notes extracted from lines that
	// mention them, deduplicated by a short hash of the source line.
	Seeds map[string][]model.NamedEntry
}

func ParseBibliography(text string) BibliographyDoc {
	doc := BibliographyDoc{Seeds: make(map[string][]model.NamedEntry)}

	pending := make(map[string]bool)
	seen := make(map[string]bool) // nodeID + seed key

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		for _, token := range pdfTokenRe.FindAllString(line, -1) {
			pending[token] = true
		}

		ids := nodeIDRe.FindAllString(line, -1)
		if len(ids) == 0 {
			continue
		}
		key := fileutil.ShortHash(line)
		for _, id := range fileutil.DedupeStrings(ids) {
			if seen[id+"\x00"+key] {
				continue
			}
			seen[id+"\x00"+key] = true
			doc.Seeds[id] = append(doc.Seeds[id], model.NamedEntry{
				Name:  key,
				Notes: []string{line},
			})
		}
	}

	doc.PendingRefs = fileutil.MapKeysSorted(pending)
	for id := range doc.Seeds {
		entries := doc.Seeds[id]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		doc.Seeds[id] = entries
	}
	return doc
}

package source

import (
	"strings"

	"github.com/cathedral-dev/codexc/internal/model"
)

// RawNode is one loosely-typed record from the node map, with scalar-or-list
// fields already coerced but identifiers not yet canonicalized.
type RawNode struct {
	ID         string
	Name       string
	Kind       string
	Status     string
	Lore       string
	Tarot      []string
	Shem       []string
	Lineages   []string
	Roles      []string
	Art        []string
	Sources    []model.Citation
	Safety     model.SafetyLayer
	Fusionists []model.NamedEntry
	Influences []model.NamedEntry
	StudySeed  []model.NamedEntry
}

func coerceNodes(records []map[string]any) []RawNode {
	out := make([]RawNode, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		out = append(out, coerceNode(record))
	}
	return out
}

func coerceNode(record map[string]any) RawNode {
	n := RawNode{
		ID:       asString(record["id"]),
		Name:     asString(record["name"]),
		Kind:     asString(record["kind"]),
		Status:   asString(record["status"]),
		Lore:     firstString(record, "lore_md", "lore"),
		Tarot:    firstStrings(record, "tarot_overlays", "tarot"),
		Shem:     asStrings(record["shem"]),
		Lineages: asStrings(record["lineages"]),
		Roles:    asStrings(record["roles"]),
		Art:      asStrings(record["art"]),
		Sources:  asCitations(record["sources"]),
	}

	layers, _ := record["layers"].(map[string]any)
	if layers != nil {
		if safety, ok := layers["safety"].(map[string]any); ok {
			n.Safety.Strobe = asBool(safety["strobe"])
			n.Safety.Autoplay = asBool(safety["autoplay"])
		}
		n.Fusionists = asNamedEntries(layers["fusionists"])
		n.Influences = asNamedEntries(layers["influences"])
		n.StudySeed = asNamedEntries(layers["study_seed"])
	}
	return n
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(record[key]); s != "" {
			return s
		}
	}
	return ""
}

// asStrings accepts a bare string or a list of strings.
func asStrings(v any) []string {
	switch value := v.(type) {
	case string:
		if s := strings.TrimSpace(value); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func firstStrings(record map[string]any, keys ...string) []string {
	for _, key := range keys {
		if items := asStrings(record[key]); items != nil {
			return items
		}
	}
	return nil
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asCitations accepts a list of {id, work, ref} objects or bare id strings.
func asCitations(v any) []model.Citation {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.Citation, 0, len(items))
	for _, item := range items {
		switch value := item.(type) {
		case string:
			if s := strings.TrimSpace(value); s != "" {
				out = append(out, model.Citation{ID: s})
			}
		case map[string]any:
			c := model.Citation{
				ID:   asString(value["id"]),
				Work: asString(value["work"]),
				Ref:  asString(value["ref"]),
			}
			if c != (model.Citation{}) {
				out = append(out, c)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// asNamedEntries accepts a list of {name, notes} objects or bare name
// strings.
func asNamedEntries(v any) []model.NamedEntry {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.NamedEntry, 0, len(items))
	for _, item := range items {
		switch value := item.(type) {
		case string:
			if s := strings.TrimSpace(value); s != "" {
				out = append(out, model.NamedEntry{Name: s})
			}
		case map[string]any:
			entry := model.NamedEntry{
				Name:  asString(value["name"]),
				Notes: asStrings(value["notes"]),
			}
			if entry.Name != "" {
				out = append(out, entry)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

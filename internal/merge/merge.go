// Package merge combines duplicate codex records that resolved to the same
// canonical id. The combination is deterministic and order-independent:
// merging any number of duplicates in any pairwise order yields the same
// record.
package merge

import (
	"sort"
	"strings"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/fileutil"
	"github.com/cathedral-dev/codexc/internal/model"
)

const (
	statusArchival = "archival"
	statusDraft    = "draft"
	genericKind    = "node"

	// One completeness point per this many lore characters, capped at 4.
	loreCharsPerPoint = 160
)

// Score rates how complete a record is. The higher-scoring side of a merge
// becomes the preferred record.
func Score(n model.CodexNode) int {
	s := 0
	if strings.TrimSpace(n.Name) != "" {
		s += 2
	}
	if n.Kind != "" && n.Kind != genericKind {
		s++
	}
	if n.Status != "" && n.Status != statusDraft {
		s++
	}
	lorePoints := len(n.LoreMD) / loreCharsPerPoint
	if lorePoints > 4 {
		lorePoints = 4
	}
	s += lorePoints
	if len(n.Sources) > 0 {
		s += 2
	}
	if len(n.Lineages) > 0 {
		s++
	}
	if len(n.Roles) > 0 {
		s++
	}
	if len(n.Art) > 0 {
		s++
	}
	return s
}

// Normalize sorts and dedupes every set-valued field and recomputes the
// derived numerology. Records entering a merge are expected to be
// normalized; Normalize is idempotent.
func Normalize(n model.CodexNode) model.CodexNode {
	n.TarotOverlays = sortedSet(n.TarotOverlays)
	n.Shem = sortedSet(n.Shem)
	n.Lineages = sortedSet(n.Lineages)
	n.Roles = sortedSet(n.Roles)
	n.Art = sortedSet(n.Art)
	n.Sources = unionCitations(n.Sources, nil)
	n.Layers.Fusionists = unionNamed(n.Layers.Fusionists, nil)
	n.Layers.Influences = unionNamed(n.Layers.Influences, nil)
	n.Layers.StudySeed = unionNamed(n.Layers.StudySeed, nil)
	n.Numerology = canon.Numerology(n.ID)
	return n
}

// Merge folds two records for the same canonical id into one.
func Merge(a, b model.CodexNode) model.CodexNode {
	pref, sec := orderByCompleteness(a, b)

	out := model.CodexNode{ID: pref.ID}
	out.Name = preferText(pref.Name, sec.Name)
	out.Kind = preferText(pref.Kind, sec.Kind)

	out.Status = preferText(pref.Status, sec.Status)
	if a.Status == statusArchival || b.Status == statusArchival {
		out.Status = statusArchival
	}

	out.LoreMD = pref.LoreMD
	if len(sec.LoreMD) > len(out.LoreMD) {
		out.LoreMD = sec.LoreMD
	}

	out.TarotOverlays = sortedSet(append(a.TarotOverlays, b.TarotOverlays...))
	out.Shem = sortedSet(append(a.Shem, b.Shem...))
	out.Lineages = sortedSet(append(a.Lineages, b.Lineages...))
	out.Roles = sortedSet(append(a.Roles, b.Roles...))
	out.Art = sortedSet(append(a.Art, b.Art...))
	out.Sources = unionCitations(a.Sources, b.Sources)

	// Safety violations must survive the merge so the validator sees them.
	out.Layers.Safety = model.SafetyLayer{
		Strobe:   a.Layers.Safety.Strobe || b.Layers.Safety.Strobe,
		Autoplay: a.Layers.Safety.Autoplay || b.Layers.Safety.Autoplay,
	}
	out.Layers.Fusionists = unionNamed(a.Layers.Fusionists, b.Layers.Fusionists)
	out.Layers.Influences = unionNamed(a.Layers.Influences, b.Layers.Influences)
	out.Layers.StudySeed = unionNamed(a.Layers.StudySeed, b.Layers.StudySeed)

	out.Numerology = canon.Numerology(out.ID)
	return out
}

// orderByCompleteness returns (preferred, secondary). Equal scores break on
// a fixed scalar-field comparison so the choice never depends on argument
// order.
func orderByCompleteness(a, b model.CodexNode) (model.CodexNode, model.CodexNode) {
	sa, sb := Score(a), Score(b)
	if sb > sa {
		return b, a
	}
	if sa > sb {
		return a, b
	}
	if tieRank(b) < tieRank(a) {
		return b, a
	}
	return a, b
}

func tieRank(n model.CodexNode) string {
	return n.Name + "\x00" + n.Kind + "\x00" + n.Status + "\x00" + n.LoreMD
}

func preferText(preferred, secondary string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	return secondary
}

func sortedSet(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	out = fileutil.DedupeStrings(out)
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func citationKey(c model.Citation) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Work + "\x00" + c.Ref
}

func unionCitations(a, b []model.Citation) []model.Citation {
	byKey := make(map[string]model.Citation)
	for _, c := range append(append([]model.Citation(nil), a...), b...) {
		if c == (model.Citation{}) {
			continue
		}
		key := citationKey(c)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = c
			continue
		}
		existing.Work = preferLonger(existing.Work, c.Work)
		existing.Ref = preferLonger(existing.Ref, c.Ref)
		byKey[key] = existing
	}
	if len(byKey) == 0 {
		return nil
	}
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]model.Citation, 0, len(keys))
	for _, key := range keys {
		out = append(out, byKey[key])
	}
	return out
}

// unionNamed merges named-entry lists by case-insensitive name. Notes are
// concatenated and deduplicated; the surviving display name is the longer
// spelling, lexicographically smaller on ties.
func unionNamed(a, b []model.NamedEntry) []model.NamedEntry {
	byName := make(map[string]model.NamedEntry)
	for _, e := range append(append([]model.NamedEntry(nil), a...), b...) {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		key := strings.ToLower(e.Name)
		existing, ok := byName[key]
		if !ok {
			byName[key] = model.NamedEntry{Name: e.Name, Notes: sortedSet(e.Notes)}
			continue
		}
		existing.Name = preferLonger(existing.Name, e.Name)
		existing.Notes = sortedSet(append(existing.Notes, e.Notes...))
		byName[key] = existing
	}
	if len(byName) == 0 {
		return nil
	}
	keys := make([]string, 0, len(byName))
	for key := range byName {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]model.NamedEntry, 0, len(keys))
	for _, key := range keys {
		out = append(out, byName[key])
	}
	return out
}

func preferLonger(a, b string) string {
	if len(b) > len(a) || (len(b) == len(a) && b < a) {
		return b
	}
	return a
}

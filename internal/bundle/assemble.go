// Package bundle assembles the compiled codex from the loaded sources,
// validates it exhaustively in memory, and persists the output artifacts.
package bundle

import (
	"sort"
	"strings"
	"time"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/mdparse"
	"github.com/cathedral-dev/codexc/internal/merge"
	"github.com/cathedral-dev/codexc/internal/model"
	"github.com/cathedral-dev/codexc/internal/source"
)

const (
	bundleName    = "Codex 144:99"
	bundleEdition = "living-cathedral"

	statusMissing = "missing"
	statusPresent = "present"
)

var defaultPalette = model.Palette{
	Name: "cathedral-default",
	Colors: []string{
		"#0b0b12", "#1b1b2f", "#3a2f4d", "#7a5c93",
		"#b08ea2", "#e4c590", "#f4ead5",
	},
}

var defaultThemes = map[string]model.Theme{
	"circuitum": {Accent: "#7a5c93", Background: "#0b0b12", Motif: "spiral"},
	"codex":     {Accent: "#e4c590", Background: "#1b1b2f", Motif: "lattice"},
	"cathedral": {Accent: "#b08ea2", Background: "#3a2f4d", Motif: "rose-window"},
}

// Result pairs the assembled bundle with what the run produced along the
// way: the pending bibliography references and the sandbox allocations.
type Result struct {
	Bundle      *model.Bundle
	PendingRefs []string
	Allocations []canon.Allocation
}

// Assemble composes the full bundle from the loaded inputs. The canon
// context carries the claimed-id set; callers own it so tests can seed it.
func Assemble(in *source.Inputs, cctx *canon.Context, now time.Time) (*Result, error) {
	byID := make(map[string]model.CodexNode)

	// Identified records claim their ids first so sandbox allocation can
	// never collide with a canonical id.
	var unidentified []source.RawNode
	for _, raw := range in.Nodes {
		id, ok := canon.NodeID(raw.ID)
		if !ok {
			unidentified = append(unidentified, raw)
			continue
		}
		cctx.Claim(id)
		mergeInto(byID, convertNode(raw, id))
	}
	for _, raw := range unidentified {
		id, err := cctx.AllocSandboxID(raw.Name)
		if err != nil {
			return nil, err
		}
		mergeInto(byID, convertNode(raw, id))
	}

	bib := mdparse.ParseBibliography(in.Bibliography)
	for id, seeds := range bib.Seeds {
		if _, ok := byID[id]; !ok {
			continue // seed for a node this compile does not know
		}
		mergeInto(byID, merge.Normalize(model.CodexNode{
			ID:     id,
			Layers: model.Layers{StudySeed: seeds},
		}))
	}

	nodes := make([]model.CodexNode, 0, len(byID))
	for _, n := range byID {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	b := &model.Bundle{
		Meta: model.Meta{
			Name:     bundleName,
			Edition:  bundleEdition,
			NDSafety: model.SafetyLayer{},
			BuiltUTC: now.UTC().Format(time.RFC3339),
		},
		Palette:  pickPalette(in),
		Nodes:    nodes,
		Spine:    append([]model.SpineAtlas(nil), in.Spine...),
		Halls:    mdparse.ParseHalls(in.Halls),
		Flow:     mdparse.ParseFlow(in.Flow),
		Themes:   pickThemes(in),
		Tarot:    buildTarotMap(in),
		Lineages: pickLineages(in),
	}

	return &Result{
		Bundle:      b,
		PendingRefs: bib.PendingRefs,
		Allocations: cctx.Allocations(),
	}, nil
}

func mergeInto(byID map[string]model.CodexNode, n model.CodexNode) {
	if existing, ok := byID[n.ID]; ok {
		byID[n.ID] = merge.Merge(existing, n)
		return
	}
	byID[n.ID] = n
}

// convertNode canonicalizes a raw record's references. Unrecognizable
// references are soft misses and are dropped; hard violations (bad safety
// flags, duplicate ids) are left for the validator.
func convertNode(raw source.RawNode, id string) model.CodexNode {
	n := model.CodexNode{
		ID:       id,
		Name:     raw.Name,
		Kind:     raw.Kind,
		Status:   raw.Status,
		LoreMD:   raw.Lore,
		Lineages: raw.Lineages,
		Roles:    raw.Roles,
		Sources:  raw.Sources,
		Layers: model.Layers{
			Safety:     raw.Safety,
			Fusionists: raw.Fusionists,
			Influences: raw.Influences,
			StudySeed:  raw.StudySeed,
		},
	}
	if n.Kind == "" {
		n.Kind = "node"
	}
	if n.Status == "" {
		n.Status = "draft"
	}
	for _, t := range raw.Tarot {
		if c, ok := canon.TarotID(t); ok {
			n.TarotOverlays = append(n.TarotOverlays, c)
		}
	}
	for _, s := range raw.Shem {
		if c, ok := canon.ShemID(s); ok {
			n.Shem = append(n.Shem, c)
		}
	}
	for _, a := range raw.Art {
		if c, ok := canon.ArtKey(a); ok {
			n.Art = append(n.Art, c)
		}
	}
	return merge.Normalize(n)
}

func pickPalette(in *source.Inputs) model.Palette {
	if in.Arcana != nil && in.Arcana.Palette != nil && len(in.Arcana.Palette.Colors) > 0 {
		return *in.Arcana.Palette
	}
	if in.PriorPalette != nil && len(in.PriorPalette.Colors) > 0 {
		return *in.PriorPalette
	}
	return defaultPalette
}

// pickThemes copies the fixed three-key theme map, letting the arcana
// source override the known keys only.
func pickThemes(in *source.Inputs) map[string]model.Theme {
	themes := make(map[string]model.Theme, len(defaultThemes))
	for key, theme := range defaultThemes {
		themes[key] = theme
	}
	if in.Arcana == nil {
		return themes
	}
	for key, override := range in.Arcana.Themes {
		base, ok := themes[key]
		if !ok {
			continue
		}
		if override.Accent != "" {
			base.Accent = override.Accent
		}
		if override.Background != "" {
			base.Background = override.Background
		}
		if override.Motif != "" {
			base.Motif = override.Motif
		}
		themes[key] = base
	}
	return themes
}

// buildTarotMap always emits exactly the 22 canonical arcana; entries with
// no matching source record carry status "missing".
func buildTarotMap(in *source.Inputs) map[string]model.ArcanaEntry {
	tarot := make(map[string]model.ArcanaEntry, len(canon.Arcana))
	for _, a := range canon.Arcana {
		tarot[a.ID] = model.ArcanaEntry{ID: a.ID, Name: a.Name, Status: statusMissing}
	}
	if in.Arcana == nil {
		return tarot
	}
	for _, src := range in.Arcana.Arcana {
		id, ok := canon.TarotID(src.ID)
		if !ok {
			id, ok = canon.TarotID(src.Name)
		}
		if !ok {
			continue // soft miss, never escalates
		}
		entry := tarot[id]
		entry.Status = src.Status
		if strings.TrimSpace(entry.Status) == "" {
			entry.Status = statusPresent
		}
		if node, ok := canon.NodeID(src.Node); ok {
			entry.Node = node
		}
		if src.Notes != "" {
			entry.Notes = src.Notes
		}
		tarot[id] = entry
	}
	return tarot
}

func pickLineages(in *source.Inputs) map[string][]string {
	if in.Arcana == nil || len(in.Arcana.Lineages) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in.Arcana.Lineages))
	for key, members := range in.Arcana.Lineages {
		out[key] = append([]string(nil), members...)
	}
	return out
}

// Registry derives the ids.json artifact from an assembled bundle.
func Registry(b *model.Bundle) model.IDRegistry {
	reg := model.IDRegistry{
		Nodes:  make([]string, 0, len(b.Nodes)),
		Arcana: make([]string, 0, len(b.Tarot)),
	}
	shem := make(map[string]bool)
	for _, n := range b.Nodes {
		reg.Nodes = append(reg.Nodes, n.ID)
		for _, s := range n.Shem {
			shem[s] = true
		}
	}
	for id := range b.Tarot {
		reg.Arcana = append(reg.Arcana, id)
	}
	sort.Strings(reg.Nodes)
	sort.Strings(reg.Arcana)
	for s := range shem {
		reg.Shem = append(reg.Shem, s)
	}
	sort.Strings(reg.Shem)
	return reg
}

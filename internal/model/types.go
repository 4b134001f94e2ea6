// Package model holds the compiled codex bundle types. Every entity here is
// rebuilt from scratch on each run; nothing in the compiler mutates a bundle
// after assembly.
package model

// Citation points at an external work. Citations merge by id across
// duplicate node records.
type Citation struct {
	ID   string `json:"id"`
	Work string `json:"work,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// SafetyLayer carries the ND-safety flags. Both must be false in any
// emitted bundle; the validator refuses to write otherwise.
type SafetyLayer struct {
	Strobe   bool `json:"strobe"`
	Autoplay bool `json:"autoplay"`
}

// NamedEntry is a named annotation with free-form notes, used by the
// fusionists, influences, and study_seed extension lists.
type NamedEntry struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes,omitempty"`
}

type Layers struct {
	Safety     SafetyLayer  `json:"safety"`
	Fusionists []NamedEntry `json:"fusionists,omitempty"`
	Influences []NamedEntry `json:"influences,omitempty"`
	StudySeed  []NamedEntry `json:"study_seed,omitempty"`
}

// CodexNode is one entry of the 144-node lattice.
type CodexNode struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	Status        string     `json:"status,omitempty"`
	TarotOverlays []string   `json:"tarot_overlays,omitempty"`
	Shem          []string   `json:"shem,omitempty"`
	Numerology    int        `json:"numerology"`
	Lineages      []string   `json:"lineages,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	LoreMD        string     `json:"lore_md,omitempty"`
	Sources       []Citation `json:"sources,omitempty"`
	Layers        Layers     `json:"layers"`
	Art           []string   `json:"art,omitempty"`
}

// ArcanaEntry is one of the 22 major arcana. The compiled tarot map always
// contains all 22; entries with no source data carry Status "missing".
type ArcanaEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Node   string `json:"node,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// SpineAtlas is one vertebra record read from the spine directory tree.
type SpineAtlas struct {
	ID     string   `json:"id"`
	Title  string   `json:"title,omitempty"`
	Node   string   `json:"node,omitempty"`
	Tarot  string   `json:"tarot,omitempty"`
	Realm  string   `json:"realm,omitempty"`
	Angels []string `json:"angels,omitempty"`
	Doc    string   `json:"doc,omitempty"`
	Status string   `json:"status,omitempty"`
}

// Hall is one chamber parsed from the halls Markdown document.
type Hall struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Trial         string   `json:"trial,omitempty"`
	Tasks         []string `json:"tasks,omitempty"`
	Gift          string   `json:"gift,omitempty"`
	TarotOverlays []string `json:"tarot_overlays,omitempty"`
}

// FlowStep is one ordered step parsed from the ui-flow Markdown document.
type FlowStep struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Notes         []string `json:"notes,omitempty"`
	TarotOverlays []string `json:"tarot_overlays,omitempty"`
}

type Palette struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

type Theme struct {
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Motif      string `json:"motif,omitempty"`
}

type Meta struct {
	Name     string      `json:"name"`
	Edition  string      `json:"edition"`
	NDSafety SafetyLayer `json:"nd_safety"`
	BuiltUTC string      `json:"built_utc"`
}

// Bundle is the whole compiled codex, validated before any write.
type Bundle struct {
	Meta     Meta                   `json:"meta"`
	Palette  Palette                `json:"palette"`
	Nodes    []CodexNode            `json:"nodes"`
	Spine    []SpineAtlas           `json:"spine"`
	Halls    []Hall                 `json:"halls"`
	Flow     []FlowStep             `json:"flow"`
	Themes   map[string]Theme       `json:"themes"`
	Tarot    map[string]ArcanaEntry `json:"tarot"`
	Lineages map[string][]string    `json:"lineages,omitempty"`
}

// IDRegistry is the ids.json artifact: every canonical id the bundle uses,
// per namespace, sorted.
type IDRegistry struct {
	Nodes  []string `json:"nodes"`
	Arcana []string `json:"arcana"`
	Shem   []string `json:"shem"`
}

// Package source reads every raw input for one compile run. Reads are
// tolerant: a missing file is an empty input, never an error. Malformed
// top-level JSON is a hard error; a malformed individual spine atlas is
// skipped.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cathedral-dev/codexc/internal/config"
	"github.com/cathedral-dev/codexc/internal/model"
)

// ArcanaSource is one arcana record from the arcana JSON file.
type ArcanaSource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Node   string `json:"node"`
	Notes  string `json:"notes"`
}

// ArcanaDoc is the arcana JSON file: palette, arcana records, lineage map,
// and theme overrides.
type ArcanaDoc struct {
	Palette  *model.Palette         `json:"palette,omitempty"`
	Arcana   []ArcanaSource         `json:"arcana,omitempty"`
	Lineages map[string][]string    `json:"lineages,omitempty"`
	Themes   map[string]model.Theme `json:"themes,omitempty"`
}

// Inputs is everything one compile run reads, gathered up front.
type Inputs struct {
	Nodes        []RawNode
	Arcana       *ArcanaDoc
	Bibliography string
	Halls        string
	Flow         string
	Spine        []model.SpineAtlas
	PriorPalette *model.Palette
}

// Load gathers all inputs concurrently. The reads share no state and none
// depends on another's result; everything after this fan-out is sequential.
func Load(ctx context.Context, cfg config.Config) (*Inputs, error) {
	in := &Inputs{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		nodes, err := loadNodeMap(cfg.NodeMap)
		if err != nil {
			return err
		}
		in.Nodes = nodes
		return nil
	})
	g.Go(func() error {
		doc, err := loadArcana(cfg.ArcanaFile)
		if err != nil {
			return err
		}
		in.Arcana = doc
		return nil
	})
	g.Go(func() error {
		text, err := loadText(cfg.Bibliography)
		in.Bibliography = text
		return err
	})
	g.Go(func() error {
		text, err := loadText(cfg.HallsFile)
		in.Halls = text
		return err
	})
	g.Go(func() error {
		text, err := loadText(cfg.FlowFile)
		in.Flow = text
		return err
	})
	g.Go(func() error {
		spine, err := loadSpine(cfg.SpineRoot)
		if err != nil {
			return err
		}
		in.Spine = spine
		return nil
	})
	g.Go(func() error {
		palette, err := loadPalette(cfg.PriorPalette)
		if err != nil {
			return err
		}
		in.PriorPalette = palette
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// readOptional returns (nil, nil) for a missing file.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func loadText(path string) (string, error) {
	data, err := readOptional(path)
	return string(data), err
}

// loadNodeMap accepts either an array of node records or a map keyed by
// arbitrary labels; map values are taken in key order so the record
// sequence is deterministic.
func loadNodeMap(path string) ([]RawNode, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}

	var asList []map[string]any
	if err := json.Unmarshal(data, &asList); err == nil {
		return coerceNodes(asList), nil
	}

	var asMap map[string]map[string]any
	if err := json.Unmarshal(data, &asMap); err != nil {
		return nil, fmt.Errorf("node map %s: %w", path, err)
	}
	keys := make([]string, 0, len(asMap))
	for key := range asMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	records := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		records = append(records, asMap[key])
	}
	return coerceNodes(records), nil
}

func loadArcana(path string) (*ArcanaDoc, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}
	var doc ArcanaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("arcana file %s: %w", path, err)
	}
	return &doc, nil
}

func loadPalette(path string) (*model.Palette, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}
	var palette model.Palette
	if err := json.Unmarshal(data, &palette); err != nil {
		return nil, fmt.Errorf("palette file %s: %w", path, err)
	}
	return &palette, nil
}

// loadSpine walks the spine root for atlas.json files. Unreadable or
// malformed atlases are skipped; a missing root is an empty spine.
func loadSpine(root string) ([]model.SpineAtlas, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var spine []model.SpineAtlas
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Name() != "atlas.json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var atlas model.SpineAtlas
		if err := json.Unmarshal(data, &atlas); err != nil {
			return nil
		}
		if atlas.ID == "" {
			return nil
		}
		spine = append(spine, atlas)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(spine, func(i, j int) bool { return spine[i].ID < spine[j].ID })
	return spine, nil
}

package bundle

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/config"
	"github.com/cathedral-dev/codexc/internal/fileutil"
	"github.com/cathedral-dev/codexc/internal/model"
)

// syncTargets are the downstream apps notified after every compile.
var syncTargets = []string{"circuitum99", "stone-grimoire", "cosmogenesis"}

// SyncEvent is the NDJSON record appended to the external event queue.
type SyncEvent struct {
	EventID string             `json:"event_id"`
	Event   string             `json:"event"`
	Targets []string           `json:"targets"`
	Status  string             `json:"status"`
	Nodes   int                `json:"nodes"`
	Sandbox []canon.Allocation `json:"sandbox,omitempty"`
	TS      string             `json:"ts"`
}

// Summary reports what one compile run persisted.
type Summary struct {
	Nodes        int      `json:"nodes"`
	Spine        int      `json:"spine"`
	Halls        int      `json:"halls"`
	FlowSteps    int      `json:"flow_steps"`
	Written      []string `json:"written"`
	Placeholders int      `json:"placeholders"`
	EventID      string   `json:"event_id"`
}

// placeholderRef is the stub citation file synthesized for each pending
// bibliography reference.
type placeholderRef struct {
	ID     string `json:"id"`
	Work   string `json:"work"`
	Ref    string `json:"ref"`
	Status string `json:"status"`
}

// WriteOutputs persists the validated bundle. Callers must have run
// Validate first; nothing here re-checks invariants.
func WriteOutputs(cfg config.Config, res *Result) (*Summary, error) {
	b := res.Bundle
	summary := &Summary{
		Nodes:     len(b.Nodes),
		Spine:     len(b.Spine),
		Halls:     len(b.Halls),
		FlowSteps: len(b.Flow),
	}

	codexPath := filepath.Join(cfg.DistDir, "codex.json")
	codexData, changed, err := encodeCodex(b, codexPath)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := fileutil.WriteIfChanged(codexPath, codexData); err != nil {
			return nil, err
		}
		summary.Written = append(summary.Written, codexPath)
	}

	paletteData, err := fileutil.EncodeJSON(b.Palette)
	if err != nil {
		return nil, err
	}
	idsData, err := fileutil.EncodeJSON(Registry(b))
	if err != nil {
		return nil, err
	}
	for _, artifact := range []struct {
		path string
		data []byte
	}{
		{filepath.Join(cfg.DistDir, "palette.json"), paletteData},
		{filepath.Join(cfg.DistDir, "ids.json"), idsData},
	} {
		wrote, err := fileutil.WriteIfChangedTracked(artifact.path, artifact.data)
		if err != nil {
			return nil, err
		}
		if wrote {
			summary.Written = append(summary.Written, artifact.path)
		}
	}

	for _, pdf := range res.PendingRefs {
		stub := placeholderRef{
			ID:     canon.Slugify(strings.TrimSuffix(pdf, filepath.Ext(pdf))),
			Work:   pdf,
			Status: "pending",
		}
		data, err := fileutil.EncodeJSON(stub)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.ReferencesDir, stub.ID+".json")
		if err := fileutil.WriteIfMissing(path, data, 0644); err != nil {
			return nil, err
		}
		summary.Placeholders++
	}

	event := SyncEvent{
		EventID: uuid.NewString(),
		Event:   "SYNC_NODE",
		Targets: syncTargets,
		Status:  "pending",
		Nodes:   len(b.Nodes),
		Sandbox: res.Allocations,
		TS:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := fileutil.AppendJSONL(cfg.EventQueue, event); err != nil {
		return nil, err
	}
	summary.EventID = event.EventID

	return summary, nil
}

// encodeCodex serializes the bundle, keeping the previous artifact's
// built_utc when nothing else changed. Unchanged inputs therefore produce
// a byte-identical codex.json, and the timestamp records the last compile
// that actually changed the bundle.
func encodeCodex(b *model.Bundle, codexPath string) ([]byte, bool, error) {
	existing, err := os.ReadFile(codexPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, false, err
	}

	if existing != nil {
		if prior := priorBuildStamp(existing); prior != "" {
			fresh := b.Meta.BuiltUTC
			b.Meta.BuiltUTC = prior
			data, err := fileutil.EncodeJSON(b)
			if err != nil {
				return nil, false, err
			}
			if bytes.Equal(existing, data) {
				return data, false, nil
			}
			b.Meta.BuiltUTC = fresh
		}
	}

	data, err := fileutil.EncodeJSON(b)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func priorBuildStamp(existing []byte) string {
	var prior struct {
		Meta struct {
			BuiltUTC string `json:"built_utc"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(existing, &prior); err != nil {
		return ""
	}
	return prior.Meta.BuiltUTC
}

package bundle

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/config"
	"github.com/cathedral-dev/codexc/internal/source"
)

func writeConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.DistDir = filepath.Join(dir, "dist")
	cfg.ReferencesDir = filepath.Join(dir, "references")
	cfg.EventQueue = filepath.Join(dir, "events", "sync-queue.ndjson")
	return cfg
}

func testInputs() *source.Inputs {
	return &source.Inputs{
		Nodes: []source.RawNode{
			{ID: "C144N-007", Name: "Seven", Tarot: []string{"Death"}},
			{Name: "Hidden Node"},
		},
		Bibliography: "C144N-007 appears in liber_vii.pdf\n",
	}
}

func TestWriteOutputsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(dir)

	run := func(now time.Time) *Summary {
		res, err := Assemble(testInputs(), canon.NewContext(), now)
		require.NoError(t, err)
		require.NoError(t, Validate(res.Bundle))
		summary, err := WriteOutputs(cfg, res)
		require.NoError(t, err)
		return summary
	}

	first := run(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.Len(t, first.Written, 3)

	snapshot := map[string][]byte{}
	for _, name := range []string{"codex.json", "palette.json", "ids.json"} {
		data, err := os.ReadFile(filepath.Join(cfg.DistDir, name))
		require.NoError(t, err)
		snapshot[name] = data
	}

	// Later run over unchanged inputs: byte-identical artifacts, nothing
	// rewritten, even though the nominal build time moved.
	second := run(time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC))
	assert.Empty(t, second.Written)
	for name, want := range snapshot {
		got, err := os.ReadFile(filepath.Join(cfg.DistDir, name))
		require.NoError(t, err)
		assert.Equal(t, want, got, "%s changed across identical runs", name)
	}
}

func TestWriteOutputsFreshStampOnRealChange(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(dir)

	res, err := Assemble(testInputs(), canon.NewContext(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = WriteOutputs(cfg, res)
	require.NoError(t, err)

	changed := testInputs()
	changed.Nodes[0].Lore = "new lore arrived"
	res, err = Assemble(changed, canon.NewContext(), time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	summary, err := WriteOutputs(cfg, res)
	require.NoError(t, err)
	assert.Contains(t, summary.Written, filepath.Join(cfg.DistDir, "codex.json"))

	data, err := os.ReadFile(filepath.Join(cfg.DistDir, "codex.json"))
	require.NoError(t, err)
	var decoded struct {
		Meta struct {
			BuiltUTC string `json:"built_utc"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2026-04-02T09:30:00Z", decoded.Meta.BuiltUTC)
}

func TestWriteOutputsPlaceholdersAndQueue(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(dir)

	res, err := Assemble(testInputs(), canon.NewContext(), time.Now())
	require.NoError(t, err)
	summary, err := WriteOutputs(cfg, res)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Placeholders)
	stubPath := filepath.Join(cfg.ReferencesDir, "liber-vii.json")
	stub, err := os.ReadFile(stubPath)
	require.NoError(t, err)
	assert.Contains(t, string(stub), "liber_vii.pdf")

	// Operators own placeholder files once created.
	require.NoError(t, os.WriteFile(stubPath, []byte(`{"id":"liber-vii","work":"edited"}`), 0644))
	res, err = Assemble(testInputs(), canon.NewContext(), time.Now())
	require.NoError(t, err)
	_, err = WriteOutputs(cfg, res)
	require.NoError(t, err)
	edited, err := os.ReadFile(stubPath)
	require.NoError(t, err)
	assert.Contains(t, string(edited), "edited")

	// The queue grows by one SYNC_NODE line per run.
	f, err := os.Open(cfg.EventQueue)
	require.NoError(t, err)
	defer f.Close()
	var events []SyncEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event SyncEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.Len(t, events, 2)
	for _, event := range events {
		assert.Equal(t, "SYNC_NODE", event.Event)
		assert.Equal(t, "pending", event.Status)
		assert.Equal(t, []string{"circuitum99", "stone-grimoire", "cosmogenesis"}, event.Targets)
		assert.Equal(t, 2, event.Nodes)
		assert.NotEmpty(t, event.EventID)
	}
	assert.NotEqual(t, events[0].EventID, events[1].EventID)
}

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-dev/codexc/internal/config"
)

func testConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.NodeMap = filepath.Join(dir, "node-map.json")
	cfg.ArcanaFile = filepath.Join(dir, "arcana.json")
	cfg.Bibliography = filepath.Join(dir, "bibliography.md")
	cfg.HallsFile = filepath.Join(dir, "halls.md")
	cfg.FlowFile = filepath.Join(dir, "ui-flow.md")
	cfg.SpineRoot = filepath.Join(dir, "spine")
	cfg.PriorPalette = filepath.Join(dir, "palette.json")
	return cfg
}

func TestLoadMissingEverythingIsEmptyNotError(t *testing.T) {
	in, err := Load(context.Background(), testConfig(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, in.Nodes)
	assert.Nil(t, in.Arcana)
	assert.Empty(t, in.Bibliography)
	assert.Empty(t, in.Halls)
	assert.Empty(t, in.Flow)
	assert.Empty(t, in.Spine)
	assert.Nil(t, in.PriorPalette)
}

func TestLoadNodeMapArrayAndMapForms(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	require.NoError(t, os.WriteFile(cfg.NodeMap, []byte(`[
		{"name": "Hidden Node", "tarot_overlays": ["Death"], "shem": ["12"]},
		{"id": "C144N-007", "lore_md": "short", "roles": "keeper"}
	]`), 0644))

	in, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, in.Nodes, 2)
	assert.Equal(t, "Hidden Node", in.Nodes[0].Name)
	assert.Equal(t, []string{"Death"}, in.Nodes[0].Tarot)
	assert.Equal(t, []string{"12"}, in.Nodes[0].Shem)
	assert.Equal(t, "C144N-007", in.Nodes[1].ID)
	assert.Equal(t, []string{"keeper"}, in.Nodes[1].Roles, "bare strings coerce to one-element lists")

	// Map form: values ordered by key.
	require.NoError(t, os.WriteFile(cfg.NodeMap, []byte(`{
		"b": {"id": "C144N-002"},
		"a": {"id": "C144N-001"}
	}`), 0644))
	in, err = Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, in.Nodes, 2)
	assert.Equal(t, "C144N-001", in.Nodes[0].ID)
	assert.Equal(t, "C144N-002", in.Nodes[1].ID)
}

func TestLoadNodeMapMalformedIsHardError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.WriteFile(cfg.NodeMap, []byte("{not json"), 0644))

	_, err := Load(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLoadSafetyFlagsSurvive(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.WriteFile(cfg.NodeMap, []byte(`[
		{"id": "C144N-001", "layers": {"safety": {"strobe": true}}}
	]`), 0644))

	in, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, in.Nodes, 1)
	assert.True(t, in.Nodes[0].Safety.Strobe)
	assert.False(t, in.Nodes[0].Safety.Autoplay)
}

func TestLoadSpineTreeToleratesBadAtlases(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	writeAtlas := func(sub, content string) {
		full := filepath.Join(cfg.SpineRoot, sub)
		require.NoError(t, os.MkdirAll(full, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(full, "atlas.json"), []byte(content), 0644))
	}
	writeAtlas("33", `{"id": "SPINE-33", "title": "Crown Vertebra", "tarot": "LA-21-WORLD"}`)
	writeAtlas("07", `{"id": "SPINE-07", "node": "C144N-007"}`)
	writeAtlas("broken", `{definitely not json`)
	writeAtlas("anonymous", `{"title": "no id"}`)

	in, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, in.Spine, 2)
	assert.Equal(t, "SPINE-07", in.Spine[0].ID)
	assert.Equal(t, "SPINE-33", in.Spine[1].ID)
}

func TestLoadArcanaDoc(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.WriteFile(cfg.ArcanaFile, []byte(`{
		"palette": {"name": "rosarium", "colors": ["#1b1b2f", "#e4c590"]},
		"arcana": [{"id": "LA-13-DEATH", "name": "Death", "status": "illustrated"}],
		"lineages": {"hermetic": ["C144N-007"]},
		"themes": {"codex": {"accent": "#e4c590", "background": "#1b1b2f"}}
	}`), 0644))

	in, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, in.Arcana)
	require.NotNil(t, in.Arcana.Palette)
	assert.Equal(t, "rosarium", in.Arcana.Palette.Name)
	require.Len(t, in.Arcana.Arcana, 1)
	assert.Equal(t, "illustrated", in.Arcana.Arcana[0].Status)
	assert.Contains(t, in.Arcana.Lineages, "hermetic")
	assert.Contains(t, in.Arcana.Themes, "codex")
}

package bundle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/model"
	"github.com/cathedral-dev/codexc/internal/source"
)

func validBundle(t *testing.T) *model.Bundle {
	t.Helper()
	res, err := Assemble(&source.Inputs{
		Nodes: []source.RawNode{
			{ID: "C144N-007", Name: "Seven", Tarot: []string{"Death"}, Shem: []string{"7"}},
		},
		Halls: "## Hall of Mirrors\nTrial: face Death\n",
		Spine: []model.SpineAtlas{
			{ID: "SPINE-07", Node: "C144N-007", Tarot: "LA-13-DEATH", Realm: "REALM-crystal-gardens"},
		},
	}, canon.NewContext(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return res.Bundle
}

func TestValidateAcceptsAssembledBundle(t *testing.T) {
	assert.NoError(t, Validate(validBundle(t)))
}

func TestValidateRejectsUnsafeFlags(t *testing.T) {
	b := validBundle(t)
	b.Nodes[0].Layers.Safety.Strobe = true
	err := Validate(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strobe")

	b = validBundle(t)
	b.Nodes[0].Layers.Safety.Autoplay = true
	assert.Error(t, Validate(b))

	b = validBundle(t)
	b.Meta.NDSafety.Autoplay = true
	assert.Error(t, Validate(b))
}

func TestValidateRejectsMalformedIDs(t *testing.T) {
	b := validBundle(t)
	b.Nodes[0].ID = "C144N-7"
	assert.Error(t, Validate(b))

	b = validBundle(t)
	b.Nodes = append(b.Nodes, b.Nodes[0])
	err := Validate(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	b = validBundle(t)
	b.Nodes[0].TarotOverlays = []string{"LA-99-NOPE"}
	assert.Error(t, Validate(b))

	b = validBundle(t)
	b.Nodes[0].Shem = []string{"SHEM-7"}
	assert.Error(t, Validate(b))
}

func TestValidateHallAndSpineGrammar(t *testing.T) {
	b := validBundle(t)
	b.Halls[0].ID = "not-a-hall"
	assert.Error(t, Validate(b))

	b = validBundle(t)
	b.Spine[0].ID = "SPINE-7"
	assert.Error(t, Validate(b))

	b = validBundle(t)
	b.Spine[0].Realm = "crystal gardens"
	assert.Error(t, Validate(b))

	// Grammar-shaped references to absent entities pass; referential
	// integrity belongs to consumers.
	b = validBundle(t)
	b.Spine[0].Node = "C144N-120"
	assert.NoError(t, Validate(b))
}

func TestValidateTarotMapShape(t *testing.T) {
	b := validBundle(t)
	delete(b.Tarot, "LA-21-WORLD")
	assert.Error(t, Validate(b))

	b = validBundle(t)
	b.Tarot["LA-99-NOPE"] = model.ArcanaEntry{ID: "LA-99-NOPE", Status: "missing"}
	assert.Error(t, Validate(b))
}

package bundle

import (
	"fmt"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/model"
)

// Validate checks the whole bundle in memory before anything is written.
// The first violation aborts the run; callers must not write any output
// when an error is returned.
//
// Spine and hall cross-references are checked for grammatical shape only,
// not for existence among the assembled nodes and arcana. Referential
// integrity is the consumers' layer: spine documents legitimately point at
// nodes compiled in other editions.
func Validate(b *model.Bundle) error {
	if b.Meta.NDSafety.Strobe || b.Meta.NDSafety.Autoplay {
		return fmt.Errorf("meta nd_safety flags must be false")
	}

	seen := make(map[string]bool, len(b.Nodes))
	for _, n := range b.Nodes {
		if !canon.Valid(canon.Node, n.ID) {
			return fmt.Errorf("node %q: malformed id", n.ID)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %q: duplicate id", n.ID)
		}
		seen[n.ID] = true

		if n.Layers.Safety.Strobe {
			return fmt.Errorf("node %s: layers.safety.strobe must be false", n.ID)
		}
		if n.Layers.Safety.Autoplay {
			return fmt.Errorf("node %s: layers.safety.autoplay must be false", n.ID)
		}
		for _, t := range n.TarotOverlays {
			if !canon.Valid(canon.Tarot, t) {
				return fmt.Errorf("node %s: malformed tarot reference %q", n.ID, t)
			}
		}
		for _, s := range n.Shem {
			if !canon.Valid(canon.Shem, s) {
				return fmt.Errorf("node %s: malformed shem reference %q", n.ID, s)
			}
		}
	}

	for _, h := range b.Halls {
		if !canon.Valid(canon.Hall, h.ID) {
			return fmt.Errorf("hall %q: malformed id", h.ID)
		}
		for _, t := range h.TarotOverlays {
			if !canon.Valid(canon.Tarot, t) {
				return fmt.Errorf("hall %s: malformed tarot reference %q", h.ID, t)
			}
		}
	}

	for _, s := range b.Spine {
		if !canon.Valid(canon.Spine, s.ID) {
			return fmt.Errorf("spine %q: malformed id", s.ID)
		}
		if s.Node != "" && !canon.Valid(canon.Node, s.Node) {
			return fmt.Errorf("spine %s: malformed node reference %q", s.ID, s.Node)
		}
		if s.Tarot != "" && !canon.Valid(canon.Tarot, s.Tarot) {
			return fmt.Errorf("spine %s: malformed tarot reference %q", s.ID, s.Tarot)
		}
		if s.Realm != "" && !canon.Valid(canon.Realm, s.Realm) {
			return fmt.Errorf("spine %s: malformed realm reference %q", s.ID, s.Realm)
		}
	}

	for id := range b.Tarot {
		if !canon.Valid(canon.Tarot, id) {
			return fmt.Errorf("tarot map: unknown arcana id %q", id)
		}
	}
	if len(b.Tarot) != len(canon.Arcana) {
		return fmt.Errorf("tarot map: expected %d arcana, found %d", len(canon.Arcana), len(b.Tarot))
	}

	return nil
}

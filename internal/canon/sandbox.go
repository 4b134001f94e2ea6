package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Allocation records one sandbox id grant for the audit trail.
type Allocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Context carries the claimed-id set and the allocation trail for one
// compile run. It replaces any notion of global taken-id state: tests and
// callers each build their own.
type Context struct {
	taken  map[string]struct{}
	allocs []Allocation
}

func NewContext() *Context {
	return &Context{taken: make(map[string]struct{})}
}

// Claim marks id as taken. It reports false when the id was already
// claimed, which callers treat as a duplicate-id violation.
func (c *Context) Claim(id string) bool {
	if _, ok := c.taken[id]; ok {
		return false
	}
	c.taken[id] = struct{}{}
	return true
}

func (c *Context) IsTaken(id string) bool {
	_, ok := c.taken[id]
	return ok
}

// Allocations returns the sandbox grants made so far, in grant order.
func (c *Context) Allocations() []Allocation {
	return append([]Allocation(nil), c.allocs...)
}

// sandboxBand is the reserved draft range C144N-900..C144N-999.
const (
	sandboxLow  = 900
	sandboxSize = 100
)

// AllocSandboxID deterministically grants a draft-band node id for a record
// that arrived without one. The SHA-256 digest of name is sampled in 3-hex
// windows until an unclaimed candidate appears; a full linear scan of the
// band is the final fallback. Identical (name, claimed-set) always yields
// the identical id.
func (c *Context) AllocSandboxID(name string) (string, error) {
	sum := sha256.Sum256([]byte(name))
	digest := hex.EncodeToString(sum[:])

	for offset := 0; offset < 1000; offset++ {
		start := offset % len(digest)
		end := start + 3
		if end > len(digest) {
			end = len(digest)
		}
		window := digest[start:end]
		if window == "" {
			window = digest
		}
		v, err := strconv.ParseUint(window, 16, 64)
		if err != nil {
			continue
		}
		id := fmt.Sprintf("C144N-%03d", sandboxLow+int(v%sandboxSize))
		if c.Claim(id) {
			c.allocs = append(c.allocs, Allocation{ID: id, Name: name})
			return id, nil
		}
	}

	for n := 0; n < sandboxSize; n++ {
		id := fmt.Sprintf("C144N-%03d", sandboxLow+n)
		if c.Claim(id) {
			c.allocs = append(c.allocs, Allocation{ID: id, Name: name})
			return id, nil
		}
	}

	return "", fmt.Errorf("sandbox band exhausted: no free id in C144N-%d..C144N-%d for %q", sandboxLow, sandboxLow+sandboxSize-1, name)
}

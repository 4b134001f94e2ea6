// Package canon owns the canonical identifier grammars. Every namespace the
// codex uses is described by one row of the grammar table; normalization is
// total and soft-missing: unrecognizable input yields ("", false), never an
// error.
package canon

import (
	"regexp"
	"strings"
)

// Namespace names one canonical id grammar.
type Namespace string

const (
	Node  Namespace = "node"
	Tarot Namespace = "tarot"
	Shem  Namespace = "shem"
	Realm Namespace = "realm"
	Hall  Namespace = "hall"
	Art   Namespace = "art"
	Spine Namespace = "spine"
)

type grammar struct {
	pattern *regexp.Regexp
	prefix  string
	slugged bool
}

var grammars = map[Namespace]grammar{
	Node:  {pattern: regexp.MustCompile(`^C144N-[0-9]{3}$`)},
	Tarot: {pattern: regexp.MustCompile(`^LA-[0-9]{2}-[A-Z]+(-[A-Z]+)*$`)},
	Shem:  {pattern: regexp.MustCompile(`^SHEM-[0-9]{2}$`)},
	Realm: {pattern: regexp.MustCompile(`^REALM-[a-z0-9]+(-[a-z0-9]+)*$`), prefix: "REALM-", slugged: true},
	Hall:  {pattern: regexp.MustCompile(`^H-[a-z0-9]+(-[a-z0-9]+)*$`), prefix: "H-", slugged: true},
	Art:   {pattern: regexp.MustCompile(`^ART-[a-z0-9]+(-[a-z0-9]+)*$`), prefix: "ART-", slugged: true},
	Spine: {pattern: regexp.MustCompile(`^SPINE-[0-9]{2}$`)},
}

// Valid reports whether id matches the grammar for ns. Tarot additionally
// requires membership in the fixed arcana table.
func Valid(ns Namespace, id string) bool {
	g, ok := grammars[ns]
	if !ok || !g.pattern.MatchString(id) {
		return false
	}
	if ns == Tarot {
		_, known := arcanaByID[id]
		return known
	}
	return true
}

// Slugify lowercases raw, collapses every run of non-alphanumerics into a
// single hyphen, and strips edge hyphens.
func Slugify(raw string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func normaliseSlugged(ns Namespace, raw string) (string, bool) {
	g := grammars[ns]
	trimmed := strings.TrimSpace(raw)
	if g.pattern.MatchString(trimmed) {
		return trimmed, true
	}
	slug := Slugify(raw)
	if slug == "" {
		return "", false
	}
	return g.prefix + slug, true
}

// RealmID coerces raw into the REALM-<slug> grammar.
func RealmID(raw string) (string, bool) { return normaliseSlugged(Realm, raw) }

// HallID coerces raw into the H-<slug> grammar.
func HallID(raw string) (string, bool) { return normaliseSlugged(Hall, raw) }

// ArtKey coerces raw into the ART-<slug> grammar.
func ArtKey(raw string) (string, bool) { return normaliseSlugged(Art, raw) }

var digitsRe = regexp.MustCompile(`[0-9]+`)

// ShemID extracts the digits of raw, zero-pads to width 2, and prefixes
// SHEM-. Input with no digits is a soft miss.
func ShemID(raw string) (string, bool) {
	digits := strings.Join(digitsRe.FindAllString(raw, -1), "")
	if digits == "" {
		return "", false
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	if len(digits) == 1 {
		digits = "0" + digits
	}
	if len(digits) > 2 {
		return "", false
	}
	return "SHEM-" + digits, true
}

// NodeID accepts an exact canonical node id, or a bare 1-3 digit ordinal
// which it zero-pads into the C144N-DDD grammar.
func NodeID(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if grammars[Node].pattern.MatchString(trimmed) {
		return trimmed, true
	}
	digits := strings.Join(digitsRe.FindAllString(trimmed, -1), "")
	if digits == "" || len(digits) > 3 {
		return "", false
	}
	for len(digits) < 3 {
		digits = "0" + digits
	}
	return "C144N-" + digits, true
}

var nodeSuffixRe = regexp.MustCompile(`[0-9]{3}$`)

// Numerology reduces the numeric suffix of a node id to its digital root
// (007 -> 7, 144 -> 9). Ids without a numeric suffix reduce to 0.
func Numerology(id string) int {
	suffix := nodeSuffixRe.FindString(id)
	if suffix == "" {
		return 0
	}
	n := 0
	for _, r := range suffix {
		n += int(r - '0')
	}
	for n > 9 {
		s := 0
		for n > 0 {
			s += n % 10
			n /= 10
		}
		n = s
	}
	return n
}

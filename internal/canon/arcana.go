package canon

import (
	"regexp"
	"strings"
)

// Arcanum is one row of the fixed major-arcana table. The table is the
// single source of truth for canonical tarot ids; the compiled tarot map
// always carries exactly these 22 entries.
type Arcanum struct {
	ID      string
	Name    string
	Numeral string
}

var Arcana = [22]Arcanum{
	{ID: "LA-00-FOOL", Name: "The Fool", Numeral: "0"},
	{ID: "LA-01-MAGICIAN", Name: "The Magician", Numeral: "I"},
	{ID: "LA-02-HIGH-PRIESTESS", Name: "The High Priestess", Numeral: "II"},
	{ID: "LA-03-EMPRESS", Name: "The Empress", Numeral: "III"},
	{ID: "LA-04-EMPEROR", Name: "The Emperor", Numeral: "IV"},
	{ID: "LA-05-HIEROPHANT", Name: "The Hierophant", Numeral: "V"},
	{ID: "LA-06-LOVERS", Name: "The Lovers", Numeral: "VI"},
	{ID: "LA-07-CHARIOT", Name: "The Chariot", Numeral: "VII"},
	{ID: "LA-08-STRENGTH", Name: "Strength", Numeral: "VIII"},
	{ID: "LA-09-HERMIT", Name: "The Hermit", Numeral: "IX"},
	{ID: "LA-10-WHEEL-OF-FORTUNE", Name: "Wheel of Fortune", Numeral: "X"},
	{ID: "LA-11-JUSTICE", Name: "Justice", Numeral: "XI"},
	{ID: "LA-12-HANGED-MAN", Name: "The Hanged Man", Numeral: "XII"},
	{ID: "LA-13-DEATH", Name: "Death", Numeral: "XIII"},
	{ID: "LA-14-TEMPERANCE", Name: "Temperance", Numeral: "XIV"},
	{ID: "LA-15-DEVIL", Name: "The Devil", Numeral: "XV"},
	{ID: "LA-16-TOWER", Name: "The Tower", Numeral: "XVI"},
	{ID: "LA-17-STAR", Name: "The Star", Numeral: "XVII"},
	{ID: "LA-18-MOON", Name: "The Moon", Numeral: "XVIII"},
	{ID: "LA-19-SUN", Name: "The Sun", Numeral: "XIX"},
	{ID: "LA-20-JUDGEMENT", Name: "Judgement", Numeral: "XX"},
	{ID: "LA-21-WORLD", Name: "The World", Numeral: "XXI"},
}

var (
	arcanaByID      = map[string]*Arcanum{}
	arcanaByNumeral = map[string]*Arcanum{}
	// arcanaByLength lists table indices with longer base names first, so
	// containment scans prefer "high priestess" over shorter names.
	arcanaByLength []int
)

func init() {
	for i := range Arcana {
		a := &Arcana[i]
		arcanaByID[a.ID] = a
		arcanaByNumeral[a.Numeral] = a
		arcanaByLength = append(arcanaByLength, i)
	}
	for i := 1; i < len(arcanaByLength); i++ {
		for j := i; j > 0 && len(baseName(Arcana[arcanaByLength[j]].Name)) > len(baseName(Arcana[arcanaByLength[j-1]].Name)); j-- {
			arcanaByLength[j], arcanaByLength[j-1] = arcanaByLength[j-1], arcanaByLength[j]
		}
	}
}

func baseName(name string) string {
	return strings.TrimPrefix(strings.ToLower(name), "the ")
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// foldTarot lowercases raw and collapses punctuation into single spaces.
func foldTarot(raw string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(raw), " "))
}

// TarotID normalizes raw into one of the 22 canonical major-arcana ids.
// Exact canonical ids pass through; otherwise the folded text must end with
// a known arcana name or be one of the roman numerals 0-XXI.
func TarotID(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if a, ok := arcanaByID[trimmed]; ok {
		return a.ID, true
	}
	folded := foldTarot(raw)
	if folded == "" {
		return "", false
	}
	if a, ok := arcanaByNumeral[strings.ToUpper(strings.ReplaceAll(folded, " ", ""))]; ok {
		return a.ID, true
	}
	for _, idx := range arcanaByLength {
		a := &Arcana[idx]
		base := baseName(a.Name)
		if folded == base || folded == strings.ToLower(a.Name) || strings.HasSuffix(folded, " "+base) {
			return a.ID, true
		}
	}
	return "", false
}

// FindArcanum scans free text for the first recognizable arcana reference:
// an arcana name appearing on a word boundary (longest names first), or a
// standalone roman numeral of at least two letters. Single-letter numerals
// are skipped because "I" and "V" are too common in prose.
func FindArcanum(text string) (string, bool) {
	folded := " " + foldTarot(text) + " "
	for _, idx := range arcanaByLength {
		a := &Arcana[idx]
		if strings.Contains(folded, " "+baseName(a.Name)+" ") {
			return a.ID, true
		}
	}
	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, ".,;:!?()[]")
		if len(token) < 2 && token != "0" {
			continue
		}
		if a, ok := arcanaByNumeral[token]; ok {
			return a.ID, true
		}
	}
	return "", false
}

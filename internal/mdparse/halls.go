package mdparse

import (
	"bufio"
	"strings"

	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/model"
)

// ParseHalls scans the halls document. A "## Title" header opens a hall
// whose id is the slug of the text before the first " - "; the hall closes
// at the next header or EOF. Trial/Gift lines and bullet tasks fill the
// hall and opportunistically resolve arcana references from their text.
func ParseHalls(text string) []model.Hall {
	var halls []model.Hall
	var current *model.Hall

	flush := func() {
		if current != nil {
			halls = append(halls, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "## ") {
			flush()
			title := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			idSource := title
			if cut := strings.Index(title, " - "); cut >= 0 {
				idSource = title[:cut]
			}
			id, ok := canon.HallID(idSource)
			if !ok {
				continue
			}
			current = &model.Hall{ID: id, Title: title}
			continue
		}

		if current == nil || line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Trial:"):
			current.Trial = strings.TrimSpace(strings.TrimPrefix(line, "Trial:"))
			addOverlay(&current.TarotOverlays, current.Trial)
		case strings.HasPrefix(line, "Gift:"):
			current.Gift = strings.TrimSpace(strings.TrimPrefix(line, "Gift:"))
			addOverlay(&current.TarotOverlays, current.Gift)
		case strings.HasPrefix(line, "- "):
			task := strings.TrimSpace(strings.TrimPrefix(line, "- "))
			if task != "" {
				current.Tasks = append(current.Tasks, task)
				addOverlay(&current.TarotOverlays, task)
			}
		default:
			addOverlay(&current.TarotOverlays, line)
		}
	}
	flush()
	return halls
}

// addOverlay appends the arcana reference found in text, if any, keeping
// first-seen order and skipping duplicates.
func addOverlay(overlays *[]string, text string) {
	id, ok := canon.FindArcanum(text)
	if !ok {
		return
	}
	for _, existing := range *overlays {
		if existing == id {
			return
		}
	}
	*overlays = append(*overlays, id)
}

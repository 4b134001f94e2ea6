package mdparse

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/cathedral-dev/codexc/internal/model"
)

// ParseFlow scans the ui-flow document. Every heading opens a new ordered
// step (flow-01, flow-02, ...); the lines beneath it become ordered notes
// scanned for arcana references.
func ParseFlow(text string) []model.FlowStep {
	var steps []model.FlowStep
	var current *model.FlowStep

	flush := func() {
		if current != nil {
			steps = append(steps, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			flush()
			title := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if title == "" {
				continue
			}
			current = &model.FlowStep{
				ID:    fmt.Sprintf("flow-%02d", len(steps)+1),
				Title: title,
			}
			continue
		}

		if current == nil || line == "" {
			continue
		}
		current.Notes = append(current.Notes, line)
		addOverlay(&current.TarotOverlays, line)
	}
	flush()
	return steps
}

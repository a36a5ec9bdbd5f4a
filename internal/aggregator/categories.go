// Package aggregator derives the secondary indexes of the event corpus.
// Every function is a pure pass over the events; none depends on another.
package aggregator

import (
	"strings"

	"egov-event-export/internal/models"
)

// CategoryTally counts events per trimmed category label. Ids follow first-seen
// order; default labels missing from the corpus are appended with count 0.
func CategoryTally(events []models.Event, defaults []string) []models.CategoryCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for i := range events {
		label := strings.TrimSpace(events[i].CategoryLabel)
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	for _, label := range defaults {
		if _, seen := counts[label]; !seen {
			order = append(order, label)
			counts[label] = 0
		}
	}

	result := make([]models.CategoryCount, 0, len(order))
	for i, label := range order {
		result = append(result, models.CategoryCount{
			ID:    i + 1,
			Label: label,
			Count: counts[label],
		})
	}
	return result
}

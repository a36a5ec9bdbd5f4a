package aggregator

import (
	"strings"

	"egov-event-export/internal/config"
	"egov-event-export/internal/models"
)

// OfficeDirectory lists the public bodies referenced by events, keyed by trimmed
// office id in first-seen order. An abbreviation always wins over a synthesized
// name and a later abbreviation replaces an earlier one. When no office is
// referenced at all the fallback list is returned instead.
func OfficeDirectory(events []models.Event, fallback []config.NamedEntry, tpl config.Templates) []models.OfficeEntry {
	names := make(map[string]string)
	abbreviated := make(map[string]bool)
	order := make([]string, 0)

	for i := range events {
		id := strings.TrimSpace(events[i].OfficeID)
		if id == "" {
			continue
		}
		if _, seen := names[id]; !seen {
			order = append(order, id)
		}

		abbreviation := strings.TrimSpace(events[i].OfficeAbbreviation)
		switch {
		case abbreviation != "":
			names[id] = abbreviation
			abbreviated[id] = true
		case !abbreviated[id]:
			names[id] = officeName(id, tpl)
		}
	}

	if len(order) == 0 {
		result := make([]models.OfficeEntry, 0, len(fallback))
		for _, f := range fallback {
			result = append(result, models.OfficeEntry{ID: f.ID, Label: f.Name})
		}
		return result
	}

	result := make([]models.OfficeEntry, 0, len(order))
	for _, id := range order {
		result = append(result, models.OfficeEntry{ID: id, Label: names[id]})
	}
	return result
}

// officeName synthesizes a name from the id's last path segment
func officeName(id string, tpl config.Templates) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return strings.ReplaceAll(tpl.OfficeWithSegment, "{segment}", id[i+1:])
	}
	return strings.ReplaceAll(tpl.Office, "{id}", id)
}

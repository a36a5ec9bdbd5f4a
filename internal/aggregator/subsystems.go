package aggregator

import (
	"strings"

	"egov-event-export/internal/config"
	"egov-event-export/internal/models"
)

// SubsystemDirectory lists information systems by trimmed abbreviation in
// first-seen order, named from nameMap or the subsystem template. Defaults are
// appended when their abbreviation is missing; discovered entries are never replaced.
func SubsystemDirectory(events []models.Event, defaults []config.NamedEntry, nameMap map[string]string, tpl config.Templates) []models.SubsystemEntry {
	names := make(map[string]string)
	order := make([]string, 0)

	for i := range events {
		abbreviation := strings.TrimSpace(events[i].SubsystemAbbreviation)
		if abbreviation == "" {
			continue
		}
		if _, seen := names[abbreviation]; !seen {
			order = append(order, abbreviation)
		}
		names[abbreviation] = subsystemName(abbreviation, nameMap, tpl)
	}

	for _, d := range defaults {
		if _, seen := names[d.ID]; !seen {
			order = append(order, d.ID)
			names[d.ID] = d.Name
		}
	}

	result := make([]models.SubsystemEntry, 0, len(order))
	for _, abbreviation := range order {
		result = append(result, models.SubsystemEntry{
			ID:           abbreviation,
			Abbreviation: abbreviation,
			Label:        names[abbreviation],
		})
	}
	return result
}

func subsystemName(abbreviation string, nameMap map[string]string, tpl config.Templates) string {
	if name, ok := nameMap[abbreviation]; ok {
		return name
	}
	return strings.ReplaceAll(tpl.Subsystem, "{abbreviation}", abbreviation)
}

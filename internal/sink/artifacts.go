// Package sink persists the exported corpus and its indexes.
package sink

import "egov-event-export/internal/models"

// Artifact file names read by the static site
const (
	EventsFile      = "events.json"
	CategoriesFile  = "categories.json"
	OfficesFile     = "urady.json"
	SubsystemsFile  = "isvs.json"
	SuggestionsFile = "search-suggestions.json"
)

// Artifacts everything one run writes
type Artifacts struct {
	Events      []models.Event
	Categories  []models.CategoryCount
	Offices     []models.OfficeEntry
	Subsystems  []models.SubsystemEntry
	Suggestions []models.SearchSuggestion
}

// artifact one named payload
type artifact struct {
	name    string
	payload interface{}
}

// list returns the payloads in write order; nil slices encode as []
func (a *Artifacts) list() []artifact {
	return []artifact{
		{EventsFile, nonNil(a.Events)},
		{CategoriesFile, nonNil(a.Categories)},
		{OfficesFile, nonNil(a.Offices)},
		{SubsystemsFile, nonNil(a.Subsystems)},
		{SuggestionsFile, nonNil(a.Suggestions)},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

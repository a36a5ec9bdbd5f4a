package models

// CategoryCount category tally entry
type CategoryCount struct {
	ID    int    `json:"id"`
	Label string `json:"nazev"`
	Count int    `json:"count"`
}

// OfficeEntry office directory entry
type OfficeEntry struct {
	ID    string `json:"id"`
	Label string `json:"nazev"`
}

// SubsystemEntry information system directory entry
type SubsystemEntry struct {
	ID           string `json:"id"`
	Abbreviation string `json:"zkratka"`
	Label        string `json:"nazev"`
}

// SearchSuggestion autocomplete entry
type SearchSuggestion struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

package aggregator

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"egov-event-export/internal/models"
)

// MaxSuggestions caps the suggestion vocabulary
const MaxSuggestions = 100

const (
	minPhraseRunes = 4
	minWordRunes   = 5
	wordTrimSet    = ".,!?:;()[]{}\"-"
)

// SearchSuggestions builds the sorted search vocabulary, truncated to limit
// (MaxSuggestions when limit <= 0).
//
// Candidates are trimmed titles, organizers and locations longer than 3 runes,
// every category label, and description words longer than 4 runes made of
// letters only. Count is the number of events whose folded searchable text
// contains the folded candidate, at least 1.
//
// Counting is a substring scan of every candidate against every event, so the
// cost is len(candidates) * len(events).
func SearchSuggestions(events []models.Event, limit int) []models.SearchSuggestion {
	if limit <= 0 {
		limit = MaxSuggestions
	}

	candidates := make(map[string]struct{})
	for i := range events {
		collectCandidates(&events[i], candidates)
	}

	labels := make([]string, 0, len(candidates))
	for label := range candidates {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	if len(labels) > limit {
		labels = labels[:limit]
	}

	folded := make([]string, len(labels))
	for i, label := range labels {
		folded[i] = strings.ToLower(label)
	}

	counts := make([]int, len(labels))
	for i := range events {
		text := strings.ToLower(events[i].SearchableText())
		for j := range folded {
			if strings.Contains(text, folded[j]) {
				counts[j]++
			}
		}
	}

	result := make([]models.SearchSuggestion, 0, len(labels))
	for i, label := range labels {
		count := counts[i]
		if count == 0 {
			count = 1
		}
		result = append(result, models.SearchSuggestion{
			ID:    label,
			Label: label,
			Count: count,
		})
	}
	return result
}

func collectCandidates(e *models.Event, candidates map[string]struct{}) {
	for _, phrase := range []string{e.Title, e.Organizer, e.Location} {
		phrase = strings.TrimSpace(phrase)
		if utf8.RuneCountInString(phrase) >= minPhraseRunes {
			candidates[phrase] = struct{}{}
		}
	}

	if category := strings.TrimSpace(e.CategoryLabel); category != "" {
		candidates[category] = struct{}{}
	}

	description := strings.TrimSpace(e.Description)
	if description == "" {
		return
	}
	description = strings.ReplaceAll(description, "\r\n", " ")
	description = strings.ReplaceAll(description, "\n", " ")
	for _, word := range strings.Fields(description) {
		word = strings.TrimSpace(strings.Trim(word, wordTrimSet))
		if utf8.RuneCountInString(word) >= minWordRunes && isAlpha(word) {
			candidates[word] = struct{}{}
		}
	}
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

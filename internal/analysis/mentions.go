package analysis

import (
	"strings"

	"github.com/abhisek/sociogram/internal/survey"
)

// Mentions maps a student to the submitters who named them in a free-text
// field, in record order.
type Mentions map[string][]string

// PraiseMentions collects who named whom in the praise-a-friend answer.
func PraiseMentions(records []Record, roster *survey.Roster) Mentions {
	return collectMentions(records, roster, func(f survey.FreeText) string { return f.PraiseFriend })
}

// DifficultyMentions collects who named whom as hard to get along with.
func DifficultyMentions(records []Record, roster *survey.Roster) Mentions {
	return collectMentions(records, roster, func(f survey.FreeText) string { return f.DifficultFriend })
}

// collectMentions splits the field on , ; / and newlines and matches each
// piece against roster names, ignoring case. Names shared by two students
// are ambiguous and never match. Self-mentions are ignored.
func collectMentions(records []Record, roster *survey.Roster, field func(survey.FreeText) string) Mentions {
	byName := make(map[string]string)
	ambiguous := make(map[string]bool)
	for _, s := range roster.Students() {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			continue
		}
		if _, ok := byName[key]; ok {
			ambiguous[key] = true
			continue
		}
		byName[key] = s.ID
	}

	out := make(Mentions)
	for _, rec := range records {
		text := field(rec.FreeText)
		if strings.TrimSpace(text) == "" {
			continue
		}
		seen := make(map[string]bool)
		for _, tok := range strings.FieldsFunc(text, isMentionSeparator) {
			key := strings.ToLower(strings.TrimSpace(tok))
			if ambiguous[key] {
				continue
			}
			id, ok := byName[key]
			if !ok || id == rec.SubmitterID || seen[id] {
				continue
			}
			seen[id] = true
			out[id] = append(out[id], rec.SubmitterID)
		}
	}
	return out
}

func isMentionSeparator(r rune) bool {
	switch r {
	case ',', ';', '/', '\n', '\r':
		return true
	}
	return false
}

package meeting

import "strings"

// SelectParticipants scans the coordinator's routing text for roster role
// names, case-insensitively, and returns the matched names in roster order.
// A text that names no roster member routes to the entire roster: ambiguous
// routing fails open, never closed, so a question can never go unanswered
// because of how the coordinator phrased its answer.
func SelectParticipants(text string, roster []string) []string {
	lower := strings.ToLower(text)
	selected := make([]string, 0, len(roster))
	for _, name := range roster {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			selected = append(selected, name)
		}
	}
	if len(selected) == 0 {
		return append([]string(nil), roster...)
	}
	return selected
}

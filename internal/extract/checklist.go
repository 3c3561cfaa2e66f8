package extract

import (
	"regexp"
	"strings"

	"github.com/brightlight720720/ILD/internal/meeting"
)

// Answer is a resolved checklist entry. There is no third value: anything the
// passes cannot resolve defaults to No.
type Answer string

const (
	Yes Answer = "Yes"
	No  Answer = "No"
)

var (
	yesWordRe      = regexp.MustCompile(`(?i)\byes\b`)
	noWordRe       = regexp.MustCompile(`(?i)\bno\b`)
	numberedLineRe = regexp.MustCompile(`^\s*(\d+)[.)、:：]?\s*(.*)$`)
)

// ParseChecklist resolves every canonical question against the combined
// checklist query output. Three descending-confidence passes per question:
//
//  1. a line containing the question's label, answer token read after the
//     first delimiter on that line;
//  2. the question's ordinal numbered line, if it carries one of the
//     question's keywords, answered by whether an affirmative token is
//     embedded in it;
//  3. default No.
//
// The returned map always contains all question ids: missing or malformed
// output degrades values, never the schema.
func ParseChecklist(text string, questions []meeting.Question) map[string]Answer {
	lines := strings.Split(text, "\n")
	numbered := indexNumberedLines(lines)

	answers := make(map[string]Answer, len(questions))
	for i, q := range questions {
		answers[q.ID] = No
		if ans, ok := answerByLabel(lines, q.Label); ok {
			answers[q.ID] = ans
			continue
		}
		if ans, ok := answerByOrdinal(numbered, i+1, q.Keywords); ok {
			answers[q.ID] = ans
		}
	}
	return answers
}

// DefaultChecklist returns the all-No checklist used when no meeting output
// exists at all, e.g. for the error-shaped result of a failed meeting.
func DefaultChecklist(questions []meeting.Question) map[string]Answer {
	answers := make(map[string]Answer, len(questions))
	for _, q := range questions {
		answers[q.ID] = No
	}
	return answers
}

func answerByLabel(lines []string, label string) (Answer, bool) {
	for _, line := range lines {
		if !strings.Contains(line, label) {
			continue
		}
		rest := line[strings.Index(line, label)+len(label):]
		if idx := strings.IndexAny(rest, ":："); idx >= 0 {
			rest = rest[idx+1:]
		}
		if ans, ok := tokenAnswer(rest); ok {
			return ans, true
		}
	}
	return No, false
}

func answerByOrdinal(numbered map[int]string, ordinal int, keywords []string) (Answer, bool) {
	line, ok := numbered[ordinal]
	if !ok {
		return No, false
	}
	lower := strings.ToLower(line)
	matched := false
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return No, false
	}
	if affirmative(line) {
		return Yes, true
	}
	return No, true
}

func indexNumberedLines(lines []string) map[int]string {
	numbered := make(map[int]string)
	for _, line := range lines {
		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n := 0
		for _, r := range m[1] {
			n = n*10 + int(r-'0')
		}
		// First occurrence wins: restated lists later in the answer must not
		// overwrite the primary one.
		if _, seen := numbered[n]; !seen {
			numbered[n] = m[2]
		}
	}
	return numbered
}

// tokenAnswer reads an explicit yes/no token from the text after a label's
// delimiter. Chinese tokens are checked by prefix first since the combined
// query requests that exact format; bare English words are accepted as a
// courtesy to non-compliant output.
func tokenAnswer(s string) (Answer, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return No, false
	}
	switch {
	case strings.HasPrefix(t, "是"):
		return Yes, true
	case strings.HasPrefix(t, "否"):
		return No, true
	case yesWordRe.MatchString(t):
		return Yes, true
	case noWordRe.MatchString(t):
		return No, true
	case strings.Contains(t, "是"):
		return Yes, true
	case strings.Contains(t, "否"):
		return No, true
	}
	return No, false
}

// affirmative reports whether a line carries a standalone affirmative token.
// The "是否" that opens every question label is stripped first so the label
// itself never reads as a yes.
func affirmative(line string) bool {
	cleaned := strings.ReplaceAll(line, "是否", "")
	if strings.Contains(cleaned, "是") {
		return true
	}
	return yesWordRe.MatchString(line)
}

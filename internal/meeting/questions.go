package meeting

// Question is one of the eight canonical yes/no topics every meeting walks
// through. The list is process-wide constant configuration, not patient
// specific. Label is the fixed line label the combined checklist query asks
// the coordinator to use; Keywords feed the low-confidence extraction pass.
type Question struct {
	ID       string
	Prompt   string
	Label    string
	Keywords []string
}

var canonicalQuestions = []Question{
	{
		ID:       "is_ild",
		Prompt:   "Is this patient's condition considered ILD?",
		Label:    "是否為 ILD",
		Keywords: []string{"ild", "interstitial"},
	},
	{
		ID:       "is_indeterminate",
		Prompt:   "Is this an indeterminate case?",
		Label:    "是否為 Indeterminate",
		Keywords: []string{"indeterminate", "inconclusive"},
	},
	{
		ID:       "is_uip",
		Prompt:   "Does the patient have UIP pattern?",
		Label:    "是否為 UIP",
		Keywords: []string{"uip", "honeycomb"},
	},
	{
		ID:       "has_nsip_pattern",
		Prompt:   "Is there any NSIP pattern present?",
		Label:    "是否還有 NSIP pattern",
		Keywords: []string{"nsip", "ground-glass", "ground glass"},
	},
	{
		ID:       "rheumatic_activity",
		Prompt:   "Is there ongoing rheumatic disease activity?",
		Label:    "是否還有免風疾病活動性(activity) 病變",
		Keywords: []string{"rheumatic", "autoimmune", "activity"},
	},
	{
		ID:       "is_progressing",
		Prompt:   "Is the ILD progressing?",
		Label:    "是否 ILD 持續進展",
		Keywords: []string{"progress", "worsen", "decline"},
	},
	{
		ID:       "adjust_immunotherapy",
		Prompt:   "Should we adjust the immunosuppressive therapy?",
		Label:    "是否調整免疫治療藥物",
		Keywords: []string{"immunosuppress", "immunotherapy", "steroid"},
	},
	{
		ID:       "recommend_antifibrotic",
		Prompt:   "Should we recommend anti-fibrotic medication?",
		Label:    "是否建議使用抗肺纖維化藥物",
		Keywords: []string{"anti-fibrotic", "antifibrotic", "nintedanib", "pirfenidone"},
	},
}

// Questions returns the canonical discussion questions in their fixed order.
func Questions() []Question {
	out := make([]Question, len(canonicalQuestions))
	copy(out, canonicalQuestions)
	return out
}

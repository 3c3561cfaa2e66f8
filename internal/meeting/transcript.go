package meeting

// PatientCase is the opaque record supplied by the external ingestion
// pipeline. The engine only serializes it into prompts and never mutates it.
type PatientCase map[string]any

// DiscussionPoint records one canonical question's round: the coordinator's
// routing answer and the selected specialists' responses in roster order.
type DiscussionPoint struct {
	QuestionID        string            `json:"question_id"`
	Question          string            `json:"question"`
	CoordinatorPrompt string            `json:"coordinator_prompt"`
	Responders        []string          `json:"responders"`
	Responses         map[string]string `json:"responses"`
}

// Transcript is the raw, unstructured meeting record. It is built append-only
// while the meeting runs and immutable once Run returns. The risk and
// checklist responses are the two targeted coordinator queries the structured
// extractor parses.
type Transcript struct {
	MeetingDate        string            `json:"meeting_date"`
	CasePresentation   string            `json:"case_presentation"`
	InitialImpressions map[string]string `json:"specialist_impressions"`
	Discussion         []DiscussionPoint `json:"discussion_points"`
	Conclusion         string            `json:"conclusion"`
	DiagnosisSummary   string            `json:"diagnosis_analysis"`
	TreatmentSummary   string            `json:"treatment_recommendations"`
	ProgressionSummary string            `json:"progression_assessment"`
	RiskResponse       string            `json:"risk_response"`
	ChecklistResponse  string            `json:"checklist_response"`
}

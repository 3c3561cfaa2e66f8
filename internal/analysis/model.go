package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightlight720720/ILD/internal/extract"
	"github.com/brightlight720720/ILD/internal/meeting"
)

// AnalysisResult is the typed outcome of one meeting, keyed by the patient
// identifier. Its schema is complete even when the meeting failed: summary
// fields then carry placeholder text, the risk level is Unknown and the
// checklist holds all eight ids defaulted to No.
type AnalysisResult struct {
	PatientID          string                    `json:"patient_id"`
	PatientName        string                    `json:"patient_name"`
	MeetingDate        string                    `json:"meeting_date"`
	DiagnosisSummary   string                    `json:"diagnosis_analysis"`
	TreatmentSummary   string                    `json:"treatment_recommendations"`
	ProgressionSummary string                    `json:"progression_assessment"`
	RiskLevel          extract.RiskLevel         `json:"risk_level"`
	RiskFactors        []string                  `json:"risk_factors"`
	Checklist          map[string]extract.Answer `json:"checklist"`
}

// Record is the persisted aggregate: result plus the raw transcript it was
// derived from.
type Record struct {
	ID         uuid.UUID           `json:"id"`
	PatientID  string              `json:"patient_id"`
	Result     AnalysisResult      `json:"result"`
	Transcript *meeting.Transcript `json:"transcript"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// patientID reads the stable identifier the ingestion pipeline is required to
// supply. The core never fabricates identifiers itself.
func patientID(c meeting.PatientCase) string {
	return stringField(c, "id")
}

func patientName(c meeting.PatientCase) string {
	return stringField(c, "name")
}

func stringField(c meeting.PatientCase, key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Package extract turns the coordinator's free-text answers into typed
// fields. Both extraction problems follow the same pattern: an ordered chain
// of parser attempts with first-success-wins semantics, degrading from strict
// structured parsing through keyword heuristics down to a safe default. The
// output schema is always complete; only field values may degrade.
package extract

import (
	"encoding/json"
	"strings"
)

// RiskLevel is the categorical risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskUnknown  RiskLevel = "Unknown"
)

// FallbackRiskFactor is the sentinel emitted when no factor could be read out
// of the response. Downstream consumers always get at least one factor.
const FallbackRiskFactor = "Risk factors not clearly identified"

// RiskAssessment is the typed result of the coordinator's risk query.
type RiskAssessment struct {
	Level       RiskLevel `json:"risk_level"`
	Factors     []string  `json:"risk_factors"`
	Explanation string    `json:"explanation"`
}

// ParseRisk extracts a risk assessment from the coordinator's dedicated risk
// query output. It first attempts a strict JSON object; if that fails it
// recovers the level by keyword priority and the factors from bullet lines.
func ParseRisk(text string) RiskAssessment {
	if r, ok := parseRiskJSON(text); ok {
		return r
	}
	r := RiskAssessment{
		Level:       riskLevelFromKeywords(text),
		Factors:     bulletLines(text),
		Explanation: strings.TrimSpace(text),
	}
	if len(r.Factors) == 0 {
		r.Factors = []string{FallbackRiskFactor}
	}
	return r
}

type riskPayload struct {
	RiskLevel   string   `json:"risk_level"`
	RiskFactors []string `json:"risk_factors"`
	Explanation string   `json:"explanation"`
}

func parseRiskJSON(text string) (RiskAssessment, bool) {
	candidate := strings.TrimSpace(text)
	var payload riskPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		// Models routinely wrap the object in prose or a code fence; retry on
		// the outermost brace span before giving up on structured parsing.
		start := strings.Index(candidate, "{")
		end := strings.LastIndex(candidate, "}")
		if start < 0 || end <= start {
			return RiskAssessment{}, false
		}
		if err := json.Unmarshal([]byte(candidate[start:end+1]), &payload); err != nil {
			return RiskAssessment{}, false
		}
	}
	r := RiskAssessment{
		Level:       normalizeRiskLevel(payload.RiskLevel),
		Factors:     payload.RiskFactors,
		Explanation: payload.Explanation,
	}
	if len(r.Factors) == 0 {
		r.Factors = []string{FallbackRiskFactor}
	}
	return r, true
}

func normalizeRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "mild":
		return RiskLow
	case "moderate", "medium":
		return RiskModerate
	case "high", "severe":
		return RiskHigh
	}
	return RiskUnknown
}

// riskLevelFromKeywords matches risk phrases in strict priority order: high
// before moderate before low, so mixed language like "low to moderate risk"
// reads as the stronger classification and "high risk" anywhere wins outright.
func riskLevelFromKeywords(text string) RiskLevel {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "high risk") || strings.Contains(lower, "severe risk"):
		return RiskHigh
	case strings.Contains(lower, "moderate risk") || strings.Contains(lower, "medium risk"):
		return RiskModerate
	case strings.Contains(lower, "low risk") || strings.Contains(lower, "mild risk"):
		return RiskLow
	}
	return RiskUnknown
}

func bulletLines(text string) []string {
	var factors []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "*") {
			continue
		}
		factor := strings.TrimSpace(strings.TrimLeft(trimmed, "-* "))
		if factor != "" {
			factors = append(factors, factor)
		}
	}
	return factors
}

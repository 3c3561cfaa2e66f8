package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/brightlight720720/ILD/internal/agent"
	"github.com/brightlight720720/ILD/internal/llm"
)

// ErrMissingRoster is returned when an engine is built without specialists.
var ErrMissingRoster = errors.New("meeting roster must contain at least one specialist")

// KnowledgeSource is the optional retrieval collaborator. Lookup failures are
// logged and ignored: the meeting runs identically, only with less-informed
// context.
type KnowledgeSource interface {
	Lookup(query string) (string, error)
}

// Engine drives the fixed meeting protocol across the coordinator and the
// specialist roster. An Engine holds only configuration and may be shared by
// concurrent meetings; every Run builds a fresh set of agents so no memory
// leaks between patients.
type Engine struct {
	backend     llm.Client
	coordinator agent.Role
	roster      []agent.Role
	questions   []Question
	knowledge   KnowledgeSource
	logger      *zap.SugaredLogger
}

// NewEngine validates the roster and returns an engine bound to the given
// backend. knowledge may be nil.
func NewEngine(backend llm.Client, coordinator agent.Role, roster []agent.Role, knowledge KnowledgeSource, logger *zap.SugaredLogger) (*Engine, error) {
	if len(roster) == 0 {
		return nil, ErrMissingRoster
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		backend:     backend,
		coordinator: coordinator,
		roster:      append([]agent.Role(nil), roster...),
		questions:   Questions(),
		knowledge:   knowledge,
		logger:      logger,
	}, nil
}

// Run executes one complete meeting for a patient case and returns the raw
// transcript. The protocol is strictly sequential: every step depends on the
// text of the previous one, so there is no fan-out even when several
// specialists answer the same question. Any backend failure aborts the whole
// meeting.
func (e *Engine) Run(ctx context.Context, patient PatientCase) (*Transcript, error) {
	coordinator := agent.New(e.coordinator, e.backend)
	specialists := make([]*agent.Agent, 0, len(e.roster))
	names := make([]string, 0, len(e.roster))
	for _, role := range e.roster {
		specialists = append(specialists, agent.New(role, e.backend))
		names = append(names, role.Name)
	}

	caseJSON, err := json.MarshalIndent(patient, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "serialize patient case")
	}

	t := &Transcript{
		MeetingDate:        time.Now().Format("2006/01/02"),
		InitialImpressions: make(map[string]string, len(specialists)),
	}

	presentation := fmt.Sprintf(
		"Please begin our multidisciplinary ILD meeting by presenting the patient case briefly and inviting initial impressions from the specialists.\n\nPatient data:\n%s",
		caseJSON)
	if ref := e.reference(patient); ref != "" {
		presentation = "Reference material:\n" + ref + "\n\n" + presentation
	}
	if t.CasePresentation, err = coordinator.Respond(ctx, presentation); err != nil {
		return nil, err
	}
	e.logger.Debugw("case presented")

	// Initial impressions, roster order. Specialists never see each other's
	// answers directly; all relaying goes through the coordinator's memory.
	for _, s := range specialists {
		input := fmt.Sprintf(
			"As the %s, please provide your initial impression of this case based on the available information.\n\nPatient data:\n%s",
			s.Name(), caseJSON)
		impression, err := s.Respond(ctx, input)
		if err != nil {
			return nil, err
		}
		t.InitialImpressions[s.Name()] = impression
		coordinator.Observe(titleCase(s.Name()), impression)
	}
	e.logger.Debugw("initial impressions collected", "specialists", len(specialists))

	for _, q := range e.questions {
		routing, err := coordinator.Respond(ctx, fmt.Sprintf(
			"Please ask the team to address the following question: %s Identify which specialists should provide their expertise on this question.",
			q.Prompt))
		if err != nil {
			return nil, err
		}

		point := DiscussionPoint{
			QuestionID:        q.ID,
			Question:          q.Prompt,
			CoordinatorPrompt: routing,
			Responses:         make(map[string]string),
		}
		selected := SelectParticipants(routing, names)
		for _, s := range specialists {
			if !containsName(selected, s.Name()) {
				continue
			}
			answer, err := s.Respond(ctx, fmt.Sprintf(
				"The coordinator has asked the team to address: %s Answer briefly, focusing on your specialty.",
				q.Prompt))
			if err != nil {
				return nil, err
			}
			point.Responders = append(point.Responders, s.Name())
			point.Responses[s.Name()] = answer
			coordinator.Observe(titleCase(s.Name()), answer)
		}
		t.Discussion = append(t.Discussion, point)
		e.logger.Debugw("question discussed", "question_id", q.ID, "responders", len(point.Responders))
	}

	// Concluded: the summary and targeted queries are fresh turns against the
	// coordinator's accumulated memory, not separate agents, preserving one
	// continuous train of reasoning.
	closing := []struct {
		dst   *string
		input string
	}{
		{&t.Conclusion, "Please summarize our discussion today and provide the team's consensus on diagnosis and treatment recommendations."},
		{&t.DiagnosisSummary, "Based on our discussion, please provide a concise diagnosis analysis for this patient."},
		{&t.TreatmentSummary, "Based on our discussion, please provide specific treatment recommendations for this patient."},
		{&t.ProgressionSummary, "Based on our discussion, please provide an assessment of the disease progression for this patient."},
		{&t.RiskResponse, "Based on our discussion, please provide a risk assessment for this patient, including risk level (low, moderate, high) and specific risk factors as a bulleted list."},
		{&t.ChecklistResponse, checklistQuery(e.questions)},
	}
	for _, step := range closing {
		if *step.dst, err = coordinator.Respond(ctx, step.input); err != nil {
			return nil, err
		}
	}
	e.logger.Infow("meeting concluded", "questions", len(t.Discussion))

	return t, nil
}

func (e *Engine) reference(patient PatientCase) string {
	if e.knowledge == nil {
		return ""
	}
	query := "ILD diagnosis and treatment"
	if hrct, ok := patient["hrct"].(map[string]any); ok {
		if impression, ok := hrct["impression"].(string); ok && impression != "" {
			query = impression
		}
	}
	text, err := e.knowledge.Lookup(query)
	if err != nil {
		e.logger.Warnw("knowledge lookup failed", "error", err)
		return ""
	}
	return text
}

func checklistQuery(questions []Question) string {
	var b strings.Builder
	b.WriteString("Based on our discussion, answer each of the following questions. ")
	b.WriteString("Respond with exactly one line per question, in the format '<question>: 是' or '<question>: 否', in the same order:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Label)
	}
	return b.String()
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func titleCase(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

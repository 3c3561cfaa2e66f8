package meeting

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlight720720/ILD/internal/agent"
	"github.com/brightlight720720/ILD/internal/llm"
)

type recordedCall struct {
	instructions string
	history      []llm.Turn
	input        string
}

// scriptedBackend answers according to respond and records every call.
type scriptedBackend struct {
	mu      sync.Mutex
	calls   []recordedCall
	respond func(call recordedCall) (string, error)
}

func (b *scriptedBackend) Complete(_ context.Context, instructions string, history []llm.Turn, input string) (string, error) {
	snapshot := make([]llm.Turn, len(history))
	copy(snapshot, history)
	call := recordedCall{instructions: instructions, history: snapshot, input: input}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()

	return b.respond(call)
}

func (b *scriptedBackend) recorded() []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedCall, len(b.calls))
	copy(out, b.calls)
	return out
}

func testRosterRoles() []agent.Role {
	return []agent.Role{
		agent.NewSpecialistRole("pulmonologist", "Pulmonologist", "lung function and ILD subtypes"),
		agent.NewSpecialistRole("radiologist", "Thoracic Radiologist", "HRCT evaluation of ILD"),
	}
}

func defaultScript(call recordedCall) (string, error) {
	switch {
	case strings.Contains(call.input, "As the pulmonologist"):
		return "pulmo-impression", nil
	case strings.Contains(call.input, "As the radiologist"):
		return "radio-impression", nil
	case strings.Contains(call.input, "address the following question: Does the patient have UIP pattern?"):
		return "The radiologist should take this one.", nil
	case strings.Contains(call.input, "address the following question:"):
		return "Team, please weigh in.", nil
	default:
		return "coordinator-text", nil
	}
}

func newTestEngine(t *testing.T, backend llm.Client, knowledge KnowledgeSource) *Engine {
	t.Helper()
	e, err := NewEngine(backend, agent.CoordinatorRole(), testRosterRoles(), knowledge, nil)
	require.NoError(t, err)
	return e
}

func TestRunWalksFullProtocol(t *testing.T) {
	backend := &scriptedBackend{respond: defaultScript}
	e := newTestEngine(t, backend, nil)

	transcript, err := e.Run(context.Background(), PatientCase{"id": "p1", "name": "Test Patient"})
	require.NoError(t, err)

	assert.NotEmpty(t, transcript.CasePresentation)
	assert.Equal(t, map[string]string{
		"pulmonologist": "pulmo-impression",
		"radiologist":   "radio-impression",
	}, transcript.InitialImpressions)

	require.Len(t, transcript.Discussion, len(Questions()))
	for _, point := range transcript.Discussion {
		if point.QuestionID == "is_uip" {
			assert.Equal(t, []string{"radiologist"}, point.Responders)
		} else {
			assert.Equal(t, []string{"pulmonologist", "radiologist"}, point.Responders,
				"routing text naming nobody must fail open to the whole roster")
		}
		for _, name := range point.Responders {
			assert.NotEmpty(t, point.Responses[name])
		}
	}

	assert.NotEmpty(t, transcript.Conclusion)
	assert.NotEmpty(t, transcript.DiagnosisSummary)
	assert.NotEmpty(t, transcript.TreatmentSummary)
	assert.NotEmpty(t, transcript.ProgressionSummary)
	assert.NotEmpty(t, transcript.RiskResponse)
	assert.NotEmpty(t, transcript.ChecklistResponse)
}

func TestRunRelaysSpecialistAnswersIntoCoordinatorMemory(t *testing.T) {
	backend := &scriptedBackend{respond: defaultScript}
	e := newTestEngine(t, backend, nil)

	_, err := e.Run(context.Background(), PatientCase{"id": "p1"})
	require.NoError(t, err)

	var conclusionCall *recordedCall
	for _, call := range backend.recorded() {
		if strings.Contains(call.input, "summarize our discussion today") {
			call := call
			conclusionCall = &call
			break
		}
	}
	require.NotNil(t, conclusionCall, "coordinator must be asked for a conclusion")

	found := false
	for _, turn := range conclusionCall.history {
		if turn.Speaker == llm.SpeakerUser && turn.Text == "Pulmonologist: pulmo-impression" {
			found = true
			break
		}
	}
	assert.True(t, found, "the coordinator's memory must contain the relayed specialist impressions")
}

func TestRunAbortsOnBackendFailure(t *testing.T) {
	backend := &scriptedBackend{respond: func(call recordedCall) (string, error) {
		if strings.Contains(call.input, "initial impression") {
			return "", errors.Wrap(llm.ErrBackendUnavailable, "boom")
		}
		return defaultScript(call)
	}}
	e := newTestEngine(t, backend, nil)

	_, err := e.Run(context.Background(), PatientCase{"id": "p1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrBackendUnavailable))
}

func TestNewEngineRejectsEmptyRoster(t *testing.T) {
	_, err := NewEngine(&scriptedBackend{respond: defaultScript}, agent.CoordinatorRole(), nil, nil, nil)
	assert.True(t, errors.Is(err, ErrMissingRoster))
}

func TestConcurrentMeetingsAreIsolated(t *testing.T) {
	backend := &scriptedBackend{respond: func(call recordedCall) (string, error) {
		// Patient p2's meeting dies at case presentation; p1's must not notice.
		if strings.Contains(call.input, `"id": "p2"`) && strings.Contains(call.input, "presenting the patient case") {
			return "", errors.Wrap(llm.ErrBackendUnavailable, "p2 backend down")
		}
		return defaultScript(call)
	}}
	e := newTestEngine(t, backend, nil)

	var wg sync.WaitGroup
	var okTranscript *Transcript
	var okErr, failErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		okTranscript, okErr = e.Run(context.Background(), PatientCase{"id": "p1"})
	}()
	go func() {
		defer wg.Done()
		_, failErr = e.Run(context.Background(), PatientCase{"id": "p2"})
	}()
	wg.Wait()

	require.NoError(t, okErr)
	require.Error(t, failErr)
	assert.True(t, errors.Is(failErr, llm.ErrBackendUnavailable))
	assert.Len(t, okTranscript.Discussion, len(Questions()))
}

type failingKnowledge struct{}

func (failingKnowledge) Lookup(string) (string, error) {
	return "", errors.New("retrieval subsystem offline")
}

type cannedKnowledge struct{}

func (cannedKnowledge) Lookup(string) (string, error) {
	return "UIP is characterized by honeycombing.", nil
}

func TestRunSurvivesKnowledgeFailure(t *testing.T) {
	backend := &scriptedBackend{respond: defaultScript}
	e := newTestEngine(t, backend, failingKnowledge{})

	_, err := e.Run(context.Background(), PatientCase{"id": "p1"})
	require.NoError(t, err)

	first := backend.recorded()[0]
	assert.NotContains(t, first.input, "Reference material:")
}

func TestRunPrependsReferenceMaterial(t *testing.T) {
	backend := &scriptedBackend{respond: defaultScript}
	e := newTestEngine(t, backend, cannedKnowledge{})

	_, err := e.Run(context.Background(), PatientCase{"id": "p1"})
	require.NoError(t, err)

	first := backend.recorded()[0]
	assert.True(t, strings.HasPrefix(first.input, "Reference material:"))
	assert.Contains(t, first.input, "honeycombing")
}

package agent

import (
	"context"
	"fmt"

	"github.com/brightlight720720/ILD/internal/llm"
)

// Agent binds a role identity and private conversation memory to the
// completion backend. Memory is scoped to one meeting: build a fresh set of
// agents per meeting and discard them when it ends. An Agent must not be
// shared between concurrent callers.
type Agent struct {
	role    Role
	backend llm.Client
	memory  []llm.Turn
}

// New returns an Agent with empty memory.
func New(role Role, backend llm.Client) *Agent {
	return &Agent{
		role:    role,
		backend: backend,
	}
}

func (a *Agent) Name() string {
	return a.role.Name
}

// Memory returns a copy of the agent's conversation turns.
func (a *Agent) Memory() []llm.Turn {
	out := make([]llm.Turn, len(a.memory))
	copy(out, a.memory)
	return out
}

// Respond sends the agent's full prior memory plus the new input to the
// backend and records both sides of the exchange, giving the agent
// conversational continuity within the meeting. On backend failure nothing is
// recorded and the error propagates unchanged.
func (a *Agent) Respond(ctx context.Context, input string) (string, error) {
	output, err := a.backend.Complete(ctx, a.role.Instructions, a.memory, input)
	if err != nil {
		return "", err
	}
	a.memory = append(a.memory,
		llm.Turn{Speaker: llm.SpeakerUser, Text: input},
		llm.Turn{Speaker: llm.SpeakerAssistant, Text: output},
	)
	return output, nil
}

// Observe appends a simulated human turn to the agent's memory without any
// backend call. The meeting engine uses it to relay specialist answers into
// the coordinator's memory so its later reasoning is grounded in what was
// actually said.
func (a *Agent) Observe(speaker, text string) {
	a.memory = append(a.memory, llm.Turn{
		Speaker: llm.SpeakerUser,
		Text:    fmt.Sprintf("%s: %s", speaker, text),
	})
}

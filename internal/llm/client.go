package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrBackendUnavailable marks a completion backend failure. A meeting that
// hits it is aborted as a whole; the caller decides whether to rerun it.
var ErrBackendUnavailable = errors.New("completion backend unavailable")

const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is one entry in an agent's conversation memory.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Client is the completion backend contract: given role instructions, prior
// conversation turns and a new input, return a text completion.
// We define it here to decouple the orchestration from the concrete provider.
type Client interface {
	Complete(ctx context.Context, instructions string, history []Turn, input string) (string, error)
}

// Config selects the provider endpoint. OpenAI and Ollama both speak the
// chat-completions protocol, so swapping providers is a base URL and model
// change, nothing more.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

const (
	defaultMaxTokens = 1000
	defaultTimeout   = 120 * time.Second
)

type httpClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPClient returns a Client backed by a chat-completions HTTP endpoint.
func NewHTTPClient(cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &httpClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *httpClient) Complete(ctx context.Context, instructions string, history []Turn, input string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	if instructions != "" {
		messages = append(messages, chatMessage{Role: "system", Content: instructions})
	}
	for _, turn := range history {
		role := SpeakerUser
		if turn.Speaker == SpeakerAssistant {
			role = SpeakerAssistant
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, chatMessage{Role: SpeakerUser, Content: input})

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(ErrBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", errors.Wrapf(ErrBackendUnavailable, "chat API error: %s - %s", resp.Status, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(ErrBackendUnavailable, err.Error())
	}
	if len(result.Choices) == 0 {
		return "", errors.Wrap(ErrBackendUnavailable, "chat API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

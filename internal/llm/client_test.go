package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteBuildsChatRequest(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{
		BaseURL:     srv.URL + "/v1/",
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		Temperature: 0.2,
		MaxTokens:   500,
	})

	history := []Turn{
		{Speaker: SpeakerUser, Text: "earlier question"},
		{Speaker: SpeakerAssistant, Text: "earlier answer"},
	}
	out, err := c.Complete(context.Background(), "You are a pulmonologist.", history, "new question")
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 0.2, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a pulmonologist.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "earlier question", got.Messages[1].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "earlier answer", got.Messages[2].Content)
	assert.Equal(t, "user", got.Messages[3].Role)
	assert.Equal(t, "new question", got.Messages[3].Content)
}

func TestCompleteOmitsSystemAndAuthWhenUnset(t *testing.T) {
	var msgCount int
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Messages []json.RawMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		msgCount = len(body.Messages)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL, Model: "llama3"})

	_, err := c.Complete(context.Background(), "", nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, msgCount, "no system message when instructions are empty")
	assert.Empty(t, gotAuth, "no bearer header without an API key")
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL, Model: "gpt-4o"})

	_, err := c.Complete(context.Background(), "instr", nil, "input")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	assert.Contains(t, err.Error(), "overloaded")
}

func TestCompleteUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL, Model: "gpt-4o"})

	_, err := c.Complete(context.Background(), "instr", nil, "input")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL, Model: "gpt-4o"})

	_, err := c.Complete(context.Background(), "instr", nil, "input")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

// ABOUTME: Tests for the OpenAI-compatible chat client
// ABOUTME: Uses httptest servers to verify request shape and error handling

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogforge-app-api/core/interfaces"
)

func TestChatCompletion_SendsRequestAndReturnsContent(t *testing.T) {
	var captured chatCompletionRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello there"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithModel("test-model"))

	content, err := client.ChatCompletion(context.Background(), interfaces.ChatRequest{
		System:      "you are helpful",
		User:        "say hi",
		Temperature: 0.2,
		MaxTokens:   128,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", content)

	assert.Equal(t, "Bearer test-key", authHeader)
	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "you are helpful", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.InDelta(t, 0.2, captured.Temperature, 0.001)
	assert.Equal(t, 128, captured.MaxTokens)
}

func TestChatCompletion_OmitsSystemMessageWhenEmpty(t *testing.T) {
	var captured chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.ChatCompletion(context.Background(), interfaces.ChatRequest{User: "just a prompt"})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
}

func TestChatCompletion_MissingAPIKey(t *testing.T) {
	client := NewClient("")

	_, err := client.ChatCompletion(context.Background(), interfaces.ChatRequest{User: "prompt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")
}

func TestChatCompletion_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.ChatCompletion(context.Background(), interfaces.ChatRequest{User: "prompt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.ChatCompletion(context.Background(), interfaces.ChatRequest{User: "prompt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatCompletion_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient("test-key", WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ChatCompletion(ctx, interfaces.ChatRequest{User: "prompt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

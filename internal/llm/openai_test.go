package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*openai.Client, func()) {
	server := httptest.NewServer(handler)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return openai.NewClientWithConfig(cfg), server.Close
}

func TestOpenAIServiceGenerateReturnsCompletion(t *testing.T) {
	client, closeFn := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"a generated answer"}}]}`))
	})
	defer closeFn()

	svc := &OpenAIService{client: client, model: "gpt-4o-mini"}
	text, err := svc.Generate(context.Background(), "What is this about?", CompletionOptions{MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "a generated answer", text)
}

func TestOpenAIServiceGenerateEmptyChoices(t *testing.T) {
	client, closeFn := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	})
	defer closeFn()

	svc := &OpenAIService{client: client, model: "gpt-4o-mini"}
	text, err := svc.Generate(context.Background(), "prompt", CompletionOptions{})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAIServiceGeneratePropagatesError(t *testing.T) {
	client, closeFn := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})
	defer closeFn()

	svc := &OpenAIService{client: client, model: "gpt-4o-mini"}
	_, err := svc.Generate(context.Background(), "prompt", CompletionOptions{})
	assert.Error(t, err)
}

func TestOpenAIVisionServiceExtractText(t *testing.T) {
	client, closeFn := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"transcribed text"}}]}`))
	})
	defer closeFn()

	svc := &OpenAIVisionService{client: client, model: "gpt-4o"}
	result, err := svc.ExtractText(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, VisionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "transcribed text", result.Text)
	assert.Greater(t, result.Confidence, 0.0)
}

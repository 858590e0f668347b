package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIService adapts go-openai's chat completion API to
// TextCompletionService. It holds no other state and never retries —
// callers are already fail-soft about ServiceUnavailable, so a single
// attempt per call keeps latency predictable.
type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService builds a service bound to apiKey, using model for every
// completion (e.g. "gpt-4o-mini").
func NewOpenAIService(apiKey, model string) *OpenAIService {
	return &OpenAIService{client: openai.NewClient(apiKey), model: model}
}

// Generate implements TextCompletionService.
func (s *OpenAIService) Generate(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAIVisionService adapts go-openai's vision-capable chat completion API
// to ImageToTextService.
type OpenAIVisionService struct {
	client *openai.Client
	model  string
}

// NewOpenAIVisionService builds a vision service bound to apiKey, using
// model for every call (e.g. "gpt-4o").
func NewOpenAIVisionService(apiKey, model string) *OpenAIVisionService {
	return &OpenAIVisionService{client: openai.NewClient(apiKey), model: model}
}

// ExtractText implements ImageToTextService by base64-encoding the image
// into a vision chat completion and asking for plain transcription.
func (s *OpenAIVisionService) ExtractText(ctx context.Context, imageBytes []byte, opts VisionOptions) (VisionResult, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	dataURL := "data:image/png;base64," + encodeBase64(imageBytes)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Transcribe all text visible in this image verbatim."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return VisionResult{}, err
	}
	if len(resp.Choices) == 0 {
		return VisionResult{}, nil
	}
	return VisionResult{Text: resp.Choices[0].Message.Content, Confidence: 0.7}, nil
}

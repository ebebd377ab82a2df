package scanning

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultTogetherBaseURL = "https://api.together.xyz/v1"
	defaultTogetherModel   = "meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo"
)

// Together implements the Scanner interface against the Together AI
// chat-completions API, which is OpenAI compatible.
type Together struct {
	client *openai.Client
	model  string
}

// NewTogether creates a new Together Scanner instance
func NewTogether(apiKey, baseURL, modelName string) (*Together, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("together api key is required")
	}
	if baseURL == "" {
		baseURL = defaultTogetherBaseURL
	}
	if modelName == "" {
		modelName = defaultTogetherModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &Together{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}, nil
}

// ScanInvoice sends the invoice image to the vision model and returns the
// raw transcription text.
func (t *Together) ScanInvoice(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pngData, mimeType, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(pngData))

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		MaxTokens:   1500,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: invoiceScanPrompt,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling together API: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no transcription in together response")
	}

	return cleanTranscription(resp.Choices[0].Message.Content), nil
}

// Close closes the Together client (no-op for HTTP client)
func (t *Together) Close() error {
	return nil
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiTextModel = "gemini-2.5-flash"

// contentGenerator は genai.Models のうち本パッケージが使う部分です。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient は Gemini API を使う TextGenerator の実装です。
type GeminiClient struct {
	models contentGenerator
	model  string
}

// NewGeminiClient は API キーから Gemini クライアントを初期化します。
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("Gemini の API キーが設定されていません")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", err)
	}

	return newGeminiClient(client.Models, model), nil
}

func newGeminiClient(models contentGenerator, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiTextModel
	}
	return &GeminiClient{models: models, model: model}
}

// GenerateJSON は application/json を要求して GenerateContent を 1 回呼び出します。
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content failed (model: %s): %w", c.model, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generate content returned empty text (model: %s)", c.model)
	}
	return text, nil
}

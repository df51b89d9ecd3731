package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAITextModel  = openai.GPT4o
	DefaultOpenAIImageModel = openai.CreateImageModelDallE3
)

// OpenAIConfig は OpenAIClient の設定です。
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // 空の場合は公式エンドポイント
	TextModel  string
	ImageModel string
}

// OpenAIClient は Chat Completions と Images API を使う TextGenerator / ImageGenerator の実装です。
type OpenAIClient struct {
	client     *openai.Client
	textModel  string
	imageModel string
}

// NewOpenAIClient は設定から OpenAIClient を初期化します。
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OpenAI の API キーが設定されていません")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	textModel := cfg.TextModel
	if textModel == "" {
		textModel = DefaultOpenAITextModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = DefaultOpenAIImageModel
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// GenerateJSON は JSON オブジェクトモードでチャット補完を 1 回呼び出します。
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed (model: %s): %w", c.textModel, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices (model: %s)", c.textModel)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage は画像を 1 枚生成し、その URL を返します。
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	size := req.Size
	if size == "" {
		size = SizeSquare
	}
	quality := req.Quality
	if quality == "" {
		quality = QualityStandard
	}
	style := req.Style
	if style == "" {
		style = StyleVivid
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           size,
		Quality:        quality,
		Style:          style,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("image generation returned no URL")
	}
	return resp.Data[0].URL, nil
}

package ai

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindGeneric},
		{name: "OpenAI 401", err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}, want: KindAPIKey},
		{name: "OpenAI 429 をラップ", err: fmt.Errorf("scene 2: %w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}), want: KindRateLimit},
		{name: "OpenAI content policy", err: &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Code: "content_policy_violation"}, want: KindContentPolicy},
		{name: "OpenAI 400 安全システム", err: &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "rejected by our safety system"}, want: KindContentPolicy},
		{name: "OpenAI RequestError 429", err: &openai.RequestError{HTTPStatusCode: http.StatusTooManyRequests, Err: errors.New("x")}, want: KindRateLimit},
		{name: "Gemini 429", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}, want: KindRateLimit},
		{name: "Gemini 400 API キー", err: fmt.Errorf("plan: %w", genai.APIError{Code: http.StatusBadRequest, Message: "API key not valid. Please pass a valid API key."}), want: KindAPIKey},
		{name: "メッセージ推測 api key", err: errors.New("Invalid API Key"), want: KindAPIKey},
		{name: "メッセージ推測 rate limit", err: errors.New("rate limit exceeded"), want: KindRateLimit},
		{name: "メッセージ推測 content policy", err: errors.New("blocked by content policy"), want: KindContentPolicy},
		{name: "その他", err: errors.New("connection reset by peer"), want: KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "api_key", KindAPIKey.String())
	assert.Equal(t, "rate_limit", KindRateLimit.String())
	assert.Equal(t, "content_policy", KindContentPolicy.String())
	assert.Equal(t, "generic", KindGeneric.String())
}

func TestSizeFor(t *testing.T) {
	assert.Equal(t, SizeLandscape, SizeFor("landscape"))
	assert.Equal(t, SizePortrait, SizeFor("portrait"))
	assert.Equal(t, SizeSquare, SizeFor("square"))
	assert.Equal(t, SizeSquare, SizeFor("wide"))
}

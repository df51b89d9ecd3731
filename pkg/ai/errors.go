package ai

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrorKind は上流モデルのエラーを呼び出し元向けに大まかに分類したものです。
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindAPIKey
	KindRateLimit
	KindContentPolicy
)

func (k ErrorKind) String() string {
	switch k {
	case KindAPIKey:
		return "api_key"
	case KindRateLimit:
		return "rate_limit"
	case KindContentPolicy:
		return "content_policy"
	default:
		return "generic"
	}
}

// Classify は SDK のエラー型が持つ HTTP ステータスを優先して分類し、
// 判別できない場合はメッセージから推測します。
func Classify(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}

	if kind, ok := classifyStatus(err); ok {
		return kind
	}
	return classifyMessage(err.Error())
}

func classifyStatus(err error) (ErrorKind, bool) {
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		if isContentPolicyCode(oaErr.Code) {
			return KindContentPolicy, true
		}
		if kind, ok := kindFromStatus(oaErr.HTTPStatusCode); ok {
			return kind, true
		}
		return classifyMessage(oaErr.Message), true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if kind, ok := kindFromStatus(reqErr.HTTPStatusCode); ok {
			return kind, true
		}
		return KindGeneric, false
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		if kind, ok := kindFromStatus(gErr.Code); ok {
			return kind, true
		}
		return classifyMessage(gErr.Message), true
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr != nil {
		if kind, ok := kindFromStatus(gErrPtr.Code); ok {
			return kind, true
		}
		return classifyMessage(gErrPtr.Message), true
	}

	return KindGeneric, false
}

func kindFromStatus(status int) (ErrorKind, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAPIKey, true
	case http.StatusTooManyRequests:
		return KindRateLimit, true
	}
	return KindGeneric, false
}

func isContentPolicyCode(code any) bool {
	s, ok := code.(string)
	if !ok {
		return false
	}
	return s == "content_policy_violation" || s == "moderation_blocked"
}

var (
	apiKeyHints        = []string{"api key", "api_key", "apikey", "unauthorized", "authentication"}
	rateLimitHints     = []string{"rate limit", "rate_limit", "too many requests", "quota", "resource_exhausted"}
	contentPolicyHints = []string{"content policy", "content_policy", "safety system", "moderation"}
)

func classifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, contentPolicyHints):
		return KindContentPolicy
	case containsAny(lower, apiKeyHints):
		return KindAPIKey
	case containsAny(lower, rateLimitHints):
		return KindRateLimit
	default:
		return KindGeneric
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

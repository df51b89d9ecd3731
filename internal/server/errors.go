package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// errorResponse は失敗時の共通レスポンスなのだ。
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusFor はエラーを HTTP ステータスと短いエラーコードに変換するのだ。
func statusFor(err error) (int, string) {
	if domain.IsValidationError(err) {
		return http.StatusBadRequest, "validation_error"
	}

	switch ai.Classify(err) {
	case ai.KindAPIKey:
		return http.StatusUnauthorized, "invalid_api_key"
	case ai.KindRateLimit:
		return http.StatusTooManyRequests, "rate_limited"
	case ai.KindContentPolicy:
		return http.StatusUnprocessableEntity, "content_policy"
	}

	var pe *domain.PlanningError
	if errors.As(err, &pe) {
		return http.StatusInternalServerError, "planning_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, errorResponse{Error: code, Message: err.Error()})
}

func respondNotFound(c *gin.Context, id string) {
	c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: "work " + id + " not found"})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
}

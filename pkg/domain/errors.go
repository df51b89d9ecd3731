package domain

import (
	"errors"
	"fmt"
)

// ErrNoImages は公開対象のシーンに画像が 1 枚も含まれていない場合のエラーです。
var ErrNoImages = errors.New("at least one scene must have an image")

// ValidationError は呼び出し元の入力が不正であることを表します。リトライされることはありません。
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError は ValidationError を生成します。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError は err が ValidationError を含むかどうかを返します。
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PlanningError は Scene Planner が有効な計画を得られなかったことを表します。
// モデル呼び出しの失敗、JSON 以外の応答、スキーマ違反のいずれかです。
type PlanningError struct {
	Reason string
	Err    error
}

func (e *PlanningError) Error() string {
	if e.Err == nil {
		return "planning failed: " + e.Reason
	}
	return fmt.Sprintf("planning failed: %s: %v", e.Reason, e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

package runner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/generator"
)

// StoryboardImageRunner は計画済みの全シーンの画像を生成し、集計済みの結果を組み立てます。
type StoryboardImageRunner struct {
	generator generator.ScenesImageGenerator
}

// NewStoryboardImageRunner は依存関係を注入して初期化します。
func NewStoryboardImageRunner(gen generator.ScenesImageGenerator) *StoryboardImageRunner {
	return &StoryboardImageRunner{generator: gen}
}

// Run は全シーンの画像生成を待ち合わせ、成功・失敗数を含む結果を返します。
// 個々のシーンの失敗はエラーにはならず、結果の各シーンに記録されます。
func (ir *StoryboardImageRunner) Run(ctx context.Context, plan *domain.StoryboardPlan) (*domain.StoryboardResult, error) {
	if plan == nil {
		return nil, errors.New("plan is required")
	}

	slog.Info("ImageRunner: Generating scene images", "scenes", len(plan.Scenes))
	scenes := ir.generator.Execute(ctx, plan.Scenes, plan.GlobalStyle, plan.MainCharacters)

	result := domain.NewStoryboardResult(plan, scenes)
	slog.Info("ImageRunner: Completed",
		"total", result.TotalScenes,
		"successful", result.SuccessfulImages,
		"failed", result.FailedImages)
	return result, nil
}

package workflow

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
)

// Workflow は、絵コンテ生成ワークフローの各工程を担当する Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildPlanRunner() PlanRunner
	BuildImageRunner() ImageRunner
	BuildPublishRunner() (PublishRunner, error)
}

// PlanRunner はストーリーを解析し、シーン計画を生成するのだ。
type PlanRunner interface {
	Run(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardPlan, error)
}

// ImageRunner は計画済みの全シーンの画像を並列に生成するのだ。
type ImageRunner interface {
	Run(ctx context.Context, plan *domain.StoryboardPlan) (*domain.StoryboardResult, error)
}

// PublishRunner は生成結果をギャラリーへ公開するのだ。
type PublishRunner interface {
	Run(ctx context.Context, result *domain.StoryboardResult, author runner.PublishAuthor) (*domain.GalleryWork, error)
	BuildMarkdown(result *domain.StoryboardResult) string
}

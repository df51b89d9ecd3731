package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
type ManagerArgs struct {
	Config         config.Config
	TextGenerator  ai.TextGenerator
	ImageGenerator ai.ImageGenerator
	// Gallery は公開先です。nil の場合 BuildPublishRunner はエラーを返します。
	Gallery runner.GalleryPublisher
	// ScriptPrompt が nil の場合は埋め込みテンプレートを使います。
	ScriptPrompt prompts.ScriptPrompt
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg          config.Config
	textGen      ai.TextGenerator
	imageGen     ai.ImageGenerator
	gallery      runner.GalleryPublisher
	scriptPrompt prompts.ScriptPrompt
}

// New は、設定とクライアントを基に新しい Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	if args.TextGenerator == nil {
		return nil, fmt.Errorf("TextGenerator は必須です")
	}
	if args.ImageGenerator == nil {
		return nil, fmt.Errorf("ImageGenerator は必須です")
	}

	sPrompt, err := initializeScriptPrompt(args.ScriptPrompt)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:          args.Config,
		textGen:      args.TextGenerator,
		imageGen:     args.ImageGenerator,
		gallery:      args.Gallery,
		scriptPrompt: sPrompt,
	}, nil
}

// Plan はシーン計画だけを生成します。
func (m *Manager) Plan(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardPlan, error) {
	return m.BuildPlanRunner().Run(ctx, req)
}

// Generate は入力を検証し、計画と画像生成を順に実行して集計済みの結果を返します。
// 計画に失敗した場合はエラーになりますが、個々のシーンの画像生成失敗は結果に記録されるだけです。
func (m *Manager) Generate(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardResult, error) {
	startTime := time.Now()

	plan, err := m.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := m.BuildImageRunner().Run(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗しました: %w", err)
	}

	slog.Info("Storyboard generated",
		"scenes", result.TotalScenes,
		"successful", result.SuccessfulImages,
		"failed", result.FailedImages,
		"duration", time.Since(startTime).Round(time.Millisecond))
	return result, nil
}

// initializeScriptPrompt は ScriptPrompt ビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializeScriptPrompt(scriptPrompt prompts.ScriptPrompt) (prompts.ScriptPrompt, error) {
	if scriptPrompt != nil {
		return scriptPrompt, nil
	}

	pb, err := prompts.NewPlanPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("PlanPromptBuilder の新規作成に失敗しました: %w", err)
	}

	return pb, nil
}

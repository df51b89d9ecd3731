package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options は SceneGenerator の挙動を調整します。ゼロ値は「制限なし」を意味します。
type Options struct {
	Quality        string        // 空なら standard
	Style          string        // 空なら vivid
	MaxConcurrency int           // 0 ならシーン数だけ同時実行
	RateInterval   time.Duration // 0 ならペーシングなし
}

// SceneGenerator は、全シーンの画像を並列に生成し、シーンごとの成否を独立に記録します。
type SceneGenerator struct {
	imageGen ai.ImageGenerator
	limiter  *rate.Limiter
	opts     Options
}

// NewSceneGenerator は SceneGenerator の新しいインスタンスを初期化します。
func NewSceneGenerator(imageGen ai.ImageGenerator, opts Options) *SceneGenerator {
	if opts.Quality == "" {
		opts.Quality = ai.QualityStandard
	}
	if opts.Style == "" {
		opts.Style = ai.StyleVivid
	}

	var limiter *rate.Limiter
	if opts.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RateInterval), 1)
	}

	return &SceneGenerator{
		imageGen: imageGen,
		limiter:  limiter,
		opts:     opts,
	}
}

// Execute は各シーンの画像生成を並行して実行し、入力と同じ順序で結果を返します。
// 全体として失敗することはなく、各要素が image_url か error のどちらか一方を持ちます。
func (sg *SceneGenerator) Execute(ctx context.Context, scenes []domain.ScenePlan, globalStyle string, chars []domain.Character) []domain.GeneratedScene {
	results := make([]domain.GeneratedScene, len(scenes))
	pb := prompts.NewImagePromptBuilder(chars, globalStyle)

	// タスクは常に nil を返すので、Wait は全タスクの完了を待つだけのバリアになる
	var eg errgroup.Group
	if sg.opts.MaxConcurrency > 0 {
		eg.SetLimit(sg.opts.MaxConcurrency)
	}

	for i, scene := range scenes {
		eg.Go(func() error {
			results[i] = sg.generateScene(ctx, pb, scene)
			return nil
		})
	}
	_ = eg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	slog.Info("Scene image generation finished", "total", len(results), "succeeded", succeeded, "failed", len(results)-succeeded)

	return results
}

func (sg *SceneGenerator) generateScene(ctx context.Context, pb *prompts.ImagePromptBuilder, scene domain.ScenePlan) domain.GeneratedScene {
	size := ai.SizeFor(scene.AspectRatio)
	logger := slog.With("scene_id", scene.ID, "aspect_ratio", scene.AspectRatio, "size", size)

	if sg.limiter != nil {
		if err := sg.limiter.Wait(ctx); err != nil {
			logger.Warn("Rate limiter wait aborted", "error", err)
			return domain.NewFailedScene(scene, err.Error())
		}
	}

	prompt := pb.BuildScenePrompt(scene)
	logger.Info("Starting scene generation", "prompt", prompt)

	startTime := time.Now()
	url, err := sg.imageGen.GenerateImage(ctx, ai.ImageRequest{
		Prompt:  prompt,
		Size:    size,
		Quality: sg.opts.Quality,
		Style:   sg.opts.Style,
	})
	if err != nil {
		logger.Warn("Scene generation failed", "error", err, "kind", ai.Classify(err).String())
		return domain.NewFailedScene(scene, err.Error())
	}

	logger.Info("Scene generation completed", "duration", time.Since(startTime).Round(time.Millisecond))
	return domain.NewSucceededScene(scene, url)
}

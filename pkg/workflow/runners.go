package workflow

import (
	"errors"

	"github.com/shouni/go-storyboard-kit/pkg/generator"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
)

// ErrGalleryNotConfigured は公開先が設定されていない場合のエラーです。
var ErrGalleryNotConfigured = errors.New("gallery is not configured")

// BuildPlanRunner は、シーン計画を担当する Runner を作成します。
func (m *Manager) BuildPlanRunner() PlanRunner {
	return runner.NewStoryboardPlanRunner(m.cfg, m.scriptPrompt, m.textGen)
}

// BuildImageRunner は、シーン画像の並列生成を担当する Runner を作成します。
func (m *Manager) BuildImageRunner() ImageRunner {
	scenesGen := generator.NewSceneGenerator(m.imageGen, generator.Options{
		Quality:        m.cfg.ImageQuality,
		Style:          m.cfg.ImageStyle,
		MaxConcurrency: m.cfg.MaxParallelImages,
		RateInterval:   m.cfg.RateInterval,
	})

	return runner.NewStoryboardImageRunner(scenesGen)
}

// BuildPublishRunner は、ギャラリーへの公開を担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	if m.gallery == nil {
		return nil, ErrGalleryNotConfigured
	}
	return runner.NewDefaultPublisherRunner(m.gallery), nil
}

package prompts

import "github.com/shouni/go-storyboard-kit/pkg/domain"

// ScriptPrompt は、ストーリーから計画用プロンプトを生成する責務を持ちます。
type ScriptPrompt interface {
	Build(mode string, data TemplateData) (string, error)
}

// ImagePrompt は、シーン計画から画像生成用プロンプトを生成する責務を持ちます。
type ImagePrompt interface {
	BuildScenePrompt(scene domain.ScenePlan) string
}

package prompts

import (
	_ "embed"
)

const (
	// ModeStoryboard はストーリーをシーン計画に分解するプロンプトです。
	ModeStoryboard = "storyboard"
)

// TemplateData は計画プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	Story     string
	NumScenes int
	Style     string
}

var (
	//go:embed storyboard_plan.md
	StoryboardPlanPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeStoryboard: StoryboardPlanPrompt,
}

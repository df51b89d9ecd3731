package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// PlanPromptBuilder は、ストーリーを絵コンテのシーン計画に分解させる指示ブロックを組み立てます。
// テンプレートは起動時に一度だけ解析され、存在しないキーの参照はエラーになります。
type PlanPromptBuilder struct {
	templates map[string]*template.Template
}

// NewPlanPromptBuilder は埋め込まれた計画用テンプレートを解析します。
func NewPlanPromptBuilder() (*PlanPromptBuilder, error) {
	parsed := make(map[string]*template.Template, len(allTemplates))
	for mode, content := range allTemplates {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("計画テンプレート '%s' が空です", mode)
		}

		tmpl, err := template.New(mode).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("計画テンプレート '%s' の解析に失敗しました: %w", mode, err)
		}
		parsed[mode] = tmpl
	}

	return &PlanPromptBuilder{templates: parsed}, nil
}

// Build はストーリー本文、シーン数、画風のヒントを埋め込んだ指示ブロックを返します。
// シーン数は 1 から 12 の範囲でなければなりません。
func (b *PlanPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("不明な計画モードです: '%s'", mode)
	}
	if strings.TrimSpace(data.Story) == "" {
		return "", fmt.Errorf("ストーリーが空です")
	}
	if err := domain.ValidateNumScenes(data.NumScenes); err != nil {
		return "", fmt.Errorf("シーン数が不正です (%d): %w", data.NumScenes, err)
	}
	data.Style = strings.TrimSpace(data.Style)

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("計画テンプレート '%s' の実行に失敗しました: %w", mode, err)
	}
	return sb.String(), nil
}

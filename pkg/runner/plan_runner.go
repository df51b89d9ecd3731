package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// StoryboardPlanRunner はストーリーを AI に渡し、シーン計画 JSON を取得・検証します。
type StoryboardPlanRunner struct {
	cfg           config.Config
	promptBuilder prompts.ScriptPrompt
	aiClient      ai.TextGenerator
}

// NewStoryboardPlanRunner は依存関係を注入して初期化します。
func NewStoryboardPlanRunner(cfg config.Config, pb prompts.ScriptPrompt, aiClient ai.TextGenerator) *StoryboardPlanRunner {
	return &StoryboardPlanRunner{
		cfg:           cfg,
		promptBuilder: pb,
		aiClient:      aiClient,
	}
}

// Run はモデルを 1 回だけ呼び出し、検証済みの計画を返します。リトライはしません。
// 入力が不正な場合は *domain.ValidationError、計画が得られない場合は *domain.PlanningError を返します。
func (pr *StoryboardPlanRunner) Run(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardPlan, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	finalPrompt, err := pr.promptBuilder.Build(prompts.ModeStoryboard, prompts.TemplateData{
		Story:     req.Story,
		NumScenes: req.NumScenes,
		Style:     req.Style,
	})
	if err != nil {
		return nil, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	temperature := pr.cfg.PlanTemperature
	if temperature <= 0 {
		temperature = config.DefaultPlanTemperature
	}

	slog.Info("PlanRunner: Calling language model", "scenes", req.NumScenes, "style", req.Style, "temperature", temperature)
	raw, err := pr.aiClient.GenerateJSON(ctx, finalPrompt, temperature)
	if err != nil {
		return nil, &domain.PlanningError{Reason: "model call failed", Err: err}
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return nil, err
	}

	if err := normalizePlan(plan, req); err != nil {
		return nil, err
	}

	slog.Info("PlanRunner: Plan ready", "title", plan.Title, "characters", len(plan.MainCharacters), "scenes", len(plan.Scenes))
	return plan, nil
}

// parsePlan は AI の応答から JSON を取り出し、必須フィールドの存在と型を確認してからデコードします。
func parsePlan(raw string) (*domain.StoryboardPlan, error) {
	rawJSON := extractJSON(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rawJSON), &fields); err != nil {
		return nil, &domain.PlanningError{
			Reason: fmt.Sprintf("response is not a JSON object (excerpt: %q)", truncateString(raw, 200)),
			Err:    err,
		}
	}

	styleRaw, ok := fields["global_style"]
	if !ok {
		return nil, &domain.PlanningError{Reason: "response is missing global_style"}
	}
	var globalStyle string
	if err := json.Unmarshal(styleRaw, &globalStyle); err != nil || strings.TrimSpace(globalStyle) == "" {
		return nil, &domain.PlanningError{Reason: "global_style must be a non-empty string"}
	}

	scenesRaw, ok := fields["scenes"]
	if !ok {
		return nil, &domain.PlanningError{Reason: "response is missing scenes"}
	}
	if trimmed := bytes.TrimSpace(scenesRaw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &domain.PlanningError{Reason: "scenes must be an array"}
	}

	var plan domain.StoryboardPlan
	if err := json.Unmarshal([]byte(rawJSON), &plan); err != nil {
		return nil, &domain.PlanningError{Reason: "response does not match the plan schema", Err: err}
	}
	return &plan, nil
}

// extractJSON はコードフェンスや前後の説明文を取り除いた JSON 部分を返します。
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		return matches[1]
	}

	// 最も外側の JSON オブジェクトを探す
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return raw[first : last+1]
	}
	return raw
}

// normalizePlan はシーン数を検証し、ID の振り直しと縦横比の正規化を行います。
func normalizePlan(plan *domain.StoryboardPlan, req domain.StoryboardRequest) error {
	if len(plan.Scenes) != req.NumScenes {
		return &domain.PlanningError{
			Reason: fmt.Sprintf("expected %d scenes but the model returned %d", req.NumScenes, len(plan.Scenes)),
		}
	}

	plan.Title = strings.TrimSpace(plan.Title)
	plan.GlobalStyle = strings.TrimSpace(plan.GlobalStyle)
	if req.Style != "" && !strings.Contains(strings.ToLower(plan.GlobalStyle), strings.ToLower(req.Style)) {
		slog.Warn("PlanRunner: Style hint missing from global_style, folding it in", "style", req.Style)
		plan.GlobalStyle = req.Style + ", " + plan.GlobalStyle
	}

	if plan.MainCharacters == nil {
		plan.MainCharacters = []domain.Character{}
	}

	sort.SliceStable(plan.Scenes, func(i, j int) bool {
		return plan.Scenes[i].ID < plan.Scenes[j].ID
	})

	seenCaptions := make(map[string]int, len(plan.Scenes))
	for i := range plan.Scenes {
		s := &plan.Scenes[i]
		s.ID = i + 1
		s.Title = strings.TrimSpace(s.Title)
		s.ShortCaption = strings.TrimSpace(s.ShortCaption)
		s.DallePrompt = strings.TrimSpace(s.DallePrompt)
		s.AspectRatio = domain.NormalizeAspectRatio(string(s.AspectRatio))

		if s.DallePrompt == "" {
			return &domain.PlanningError{Reason: fmt.Sprintf("scene %d has an empty dalle_prompt", s.ID)}
		}

		key := strings.ToLower(s.ShortCaption)
		if prev, dup := seenCaptions[key]; dup && key != "" {
			slog.Warn("PlanRunner: Duplicate scene caption", "scene_id", s.ID, "duplicate_of", prev, "caption", s.ShortCaption)
		} else {
			seenCaptions[key] = s.ID
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

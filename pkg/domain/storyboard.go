package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinStoryLength はストーリー本文に要求される最小文字数です。
	MinStoryLength = 10
	// MinScenes は 1 回の生成で指定できるシーン数の下限です。
	MinScenes = 1
	// MaxScenes は 1 回の生成で指定できるシーン数の上限です。
	MaxScenes = 12
	// DefaultNumScenes はシーン数が省略された場合に使われる値です。
	DefaultNumScenes = 8
)

// AspectRatio はシーン画像の縦横比のヒントです。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "square"
	AspectPortrait  AspectRatio = "portrait"
	AspectLandscape AspectRatio = "landscape"
)

// NormalizeAspectRatio は AI が返した値を列挙値に正規化します。未知の値は square になります。
func NormalizeAspectRatio(s string) AspectRatio {
	switch AspectRatio(strings.ToLower(strings.TrimSpace(s))) {
	case AspectPortrait:
		return AspectPortrait
	case AspectLandscape:
		return AspectLandscape
	default:
		return AspectSquare
	}
}

// StoryboardRequest は絵コンテ生成の入力です。永続化はされません。
type StoryboardRequest struct {
	Story     string `json:"story"`
	NumScenes int    `json:"numScenes"`
	Style     string `json:"style,omitempty"`
}

// Normalize は空白を整え、シーン数が未指定（ゼロ値）ならデフォルト値を補います。
// JSON などで 0 が明示された場合と区別する必要がある入力層は、ValidateNumScenes で先に検証してください。
func (r StoryboardRequest) Normalize() StoryboardRequest {
	r.Story = strings.TrimSpace(r.Story)
	r.Style = strings.TrimSpace(r.Style)
	if r.NumScenes == 0 {
		r.NumScenes = DefaultNumScenes
	}
	return r
}

// Validate は入力値を検証し、不正な場合は *ValidationError を返します。
func (r StoryboardRequest) Validate() error {
	story := strings.TrimSpace(r.Story)
	if story == "" {
		return NewValidationError("story", "story is required")
	}
	if utf8.RuneCountInString(story) < MinStoryLength {
		return NewValidationError("story", "story must be at least 10 characters")
	}
	return ValidateNumScenes(r.NumScenes)
}

// ValidateNumScenes はシーン数が MinScenes から MaxScenes の範囲にあるかを検証します。
func ValidateNumScenes(n int) error {
	if n < MinScenes || n > MaxScenes {
		return NewValidationError("numScenes", "numScenes must be between 1 and 12")
	}
	return nil
}

// Character は登場人物の正規の外見定義です。Description は全シーンのプロンプトでそのまま再利用されます。
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenePlan は AI が計画した 1 シーン分の構成です。
type ScenePlan struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	ShortCaption string      `json:"short_caption"`
	DallePrompt  string      `json:"dalle_prompt"`
	AspectRatio  AspectRatio `json:"aspect_ratio"`
}

// StoryboardPlan は Scene Planner の出力全体です。
type StoryboardPlan struct {
	Title          string      `json:"title,omitempty"`
	GlobalStyle    string      `json:"global_style"`
	MainCharacters []Character `json:"main_characters"`
	Scenes         []ScenePlan `json:"scenes"`
}

// GeneratedScene は画像生成後のシーンです。ImageURL と Error はどちらか一方だけが non-nil になります。
type GeneratedScene struct {
	ScenePlan
	ImageURL *string `json:"image_url"`
	Error    *string `json:"error"`
}

// Succeeded は画像生成に成功したかどうかを返します。
func (s GeneratedScene) Succeeded() bool {
	return s.ImageURL != nil
}

// NewSucceededScene は成功したシーンを生成します。
func NewSucceededScene(plan ScenePlan, imageURL string) GeneratedScene {
	return GeneratedScene{ScenePlan: plan, ImageURL: &imageURL}
}

// NewFailedScene は失敗したシーンを生成します。
func NewFailedScene(plan ScenePlan, message string) GeneratedScene {
	if message == "" {
		message = "image generation failed"
	}
	return GeneratedScene{ScenePlan: plan, Error: &message}
}

// StoryboardResult は生成処理全体の結果で、API と CLI の応答としてそのまま使われます。
type StoryboardResult struct {
	Title            string           `json:"title,omitempty"`
	GlobalStyle      string           `json:"global_style"`
	MainCharacters   []Character      `json:"main_characters"`
	Scenes           []GeneratedScene `json:"scenes"`
	TotalScenes      int              `json:"total_scenes"`
	SuccessfulImages int              `json:"successful_images"`
	FailedImages     int              `json:"failed_images"`
}

// NewStoryboardResult は計画と生成結果から集計済みの結果を組み立てます。
func NewStoryboardResult(plan *StoryboardPlan, scenes []GeneratedScene) *StoryboardResult {
	res := &StoryboardResult{
		Title:          plan.Title,
		GlobalStyle:    plan.GlobalStyle,
		MainCharacters: plan.MainCharacters,
		Scenes:         scenes,
		TotalScenes:    len(scenes),
	}
	for _, s := range scenes {
		if s.Succeeded() {
			res.SuccessfulImages++
		} else {
			res.FailedImages++
		}
	}
	return res
}

package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const (
	characterBibleHeader = "### CHARACTERS ###"
	globalStyleHeader    = "### GLOBAL VISUAL STYLE ###"
	sceneHeader          = "### SCENE ###"
)

// ImagePromptBuilder は、キャラクター設定とグローバルスタイルを各シーンのプロンプトへ埋め込みます。
// シーン画像は互いに独立して生成されるため、各プロンプトは単体で完結している必要があります。
type ImagePromptBuilder struct {
	characters  []domain.Character
	globalStyle string
}

// NewImagePromptBuilder は新しい ImagePromptBuilder を生成します。
func NewImagePromptBuilder(chars []domain.Character, globalStyle string) *ImagePromptBuilder {
	return &ImagePromptBuilder{
		characters:  chars,
		globalStyle: strings.TrimSpace(globalStyle),
	}
}

// BuildScenePrompt は 1 シーン分のプロンプトを組み立て、サニタイズした結果を返します。
func (pb *ImagePromptBuilder) BuildScenePrompt(scene domain.ScenePlan) string {
	return Sanitize(pb.BuildRawScenePrompt(scene))
}

// BuildRawScenePrompt はサニタイズ前のプロンプトを返します。
func (pb *ImagePromptBuilder) BuildRawScenePrompt(scene domain.ScenePlan) string {
	var sb strings.Builder

	if bible := BuildCharacterBible(pb.characters); bible != "" {
		sb.WriteString(characterBibleHeader)
		sb.WriteString("\n")
		sb.WriteString(bible)
		sb.WriteString("\n\n")
	}

	if pb.globalStyle != "" {
		sb.WriteString(fmt.Sprintf("%s\n%s\n\n", globalStyleHeader, pb.globalStyle))
	}

	sb.WriteString(sceneHeader)
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(scene.DallePrompt))

	return sb.String()
}

// BuildCharacterBible は "name: description" を 1 行ずつ並べたキャラクター一覧を返します。
func BuildCharacterBible(chars []domain.Character) string {
	lines := make([]string, 0, len(chars))
	for _, c := range chars {
		name := strings.TrimSpace(c.Name)
		desc := strings.TrimSpace(c.Description)
		if name == "" && desc == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, desc))
	}
	return strings.Join(lines, "\n")
}

package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const defaultMarkdownTitle = "Storyboard"

// MarkdownPublisher は、生成結果を人が読める Markdown 形式で出力する役割を担います。
type MarkdownPublisher struct{}

func NewMarkdownPublisher() *MarkdownPublisher {
	return &MarkdownPublisher{}
}

// BuildFinalMarkdown は、タイトル、スタイル、登場人物、各シーンの画像とキャプションを 1 つの Markdown にまとめます。
// 画像生成に失敗したシーンは画像の代わりにエラー内容を出力します。
func (mp *MarkdownPublisher) BuildFinalMarkdown(result *domain.StoryboardResult) string {
	var sb strings.Builder

	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = defaultMarkdownTitle
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	if result.GlobalStyle != "" {
		sb.WriteString(fmt.Sprintf("- style: %s\n", result.GlobalStyle))
	}
	sb.WriteString(fmt.Sprintf("- images: %d/%d\n\n", result.SuccessfulImages, result.TotalScenes))

	if len(result.MainCharacters) > 0 {
		sb.WriteString("## Characters\n\n")
		for _, c := range result.MainCharacters {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", c.Name, c.Description))
		}
		sb.WriteString("\n")
	}

	for _, scene := range result.Scenes {
		sb.WriteString(fmt.Sprintf("## Scene %d: %s\n\n", scene.ID, scene.Title))
		if scene.ImageURL != nil {
			sb.WriteString(fmt.Sprintf("![%s](%s)\n\n", escapeAlt(scene.Title), *scene.ImageURL))
		} else if scene.Error != nil {
			sb.WriteString(fmt.Sprintf("> image unavailable: %s\n\n", *scene.Error))
		}
		if scene.ShortCaption != "" {
			sb.WriteString(scene.ShortCaption)
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}

func escapeAlt(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

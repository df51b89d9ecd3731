package runner

import (
	"context"
	"errors"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// GalleryPublisher は作品をギャラリーへ永続化する契約です。
type GalleryPublisher interface {
	Publish(ctx context.Context, req domain.PublishRequest) (*domain.GalleryWork, error)
}

// PublishAuthor は公開時の投稿者情報です。
type PublishAuthor struct {
	Name        string
	Avatar      string
	Description string
}

// DefaultPublisherRunner は生成結果をギャラリーへ公開する標準実装なのだ。
type DefaultPublisherRunner struct {
	gallery  GalleryPublisher
	markdown *publisher.MarkdownPublisher
}

func NewDefaultPublisherRunner(gallery GalleryPublisher) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{
		gallery:  gallery,
		markdown: publisher.NewMarkdownPublisher(),
	}
}

// Run は生成結果を公開リクエストに変換し、ギャラリーへ保存します。
func (pr *DefaultPublisherRunner) Run(ctx context.Context, result *domain.StoryboardResult, author PublishAuthor) (*domain.GalleryWork, error) {
	if result == nil {
		return nil, errors.New("storyboard result is required")
	}

	return pr.gallery.Publish(ctx, domain.PublishRequest{
		UserName:       author.Name,
		UserAvatar:     author.Avatar,
		Title:          result.Title,
		Description:    author.Description,
		GlobalStyle:    result.GlobalStyle,
		MainCharacters: result.MainCharacters,
		Scenes:         result.Scenes,
	})
}

// BuildMarkdown は保存処理を行わず、生成結果から Markdown 文字列のみを生成して返却します。
func (pr *DefaultPublisherRunner) BuildMarkdown(result *domain.StoryboardResult) string {
	return pr.markdown.BuildFinalMarkdown(result)
}

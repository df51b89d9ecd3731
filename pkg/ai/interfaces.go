package ai

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// 画像サイズ。縦横比ヒントとの対応は SizeFor が決めます。
const (
	SizeSquare    = "1024x1024"
	SizePortrait  = "1024x1792"
	SizeLandscape = "1792x1024"
)

// 画像の品質とスタイル。
const (
	QualityStandard = "standard"
	QualityHD       = "hd"
	StyleVivid      = "vivid"
	StyleNatural    = "natural"
)

// TextGenerator は JSON モードでテキストを生成するモデルの契約です。
type TextGenerator interface {
	// GenerateJSON はプロンプトを 1 通のユーザーメッセージとして送り、JSON 文字列の応答を返します。
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
}

// ImageRequest は 1 枚の画像生成リクエストです。
type ImageRequest struct {
	Prompt  string
	Size    string
	Quality string
	Style   string
}

// ImageGenerator は 1 回の呼び出しで 1 枚の画像を生成し、その URL を返すモデルの契約です。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// SizeFor は縦横比ヒントを画像サイズに変換します。未知の値は正方形になります。
func SizeFor(ratio domain.AspectRatio) string {
	switch ratio {
	case domain.AspectLandscape:
		return SizeLandscape
	case domain.AspectPortrait:
		return SizePortrait
	default:
		return SizeSquare
	}
}

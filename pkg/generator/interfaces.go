package generator

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// ScenesImageGenerator は、計画済みのシーン群から画像付きのシーンを生成するためのインターフェースを定義します。
// 個々のシーンの失敗は戻り値の各要素に記録され、呼び出し全体が失敗することはありません。
type ScenesImageGenerator interface {
	Execute(ctx context.Context, scenes []domain.ScenePlan, globalStyle string, chars []domain.Character) []domain.GeneratedScene
}

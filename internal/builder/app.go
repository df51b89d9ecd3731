package builder

import (
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/gallery"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを CLI と HTTP サーバーに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config         *config.Config    // Config は環境変数と設定ファイルから読み込まれた設定です。
	TextGenerator  ai.TextGenerator  // TextGenerator はシーン計画に使うモデルクライアントです。
	ImageGenerator ai.ImageGenerator // ImageGenerator はシーン画像の生成に使うモデルクライアントです。
	Gallery        *gallery.Store    // Gallery は公開済み作品の保存先です。
	Manager        *workflow.Manager // Manager は各 Runner を組み立てるワークフローです。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	textGen ai.TextGenerator,
	imageGen ai.ImageGenerator,
	store *gallery.Store,
	manager *workflow.Manager,
) *AppContext {
	return &AppContext{
		Config:         cfg,
		TextGenerator:  textGen,
		ImageGenerator: imageGen,
		Gallery:        store,
		Manager:        manager,
	}
}

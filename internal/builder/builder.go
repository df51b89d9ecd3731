package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/gallery"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"
)

// BuildAppContext は設定からクライアント、ギャラリー、ワークフローを組み立てます。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	openaiClient, err := InitializeOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}

	textGen, err := InitializeTextGenerator(ctx, cfg, openaiClient)
	if err != nil {
		return nil, err
	}

	store, err := BuildGalleryStore(cfg)
	if err != nil {
		return nil, err
	}

	manager, err := workflow.New(workflow.ManagerArgs{
		Config:         cfg.KitConfig(),
		TextGenerator:  textGen,
		ImageGenerator: openaiClient,
		Gallery:        store,
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗しました: %w", err)
	}

	slog.Info("Application initialized",
		"provider", cfg.LLMProvider,
		"gallery_data_file", cfg.GalleryDataFile,
		"gallery_image_dir", cfg.GalleryImageDir)

	return NewAppContext(cfg, textGen, openaiClient, store, manager), nil
}

// InitializeOpenAIClient は OpenAI クライアントを初期化します。画像生成は常にこのクライアントを使います。
func InitializeOpenAIClient(cfg *config.Config) (*ai.OpenAIClient, error) {
	textModel := cfg.TextModel
	if cfg.LLMProvider != config.ProviderOpenAI {
		textModel = ""
	}

	client, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		TextModel:  textModel,
		ImageModel: cfg.ImageModel,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// InitializeTextGenerator は LLM_PROVIDER に応じて計画用のクライアントを選びます。
func InitializeTextGenerator(ctx context.Context, cfg *config.Config, openaiClient *ai.OpenAIClient) (ai.TextGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.TextModel)
		if err != nil {
			return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
		}
		return client, nil
	case config.ProviderOpenAI:
		return openaiClient, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}

// BuildGalleryStore はダウンローダーとギャラリーストアを構築します。
func BuildGalleryStore(cfg *config.Config) (*gallery.Store, error) {
	store, err := gallery.NewStore(gallery.Options{
		DataFile:     cfg.GalleryDataFile,
		ImageDir:     cfg.GalleryImageDir,
		PublicPrefix: cfg.GalleryPublicPrefix,
		Downloader:   gallery.NewDownloader(cfg.DownloadTimeout, cfg.DownloadMaxRedirects),
	})
	if err != nil {
		return nil, fmt.Errorf("ギャラリーの初期化に失敗しました: %w", err)
	}
	return store, nil
}

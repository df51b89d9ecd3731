package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/examples"
	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

var (
	opts       pipeline.Options
	useExample bool
)

// planCmd は、シーン計画だけを生成するのだ。
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "ストーリーからシーン計画（JSON）だけを生成するのだ。",
	RunE:  planCommand,
}

// generateCmd は、シーン計画と全シーンの画像を生成するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIに絵コンテの構成と画像を生成させるのだ。",
	Long: `ストーリーを解析してシーン計画を作り、各シーンの画像を並列に生成するのだ。
--publish を付けるとギャラリーへ公開し、出力先が .md なら Markdown で保存するのだよ。`,
	RunE: generateCommand,
}

func init() {
	for _, c := range []*cobra.Command{planCmd, generateCmd} {
		c.Flags().StringVarP(&opts.StoryFile, "story-file", "f", "", "ストーリーのファイルパスなのだ（'-' で標準入力）。")
		c.Flags().IntVarP(&opts.NumScenes, "scenes", "n", domain.DefaultNumScenes, "生成するシーン数なのだ（1〜12）。")
		c.Flags().StringVarP(&opts.Style, "style", "s", "", "画風のヒントなのだ（例: watercolor）。")
		c.Flags().StringVarP(&opts.OutputFile, "output-file", "o", "", "保存先のパスなのだ（省略時は標準出力）。")
		c.Flags().BoolVar(&useExample, "example", false, "同梱のサンプルストーリーを使うのだ。")
	}
	generateCmd.Flags().BoolVar(&opts.Publish, "publish", false, "生成結果をギャラリーへ公開するのだ。")
	generateCmd.Flags().StringVar(&opts.UserName, "user-name", "", "公開時の投稿者名なのだ。")
}

func planCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := checkScenesFlag(cmd); err != nil {
		return err
	}

	appCtx, err := builder.BuildAppContext(ctx, &appCfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	if useExample {
		opts.Story = examples.SampleStory()
	}

	return pipeline.ExecutePlanOnly(ctx, appCtx.Manager, opts, pipeline.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := checkScenesFlag(cmd); err != nil {
		return err
	}

	appCtx, err := builder.BuildAppContext(ctx, &appCfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	if useExample {
		opts.Story = examples.SampleStory()
	}

	slog.Info("絵コンテ生成パイプラインを起動するのだ！",
		"provider", appCfg.LLMProvider,
		"scenes", opts.NumScenes,
		"style", opts.Style,
		"output", opts.OutputFile)

	if err := pipeline.ExecuteGenerate(ctx, appCtx.Manager, opts, pipeline.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

// checkScenesFlag は、--scenes が明示された場合にその範囲を検証するのだ。
// 明示された 0 はデフォルト値に置き換えずに拒否するのだ。
func checkScenesFlag(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("scenes") {
		return nil
	}
	return domain.ValidateNumScenes(opts.NumScenes)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/logging"
)

var (
	configPath string
	logLevel   string

	// appCfg は PersistentPreRunE で読み込まれた設定なのだ。
	appCfg config.Config
)

// rootCmd は storyboard コマンドの親なのだ。
var rootCmd = &cobra.Command{
	Use:   "storyboard",
	Short: "短いストーリーから挿絵付きの絵コンテを生成するのだ。",
	Long: `ストーリーを言語モデルでシーンに分割し、各シーンの画像を並列に生成するのだ。
生成した絵コンテはファイルベースのギャラリーに公開できるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML 設定ファイルのパスなのだ（省略時は環境変数とデフォルト値）。")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ログレベル（debug, info, warn, error）なのだ。")

	rootCmd.AddCommand(serveCmd, planCmd, generateCmd, galleryCmd)
}

// preRunAppE は、コマンド実行前に設定を読み込み、ロガーを初期化するのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗したのだ: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	appCfg = cfg
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// SIGINT と SIGTERM でキャンセルされる context を渡して cobra の解析を開始するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

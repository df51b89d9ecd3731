package cmd

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/server"
)

var servePort string

// serveCmd は HTTP API サーバーを起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "絵コンテ生成とギャラリーの HTTP API を起動するのだ。",
	RunE:  serveCommand,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "待ち受けポートなのだ（省略時は PORT または "+config.DefaultPort+"）。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if servePort != "" {
		appCfg.Port = servePort
	}
	if appCfg.Environment != config.DefaultEnvironment {
		gin.SetMode(gin.ReleaseMode)
	}

	appCtx, err := builder.BuildAppContext(ctx, &appCfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	srv := server.New(appCtx.Manager, appCtx.Gallery)
	addr := net.JoinHostPort("", appCfg.Port)
	slog.Info("サーバーを起動するのだ！", "addr", addr, "environment", appCfg.Environment)

	return srv.Run(ctx, addr)
}

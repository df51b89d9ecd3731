package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/gallery"
)

const shutdownTimeout = 10 * time.Second

// Storyboarder は絵コンテの計画と生成を行うのだ。*workflow.Manager が満たすのだ。
type Storyboarder interface {
	Plan(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardPlan, error)
	Generate(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardResult, error)
}

// GalleryStore は HTTP から使うギャラリー操作なのだ。*gallery.Store が満たすのだ。
type GalleryStore interface {
	Publish(ctx context.Context, req domain.PublishRequest) (*domain.GalleryWork, error)
	List(opts gallery.ListOptions) (*gallery.ListResult, error)
	Get(id string, includeHidden bool) (*domain.GalleryWork, error)
	SetVisibility(id string, visible bool) (bool, error)
	Delete(id string) (bool, error)
	ImageDir() string
	PublicPrefix() string
}

// Server は gin のルーターと依存をまとめた HTTP サーバーなのだ。
type Server struct {
	router *gin.Engine
}

// New はルーティングを設定した Server を作るのだ。
func New(storyboard Storyboarder, store GalleryStore) *Server {
	return &Server{router: NewRouter(storyboard, store)}
}

// Handler は http.Handler としてのルーターを返すのだ。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run は addr で待ち受け、ctx がキャンセルされたらグレースフルに停止するのだ。
// 画像生成は長時間かかるので WriteTimeout は設定しないのだ。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// NewRouter は API ルートと画像の静的配信を登録するのだ。
func NewRouter(storyboard Storyboarder, store GalleryStore) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	h := &handler{storyboard: storyboard, gallery: store}

	api := router.Group("/api")
	api.GET("/health", healthHandler)
	api.POST("/generate-storyboard", h.generateStoryboard)
	api.POST("/plan", h.plan)

	api.GET("/gallery", h.listGallery(false))
	api.GET("/gallery/:id", h.getWork(false))
	api.POST("/gallery/publish", h.publish)

	admin := api.Group("/admin/gallery")
	admin.GET("", h.listGallery(true))
	admin.GET("/:id", h.getWork(true))
	admin.PATCH("/:id/visibility", h.setVisibility)
	admin.DELETE("/:id", h.deleteWork)

	router.Static(store.PublicPrefix(), store.ImageDir())

	return router
}

// requestLogger は gin のアクセスログを slog で出力するミドルウェアなのだ。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start).Round(time.Millisecond),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("HTTP request", attrs...)
		case status >= http.StatusBadRequest:
			slog.Warn("HTTP request", attrs...)
		default:
			slog.Info("HTTP request", attrs...)
		}
	}
}

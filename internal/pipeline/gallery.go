package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/gallery"
)

// GalleryAdmin は CLI から使うギャラリーの管理操作なのだ。*gallery.Store が満たすのだ。
type GalleryAdmin interface {
	List(opts gallery.ListOptions) (*gallery.ListResult, error)
	SetVisibility(id string, visible bool) (bool, error)
	Delete(id string) (bool, error)
}

// ErrWorkNotFound は指定 ID の作品が存在しない場合のエラーなのだ。
type ErrWorkNotFound struct {
	ID string
}

func (e *ErrWorkNotFound) Error() string {
	return fmt.Sprintf("work %q not found", e.ID)
}

// ExecuteGalleryList は作品一覧を 1 行 1 作品で書き出すのだ。
func ExecuteGalleryList(store GalleryAdmin, opts gallery.ListOptions, out io.Writer) error {
	res, err := store.List(opts)
	if err != nil {
		return fmt.Errorf("ギャラリー一覧の取得に失敗しました: %w", err)
	}

	for _, w := range res.Works {
		visibility := "visible"
		if !w.Visible {
			visibility = "hidden"
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d scenes\n",
			w.ID, w.CreatedAt.Format("2006-01-02 15:04"), visibility, w.Title, len(w.Scenes)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "total=%d offset=%d limit=%d hasMore=%t\n", res.Total, res.Offset, res.Limit, res.HasMore)
	return err
}

// ExecuteSetVisibility は作品の表示状態を切り替えるのだ。
func ExecuteSetVisibility(store GalleryAdmin, id string, visible bool) error {
	ok, err := store.SetVisibility(id, visible)
	if err != nil {
		return fmt.Errorf("表示状態の更新に失敗しました: %w", err)
	}
	if !ok {
		return &ErrWorkNotFound{ID: id}
	}
	slog.Info("表示状態を更新したのだ", "work_id", id, "visible", visible)
	return nil
}

// ExecuteDelete は作品と画像ファイルを削除するのだ。
func ExecuteDelete(store GalleryAdmin, id string) error {
	ok, err := store.Delete(id)
	if err != nil {
		return fmt.Errorf("作品の削除に失敗しました: %w", err)
	}
	if !ok {
		return &ErrWorkNotFound{ID: id}
	}
	slog.Info("作品を削除したのだ", "work_id", id)
	return nil
}

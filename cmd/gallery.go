package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/gallery"
)

var listOpts gallery.ListOptions

// galleryCmd は、公開済み作品を管理するサブコマンドの親なのだ。
var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "ギャラリーの作品を一覧・表示切替・削除するのだ。",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "作品を新しい順に一覧表示するのだ。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := builder.BuildGalleryStore(&appCfg)
		if err != nil {
			return err
		}
		return pipeline.ExecuteGalleryList(store, listOpts, cmd.OutOrStdout())
	},
}

var galleryHideCmd = &cobra.Command{
	Use:   "hide <id>",
	Short: "作品を非表示にするのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVisibility(args[0], false)
	},
}

var galleryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "非表示の作品を再表示するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVisibility(args[0], true)
	},
}

var galleryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "作品と画像ファイルを削除するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := builder.BuildGalleryStore(&appCfg)
		if err != nil {
			return err
		}
		return pipeline.ExecuteDelete(store, args[0])
	},
}

func init() {
	galleryListCmd.Flags().IntVar(&listOpts.Limit, "limit", gallery.DefaultListLimit, "1 ページの件数なのだ（最大 100）。")
	galleryListCmd.Flags().IntVar(&listOpts.Offset, "offset", 0, "先頭から読み飛ばす件数なのだ。")
	galleryListCmd.Flags().BoolVar(&listOpts.IncludeHidden, "all", false, "非表示の作品も含めるのだ。")

	galleryCmd.AddCommand(galleryListCmd, galleryHideCmd, galleryShowCmd, galleryDeleteCmd)
}

func setVisibility(id string, visible bool) error {
	store, err := builder.BuildGalleryStore(&appCfg)
	if err != nil {
		return err
	}
	return pipeline.ExecuteSetVisibility(store, id, visible)
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"
)

// StoryboardService は CLI から呼び出すワークフローの操作なのだ。*workflow.Manager が満たすのだ。
type StoryboardService interface {
	Plan(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardPlan, error)
	Generate(ctx context.Context, req domain.StoryboardRequest) (*domain.StoryboardResult, error)
	BuildPublishRunner() (workflow.PublishRunner, error)
}

// Options は CLI フラグから渡される実行時のパラメータなのだ。
type Options struct {
	Story      string // 直接指定されたストーリー。空でなければ StoryFile より優先するのだ
	StoryFile  string // --story-file ('-' で標準入力)
	NumScenes  int    // --scenes
	Style      string // --style
	OutputFile string // --output-file (空なら標準出力)
	Publish    bool   // --publish
	UserName   string // --user-name
}

// IO は入出力先をまとめたものなのだ。
type IO struct {
	In  io.Reader
	Out io.Writer
}

// ExecutePlanOnly は、ストーリーからシーン計画だけを生成して JSON で書き出すのだ。
func ExecutePlanOnly(ctx context.Context, svc StoryboardService, opts Options, stdio IO) error {
	req, err := readRequest(opts, stdio.In)
	if err != nil {
		return err
	}

	slog.Info("Phase 1: シーン計画を開始するのだ...", "scenes", req.NumScenes, "style", req.Style)
	plan, err := svc.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("シーン計画に失敗したのだ: %w", err)
	}

	return writeJSON(opts.OutputFile, stdio.Out, plan)
}

// ExecuteGenerate は、計画と画像生成を実行し、必要ならギャラリーへ公開するのだ。
// 出力先の拡張子が .md の場合は Markdown、それ以外は JSON で結果を書き出すのだ。
func ExecuteGenerate(ctx context.Context, svc StoryboardService, opts Options, stdio IO) error {
	req, err := readRequest(opts, stdio.In)
	if err != nil {
		return err
	}
	if opts.Publish && strings.TrimSpace(opts.UserName) == "" {
		return domain.NewValidationError("userName", "--user-name is required with --publish")
	}

	slog.Info("Phase 1-2: 絵コンテ生成を開始するのだ...", "scenes", req.NumScenes, "style", req.Style)
	result, err := svc.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("絵コンテ生成に失敗したのだ: %w", err)
	}

	if opts.Publish {
		if err := runPublishStep(ctx, svc, result, opts.UserName); err != nil {
			return err
		}
	}

	if strings.EqualFold(filepath.Ext(opts.OutputFile), ".md") {
		md := publisher.NewMarkdownPublisher().BuildFinalMarkdown(result)
		return writeOutput(opts.OutputFile, stdio.Out, []byte(md))
	}
	return writeJSON(opts.OutputFile, stdio.Out, result)
}

// runPublishStep は PublishRunner を使って結果をギャラリーへ公開するのだ
func runPublishStep(ctx context.Context, svc StoryboardService, result *domain.StoryboardResult, userName string) error {
	slog.Info("Phase 3: 公開処理を開始するのだ...")
	pr, err := svc.BuildPublishRunner()
	if err != nil {
		return fmt.Errorf("PublishRunnerの構築に失敗したのだ: %w", err)
	}

	work, err := pr.Run(ctx, result, runner.PublishAuthor{Name: userName})
	if err != nil {
		return fmt.Errorf("公開処理に失敗したのだ: %w", err)
	}
	slog.Info("ギャラリーに公開したのだ", "work_id", work.ID, "title", work.Title)
	return nil
}

func readRequest(opts Options, stdin io.Reader) (domain.StoryboardRequest, error) {
	story := opts.Story
	if story == "" {
		var err error
		story, err = readStory(opts.StoryFile, stdin)
		if err != nil {
			return domain.StoryboardRequest{}, err
		}
	}
	return domain.StoryboardRequest{
		Story:     story,
		NumScenes: opts.NumScenes,
		Style:     opts.Style,
	}, nil
}

// readStory はファイル、または '-' の場合は標準入力からストーリーを読み込むのだ。
func readStory(path string, stdin io.Reader) (string, error) {
	if path == "" {
		return "", domain.NewValidationError("story", "--story-file is required ('-' for stdin)")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("ストーリー '%s' の読み込みに失敗しました: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(path string, out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("JSONのエンコードに失敗しました: %w", err)
	}
	return writeOutput(path, out, append(data, '\n'))
}

func writeOutput(path string, out io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("'%s' への保存に失敗しました: %w", path, err)
	}
	slog.Info("結果を保存したのだ", "path", path)
	return nil
}

package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/asset"
	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultTitle     = "Untitled Storyboard"

	documentCacheKey     = "gallery:document"
	defaultCacheTTL      = 5 * time.Minute
	cacheCleanupInterval = 15 * time.Minute
)

// Options は Store の保存先と依存を指定します。
type Options struct {
	DataFile     string        // JSON ドキュメントのパス
	ImageDir     string        // ダウンロードした画像の保存先
	PublicPrefix string        // 画像を配信する公開パスの接頭辞
	Downloader   *Downloader   // nil の場合はデフォルト設定
	CacheTTL     time.Duration // 0 の場合は defaultCacheTTL
}

// Store は公開済み絵コンテを 1 つの JSON ドキュメントと画像ディレクトリで管理します。
//
// 読み込みと更新のたびにデータファイルの更新時刻とサイズを確認し、変わっていれば再読み込みするため、
// 別プロセス（CLI の gallery コマンドなど）による書き込みも次の操作から反映されます。
// 同一インスタンス内の更新は直列化されますが、複数プロセスの更新が同時に重なった場合は
// 最後に書き込んだ内容が残ります。
type Store struct {
	dataFile     string
	imageDir     string
	publicPrefix string
	downloader   *Downloader
	cache        *cache.Cache
	cacheTTL     time.Duration
	mu           sync.Mutex
}

// NewStore はディレクトリを準備して Store を初期化します。
func NewStore(opts Options) (*Store, error) {
	if opts.DataFile == "" {
		return nil, errors.New("gallery data file is required")
	}
	if opts.ImageDir == "" {
		return nil, errors.New("gallery image dir is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.DataFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create gallery data dir: %w", err)
	}
	if err := os.MkdirAll(opts.ImageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create gallery image dir: %w", err)
	}

	prefix := asset.NormalizePublicPrefix(opts.PublicPrefix)
	dl := opts.Downloader
	if dl == nil {
		dl = NewDownloader(0, DefaultMaxRedirects)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Store{
		dataFile:     opts.DataFile,
		imageDir:     opts.ImageDir,
		publicPrefix: prefix,
		downloader:   dl,
		cache:        cache.New(ttl, cacheCleanupInterval),
		cacheTTL:     ttl,
	}, nil
}

// ImageDir は画像ディレクトリのパスを返します。
func (s *Store) ImageDir() string { return s.imageDir }

// PublicPrefix は画像の公開パスの接頭辞を返します。
func (s *Store) PublicPrefix() string { return s.publicPrefix }

// Publish は全シーンの画像をダウンロードしてから作品を作成し、ドキュメントの先頭に追加します。
// 個々のダウンロード失敗はそのシーンの imageUrl を nil にするだけで、公開自体は継続します。
func (s *Store) Publish(ctx context.Context, req domain.PublishRequest) (*domain.GalleryWork, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	workID := uuid.NewString()
	scenes, files := s.downloadScenes(ctx, workID, req.Scenes)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}
	userName := strings.TrimSpace(req.UserName)
	chars := req.MainCharacters
	if chars == nil {
		chars = []domain.Character{}
	}

	work := domain.GalleryWork{
		ID: workID,
		User: domain.GalleryUser{
			Name:     userName,
			Initials: domain.Initials(userName),
			Avatar:   strings.TrimSpace(req.UserAvatar),
		},
		Title:          title,
		Description:    strings.TrimSpace(req.Description),
		GlobalStyle:    req.GlobalStyle,
		MainCharacters: chars,
		Scenes:         scenes,
		CreatedAt:      time.Now().UTC(),
		Visible:        true,
		Featured:       false,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		s.removeFiles(files)
		return nil, err
	}
	doc.Works = append([]domain.GalleryWork{work}, doc.Works...)
	if err := s.save(doc); err != nil {
		s.removeFiles(files)
		return nil, err
	}

	slog.Info("Gallery: Work published", "work_id", workID, "user", userName, "scenes", len(scenes), "images", len(files))
	published := work.Clone()
	return &published, nil
}

// downloadScenes は画像付きのシーンを並列にダウンロードし、全件の完了を待ちます。
func (s *Store) downloadScenes(ctx context.Context, workID string, src []domain.GeneratedScene) ([]domain.GalleryScene, []string) {
	scenes := make([]domain.GalleryScene, len(src))
	saved := make([]string, len(src))

	var eg errgroup.Group
	for i, scene := range src {
		gs := domain.GalleryScene{
			ID:          scene.ID,
			Title:       scene.Title,
			Caption:     scene.ShortCaption,
			AspectRatio: domain.NormalizeAspectRatio(string(scene.AspectRatio)),
		}
		if scene.ImageURL == nil || strings.TrimSpace(*scene.ImageURL) == "" {
			scenes[i] = gs
			continue
		}
		gs.OriginalURL = *scene.ImageURL

		eg.Go(func() error {
			baseName := asset.SceneBaseName(workID, i)
			filename, err := s.downloader.Download(ctx, gs.OriginalURL, s.imageDir, baseName)
			if err != nil {
				slog.Warn("Gallery: Image download failed", "work_id", workID, "scene_id", gs.ID, "error", err)
			} else {
				local := asset.PublicPath(s.publicPrefix, filename)
				gs.ImageURL = &local
				saved[i] = filename
			}
			scenes[i] = gs
			return nil
		})
	}
	_ = eg.Wait()

	files := make([]string, 0, len(saved))
	for _, f := range saved {
		if f != "" {
			files = append(files, f)
		}
	}
	return scenes, files
}

// ListOptions は一覧取得のページングと可視性の条件です。
type ListOptions struct {
	Limit         int
	Offset        int
	IncludeHidden bool
}

// ListResult は一覧取得の結果です。
type ListResult struct {
	Works   []domain.GalleryWork `json:"works"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
	HasMore bool                 `json:"hasMore"`
}

// List は新しい順に作品を返します。IncludeHidden が false の場合は非表示の作品を除外します。
func (s *Store) List(opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	doc, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.GalleryWork, 0, len(doc.Works))
	for _, w := range doc.Works {
		if opts.IncludeHidden || w.Visible {
			filtered = append(filtered, w)
		}
	}

	total := len(filtered)
	start := min(offset, total)
	end := min(offset+limit, total)

	works := make([]domain.GalleryWork, 0, end-start)
	for _, w := range filtered[start:end] {
		works = append(works, w.Clone())
	}

	return &ListResult{
		Works:   works,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

// Get は ID で作品を探します。見つからない場合、または非表示で includeHidden が false の場合は nil を返します。
func (s *Store) Get(id string, includeHidden bool) (*domain.GalleryWork, error) {
	doc, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Works {
		if w.ID != id {
			continue
		}
		if !w.Visible && !includeHidden {
			return nil, nil
		}
		c := w.Clone()
		return &c, nil
	}
	return nil, nil
}

// SetVisibility は作品の表示状態を変更します。ID が存在しない場合は false を返します。
func (s *Store) SetVisibility(id string, visible bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}

	idx := indexOf(doc.Works, id)
	if idx < 0 {
		return false, nil
	}
	doc.Works[idx].Visible = visible
	if err := s.save(doc); err != nil {
		return false, err
	}

	slog.Info("Gallery: Visibility updated", "work_id", id, "visible", visible)
	return true, nil
}

// Delete は作品の画像ファイルとレコードを削除します。ID が存在しない場合は false を返します。
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}

	idx := indexOf(doc.Works, id)
	if idx < 0 {
		return false, nil
	}
	work := doc.Works[idx]

	doc.Works = append(doc.Works[:idx:idx], doc.Works[idx+1:]...)
	if err := s.save(doc); err != nil {
		return false, err
	}

	s.removeFiles(s.workFiles(work))
	slog.Info("Gallery: Work deleted", "work_id", id)
	return true, nil
}

// workFiles は作品に属する画像ファイル名を返します。記録済みのパスに加え、命名規則に一致するファイルも含みます。
func (s *Store) workFiles(work domain.GalleryWork) []string {
	seen := make(map[string]bool)
	var files []string
	add := func(name string) {
		if name == "" || name == "." || name == "/" || seen[name] {
			return
		}
		seen[name] = true
		files = append(files, name)
	}

	for _, sc := range work.Scenes {
		if sc.ImageURL == nil {
			continue
		}
		if name, ok := asset.FileNameFromPublicPath(s.publicPrefix, *sc.ImageURL); ok {
			add(name)
		}
	}

	entries, err := os.ReadDir(s.imageDir)
	if err != nil {
		slog.Warn("Gallery: Failed to read image dir", "work_id", work.ID, "error", err)
		return files
	}
	re := asset.SceneFileRegex(work.ID)
	for _, e := range entries {
		if !e.IsDir() && re.MatchString(e.Name()) {
			add(e.Name())
		}
	}
	return files
}

func (s *Store) removeFiles(files []string) {
	for _, f := range files {
		err := os.Remove(filepath.Join(s.imageDir, f))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Gallery: Failed to remove image file", "file", f, "error", err)
		}
	}
}

func indexOf(works []domain.GalleryWork, id string) int {
	for i, w := range works {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// snapshot はロックを取得してドキュメントを読み込みます。
func (s *Store) snapshot() (*domain.GalleryDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// cachedDocument はキャッシュしたドキュメントと、読み込み時点のデータファイルの状態です。
type cachedDocument struct {
	doc     *domain.GalleryDocument
	exists  bool
	modTime time.Time
	size    int64
}

// matches はデータファイルがキャッシュ時点から変わっていないかを判定します。
func (c *cachedDocument) matches(info os.FileInfo) bool {
	if info == nil {
		return !c.exists
	}
	return c.exists && info.ModTime().Equal(c.modTime) && info.Size() == c.size
}

// load はデータファイルが変わっていなければキャッシュ、そうでなければファイルからドキュメントを読み込み、
// 呼び出し側が自由に変更できるコピーを返します。別プロセスによる書き込みは更新時刻とサイズで検出します。
// 呼び出し側で mu を保持していること。
func (s *Store) load() (*domain.GalleryDocument, error) {
	info, err := s.statDataFile()
	if err != nil {
		return nil, err
	}

	if cached, found := s.cache.Get(documentCacheKey); found {
		if entry, ok := cached.(*cachedDocument); ok && entry.matches(info) {
			return cloneDocument(entry.doc), nil
		}
	}

	doc := &domain.GalleryDocument{Works: []domain.GalleryWork{}}
	data, err := os.ReadFile(s.dataFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read gallery document: %w", err)
	case len(strings.TrimSpace(string(data))) > 0:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to decode gallery document: %w", err)
		}
		if doc.Works == nil {
			doc.Works = []domain.GalleryWork{}
		}
	}

	s.remember(doc, info)
	return doc, nil
}

// statDataFile はデータファイルの状態を返します。ファイルがなければ nil です。
func (s *Store) statDataFile() (os.FileInfo, error) {
	info, err := os.Stat(s.dataFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat gallery document: %w", err)
	}
	return info, nil
}

func (s *Store) remember(doc *domain.GalleryDocument, info os.FileInfo) {
	entry := &cachedDocument{doc: cloneDocument(doc), exists: info != nil}
	if info != nil {
		entry.modTime = info.ModTime()
		entry.size = info.Size()
	}
	s.cache.Set(documentCacheKey, entry, s.cacheTTL)
}

// save はドキュメント全体を一時ファイルに書き出してからリネームで置き換えます。
// 呼び出し側で mu を保持していること。
func (s *Store) save(doc *domain.GalleryDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode gallery document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.dataFile), ".gallery-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp gallery document: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write gallery document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close gallery document: %w", err)
	}
	if err := os.Rename(tmpName, s.dataFile); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace gallery document: %w", err)
	}

	if info, err := s.statDataFile(); err == nil {
		s.remember(doc, info)
	} else {
		s.cache.Delete(documentCacheKey)
	}
	return nil
}

func cloneDocument(doc *domain.GalleryDocument) *domain.GalleryDocument {
	c := &domain.GalleryDocument{Works: make([]domain.GalleryWork, len(doc.Works))}
	for i, w := range doc.Works {
		c.Works[i] = w.Clone()
	}
	return c
}

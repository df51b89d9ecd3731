package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/httpkit"
)

// DefaultMaxRedirects はリダイレクトを追跡する最大回数です。
const DefaultMaxRedirects = 5

const defaultExtension = "png"

var knownImageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"gif":  true,
}

var (
	// ErrTooManyRedirects はリダイレクト回数が上限を超えた場合のエラーです。
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrUnsafeURL は内部ネットワークなど、取得が許可されていない URL を指す場合のエラーです。
	ErrUnsafeURL = errors.New("image URL is not allowed")
	// ErrImageTooLarge は画像が httpkit.MaxResponseBodySize を超えた場合のエラーです。
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

// Downloader はリモート画像をリダイレクトを追跡しながらローカルファイルへ保存します。
// 取得先の URL はリダイレクト先も含めて httpkit の SSRF 検証を通過する必要があります。
type Downloader struct {
	client       *httpkit.Client
	maxRedirects int
}

// NewDownloader は Downloader を初期化します。timeout が 0 の場合はタイムアウトを設定しません。
// opts は httpkit.New にそのまま渡されます。内部ネットワークへの取得を許可する場合は
// httpkit.WithSkipNetworkValidation(true) を指定してください。
func NewDownloader(timeout time.Duration, maxRedirects int, opts ...httpkit.ClientOption) *Downloader {
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	d := &Downloader{maxRedirects: maxRedirects}

	base := []httpkit.ClientOption{
		httpkit.WithMaxRetries(0),
		httpkit.WithHTTPClient(&http.Client{
			Timeout:       timeout,
			CheckRedirect: d.checkRedirect,
		}),
	}
	d.client = httpkit.New(timeout, append(base, opts...)...)
	return d
}

// checkRedirect は各リダイレクト先を上限と SSRF 検証で確認します。
func (d *Downloader) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > d.maxRedirects {
		return fmt.Errorf("%w (max %d)", ErrTooManyRedirects, d.maxRedirects)
	}
	return d.validate(req.URL.String())
}

func (d *Downloader) validate(rawURL string) error {
	if d.client.SkipNetworkValidation {
		return nil
	}
	if ok, err := d.client.IsSafeURL(rawURL); !ok {
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnsafeURL, rawURL, err)
		}
		return fmt.Errorf("%w: %s", ErrUnsafeURL, rawURL)
	}
	return nil
}

// Download は rawURL の画像を dir/baseName.{ext} に保存し、保存したファイル名を返します。
// 拡張子は最終的な URL のパス、Content-Type の順に判定し、どちらからも決まらなければ png になります。
func (d *Downloader) Download(ctx context.Context, rawURL, dir, baseName string) (string, error) {
	resp, err := d.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	filename := baseName + "." + extensionFor(finalURL, resp.Header.Get("Content-Type"))
	fullPath := filepath.Join(dir, filename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create image file %s: %w", fullPath, err)
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, httpkit.MaxResponseBodySize+1))
	if err == nil && n > httpkit.MaxResponseBodySize {
		err = fmt.Errorf("%w (%d bytes)", ErrImageTooLarge, httpkit.MaxResponseBodySize)
	}
	if err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write image file %s: %w", fullPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close image file %s: %w", fullPath, err)
	}

	return filename, nil
}

// fetch は GET を送信し、2xx のレスポンスだけを返します。
// リダイレクトは http.Client が checkRedirect を通して追跡します。
func (d *Downloader) fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := d.validate(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", httpkit.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &httpkit.NonRetryableHTTPError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// extensionFor は画像ファイルの拡張子をドットなしで返します。
func extensionFor(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
		if knownImageExtensions[ext] {
			return ext
		}
	}

	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			exts, _ := mime.ExtensionsByType(mediaType)
			for _, preferred := range []string{".png", ".jpg", ".webp", ".gif", ".jpeg"} {
				for _, e := range exts {
					if e == preferred {
						return strings.TrimPrefix(e, ".")
					}
				}
			}
		}
	}

	return defaultExtension
}

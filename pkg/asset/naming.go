package asset

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

const (
	// DefaultPublicPrefix は保存した画像を配信するデフォルトの公開パスです。
	DefaultPublicPrefix = "/gallery-images"
	// sceneInfix は作品 ID とシーン番号をつなぐ区切りです。
	sceneInfix = "_scene_"
)

// SceneBaseName は作品のシーン画像の拡張子なしファイル名を返します。index は 0 始まりです。
// 例: "abc", 2 -> "abc_scene_2"
func SceneBaseName(workID string, index int) string {
	return fmt.Sprintf("%s%s%d", workID, sceneInfix, index)
}

// SceneFileRegex は、作品 ID に属するシーン画像ファイルに一致する正規表現を生成します。
// 例: "abc" -> ^abc_scene_\d+\.[A-Za-z0-9]+$
func SceneFileRegex(workID string) *regexp.Regexp {
	// workID を QuoteMeta でエスケープすることで、特殊文字が含まれていてもリテラルとしてマッチします。
	pattern := fmt.Sprintf(`^%s%s\d+\.[A-Za-z0-9]+$`, regexp.QuoteMeta(workID), sceneInfix)
	return regexp.MustCompile(pattern)
}

// NormalizePublicPrefix は公開パスを先頭スラッシュ付き、末尾スラッシュなしに正規化します。
// 空またはルートの場合は DefaultPublicPrefix を返します。
func NormalizePublicPrefix(prefix string) string {
	p := "/" + strings.Trim(prefix, "/")
	if p == "/" {
		return DefaultPublicPrefix
	}
	return p
}

// PublicPath は公開パスとファイル名から配信用の URL パスを生成します。
func PublicPath(prefix, fileName string) string {
	return path.Join(prefix, fileName)
}

// FileNameFromPublicPath は公開パス配下の URL パスからファイル名を取り出します。
// prefix 配下でない場合は false を返します。
func FileNameFromPublicPath(prefix, publicPath string) (string, bool) {
	if !strings.HasPrefix(publicPath, prefix+"/") {
		return "", false
	}
	name := path.Base(publicPath)
	if name == "." || name == "/" {
		return "", false
	}
	return name, true
}

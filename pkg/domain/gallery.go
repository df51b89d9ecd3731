package domain

import (
	"strings"
	"time"
	"unicode"
)

// GalleryUser は作品の投稿者情報です。
type GalleryUser struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Avatar   string `json:"avatar,omitempty"`
}

// GalleryScene はギャラリーに保存されたシーンです。
// ImageURL はローカルに保存した画像の公開パスで、ダウンロードに失敗した場合は nil です。
type GalleryScene struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Caption     string      `json:"caption"`
	ImageURL    *string     `json:"imageUrl"`
	OriginalURL string      `json:"originalUrl,omitempty"`
	AspectRatio AspectRatio `json:"aspectRatio"`
}

// GalleryWork は公開済みの絵コンテ 1 件です。
type GalleryWork struct {
	ID             string         `json:"id"`
	User           GalleryUser    `json:"user"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	GlobalStyle    string         `json:"globalStyle"`
	MainCharacters []Character    `json:"mainCharacters"`
	Scenes         []GalleryScene `json:"scenes"`
	CreatedAt      time.Time      `json:"createdAt"`
	Visible        bool           `json:"visible"`
	Featured       bool           `json:"featured"`
}

// Clone はスライスとポインタを含めたディープコピーを返します。
func (w GalleryWork) Clone() GalleryWork {
	c := w
	if w.MainCharacters != nil {
		c.MainCharacters = make([]Character, len(w.MainCharacters))
		copy(c.MainCharacters, w.MainCharacters)
	}
	if w.Scenes != nil {
		c.Scenes = make([]GalleryScene, len(w.Scenes))
		for i, s := range w.Scenes {
			if s.ImageURL != nil {
				u := *s.ImageURL
				s.ImageURL = &u
			}
			c.Scenes[i] = s
		}
	}
	return c
}

// GalleryDocument は永続化される JSON ドキュメントのルートです。Works は新しい順に並びます。
type GalleryDocument struct {
	Works []GalleryWork `json:"works"`
}

// Initials は表示名から最大 2 文字のイニシャルを計算します。
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, word := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}

// PublishRequest はギャラリーへの公開リクエストです。Scenes は画像生成後のシーンをそのまま受け取ります。
type PublishRequest struct {
	UserName       string           `json:"userName"`
	UserAvatar     string           `json:"userAvatar,omitempty"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	GlobalStyle    string           `json:"globalStyle"`
	MainCharacters []Character      `json:"mainCharacters"`
	Scenes         []GeneratedScene `json:"scenes"`
}

// Validate は公開に必要な最低限の条件を検証します。
func (r PublishRequest) Validate() error {
	if strings.TrimSpace(r.UserName) == "" {
		return NewValidationError("userName", "userName is required")
	}
	if len(r.Scenes) == 0 {
		return NewValidationError("scenes", "scenes are required")
	}
	for _, s := range r.Scenes {
		if s.ImageURL != nil && strings.TrimSpace(*s.ImageURL) != "" {
			return nil
		}
	}
	return &ValidationError{Field: "scenes", Message: ErrNoImages.Error(), Err: ErrNoImages}
}

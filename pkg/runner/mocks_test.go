package runner

import (
	"context"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// mockTextGenerator は ai.TextGenerator のテスト用モックなのだ。
type mockTextGenerator struct {
	calls       int
	prompt      string
	temperature float32
	response    string
	err         error
}

func (m *mockTextGenerator) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	m.calls++
	m.prompt = prompt
	m.temperature = temperature
	return m.response, m.err
}

// mockImageGenerator は ai.ImageGenerator のテスト用モックなのだ。
type mockImageGenerator struct {
	mu sync.Mutex
	fn func(req ai.ImageRequest) (string, error)
}

func (m *mockImageGenerator) GenerateImage(ctx context.Context, req ai.ImageRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn(req)
}

// mockGalleryPublisher は GalleryPublisher のテスト用モックなのだ。
type mockGalleryPublisher struct {
	got domain.PublishRequest
	err error
}

func (m *mockGalleryPublisher) Publish(ctx context.Context, req domain.PublishRequest) (*domain.GalleryWork, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.GalleryWork{ID: "work-1", Title: req.Title, Visible: true}, nil
}

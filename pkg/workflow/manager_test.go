package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStory = "A young baker named Ilo wakes before dawn, bakes bread for the village, and shares the last loaf with a stray dog."

// mockTextGenerator は固定の計画 JSON を返すモックなのだ。
type mockTextGenerator struct {
	response string
	err      error
}

func (m *mockTextGenerator) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.response, m.err
}

// mockImageGenerator は受け取ったプロンプトを記録し、失敗させたい番号以外は URL を返すのだ。
type mockImageGenerator struct {
	mu      sync.Mutex
	prompts []string
	failOn  string
}

func (m *mockImageGenerator) GenerateImage(ctx context.Context, req ai.ImageRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Prompt)
	if m.failOn != "" && strings.Contains(req.Prompt, m.failOn) {
		return "", errors.New("rate limit exceeded")
	}
	return fmt.Sprintf("https://img.example.com/%d.png", len(m.prompts)), nil
}

// mockGallery は公開リクエストを記録するのだ。
type mockGallery struct {
	got domain.PublishRequest
}

func (m *mockGallery) Publish(ctx context.Context, req domain.PublishRequest) (*domain.GalleryWork, error) {
	m.got = req
	return &domain.GalleryWork{ID: "w1", Title: req.Title, Visible: true}, nil
}

func planJSON(n int) string {
	scenes := make([]string, n)
	for i := range scenes {
		scenes[i] = fmt.Sprintf(`{"id": %d, "title": "S%d", "short_caption": "C%d.", "dalle_prompt": "Ilo at step %d.", "aspect_ratio": "Square"}`, i+1, i+1, i+1, i+1)
	}
	return fmt.Sprintf(`{"title": "Dawn Bread", "global_style": "warm gouache", "main_characters": [], "scenes": [%s]}`, strings.Join(scenes, ","))
}

func TestNew_RequiresGenerators(t *testing.T) {
	_, err := New(ManagerArgs{ImageGenerator: &mockImageGenerator{}})
	assert.Error(t, err)

	_, err = New(ManagerArgs{TextGenerator: &mockTextGenerator{}})
	assert.Error(t, err)

	m, err := New(ManagerArgs{
		Config:         config.DefaultConfig(),
		TextGenerator:  &mockTextGenerator{},
		ImageGenerator: &mockImageGenerator{},
	})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestManager_Generate(t *testing.T) {
	images := &mockImageGenerator{failOn: "step 2."}
	m, err := New(ManagerArgs{
		Config:         config.DefaultConfig(),
		TextGenerator:  &mockTextGenerator{response: planJSON(3)},
		ImageGenerator: images,
	})
	require.NoError(t, err)

	result, err := m.Generate(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 3})
	require.NoError(t, err)

	assert.Equal(t, "Dawn Bread", result.Title)
	assert.Equal(t, 3, result.TotalScenes)
	assert.Equal(t, 2, result.SuccessfulImages)
	assert.Equal(t, 1, result.FailedImages)
	require.NotNil(t, result.Scenes[1].Error)
	assert.Nil(t, result.Scenes[1].ImageURL)
	assert.Len(t, images.prompts, 3)
}

func TestManager_Generate_ValidationSkipsModels(t *testing.T) {
	images := &mockImageGenerator{}
	m, err := New(ManagerArgs{
		Config:         config.DefaultConfig(),
		TextGenerator:  &mockTextGenerator{response: planJSON(3)},
		ImageGenerator: images,
	})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), domain.StoryboardRequest{Story: "short"})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Empty(t, images.prompts)
}

func TestManager_Generate_PlanningFailure(t *testing.T) {
	images := &mockImageGenerator{}
	m, err := New(ManagerArgs{
		Config:         config.DefaultConfig(),
		TextGenerator:  &mockTextGenerator{response: "not json at all"},
		ImageGenerator: images,
	})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 3})
	require.Error(t, err)

	var pe *domain.PlanningError
	assert.True(t, errors.As(err, &pe))
	assert.Empty(t, images.prompts)
}

func TestManager_BuildPublishRunner(t *testing.T) {
	m, err := New(ManagerArgs{
		Config:         config.DefaultConfig(),
		TextGenerator:  &mockTextGenerator{},
		ImageGenerator: &mockImageGenerator{},
	})
	require.NoError(t, err)

	_, err = m.BuildPublishRunner()
	assert.ErrorIs(t, err, ErrGalleryNotConfigured)

	gallery := &mockGallery{}
	m, err = New(ManagerArgs{
		Config:         config.DefaultConfig(),
		TextGenerator:  &mockTextGenerator{},
		ImageGenerator: &mockImageGenerator{},
		Gallery:        gallery,
	})
	require.NoError(t, err)

	pr, err := m.BuildPublishRunner()
	require.NoError(t, err)

	result := &domain.StoryboardResult{
		Title:  "Dawn Bread",
		Scenes: []domain.GeneratedScene{domain.NewSucceededScene(domain.ScenePlan{ID: 1}, "https://img.example.com/1.png")},
	}
	work, err := pr.Run(context.Background(), result, runner.PublishAuthor{Name: "Ilo"})
	require.NoError(t, err)
	assert.Equal(t, "w1", work.ID)
	assert.Equal(t, "Ilo", gallery.got.UserName)
}

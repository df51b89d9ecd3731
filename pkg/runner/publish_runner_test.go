package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPublisherRunner_Run(t *testing.T) {
	plan := &domain.StoryboardPlan{
		Title:          "The Keeper",
		GlobalStyle:    "watercolor",
		MainCharacters: []domain.Character{{Name: "Mara", Description: "keeper"}},
	}
	result := domain.NewStoryboardResult(plan, []domain.GeneratedScene{
		domain.NewSucceededScene(domain.ScenePlan{ID: 1, Title: "Storm"}, "https://img.example.com/1.png"),
		domain.NewFailedScene(domain.ScenePlan{ID: 2, Title: "Dawn"}, "boom"),
	})

	gallery := &mockGalleryPublisher{}
	pr := NewDefaultPublisherRunner(gallery)

	work, err := pr.Run(context.Background(), result, PublishAuthor{Name: "Ada", Description: "first try"})
	require.NoError(t, err)
	assert.Equal(t, "work-1", work.ID)

	assert.Equal(t, "Ada", gallery.got.UserName)
	assert.Equal(t, "The Keeper", gallery.got.Title)
	assert.Equal(t, "first try", gallery.got.Description)
	assert.Equal(t, "watercolor", gallery.got.GlobalStyle)
	assert.Len(t, gallery.got.Scenes, 2)
	assert.Len(t, gallery.got.MainCharacters, 1)
}

func TestDefaultPublisherRunner_Errors(t *testing.T) {
	storeErr := errors.New("disk full")
	pr := NewDefaultPublisherRunner(&mockGalleryPublisher{err: storeErr})

	_, err := pr.Run(context.Background(), nil, PublishAuthor{Name: "Ada"})
	assert.Error(t, err)

	_, err = pr.Run(context.Background(), &domain.StoryboardResult{}, PublishAuthor{Name: "Ada"})
	assert.ErrorIs(t, err, storeErr)
}

func TestDefaultPublisherRunner_BuildMarkdown(t *testing.T) {
	pr := NewDefaultPublisherRunner(&mockGalleryPublisher{})
	md := pr.BuildMarkdown(&domain.StoryboardResult{Title: "T"})
	assert.Contains(t, md, "# T")
}

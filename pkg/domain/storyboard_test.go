package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryboardRequest_Validate(t *testing.T) {
	longStory := "A lighthouse keeper finds a message in a bottle."

	tests := []struct {
		name    string
		req     StoryboardRequest
		wantErr string
	}{
		{name: "正常系", req: StoryboardRequest{Story: longStory, NumScenes: 4}},
		{name: "上限ちょうど", req: StoryboardRequest{Story: longStory, NumScenes: 12}},
		{name: "下限ちょうど", req: StoryboardRequest{Story: longStory, NumScenes: 1}},
		{name: "空のストーリー", req: StoryboardRequest{Story: "   ", NumScenes: 4}, wantErr: "story is required"},
		{name: "短すぎるストーリー", req: StoryboardRequest{Story: "too short", NumScenes: 4}, wantErr: "at least 10"},
		{name: "シーン数ゼロ", req: StoryboardRequest{Story: longStory, NumScenes: 0}, wantErr: "between 1 and 12"},
		{name: "シーン数超過", req: StoryboardRequest{Story: longStory, NumScenes: 13}, wantErr: "between 1 and 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoryboardRequest_Normalize(t *testing.T) {
	req := StoryboardRequest{Story: "  a story with padding  ", Style: " watercolor "}.Normalize()

	assert.Equal(t, "a story with padding", req.Story)
	assert.Equal(t, "watercolor", req.Style)
	assert.Equal(t, DefaultNumScenes, req.NumScenes)
}

func TestValidateNumScenes(t *testing.T) {
	for n := MinScenes; n <= MaxScenes; n++ {
		assert.NoError(t, ValidateNumScenes(n), "n=%d", n)
	}
	for _, n := range []int{-1, 0, 13, 100} {
		err := ValidateNumScenes(n)
		require.Error(t, err, "n=%d", n)
		assert.True(t, IsValidationError(err))
	}
}

func TestNormalizeAspectRatio(t *testing.T) {
	assert.Equal(t, AspectLandscape, NormalizeAspectRatio("Landscape"))
	assert.Equal(t, AspectPortrait, NormalizeAspectRatio(" portrait "))
	assert.Equal(t, AspectSquare, NormalizeAspectRatio("square"))
	assert.Equal(t, AspectSquare, NormalizeAspectRatio("16:9"))
	assert.Equal(t, AspectSquare, NormalizeAspectRatio(""))
}

func TestGeneratedScene_JSON(t *testing.T) {
	plan := ScenePlan{ID: 1, Title: "Dawn", ShortCaption: "The sun rises.", DallePrompt: "A sunrise.", AspectRatio: AspectLandscape}

	t.Run("成功したシーンは error が null になる", func(t *testing.T) {
		data, err := json.Marshal(NewSucceededScene(plan, "https://img.example.com/1.png"))
		require.NoError(t, err)

		s := string(data)
		assert.Contains(t, s, `"image_url":"https://img.example.com/1.png"`)
		assert.Contains(t, s, `"error":null`)
		assert.Contains(t, s, `"dalle_prompt":"A sunrise."`)
	})

	t.Run("失敗したシーンは image_url が null になる", func(t *testing.T) {
		data, err := json.Marshal(NewFailedScene(plan, "content policy violation"))
		require.NoError(t, err)

		s := string(data)
		assert.Contains(t, s, `"image_url":null`)
		assert.Contains(t, s, `"error":"content policy violation"`)
	})

	t.Run("空のメッセージでもエラー文言が入る", func(t *testing.T) {
		scene := NewFailedScene(plan, "")
		require.NotNil(t, scene.Error)
		assert.NotEmpty(t, *scene.Error)
		assert.False(t, scene.Succeeded())
	})
}

func TestNewStoryboardResult(t *testing.T) {
	plan := &StoryboardPlan{
		GlobalStyle:    "soft watercolor",
		MainCharacters: []Character{{Name: "Mara", Description: "a tall woman"}},
	}
	scenes := []GeneratedScene{
		NewSucceededScene(ScenePlan{ID: 1}, "u1"),
		NewFailedScene(ScenePlan{ID: 2}, "boom"),
		NewSucceededScene(ScenePlan{ID: 3}, "u3"),
	}

	res := NewStoryboardResult(plan, scenes)

	assert.Equal(t, 3, res.TotalScenes)
	assert.Equal(t, 2, res.SuccessfulImages)
	assert.Equal(t, 1, res.FailedImages)
	assert.Equal(t, "soft watercolor", res.GlobalStyle)
}

func TestPlanningError(t *testing.T) {
	inner := assertError("upstream exploded")
	err := &PlanningError{Reason: "model call failed", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.True(t, strings.HasPrefix(err.Error(), "planning failed: model call failed"))
	assert.Equal(t, "planning failed: missing scenes", (&PlanningError{Reason: "missing scenes"}).Error())
}

type assertError string

func (e assertError) Error() string { return string(e) }

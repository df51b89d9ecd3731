package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStory = "An old lighthouse keeper named Mara rescues a fox during a winter storm and they become friends."

func newTestPlanRunner(t *testing.T, ai *mockTextGenerator) *StoryboardPlanRunner {
	t.Helper()
	pb, err := prompts.NewPlanPromptBuilder()
	require.NoError(t, err)
	return NewStoryboardPlanRunner(config.DefaultConfig(), pb, ai)
}

// planJSON は指定した ID 順でシーンを持つ計画 JSON を返すのだ。
func planJSON(style string, ids ...int) string {
	scenes := make([]string, len(ids))
	for i, id := range ids {
		scenes[i] = fmt.Sprintf(`{"id": %d, "title": "Scene %d", "short_caption": "Caption %d.", "dalle_prompt": "Mara with warm light-brown skin, moment %d.", "aspect_ratio": "Landscape"}`, id, id, id, id)
	}
	return fmt.Sprintf(`{
		"title": "The Keeper",
		"global_style": %q,
		"main_characters": [{"name": "Mara", "description": "a woman in her 60s with warm light-brown skin"}],
		"scenes": [%s]
	}`, style, strings.Join(scenes, ","))
}

func TestStoryboardPlanRunner_Run(t *testing.T) {
	ai := &mockTextGenerator{response: planJSON("soft watercolor washes", 3, 1, 2, 4)}
	pr := newTestPlanRunner(t, ai)

	plan, err := pr.Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 4, Style: "watercolor"})
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls)
	assert.InDelta(t, 0.8, ai.temperature, 0.0001)
	assert.Contains(t, ai.prompt, testStory)
	assert.Contains(t, ai.prompt, "exactly 4 visually distinct scenes")
	assert.Contains(t, ai.prompt, `"watercolor"`)

	assert.Equal(t, "The Keeper", plan.Title)
	assert.Equal(t, "soft watercolor washes", plan.GlobalStyle)
	require.Len(t, plan.MainCharacters, 1)
	require.Len(t, plan.Scenes, 4)
	for i, s := range plan.Scenes {
		assert.Equal(t, i+1, s.ID)
		assert.Equal(t, domain.AspectLandscape, s.AspectRatio)
	}
	// モデルの ID 順に並び替えられている
	assert.Equal(t, "Caption 1.", plan.Scenes[0].ShortCaption)
	assert.Equal(t, "Caption 3.", plan.Scenes[2].ShortCaption)
}

func TestStoryboardPlanRunner_DefaultSceneCount(t *testing.T) {
	ai := &mockTextGenerator{response: planJSON("ink", 1, 2, 3, 4, 5, 6, 7, 8)}
	plan, err := newTestPlanRunner(t, ai).Run(context.Background(), domain.StoryboardRequest{Story: testStory})

	require.NoError(t, err)
	assert.Len(t, plan.Scenes, domain.DefaultNumScenes)
}

func TestStoryboardPlanRunner_EverySceneCount(t *testing.T) {
	for n := domain.MinScenes; n <= domain.MaxScenes; n++ {
		t.Run(fmt.Sprintf("%d scenes", n), func(t *testing.T) {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = n - i
			}
			ai := &mockTextGenerator{response: planJSON("ink", ids...)}

			plan, err := newTestPlanRunner(t, ai).Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: n})
			require.NoError(t, err)
			assert.Contains(t, ai.prompt, fmt.Sprintf("exactly %d visually distinct scenes", n))
			require.Len(t, plan.Scenes, n)
			for i, s := range plan.Scenes {
				assert.Equal(t, i+1, s.ID)
			}
		})
	}
}

func TestStoryboardPlanRunner_FoldsStyleHint(t *testing.T) {
	ai := &mockTextGenerator{response: planJSON("muted pastel illustration", 1, 2)}
	plan, err := newTestPlanRunner(t, ai).Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 2, Style: "Watercolor"})

	require.NoError(t, err)
	assert.Equal(t, "Watercolor, muted pastel illustration", plan.GlobalStyle)
}

func TestStoryboardPlanRunner_CodeFence(t *testing.T) {
	ai := &mockTextGenerator{response: "Here is your plan:\n```json\n" + planJSON("ink", 1, 2) + "\n```"}
	plan, err := newTestPlanRunner(t, ai).Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 2})

	require.NoError(t, err)
	assert.Len(t, plan.Scenes, 2)
}

func TestStoryboardPlanRunner_PlanningErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantMsg  string
	}{
		{name: "JSON ではない", response: "Sorry, I cannot help with that.", wantMsg: "not a JSON object"},
		{name: "global_style がない", response: `{"main_characters": [], "scenes": []}`, wantMsg: "missing global_style"},
		{name: "global_style が空", response: `{"global_style": "  ", "scenes": []}`, wantMsg: "non-empty string"},
		{name: "scenes がない", response: `{"global_style": "ink"}`, wantMsg: "missing scenes"},
		{name: "scenes が配列ではない", response: `{"global_style": "ink", "scenes": {"id": 1}}`, wantMsg: "must be an array"},
		{name: "シーン数が一致しない", response: planJSON("ink", 1, 2, 3), wantMsg: "expected 2 scenes"},
		{name: "dalle_prompt が空", response: `{"global_style": "ink", "scenes": [{"id": 1, "dalle_prompt": "a"}, {"id": 2, "dalle_prompt": " "}]}`, wantMsg: "empty dalle_prompt"},
		{name: "スキーマ違反", response: `{"global_style": "ink", "scenes": [{"id": "one"}]}`, wantMsg: "plan schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &mockTextGenerator{response: tt.response}
			_, err := newTestPlanRunner(t, ai).Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 2})

			require.Error(t, err)
			var pe *domain.PlanningError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, 1, ai.calls, "no retry")
		})
	}
}

func TestStoryboardPlanRunner_ModelError(t *testing.T) {
	upstream := errors.New("401 invalid api key")
	ai := &mockTextGenerator{err: upstream}

	_, err := newTestPlanRunner(t, ai).Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 2})

	var pe *domain.PlanningError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 1, ai.calls)
}

func TestStoryboardPlanRunner_ValidationError(t *testing.T) {
	ai := &mockTextGenerator{}
	pr := newTestPlanRunner(t, ai)

	_, err := pr.Run(context.Background(), domain.StoryboardRequest{Story: "short", NumScenes: 4})
	assert.True(t, domain.IsValidationError(err))

	_, err = pr.Run(context.Background(), domain.StoryboardRequest{Story: testStory, NumScenes: 13})
	assert.True(t, domain.IsValidationError(err))

	assert.Zero(t, ai.calls)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSON(`prefix {"a":{"b":2}} suffix`))
	assert.Equal(t, `not json`, extractJSON("  not json  "))
}

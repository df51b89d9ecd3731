package builder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.GalleryDataFile = filepath.Join(dir, "gallery.json")
	cfg.GalleryImageDir = filepath.Join(dir, "images")
	return &cfg
}

func TestBuildAppContext_OpenAI(t *testing.T) {
	cfg := testConfig(t)

	appCtx, err := BuildAppContext(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotNil(t, appCtx.Manager)
	assert.NotNil(t, appCtx.Gallery)
	_, isOpenAI := appCtx.TextGenerator.(*ai.OpenAIClient)
	assert.True(t, isOpenAI)
	assert.Equal(t, "/gallery-images", appCtx.Gallery.PublicPrefix())
}

func TestBuildAppContext_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenAIAPIKey = ""

	_, err := BuildAppContext(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitializeTextGenerator_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "other"

	_, err := InitializeTextGenerator(context.Background(), cfg, nil)
	assert.Error(t, err)
}

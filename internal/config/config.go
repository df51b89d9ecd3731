package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/go-utils/envutil"
	"gopkg.in/yaml.v3"

	kitconfig "github.com/shouni/go-storyboard-kit/pkg/config"
)

// デフォルト値の定義なのだ
const (
	DefaultPort        = "3001"
	DefaultEnvironment = "development"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	DefaultProvider    = ProviderOpenAI
)

// Config はサーバーと CLI が共有するアプリケーション設定なのだ。
type Config struct {
	Port          string `yaml:"port"`
	Environment   string `yaml:"environment"`
	LogLevel      string `yaml:"logLevel"`
	LogFormat     string `yaml:"logFormat"`
	LLMProvider   string `yaml:"llmProvider"`
	OpenAIAPIKey  string `yaml:"openaiApiKey"`
	OpenAIBaseURL string `yaml:"openaiBaseUrl"`
	GeminiAPIKey  string `yaml:"geminiApiKey"`

	TextModel         string        `yaml:"textModel"`
	ImageModel        string        `yaml:"imageModel"`
	PlanTemperature   float32       `yaml:"planTemperature"`
	ImageQuality      string        `yaml:"imageQuality"`
	ImageStyle        string        `yaml:"imageStyle"`
	MaxParallelImages int           `yaml:"maxParallelImages"`
	RateInterval      time.Duration `yaml:"imageRateInterval"`

	GalleryDataFile      string        `yaml:"galleryDataFile"`
	GalleryImageDir      string        `yaml:"galleryImageDir"`
	GalleryPublicPrefix  string        `yaml:"galleryPublicPrefix"`
	DownloadTimeout      time.Duration `yaml:"downloadTimeout"`
	DownloadMaxRedirects int           `yaml:"downloadMaxRedirects"`
}

// Default はデフォルト値だけで構成された設定を返すのだ。
func Default() Config {
	kit := kitconfig.DefaultConfig()
	return Config{
		Port:                 DefaultPort,
		Environment:          DefaultEnvironment,
		LogLevel:             DefaultLogLevel,
		LogFormat:            DefaultLogFormat,
		LLMProvider:          DefaultProvider,
		PlanTemperature:      kit.PlanTemperature,
		ImageQuality:         kit.ImageQuality,
		ImageStyle:           kit.ImageStyle,
		MaxParallelImages:    kit.MaxParallelImages,
		RateInterval:         kit.RateInterval,
		GalleryDataFile:      kit.GalleryDataFile,
		GalleryImageDir:      kit.GalleryImageDir,
		GalleryPublicPrefix:  kit.GalleryPublicPrefix,
		DownloadTimeout:      kit.DownloadTimeout,
		DownloadMaxRedirects: kit.MaxRedirects,
	}
}

// Load はデフォルト値、YAML ファイル、環境変数の順に設定を重ねて読み込むのだ。
// path が空の場合は YAML を読まないのだ。
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = envutil.GetEnv("PORT", cfg.Port)
	cfg.Environment = envutil.GetEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = envutil.GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envutil.GetEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LLMProvider = envutil.GetEnv("LLM_PROVIDER", cfg.LLMProvider)
	cfg.OpenAIAPIKey = envutil.GetEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envutil.GetEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.TextModel = envutil.GetEnv("TEXT_MODEL", cfg.TextModel)
	cfg.ImageModel = envutil.GetEnv("IMAGE_MODEL", cfg.ImageModel)
	cfg.ImageQuality = envutil.GetEnv("IMAGE_QUALITY", cfg.ImageQuality)
	cfg.ImageStyle = envutil.GetEnv("IMAGE_STYLE", cfg.ImageStyle)
	cfg.GalleryDataFile = envutil.GetEnv("GALLERY_DATA_FILE", cfg.GalleryDataFile)
	cfg.GalleryImageDir = envutil.GetEnv("GALLERY_IMAGE_DIR", cfg.GalleryImageDir)
	cfg.GalleryPublicPrefix = envutil.GetEnv("GALLERY_PUBLIC_PREFIX", cfg.GalleryPublicPrefix)

	if v := envutil.GetEnv("PLAN_TEMPERATURE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("PLAN_TEMPERATURE の解析に失敗しました: %w", err)
		}
		cfg.PlanTemperature = float32(f)
	}
	if v := envutil.GetEnv("MAX_PARALLEL_IMAGES", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_PARALLEL_IMAGES の解析に失敗しました: %w", err)
		}
		cfg.MaxParallelImages = n
	}
	if v := envutil.GetEnv("DOWNLOAD_MAX_REDIRECTS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOWNLOAD_MAX_REDIRECTS の解析に失敗しました: %w", err)
		}
		cfg.DownloadMaxRedirects = n
	}
	if v := envutil.GetEnv("IMAGE_RATE_INTERVAL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IMAGE_RATE_INTERVAL の解析に失敗しました: %w", err)
		}
		cfg.RateInterval = d
	}
	if v := envutil.GetEnv("DOWNLOAD_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DOWNLOAD_TIMEOUT の解析に失敗しました: %w", err)
		}
		cfg.DownloadTimeout = d
	}
	return nil
}

// Validate は選択されたプロバイダに必要な API キーが揃っているかを確認するのだ。
// 画像生成は常に OpenAI を使うので、OpenAI のキーは必須なのだ。
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("config: GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("config: OPENAI_API_KEY is required")
	}
	if c.PlanTemperature <= 0 {
		return errors.New("config: planTemperature must be greater than 0")
	}
	return nil
}

// IsProduction は本番環境で動作しているかを返すのだ。
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// KitConfig はライブラリ層に渡す設定へ変換するのだ。
func (c Config) KitConfig() kitconfig.Config {
	return kitconfig.Config{
		TextModel:           c.TextModel,
		ImageModel:          c.ImageModel,
		PlanTemperature:     c.PlanTemperature,
		ImageQuality:        c.ImageQuality,
		ImageStyle:          c.ImageStyle,
		MaxParallelImages:   c.MaxParallelImages,
		RateInterval:        c.RateInterval,
		GalleryDataFile:     c.GalleryDataFile,
		GalleryImageDir:     c.GalleryImageDir,
		GalleryPublicPrefix: c.GalleryPublicPrefix,
		DownloadTimeout:     c.DownloadTimeout,
		MaxRedirects:        c.DownloadMaxRedirects,
	}
}

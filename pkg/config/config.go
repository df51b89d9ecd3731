package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultPlanTemperature   = 0.8
	DefaultImageQuality      = "standard"
	DefaultImageStyle        = "vivid"
	DefaultMaxParallelImages = 0 // 0 はシーン数だけ同時実行
	DefaultRateInterval      = 0 * time.Second
	DefaultMaxRedirects      = 5
	DefaultDownloadTimeout   = 0 * time.Second
	DefaultPublicPrefix      = "/gallery-images"
)

// Config は Go Storyboard Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	TextModel       string  // 空の場合はクライアントのデフォルト
	ImageModel      string  // 空の場合はクライアントのデフォルト
	PlanTemperature float32 // 計画生成のサンプリング温度。0 より大きい値を使います

	// --- Image Generation Settings ---
	ImageQuality      string
	ImageStyle        string
	MaxParallelImages int
	RateInterval      time.Duration

	// --- Gallery Settings ---
	GalleryDataFile     string
	GalleryImageDir     string
	GalleryPublicPrefix string
	DownloadTimeout     time.Duration
	MaxRedirects        int
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		PlanTemperature:     DefaultPlanTemperature,
		ImageQuality:        DefaultImageQuality,
		ImageStyle:          DefaultImageStyle,
		MaxParallelImages:   DefaultMaxParallelImages,
		RateInterval:        DefaultRateInterval,
		GalleryDataFile:     "data/gallery.json",
		GalleryImageDir:     "data/gallery-images",
		GalleryPublicPrefix: DefaultPublicPrefix,
		DownloadTimeout:     DefaultDownloadTimeout,
		MaxRedirects:        DefaultMaxRedirects,
	}
}

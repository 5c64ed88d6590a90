package internal

import (
	"fmt"

	"github.com/gemeindemedia/sermonpress/internal/convert"
	"github.com/gemeindemedia/sermonpress/internal/post"
	"github.com/gemeindemedia/sermonpress/internal/publish/mail"
	"github.com/gemeindemedia/sermonpress/internal/publish/peertube"
	"github.com/gemeindemedia/sermonpress/internal/publish/wordpress"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Audio hosting strategies selectable via the audio_strategy key.
const (
	AudioStrategyWordPress = "wordpress"
	AudioStrategyLocalCopy = "copy"
)

// SermonPressConfig is the top-level user configuration, loaded from a
// JSON file with environment variable overrides.
type SermonPressConfig struct {
	SearchPath            string `json:"search_path" env:"SEARCH_PATH" validate:"required"`
	ArchivePath           string `json:"archive_path" env:"ARCHIVE_PATH" validate:"required"`
	BaptismArchiveDirName string `json:"baptism_archive_dir" env:"BAPTISM_ARCHIVE_DIR" env-default:"Taufen"`
	VideoExtension        string `json:"video_extension" env:"VIDEO_EXTENSION" env-default:"mp4"`
	AudioExtension        string `json:"audio_extension" env:"AUDIO_EXTENSION" env-default:"mp3"`
	TextExtension         string `json:"text_extension" env:"TEXT_EXTENSION" env-default:"txt"`
	Language              string `json:"language" env:"LANGUAGE" env-default:"de"`
	SermonStartUTC        int    `json:"sermon_start_utc" env:"SERMON_START_UTC" env-default:"10" validate:"min=0,max=23"`
	BackendTimeoutSeconds int    `json:"backend_timeout_seconds" env:"BACKEND_TIMEOUT_SECONDS" env-default:"600" validate:"min=0"`
	AudioStrategy         string `json:"audio_strategy" env:"AUDIO_STRATEGY" env-default:"wordpress" validate:"oneof=wordpress copy"`

	Converter convert.Config            `json:"converter"`
	PeerTube  peertube.Config           `json:"peertube"`
	WordPress wordpress.Config          `json:"wordpress"`
	AudioCopy wordpress.LocalCopyConfig `json:"audio_copy"`
	Post      post.Config               `json:"post"`
	Mail      mail.Config               `json:"mail"`
}

// LoadFromFile reads the configuration from the JSON file at the path
// provided (applying environment overrides and defaults) and validates
// it. The local-copy audio strategy needs its own two keys which are
// otherwise optional, so that pairing is checked here rather than via
// struct tags.
func (config *SermonPressConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	if config.AudioStrategy == AudioStrategyLocalCopy {
		if config.AudioCopy.CopyPath == "" || config.AudioCopy.BaseURL == "" {
			return fmt.Errorf("configuration is invalid: audio strategy '%s' requires audio_copy.copy_path and audio_copy.base_url", AudioStrategyLocalCopy)
		}
	}

	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything both pipelines read from the environment.
// The R2 credentials are only validated for the upload pipeline; the
// convert pipeline runs without them.
type Config struct {
	FfmpegPath  string `env:"FFMPEG_PATH" env-default:"ffmpeg"`
	FfprobePath string `env:"FFPROBE_PATH" env-default:"ffprobe"`

	InputPath     string `env:"VIDEO_LIST_PATH" env-default:"videoList.json"`
	ConvertedPath string `env:"CONVERTED_LIST_PATH" env-default:"videoList_converted.json"`
	UploadedPath  string `env:"UPLOADED_LIST_PATH" env-default:"videoList_r2.json"`

	VideoDir       string `env:"VIDEO_DOWNLOAD_DIR" env-default:"videos"`
	GifDir         string `env:"GIF_OUTPUT_DIR" env-default:"gifs"`
	UploadCacheDir string `env:"R2_DOWNLOAD_DIR" env-default:"r2_downloads"`

	AccountID       string `env:"R2_ACCOUNT_ID"`
	Bucket          string `env:"R2_BUCKET"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	KeyPrefix       string `env:"R2_KEY_PREFIX"`
	PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`

	DownloadDelayMS int `env:"R2_DOWNLOAD_DELAY_MS" env-default:"2000"`
}

// ConfigError reports a required environment variable that was not set.
type ConfigError struct {
	Variable string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required environment variable %s", e.Variable)
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// ValidateUpload checks the variables the upload pipeline cannot run without.
func (c Config) ValidateUpload() error {
	required := []struct {
		name  string
		value string
	}{
		{"R2_ACCOUNT_ID", c.AccountID},
		{"R2_BUCKET", c.Bucket},
		{"R2_ACCESS_KEY_ID", c.AccessKeyID},
		{"R2_SECRET_ACCESS_KEY", c.SecretAccessKey},
	}
	for _, r := range required {
		if r.value == "" {
			return &ConfigError{Variable: r.name}
		}
	}
	return nil
}

// Endpoint returns the path-style S3 endpoint for the configured R2 account.
func (c Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

func (c Config) DownloadDelay() time.Duration {
	return time.Duration(c.DownloadDelayMS) * time.Millisecond
}

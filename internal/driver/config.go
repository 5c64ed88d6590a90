package driver

import (
	"path/filepath"
	"time"
)

// Config carries the driver-scoped subset of the run configuration.
type Config struct {
	SearchPath            string
	ArchivePath           string
	BaptismArchiveDirName string
	VideoExtension        string
	AudioExtension        string
	TextExtension         string
	Language              string
	BackendTimeoutSeconds int
}

const (
	defaultBaptismArchiveDirName = "Taufen"
	defaultBackendTimeout        = 10 * time.Minute
)

// BackendTimeout returns the per-call deadline applied to every
// backend operation. The original workflow had no timeout at all; a
// hung backend hung the whole run, so a generous default is applied
// when the configuration does not specify one.
func (config *Config) BackendTimeout() time.Duration {
	if config.BackendTimeoutSeconds <= 0 {
		return defaultBackendTimeout
	}

	return time.Duration(config.BackendTimeoutSeconds) * time.Second
}

// BaptismArchivePath returns the archive subdirectory baptism videos
// are moved to after successful processing.
func (config *Config) BaptismArchivePath() string {
	name := config.BaptismArchiveDirName
	if name == "" {
		name = defaultBaptismArchiveDirName
	}

	return filepath.Join(config.ArchivePath, name)
}

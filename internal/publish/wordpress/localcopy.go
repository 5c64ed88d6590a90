package wordpress

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gemeindemedia/sermonpress/pkg/logger"
)

type (
	LocalCopyConfig struct {
		// CopyPath is a directory served by the blog's web server.
		CopyPath string `json:"copy_path" env:"AUDIO_COPY_PATH"`
		// BaseURL is the public URL under which CopyPath is reachable.
		BaseURL string `json:"base_url" env:"AUDIO_BASE_URL" validate:"omitempty,url"`
	}

	// LocalCopy is the filesystem-based audio hosting strategy: the
	// audio file is copied into a directory the web server already
	// serves, and the public URL is derived from the configured base.
	// It is interchangeable with the XML-RPC media upload of Client.
	LocalCopy struct {
		config LocalCopyConfig
	}
)

func NewLocalCopy(config LocalCopyConfig) *LocalCopy {
	return &LocalCopy{config: config}
}

// Publish copies the file into the configured directory and returns
// the URL it will be served under.
func (host *LocalCopy) Publish(_ context.Context, path string) (string, error) {
	filename := filepath.Base(path)
	if err := copyFile(path, filepath.Join(host.config.CopyPath, filename)); err != nil {
		return "", fmt.Errorf("cannot copy audio file into hosting directory: %w", err)
	}

	hostedURL, err := url.JoinPath(host.config.BaseURL, filename)
	if err != nil {
		return "", err
	}

	log.Emit(logger.SUCCESS, "Audio %s copied into hosting directory: %s\n", path, hostedURL)
	return hostedURL, nil
}

func copyFile(sourcePath string, destinationPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(destinationPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return err
	}

	return destination.Close()
}

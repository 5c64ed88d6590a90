package internal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gemeindemedia/sermonpress/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigJSON = `{
	"search_path": "/srv/recordings",
	"archive_path": "/srv/recordings/archive",
	"peertube": {
		"url": "https://tube.example.org",
		"client_id": "abc",
		"client_secret": "def",
		"username": "uploader",
		"password": "hunter2"
	},
	"wordpress": {
		"url": "https://blog.example.org",
		"user": "editor",
		"password": "hunter2"
	},
	"mail": {
		"host": "smtp.example.org",
		"user": "mailer",
		"password": "hunter2",
		"from": "mailer@example.org",
		"to": ["elders@example.org"]
	}
}`

func writeConfigFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func Test_LoadFromFile_AppliesDefaults(t *testing.T) {
	config := internal.SermonPressConfig{}
	err := config.LoadFromFile(writeConfigFile(t, validConfigJSON))

	require.NoError(t, err)
	assert.Equal(t, "mp4", config.VideoExtension)
	assert.Equal(t, "mp3", config.AudioExtension)
	assert.Equal(t, "txt", config.TextExtension)
	assert.Equal(t, "de", config.Language)
	assert.Equal(t, "Taufen", config.BaptismArchiveDirName)
	assert.Equal(t, 10, config.SermonStartUTC)
	assert.Equal(t, 600, config.BackendTimeoutSeconds)
	assert.Equal(t, internal.AudioStrategyWordPress, config.AudioStrategy)
	assert.Equal(t, 587, config.Mail.Port)
	assert.Equal(t, "640", config.Post.VideoWidth)
}

func Test_LoadFromFile_MissingFileFails(t *testing.T) {
	t.Parallel()

	config := internal.SermonPressConfig{}
	err := config.LoadFromFile("/nowhere/config.json")

	assert.Error(t, err)
}

func Test_LoadFromFile_MissingRequiredKeysFails(t *testing.T) {
	config := internal.SermonPressConfig{}
	err := config.LoadFromFile(writeConfigFile(t, `{"search_path": "/srv/recordings"}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is invalid")
}

func Test_LoadFromFile_CopyStrategyRequiresCopyKeys(t *testing.T) {
	withCopyStrategy := `{
		"search_path": "/srv/recordings",
		"archive_path": "/srv/recordings/archive",
		"audio_strategy": "copy",
		"peertube": {
			"url": "https://tube.example.org",
			"client_id": "abc",
			"client_secret": "def",
			"username": "uploader",
			"password": "hunter2"
		},
		"wordpress": {
			"url": "https://blog.example.org",
			"user": "editor",
			"password": "hunter2"
		},
		"mail": {
			"host": "smtp.example.org",
			"user": "mailer",
			"password": "hunter2",
			"from": "mailer@example.org",
			"to": ["elders@example.org"]
		}
	}`

	config := internal.SermonPressConfig{}
	err := config.LoadFromFile(writeConfigFile(t, withCopyStrategy))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio_copy")
}

func Test_LoadFromFile_UnknownAudioStrategyFails(t *testing.T) {
	config := internal.SermonPressConfig{}
	err := config.LoadFromFile(writeConfigFile(t, `{
		"search_path": "/srv/recordings",
		"archive_path": "/srv/recordings/archive",
		"audio_strategy": "ftp"
	}`))

	assert.Error(t, err)
}

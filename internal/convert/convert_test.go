package convert_test

import (
	"testing"

	"github.com/gemeindemedia/sermonpress/internal/convert"
	"github.com/stretchr/testify/assert"
)

func Test_AudioPath_Derivation(t *testing.T) {
	t.Parallel()
	converter := convert.New(convert.Config{}, "mp4", "mp3")

	tests := []struct {
		name     string
		video    string
		expected string
	}{
		{
			name:     "extension suffix is swapped in place",
			video:    "/srv/media/incoming/2023-05-07_Ostergottesdienst_Pastor-Mueller.mp4",
			expected: "/srv/media/incoming/2023-05-07_Ostergottesdienst_Pastor-Mueller.mp3",
		},
		{
			name:     "only the trailing extension is touched",
			video:    "/srv/media/clip.mp4.mp4",
			expected: "/srv/media/clip.mp4.mp3",
		},
		{
			name:     "relative paths stay relative",
			video:    "aufnahme.mp4",
			expected: "aufnahme.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, converter.AudioPath(tt.video))
		})
	}
}

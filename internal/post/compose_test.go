package post_test

import (
	"strings"
	"testing"
	"time"

	"github.com/gemeindemedia/sermonpress/internal/post"
	"github.com/gemeindemedia/sermonpress/internal/sermon"
	"github.com/stretchr/testify/assert"
)

var testMeta = sermon.Metadata{
	Date:     time.Date(2023, 5, 7, 0, 0, 0, 0, time.UTC),
	Title:    "Ostergottesdienst",
	Preacher: "Pastor-Mueller",
}

func newComposer() *post.Composer {
	return post.NewComposer(post.Config{
		VideoWidth:  "640",
		VideoHeight: "360",
		ButtonColor: "#0076b3",
		ButtonLabel: "Download als MP3",
		Category:    "Predigten",
	}, 10)
}

func Test_Compose_BothURLsPresent(t *testing.T) {
	t.Parallel()
	draft := newComposer().Compose(testMeta, "https://video.example/videos/watch/abc", "https://blog.example/wp-content/uploads/predigt.mp3")

	assert.Equal(t, "Ostergottesdienst // Pastor-Mueller", draft.Title)
	assert.Equal(t, "Predigten", draft.Category)
	assert.Equal(t, time.Date(2023, 5, 7, 10, 0, 0, 0, time.UTC), draft.PublishedAt)

	assert.Contains(t, draft.Body, `[iframe src="https://video.example/videos/watch/abc" width="640" height="360"`)
	assert.Contains(t, draft.Body, `<audio controls src="https://blog.example/wp-content/uploads/predigt.mp3">`)
	assert.Contains(t, draft.Body, `title="Download als MP3"`)
	assert.Contains(t, draft.Body, `background-color:#0076b3`)
	assert.NotContains(t, draft.Body, "Es tut uns Leid")
}

func Test_Compose_VideoMissing(t *testing.T) {
	t.Parallel()
	draft := newComposer().Compose(testMeta, "", "https://blog.example/predigt.mp3")

	assert.Contains(t, draft.Body, "leider kein Video")
	assert.NotContains(t, draft.Body, "keine Tonaufnahme")
	assert.Contains(t, draft.Body, `<audio controls src="https://blog.example/predigt.mp3">`)
	assert.Contains(t, draft.Body, "Download als MP3")
}

func Test_Compose_AudioMissing(t *testing.T) {
	t.Parallel()
	draft := newComposer().Compose(testMeta, "https://video.example/v", "")

	assert.Contains(t, draft.Body, `[iframe src="https://video.example/v"`)
	assert.Contains(t, draft.Body, "leider keine Tonaufnahme")
	assert.NotContains(t, draft.Body, "Download als MP3", "download link must be omitted without audio")
}

func Test_Compose_BothMissing(t *testing.T) {
	t.Parallel()
	draft := newComposer().Compose(testMeta, "", "")

	assert.Contains(t, draft.Body, "kein Video und keine Tonaufnahme")
	assert.NotContains(t, draft.Body, "<audio")
	assert.NotContains(t, draft.Body, "[iframe")
	assert.NotContains(t, draft.Body, "Download als MP3")

	// The combined placeholder replaces BOTH fragments; it must appear once.
	assert.Equal(t, 1, strings.Count(draft.Body, "Es tut uns Leid"))
}

func Test_BaptismNotification(t *testing.T) {
	t.Parallel()
	meta := sermon.BaptismMetadata{Date: time.Date(2023, 5, 7, 0, 0, 0, 0, time.UTC)}
	subject, body := post.BaptismNotification(meta, "https://video.example/videos/watch/abc")

	assert.Equal(t, "Taufvideo vom 07.05.2023", subject)
	assert.Contains(t, body, `<a href="https://video.example/videos/watch/abc">`)
	assert.Contains(t, body, "<strong>taufe07052023</strong>")
}

// Package post composes the HTML bodies published to the CMS and sent
// by mail. The fragments mirror the markup the congregation's blog
// theme expects; the German wording of the placeholders is part of the
// published contract and must not be reworded casually.
package post

import (
	"fmt"
	"time"

	"github.com/gemeindemedia/sermonpress/internal/publish"
	"github.com/gemeindemedia/sermonpress/internal/sermon"
)

const (
	videoFragmentTemplate    = `<div>[iframe src="%s" width="%s" height="%s" frameborder="0" allowfullscreen="allowfullscreen"]</div>`
	audioFragmentTemplate    = `<div><h3>Audiopredigt:</h3><audio controls src="%s"></audio></div>`
	downloadFragmentTemplate = `<a style="text-decoration:none; background-color:%s; border-radius:3px; padding:5px; color:#ffffff; border-color:black; border:1px;" href="%s" title="%s" target="_blank">%s</a>`

	videoUnavailableFragment = `<div>Es tut uns Leid, aus technischen Gr&uuml;nden gibt es zu diesem Gottesdienst leider kein Video</div>`
	audioUnavailableFragment = `<div>Es tut uns Leid, aus technischen Gr&uuml;nden gibt es zu diesem Gottesdienst leider keine Tonaufnahme</div>`
	bothUnavailableFragment  = `<div>Es tut uns Leid, aus technischen Gr&uuml;nden gibt es zu diesem Gottesdienst leider kein Video und keine Tonaufnahme</div>`

	baptismSubjectTemplate = "Taufvideo vom %s"
	baptismBodyTemplate    = `<p>Liebe Geschwister,</p>` +
		`<p>das Video der Taufe vom %s ist nun verf&uuml;gbar:</p>` +
		`<p><a href="%s">%s</a></p>` +
		`<p>Das Passwort zum Ansehen lautet: <strong>%s</strong></p>`
)

type (
	// Config carries the presentation knobs of the blog theme.
	Config struct {
		VideoWidth  string `json:"video_width" env:"POST_VIDEO_WIDTH" env-default:"640"`
		VideoHeight string `json:"video_height" env:"POST_VIDEO_HEIGHT" env-default:"360"`
		ButtonColor string `json:"button_color" env:"POST_BUTTON_COLOR" env-default:"#0076b3"`
		ButtonLabel string `json:"button_label" env:"POST_BUTTON_LABEL" env-default:"Download als MP3"`
		Category    string `json:"category" env:"POST_CATEGORY"`
	}

	// Composer assembles publish-ready CMS post drafts from sermon
	// metadata and the (optionally absent) backend URLs.
	Composer struct {
		config          Config
		sermonStartHour int
	}
)

func NewComposer(config Config, sermonStartHourUTC int) *Composer {
	return &Composer{
		config:          config,
		sermonStartHour: sermonStartHourUTC,
	}
}

// Compose builds the post draft for a sermon. Either URL may be empty;
// the corresponding fragment is then replaced by an apology
// placeholder. When both are missing, a single combined placeholder is
// used. The download link accompanies the audio player and is omitted
// whenever the audio is unavailable.
func (composer *Composer) Compose(meta sermon.Metadata, videoURL string, audioURL string) publish.PostDraft {
	var videoHTML, audioHTML, downloadHTML string

	if videoURL != "" {
		videoHTML = fmt.Sprintf(videoFragmentTemplate, videoURL, composer.config.VideoWidth, composer.config.VideoHeight)
	} else {
		videoHTML = videoUnavailableFragment
	}

	if audioURL != "" {
		audioHTML = fmt.Sprintf(audioFragmentTemplate, audioURL)
		downloadHTML = fmt.Sprintf(downloadFragmentTemplate, composer.config.ButtonColor, audioURL, composer.config.ButtonLabel, composer.config.ButtonLabel)
	} else {
		audioHTML = audioUnavailableFragment
	}

	if videoURL == "" && audioURL == "" {
		videoHTML = bothUnavailableFragment
		audioHTML = ""
	}

	date := meta.Date
	publishedAt := time.Date(date.Year(), date.Month(), date.Day(), composer.sermonStartHour, 0, 0, 0, time.UTC)

	return publish.PostDraft{
		Title:       meta.PostTitle(),
		Body:        videoHTML + audioHTML + downloadHTML,
		PublishedAt: publishedAt,
		Category:    composer.config.Category,
	}
}

// BaptismNotification builds the subject and HTML body of the mail
// announcing a freshly uploaded baptism video.
func BaptismNotification(meta sermon.BaptismMetadata, watchURL string) (subject string, htmlBody string) {
	date := meta.Date.Format("02.01.2006")
	subject = fmt.Sprintf(baptismSubjectTemplate, date)
	htmlBody = fmt.Sprintf(baptismBodyTemplate, date, watchURL, watchURL, meta.Password())
	return subject, htmlBody
}

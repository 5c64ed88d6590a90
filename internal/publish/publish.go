// Package publish holds the types shared between the pipeline driver
// and the concrete publishing backend adapters (video host, audio host,
// CMS, mail). The capability interfaces themselves are declared by the
// driver, which is the only consumer.
package publish

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuth indicates that a backend rejected the configured credentials.
// Auth failures are fatal for the remainder of the run; there is no
// point attempting further calls with the same credentials.
var ErrAuth = errors.New("backend rejected the configured credentials")

type Privacy int

const (
	PrivacyPublic Privacy = iota
	PrivacyPasswordProtected
)

func (p Privacy) String() string {
	switch p {
	case PrivacyPublic:
		return "PUBLIC"
	case PrivacyPasswordProtected:
		return "PASSWORD_PROTECTED"
	default:
		return fmt.Sprintf("UNKNOWN[%d]", p)
	}
}

// UploadRequest describes a single video upload to the video host.
// Password is only consulted when Privacy is PrivacyPasswordProtected.
type UploadRequest struct {
	Path        string
	DisplayName string
	Language    string
	Privacy     Privacy
	Password    string
}

// PostDraft is a fully-composed CMS post, ready to be created as-is.
type PostDraft struct {
	Title       string
	Body        string
	PublishedAt time.Time
	Category    string
}

package driver

import "fmt"

type (
	TroubleType int

	// Trouble classifies a per-file failure. Troubles abort the
	// pipeline of the file they occur on; the run carries on with the
	// next file. The embedded error is the underlying cause.
	Trouble struct {
		error
		tType TroubleType
	}
)

const (
	MetadataFailure TroubleType = iota
	ConversionFailure
	VideoUploadFailure
	AudioPublishFailure
	PostFailure
	NotifyFailure
	ArchiveFailure
	GenericFailure
)

func newTrouble(tType TroubleType, err error) Trouble {
	return Trouble{error: err, tType: tType}
}

func (t Trouble) Type() TroubleType { return t.tType }

func (t Trouble) Unwrap() error { return t.error }

func (t TroubleType) String() string {
	switch t {
	case MetadataFailure:
		return fmt.Sprintf("METADATA_FAILURE[%d]", t)
	case ConversionFailure:
		return fmt.Sprintf("CONVERSION_FAILURE[%d]", t)
	case VideoUploadFailure:
		return fmt.Sprintf("VIDEO_UPLOAD_FAILURE[%d]", t)
	case AudioPublishFailure:
		return fmt.Sprintf("AUDIO_PUBLISH_FAILURE[%d]", t)
	case PostFailure:
		return fmt.Sprintf("POST_FAILURE[%d]", t)
	case NotifyFailure:
		return fmt.Sprintf("NOTIFY_FAILURE[%d]", t)
	case ArchiveFailure:
		return fmt.Sprintf("ARCHIVE_FAILURE[%d]", t)
	default:
		return fmt.Sprintf("GENERIC_FAILURE[%d]", t)
	}
}

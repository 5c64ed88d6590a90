package driver

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	ItemState int
	FileClass int

	// Item tracks one discovered file through the pipeline. Items are
	// processed strictly one at a time; the state exists for logging,
	// the run summary and the tests, not for coordination.
	Item struct {
		ID      uuid.UUID
		Path    string
		Class   FileClass
		State   ItemState
		Trouble *Trouble
	}
)

const (
	Discovered ItemState = iota
	Classified
	Converted
	Published
	Archived
	Rejected
	Troubled
)

const (
	VideoFile FileClass = iota
	AudioFile
	TextFile
)

func (item *Item) String() string {
	return fmt.Sprintf("Item{ID=%s class=%s state=%s}", item.ID, item.Class, item.State)
}

func (s ItemState) String() string {
	switch s {
	case Discovered:
		return fmt.Sprintf("DISCOVERED[%d]", s)
	case Classified:
		return fmt.Sprintf("CLASSIFIED[%d]", s)
	case Converted:
		return fmt.Sprintf("CONVERTED[%d]", s)
	case Published:
		return fmt.Sprintf("PUBLISHED[%d]", s)
	case Archived:
		return fmt.Sprintf("ARCHIVED[%d]", s)
	case Rejected:
		return fmt.Sprintf("REJECTED[%d]", s)
	case Troubled:
		return fmt.Sprintf("TROUBLED[%d]", s)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", s)
	}
}

func (c FileClass) String() string {
	switch c {
	case VideoFile:
		return fmt.Sprintf("VIDEO[%d]", c)
	case AudioFile:
		return fmt.Sprintf("AUDIO[%d]", c)
	case TextFile:
		return fmt.Sprintf("TEXT[%d]", c)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", c)
	}
}

// Package sermon is responsible for deriving structured metadata from
// the filenames the media team drops into the watched directory. The
// naming contract is 'YYYY-MM-DD_<title>_<preacher>.<ext>' for sermon
// recordings, and 'YYYY-MM-DD_Taufe.<ext>' for baptism recordings.
package sermon

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDate indicates a filename which matched one of the known
// naming patterns, but whose date components do not form a real
// calendar date (e.g. day 39). This is surfaced as a hard error, NOT
// a 'no match', as it points at a typo a human needs to correct.
var ErrInvalidDate = errors.New("filename date is not a valid calendar date")

// The date portion of these patterns deliberately accepts some
// impossible dates (e.g. month 19); calendar validation happens when
// the date is constructed so that a near-miss filename is reported as
// an error rather than silently ignored.
var (
	sermonMatcher  = regexp.MustCompile(`^(\d{4})-([01]\d)-([0-3]\d)_(.+)_([^_.]+)\.[^.]+$`)
	baptismMatcher = regexp.MustCompile(`^(\d{4})-([01]\d)-([0-3]\d)_Taufe\.[^.]+$`)
)

type (
	// Metadata describes a single sermon recording. Immutable once
	// extracted; scoped to the processing of one file.
	Metadata struct {
		Date     time.Time
		Title    string
		Preacher string
	}

	// BaptismMetadata describes a baptism recording, which carries
	// no title or preacher information.
	BaptismMetadata struct {
		Date time.Time
	}
)

// ExtractSermon attempts to extract sermon metadata from the base name
// of the path provided. The boolean return is false if the filename
// does not follow the sermon naming pattern (which is not an error).
// A filename which matches the pattern but specifies an impossible
// date returns an ErrInvalidDate-wrapped error.
//
// The title is greedy: for 'YYYY-MM-DD_a_b_c.mp4' the title is 'a_b'
// and the preacher is 'c'.
func ExtractSermon(path string) (Metadata, bool, error) {
	groups := sermonMatcher.FindStringSubmatch(filepath.Base(path))
	if groups == nil {
		return Metadata{}, false, nil
	}

	date, err := calendarDate(groups[1], groups[2], groups[3])
	if err != nil {
		return Metadata{}, false, err
	}

	return Metadata{Date: date, Title: groups[4], Preacher: groups[5]}, true, nil
}

// ExtractBaptism attempts to extract baptism metadata from the base
// name of the path provided. Same contract as ExtractSermon.
func ExtractBaptism(path string) (BaptismMetadata, bool, error) {
	groups := baptismMatcher.FindStringSubmatch(filepath.Base(path))
	if groups == nil {
		return BaptismMetadata{}, false, nil
	}

	date, err := calendarDate(groups[1], groups[2], groups[3])
	if err != nil {
		return BaptismMetadata{}, false, err
	}

	return BaptismMetadata{Date: date}, true, nil
}

// PostTitle returns the title used for the CMS post.
func (meta Metadata) PostTitle() string {
	return fmt.Sprintf("%s // %s", meta.Title, meta.Preacher)
}

// DisplayName returns the display name used for the hosted video.
func (meta Metadata) DisplayName() string {
	return fmt.Sprintf("%s // %s // Gottesdienst am %s", meta.Title, meta.Preacher, meta.Date.Format("02.01.2006"))
}

// Password returns the deterministic viewing password for a baptism
// video: a fixed prefix followed by the zero-padded date as DDMMYYYY.
// A baptism on 2023-05-07 yields 'taufe07052023'.
func (meta BaptismMetadata) Password() string {
	return "taufe" + meta.Date.Format("02012006")
}

// DisplayName returns the display name used for the hosted video.
func (meta BaptismMetadata) DisplayName() string {
	return "Taufe am " + meta.Date.Format("02.01.2006")
}

// calendarDate constructs a UTC date from the already-regex-validated
// components, rejecting values that time.Date would silently normalise
// (e.g. the 39th of May becoming the 8th of June).
func calendarDate(year string, month string, day string) (time.Time, error) {
	y := mustAtoi(year)
	m := mustAtoi(month)
	d := mustAtoi(day)

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Year() != y || date.Month() != time.Month(m) || date.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %s-%s-%s", ErrInvalidDate, year, month, day)
	}

	return date, nil
}

// mustAtoi converts a digits-only regex capture group; the pattern
// guarantees the input is numeric.
func mustAtoi(input string) int {
	v, err := strconv.Atoi(input)
	if err != nil {
		panic(fmt.Sprintf("non-numeric capture group %q escaped the filename pattern", input))
	}

	return v
}

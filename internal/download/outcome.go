package download

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
)

type Status uint8

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Outcome is the result of handling one asset.
type Outcome struct {
	Tag    string
	Asset  string
	File   string // canonical filename, empty when skipped before classification
	Status Status
	Reason string // why the asset was skipped
	Size   int64
	Err    error
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusDownloaded:
		return fmt.Sprintf("%s -> %s (%s)", o.Asset, o.File, humanize.Bytes(uint64(o.Size)))
	case StatusSkipped:
		return fmt.Sprintf("%s skipped: %s", o.Asset, o.Reason)
	default:
		return fmt.Sprintf("%s failed: %v", o.Asset, o.Err)
	}
}

type Summary struct {
	Outcomes []Outcome
	// NotesFiles lists written release notes
	NotesFiles []string
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

func (s *Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Bytes is the total size of downloaded files.
func (s *Summary) Bytes() int64 {
	var total int64
	for _, o := range s.Outcomes {
		if o.Status == StatusDownloaded {
			total += o.Size
		}
	}
	return total
}

// Err joins the errors of all failed assets. It is nil when nothing failed.
func (s *Summary) Err() error {
	var result *multierror.Error
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			result = multierror.Append(result, fmt.Errorf("%s (%s): %w", o.Asset, o.Tag, o.Err))
		}
	}
	return result.ErrorOrNil()
}

func (s *Summary) String() string {
	return fmt.Sprintf("Downloaded %d files (%s), %d skipped, %d failed",
		s.Count(StatusDownloaded), humanize.Bytes(uint64(s.Bytes())),
		s.Count(StatusSkipped), s.Count(StatusFailed))
}

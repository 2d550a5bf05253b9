package policy

import (
	"errors"

	"github.com/wrenbin/wrenbin/models"
)

// AccessMode identifies how a paste is being read.
type AccessMode int

const (
	// ModeView is the normal read path. Burn-after-reading pastes are
	// consumed by the store on this path.
	ModeView AccessMode = iota
	// ModeRaw serves the plain content without touching the paste.
	ModeRaw
	// ModeDownload serves the content as a file attachment without
	// touching the paste.
	ModeDownload
)

// String returns the mode name for logging and metrics labels.
func (m AccessMode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeRaw:
		return "raw"
	case ModeDownload:
		return "download"
	default:
		return "unknown"
	}
}

// ErrBurnContentForbidden is returned when a burn-after-reading paste is
// requested through a non-destructive mode. Raw and download access would
// bypass the destroy-on-read guarantee, so they are refused outright.
var ErrBurnContentForbidden = errors.New("burn-after-reading content cannot be accessed in this mode")

// Allow decides whether the paste may be served in the given mode. The
// store has already enforced expiry and burn semantics for the view path,
// so view is always permitted; raw and download refuse burn pastes.
func Allow(mode AccessMode, paste *models.Paste) error {
	if mode == ModeView {
		return nil
	}
	if paste.BurnAfterReading {
		return ErrBurnContentForbidden
	}
	return nil
}

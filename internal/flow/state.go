package flow

import (
	"errors"
	"fmt"
	"strings"
)

// State is a step of the upload-and-match flow.
type State string

const (
	StateIdle      State = "idle"
	StateReady     State = "ready"
	StateUploading State = "uploading"
	StateMatching  State = "matching"
	StateDone      State = "done"
	StateError     State = "error"
)

// Mode selects where the document is stored before matching.
type Mode string

const (
	// ModeStorage uploads straight to the object storage bucket.
	ModeStorage Mode = "storage"
	// ModeBackend uploads through the cvscan api.
	ModeBackend Mode = "backend"
)

var (
	ErrBusy            = errors.New("an upload is already in progress")
	ErrNoDocument      = errors.New("no document selected")
	ErrNoJobID         = errors.New("job id is required")
	ErrNoReference     = errors.New("upload response has no file reference")
	ErrUnsupportedMode = errors.New("unsupported storage mode")
)

// Modes lists the known storage modes.
func Modes() []Mode {
	return []Mode{ModeStorage, ModeBackend}
}

// ParseMode accepts the mode names and the labels used by the web
// client ("supabase", "render").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "storage", "supabase", "direct":
		return ModeStorage, nil
	case "backend", "render", "api":
		return ModeBackend, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
	}
}

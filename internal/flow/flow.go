package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spigell/cvscan/internal/api"
	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/logger"

	"go.uber.org/zap"
)

type statMatcher interface {
	MatchStat(ctx context.Context, req api.MatchRequest) (*api.MatchStatResult, error)
}

// Config wires a Flow.
type Config struct {
	JobID     string
	Uploaders map[Mode]Uploader
	Matcher   statMatcher
	Logger    *zap.Logger
	// OnTransition, when set, is called after every state change outside
	// of the flow lock.
	OnTransition func(State)
}

// Flow drives one upload-and-match sequence at a time:
// idle -> ready -> uploading -> matching -> done, or error.
type Flow struct {
	mu       sync.Mutex
	inFlight bool

	state    State
	mode     Mode
	doc      *document.Document
	stored   *StoredFile
	match    *api.MatchStatResult
	failedAt State
	errMsg   string

	jobID        string
	uploaders    map[Mode]Uploader
	matcher      statMatcher
	logger       *zap.Logger
	onTransition func(State)
}

func New(cfg Config) (*Flow, error) {
	jobID := strings.TrimSpace(cfg.JobID)
	if jobID == "" {
		return nil, ErrNoJobID
	}

	if cfg.Matcher == nil {
		return nil, errors.New("matcher is required")
	}

	if len(cfg.Uploaders) == 0 {
		return nil, errors.New("at least one uploader is required")
	}

	return &Flow{
		state:        StateIdle,
		mode:         ModeStorage,
		jobID:        jobID,
		uploaders:    cfg.Uploaders,
		matcher:      cfg.Matcher,
		logger:       logger.OrNop(cfg.Logger),
		onTransition: cfg.OnTransition,
	}, nil
}

// Select records the storage mode and the document. It has no side effects
// beyond local state and is refused while a submission is in flight.
func (f *Flow) Select(mode Mode, doc *document.Document) error {
	if _, ok := f.uploaders[mode]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrBusy
	}

	f.mode = mode
	f.doc = doc

	next := StateIdle
	if doc != nil {
		next = StateReady
	}
	f.state = next
	f.mu.Unlock()

	f.notify(next)
	return nil
}

// Submit stores the selected document and requests its statistical match.
// Only one submission runs at a time; a concurrent call gets ErrBusy and
// triggers no request. A failure moves the flow to the error state with the
// failure message and nothing is retried.
func (f *Flow) Submit(ctx context.Context) (*View, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrBusy
	}

	if f.doc == nil {
		f.mu.Unlock()
		return nil, ErrNoDocument
	}

	uploader := f.uploaders[f.mode]
	doc, mode := f.doc, f.mode

	f.inFlight = true
	f.state = StateUploading
	f.stored = nil
	f.match = nil
	f.failedAt = ""
	f.errMsg = ""
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	log := logger.WithBackend(f.logger, string(mode)).With(
		zap.String("document", doc.Name),
		zap.String("job_id", f.jobID),
	)

	f.notify(StateUploading)
	log.Debug("uploading document", zap.Int("size", doc.Size()))

	stored, err := uploader.Upload(ctx, doc)
	if err != nil {
		return f.fail(StateUploading, fmt.Errorf("upload: %w", err))
	}

	log.Info("document stored",
		zap.String("reference", stored.Reference),
		zap.String("public_url", stored.PublicURL),
	)

	f.mu.Lock()
	f.stored = stored
	f.state = StateMatching
	f.mu.Unlock()
	f.notify(StateMatching)

	result, err := f.matcher.MatchStat(ctx, api.MatchRequest{
		CVFilename: stored.Reference,
		JobID:      f.jobID,
	})
	if err != nil {
		return f.fail(StateMatching, fmt.Errorf("match: %w", err))
	}

	log.Info("match computed",
		zap.Float64("score", result.Score),
		zap.Int("shared_terms", result.Details.NCommon),
	)

	f.mu.Lock()
	f.match = result
	f.state = StateDone
	f.mu.Unlock()
	f.notify(StateDone)

	view := f.View()
	return &view, nil
}

func (f *Flow) fail(at State, err error) (*View, error) {
	f.mu.Lock()
	f.state = StateError
	f.failedAt = at
	f.errMsg = err.Error()
	f.mu.Unlock()

	f.logger.Debug("flow failed", zap.String("failed_at", string(at)), zap.Error(err))
	f.notify(StateError)

	view := f.View()
	return &view, err
}

func (f *Flow) notify(s State) {
	if f.onTransition != nil {
		f.onTransition(s)
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns a snapshot for display. The match is only present in the done
// state.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		State:    f.state,
		Mode:     f.mode,
		JobID:    f.jobID,
		Upload:   f.stored,
		FailedAt: f.failedAt,
		Error:    f.errMsg,
	}

	if f.doc != nil {
		v.Document = f.doc.Name
	}

	if f.state == StateDone {
		v.Match = NewMatchView(f.match)
	}

	return v
}

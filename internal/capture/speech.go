package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/cvscan/internal/document"
)

// SpeechLang is the only recognition language used by the capture flow.
const SpeechLang = "en-US"

// ErrSpeechUnsupported is returned when no speech engine is available.
var ErrSpeechUnsupported = errors.New("speech recognition is not supported")

// RecognitionOptions mirrors the knobs of a recognition session.
type RecognitionOptions struct {
	Lang           string
	Continuous     bool
	InterimResults bool
}

// Alternative is one hypothesis for a recognized utterance.
type Alternative struct {
	Transcript string
	Confidence float64
}

// SpeechResult holds the alternatives for one utterance, best first.
type SpeechResult struct {
	Alternatives []Alternative
	Final        bool
}

// Transcriber is a speech engine.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *document.Document, opts RecognitionOptions) ([]SpeechResult, error)
}

// Speech is the speech capability, resolved once at startup as either
// Available or Unavailable.
type Speech interface {
	Supported() bool
	Listen(ctx context.Context, audio *document.Document) (string, error)
}

type availableSpeech struct {
	engine Transcriber
}

// Available wraps a working speech engine.
func Available(engine Transcriber) Speech {
	return &availableSpeech{engine: engine}
}

func (s *availableSpeech) Supported() bool { return true }

// Listen runs a single non-continuous, final-only session and joins the top
// alternative of every result with spaces.
func (s *availableSpeech) Listen(ctx context.Context, audio *document.Document) (string, error) {
	if audio == nil {
		return "", errors.New("audio recording is required")
	}

	results, err := s.engine.Transcribe(ctx, audio, RecognitionOptions{
		Lang:           SpeechLang,
		Continuous:     false,
		InterimResults: false,
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition: %w", err)
	}

	transcripts := make([]string, 0, len(results))
	for _, r := range results {
		if len(r.Alternatives) == 0 {
			continue
		}
		transcripts = append(transcripts, r.Alternatives[0].Transcript)
	}

	return strings.Join(transcripts, " "), nil
}

type unavailableSpeech struct {
	reason string
}

// Unavailable is the capability used when no engine can be configured.
func Unavailable(reason string) Speech {
	return &unavailableSpeech{reason: strings.TrimSpace(reason)}
}

func (s *unavailableSpeech) Supported() bool { return false }

func (s *unavailableSpeech) Listen(context.Context, *document.Document) (string, error) {
	if s.reason == "" {
		return "", ErrSpeechUnsupported
	}
	return "", fmt.Errorf("%w: %s", ErrSpeechUnsupported, s.reason)
}

// ResolveSpeech picks the capability variant for engine.
func ResolveSpeech(engine Transcriber, reason string) Speech {
	if engine == nil {
		return Unavailable(reason)
	}
	return Available(engine)
}

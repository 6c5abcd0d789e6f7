package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/cvscan/internal/document"
)

type stubTranscriber struct {
	results []SpeechResult
	err     error
	opts    RecognitionOptions
	calls   int
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ *document.Document, opts RecognitionOptions) ([]SpeechResult, error) {
	s.calls++
	s.opts = opts
	return s.results, s.err
}

func audioDoc(t *testing.T) *document.Document {
	t.Helper()
	return &document.Document{Name: "note.wav", ContentType: "audio/wav", Data: []byte("RIFF")}
}

func TestAvailableSpeechJoinsTopAlternatives(t *testing.T) {
	engine := &stubTranscriber{results: []SpeechResult{
		{Alternatives: []Alternative{{Transcript: "I have five years"}, {Transcript: "I half five ears"}}, Final: true},
		{},
		{Alternatives: []Alternative{{Transcript: "of Go experience"}}, Final: true},
	}}

	speech := ResolveSpeech(engine, "")
	if !speech.Supported() {
		t.Fatal("expected speech to be supported")
	}

	text, err := speech.Listen(context.Background(), audioDoc(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "I have five years of Go experience" {
		t.Fatalf("unexpected transcript: %q", text)
	}

	want := RecognitionOptions{Lang: "en-US", Continuous: false, InterimResults: false}
	if engine.opts != want {
		t.Fatalf("unexpected options: %+v", engine.opts)
	}
}

func TestAvailableSpeechErrors(t *testing.T) {
	engine := &stubTranscriber{err: errors.New("quota")}
	speech := Available(engine)

	if _, err := speech.Listen(context.Background(), audioDoc(t)); err == nil {
		t.Fatal("expected engine error")
	}

	if _, err := speech.Listen(context.Background(), nil); err == nil {
		t.Fatal("expected error without audio")
	}

	if engine.calls != 1 {
		t.Fatalf("expected a single engine call, got %d", engine.calls)
	}
}

func TestUnavailableSpeech(t *testing.T) {
	speech := ResolveSpeech(nil, "gemini api key is not configured")
	if speech.Supported() {
		t.Fatal("expected speech to be unsupported")
	}

	_, err := speech.Listen(context.Background(), audioDoc(t))
	if !errors.Is(err, ErrSpeechUnsupported) {
		t.Fatalf("expected ErrSpeechUnsupported, got %v", err)
	}
	if err.Error() != "speech recognition is not supported: gemini api key is not configured" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if _, err := Unavailable("").Listen(context.Background(), nil); err != ErrSpeechUnsupported {
		t.Fatalf("expected bare sentinel, got %v", err)
	}
}

package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/logger"

	"go.uber.org/zap"
)

// OCRLang is the recognition language passed to the image engine.
const OCRLang = "eng"

const promptSeparator = "\n\n"

var (
	ErrBusy           = errors.New("capture is busy")
	ErrOCRUnavailable = errors.New("ocr engine is not configured")
)

// ImageRecognizer extracts text from an image.
type ImageRecognizer interface {
	RecognizeImage(ctx context.Context, image *document.Document, lang string) (string, error)
}

type chatClient interface {
	Chat(ctx context.Context, prompt string) (map[string]any, error)
}

// Session holds the OCR and speech buffers and sends their combination to the
// chat endpoint.
type Session struct {
	mu         sync.Mutex
	busy       bool
	ocrText    string
	speechText string

	ocr    ImageRecognizer
	speech Speech
	chat   chatClient
	logger *zap.Logger
}

func NewSession(ocr ImageRecognizer, speech Speech, chat chatClient, l *zap.Logger) *Session {
	if speech == nil {
		speech = Unavailable("")
	}

	return &Session{
		ocr:    ocr,
		speech: speech,
		chat:   chat,
		logger: logger.OrNop(l),
	}
}

// SpeechSupported reports the resolved speech capability.
func (s *Session) SpeechSupported() bool {
	return s.speech.Supported()
}

// OCR recognizes the image text and stores it in the OCR buffer.
func (s *Session) OCR(ctx context.Context, image *document.Document) (string, error) {
	if s.ocr == nil {
		return "", ErrOCRUnavailable
	}

	if image == nil {
		return "", errors.New("image is required")
	}

	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	s.logger.Debug("running ocr", zap.String("image", image.Name), zap.String("content_type", image.MediaType()))

	text, err := s.ocr.RecognizeImage(ctx, image, OCRLang)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}

	s.SetOCRText(text)
	return text, nil
}

// Listen records the transcript of audio into the speech buffer. It fails
// with ErrSpeechUnsupported, leaving the buffer untouched, when no engine is
// available.
func (s *Session) Listen(ctx context.Context, audio *document.Document) (string, error) {
	text, err := s.speech.Listen(ctx, audio)
	if err != nil {
		return "", err
	}

	s.SetSpeechText(text)
	return text, nil
}

func (s *Session) SetOCRText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ocrText = text
}

func (s *Session) SetSpeechText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speechText = text
}

func (s *Session) OCRText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ocrText
}

func (s *Session) SpeechText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speechText
}

// Combine joins the non-empty buffers, OCR first, with a blank line.
func (s *Session) Combine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Combine(s.ocrText, s.speechText)
}

// Combine joins the non-empty parts with a blank line.
func Combine(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, promptSeparator)
}

// Send posts the combined prompt. When the prompt is blank nothing is sent
// and sent is false.
func (s *Session) Send(ctx context.Context) (resp map[string]any, sent bool, err error) {
	prompt := s.Combine()
	if strings.TrimSpace(prompt) == "" {
		s.logger.Debug("skipping empty prompt")
		return nil, false, nil
	}

	if s.chat == nil {
		return nil, false, errors.New("chat client is not configured")
	}

	if err := s.acquire(); err != nil {
		return nil, false, err
	}
	defer s.release()

	resp, err = s.chat.Chat(ctx, prompt)
	if err != nil {
		return nil, true, err
	}

	return resp, true, nil
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

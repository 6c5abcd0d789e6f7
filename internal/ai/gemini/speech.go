package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/cvscan/internal/capture"
	"github.com/spigell/cvscan/internal/document"
)

//go:embed prompts/transcribe.md
var transcribePrompt string

// Transcribe turns a recording into speech results. A non-continuous session
// yields at most one result holding the whole transcript; a continuous one
// yields one result per utterance line. Gemini only returns final results.
func (g *Generator) Transcribe(ctx context.Context, audio *document.Document, opts capture.RecognitionOptions) ([]capture.SpeechResult, error) {
	if audio == nil || len(audio.Data) == 0 {
		return nil, errors.New("audio recording is required")
	}

	if !audio.IsAudio() {
		return nil, fmt.Errorf("%s is not an audio recording (%s)", audio.Name, audio.MediaType())
	}

	instruction := strings.ReplaceAll(transcribePrompt, "{{LANGUAGE}}", languageName(opts.Lang))

	text, err := g.generate(ctx, "transcribe", mediaContents(audio.Data, audio.MediaType(), instruction), nil)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", audio.Name, err)
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" && line != noSpeechMarker {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}

	if !opts.Continuous {
		lines = []string{strings.Join(lines, " ")}
	}

	results := make([]capture.SpeechResult, 0, len(lines))
	for _, line := range lines {
		results = append(results, capture.SpeechResult{
			Alternatives: []capture.Alternative{{Transcript: line}},
			Final:        true,
		})
	}

	return results, nil
}

const noSpeechMarker = "[no speech]"

var (
	_ capture.ImageRecognizer = (*Generator)(nil)
	_ capture.Transcriber     = (*Generator)(nil)
)

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/cvscan/internal/document"
)

//go:embed prompts/ocr.md
var ocrPrompt string

// RecognizeImage returns the text found in image. An image without text
// yields an empty string.
func (g *Generator) RecognizeImage(ctx context.Context, image *document.Document, lang string) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", errors.New("image is required")
	}

	if !image.IsImage() {
		return "", fmt.Errorf("%s is not an image (%s)", image.Name, image.MediaType())
	}

	instruction := strings.ReplaceAll(ocrPrompt, "{{LANGUAGE}}", languageName(lang))

	text, err := g.generate(ctx, "ocr", mediaContents(image.Data, image.MediaType(), instruction), nil)
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", image.Name, err)
	}

	if text == noTextMarker {
		return "", nil
	}

	return text, nil
}

const noTextMarker = "[no text]"

package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Document is an in-memory handle to a user selected file.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// New wraps raw bytes into a document, sniffing the content type.
func New(name string, data []byte) (*Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("document name is required")
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("document %q is empty", name)
	}

	return &Document{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// Load reads the file at path. The document name is the base name of the path.
func Load(path string) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	return New(filepath.Base(path), data)
}

// Size returns the document size in bytes.
func (d *Document) Size() int {
	return len(d.Data)
}

// Reader returns a fresh reader over the document bytes.
func (d *Document) Reader() io.Reader {
	return bytes.NewReader(d.Data)
}

// MediaType returns the content type without parameters, e.g. "text/plain".
func (d *Document) MediaType() string {
	mediaType, _, _ := strings.Cut(d.ContentType, ";")
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return "application/octet-stream"
	}
	return mediaType
}

// IsImage reports whether the document looks like an image.
func (d *Document) IsImage() bool {
	return strings.HasPrefix(d.MediaType(), "image/")
}

// IsAudio reports whether the document looks like an audio recording.
func (d *Document) IsAudio() bool {
	mt := d.MediaType()
	// webm recordings are sniffed as video/webm.
	return strings.HasPrefix(mt, "audio/") || mt == "video/webm"
}

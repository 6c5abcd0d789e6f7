package document

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go developer, 7 years"), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "resume.txt", doc.Name)
	assert.Equal(t, "text/plain", doc.MediaType())
	assert.Equal(t, 21, doc.Size())
	assert.False(t, doc.IsImage())

	data, err := io.ReadAll(doc.Reader())
	require.NoError(t, err)
	assert.Equal(t, "Go developer, 7 years", string(data))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("  ")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "missing.pdf")

	empty := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "is empty")
}

func TestNewSniffsContentType(t *testing.T) {
	pdf, err := New("resume.pdf", []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj\n"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.MediaType())

	img, err := New("scan.png", pngHeader)
	require.NoError(t, err)
	assert.True(t, img.IsImage())
	assert.False(t, img.IsAudio())

	_, err = New("", []byte("x"))
	assert.Error(t, err)
}

func TestMediaTypeFallback(t *testing.T) {
	doc := &Document{Name: "blob"}
	assert.Equal(t, "application/octet-stream", doc.MediaType())

	doc.ContentType = "audio/wav; codecs=1"
	assert.Equal(t, "audio/wav", doc.MediaType())
	assert.True(t, doc.IsAudio())
}

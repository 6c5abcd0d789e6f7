package flow

import (
	"context"
	"fmt"

	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/storage"
)

// Uploader stores a document and returns the canonical result.
type Uploader interface {
	Upload(ctx context.Context, doc *document.Document) (*StoredFile, error)
}

type cvUploader interface {
	UploadCV(ctx context.Context, doc *document.Document) (map[string]any, error)
}

type objectStore interface {
	Store(ctx context.Context, doc *document.Document) (*storage.StoredObject, error)
}

type backendUploader struct {
	api cvUploader
}

// NewBackendUploader adapts the api upload call, whose response shape is not
// fixed, to the canonical StoredFile.
func NewBackendUploader(api cvUploader) Uploader {
	return &backendUploader{api: api}
}

func (u *backendUploader) Upload(ctx context.Context, doc *document.Document) (*StoredFile, error) {
	raw, err := u.api.UploadCV(ctx, doc)
	if err != nil {
		return nil, err
	}

	ref, err := ResolveReference(raw)
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Backend:   ModeBackend,
		Reference: ref,
		Raw:       raw,
	}, nil
}

type storageUploader struct {
	store objectStore
}

// NewStorageUploader adapts direct object storage uploads to StoredFile.
func NewStorageUploader(store objectStore) Uploader {
	return &storageUploader{store: store}
}

func (u *storageUploader) Upload(ctx context.Context, doc *document.Document) (*StoredFile, error) {
	obj, err := u.store.Store(ctx, doc)
	if err != nil {
		return nil, err
	}

	ref, err := ResolveReference(map[string]any{"path": obj.Path})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	return &StoredFile{
		Backend:   ModeStorage,
		Reference: ref,
		PublicURL: obj.PublicURL,
	}, nil
}

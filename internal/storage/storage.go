package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultBucket = "cvscan-files"

	objectPath       = "/storage/v1/object"
	publicObjectPath = "/storage/v1/object/public"
	cacheControl     = "max-age=3600"
)

// Config holds the storage endpoint and the anonymous access key.
type Config struct {
	Endpoint string
	Key      string
	Bucket   string
}

// Client stores files in a Supabase storage bucket.
type Client struct {
	endpoint   string
	key        string
	bucket     string
	logger     *zap.Logger
	HTTPClient *http.Client

	// now is replaced in tests.
	now func() time.Time
}

// StoredObject is the outcome of a successful Store call.
type StoredObject struct {
	Path      string `json:"path" yaml:"path"`
	PublicURL string `json:"publicUrl" yaml:"public_url"`
}

// Error is a storage provider failure as reported by the API.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	code := e.Code
	if code == "" {
		code = strconv.Itoa(e.StatusCode)
	}
	if e.Message == "" {
		return fmt.Sprintf("storage: %s", code)
	}
	return fmt.Sprintf("storage: %s: %s", code, e.Message)
}

func New(cfg Config, l *zap.Logger) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("storage endpoint is required")
	}

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("storage access key is required")
	}

	bucket := strings.Trim(strings.TrimSpace(cfg.Bucket), "/")
	if bucket == "" {
		bucket = DefaultBucket
	}

	return &Client{
		endpoint:   endpoint,
		key:        key,
		bucket:     bucket,
		logger:     logger.OrNop(l),
		HTTPClient: &http.Client{},
		now:        time.Now,
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectKey derives the object key from the upload time and the original
// file name. Two uploads of the same name within one millisecond collide.
func ObjectKey(at time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), filename)
}

// PublicURL builds the public object url for key.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s%s/%s/%s", c.endpoint, publicObjectPath, c.bucket, escapeKey(key))
}

// Store uploads the document under a timestamped key and returns its path
// and public url. Provider errors are returned as *Error.
func (c *Client) Store(ctx context.Context, doc *document.Document) (*StoredObject, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}

	key := ObjectKey(c.now(), doc.Name)
	uploadURL := fmt.Sprintf("%s%s/%s/%s", c.endpoint, objectPath, c.bucket, escapeKey(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(doc.Data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
	req.Header.Set("Content-Type", doc.MediaType())
	req.Header.Set("Cache-Control", cacheControl)
	req.Header.Set("x-upsert", "false")

	c.logger.Debug("storing object",
		zap.String("bucket", c.bucket),
		zap.String("key", key),
		zap.Int("size", doc.Size()),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading storage response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		storageErr := &Error{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, storageErr); err != nil || (storageErr.Code == "" && storageErr.Message == "") {
			storageErr.Code = strconv.Itoa(resp.StatusCode)
			storageErr.Message = strings.TrimSpace(string(data))
		}
		return nil, storageErr
	}

	return &StoredObject{
		Path:      key,
		PublicURL: c.PublicURL(key),
	}, nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

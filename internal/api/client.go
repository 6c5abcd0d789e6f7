package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/logger"

	"go.uber.org/zap"
)

const (
	apiPrefix = "/api/v1"

	HealthPath    = apiPrefix + "/health"
	UploadCVPath  = apiPrefix + "/upload-cv"
	JobPath       = apiPrefix + "/job"
	MatchPath     = apiPrefix + "/match"
	MatchStatPath = apiPrefix + "/match-stat"
	ChatPath      = apiPrefix + "/ai"

	userAgent = "spigell/cvscan"
)

// Client talks to the cvscan backend. It performs no retries and sets no
// timeout of its own; the caller's context bounds every request.
type Client struct {
	baseURL    string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

func New(baseURL string, l *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:     logger.OrNop(l),
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
	}
}

// BaseURL returns the configured base url without trailing slashes.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, HealthPath, &out); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}

	return out, nil
}

// UploadCV sends the document as a multipart form. The response shape is
// backend defined and returned as is.
func (c *Client) UploadCV(ctx context.Context, doc *document.Document) (map[string]any, error) {
	if doc == nil {
		return nil, fmt.Errorf("upload cv: document is required")
	}

	var out map[string]any
	if err := c.postFile(ctx, UploadCVPath, "file", doc, &out); err != nil {
		return nil, fmt.Errorf("upload cv: %w", err)
	}

	return out, nil
}

// CreateJob stores a job description.
func (c *Client) CreateJob(ctx context.Context, job JobRequest) (map[string]any, error) {
	if strings.TrimSpace(job.Content) == "" {
		return nil, fmt.Errorf("create job: content is required")
	}

	var out map[string]any
	if err := c.postJSON(ctx, JobPath, job, &out); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	return out, nil
}

// Match calls the legacy matching endpoint.
func (c *Client) Match(ctx context.Context, req MatchRequest) (map[string]any, error) {
	var out map[string]any
	if err := c.postJSON(ctx, MatchPath, req, &out); err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	return out, nil
}

// MatchStat calls the statistical matching endpoint.
func (c *Client) MatchStat(ctx context.Context, req MatchRequest) (*MatchStatResult, error) {
	var out MatchStatResult
	if err := c.postJSON(ctx, MatchStatPath, req, &out); err != nil {
		return nil, fmt.Errorf("match stat: %w", err)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("match stat: %w", err)
	}

	return &out, nil
}

// Chat sends a free text prompt to the ai endpoint.
func (c *Client) Chat(ctx context.Context, prompt string) (map[string]any, error) {
	var out map[string]any
	if err := c.postJSON(ctx, ChatPath, ChatRequest{Prompt: prompt}, &out); err != nil {
		return nil, fmt.Errorf("ai: %w", err)
	}

	return out, nil
}

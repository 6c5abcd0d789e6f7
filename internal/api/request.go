package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/logger"
	"github.com/spigell/cvscan/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	requestIDHeader = "X-Request-ID"
	maxDetailLength = 200
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Code      int
	Status    string
	Detail    string
	RequestID string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("bad status: %s: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("bad status: %s", e.Status)
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) postFile(ctx context.Context, path, field string, doc *document.Document, target any) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(doc.Name)))
	h.Set("Content-Type", doc.MediaType())

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	if _, err = io.Copy(part, doc.Reader()); err != nil {
		return err
	}

	if err = w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &b)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	log := c.logger.With(zap.String(logger.FieldRequestID, requestID))
	log.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	log.Debug("got response",
		zap.Int("status", resp.StatusCode),
		zap.String("body_preview", utils.TruncateForLog(string(data), maxDetailLength)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{
			Code:      resp.StatusCode,
			Status:    resp.Status,
			Detail:    parseDetail(data),
			RequestID: requestID,
		}
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// parseDetail pulls the error message out of a FastAPI style {"detail": ...}
// body, falling back to the raw body.
func parseDetail(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}

	if err := json.Unmarshal(data, &body); err == nil && body.Detail != nil {
		switch detail := body.Detail.(type) {
		case string:
			return strings.TrimSpace(detail)
		default:
			encoded, err := json.Marshal(detail)
			if err == nil {
				return utils.TruncateForLog(string(encoded), maxDetailLength)
			}
		}
	}

	return utils.TruncateForLog(string(data), maxDetailLength)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spigell/cvscan/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL+"//", zap.NewNop())
}

func TestNewTrimsTrailingSlashes(t *testing.T) {
	c := New(" https://cvscan.example.com/// ", nil)
	assert.Equal(t, "https://cvscan.example.com", c.BaseURL())
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, HealthPath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		assert.Equal(t, contentType, r.Header.Get("Content-Type"))

		_, _ = io.WriteString(w, `{"status":"ok","message":"CVscan backend is running"}`)
	})

	out, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
}

func TestUploadCV(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UploadCVPath, r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)

		assert.Equal(t, "resume.txt", header.Filename)
		assert.Equal(t, "text/plain", header.Header.Get("Content-Type"))
		assert.Equal(t, "Go, SQL, Kubernetes", string(data))

		_, _ = io.WriteString(w, `{"status":"success","filename":"resume.txt"}`)
	})

	doc, err := document.New("resume.txt", []byte("Go, SQL, Kubernetes"))
	require.NoError(t, err)

	out, err := c.UploadCV(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", out["filename"])

	_, err = c.UploadCV(context.Background(), nil)
	assert.Error(t, err)
}

func TestCreateJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var job map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&job))

		_, hasID := job["job_id"]
		assert.False(t, hasID, "empty job id must be omitted")
		assert.Equal(t, "Senior Go engineer", job["content"])

		_, _ = io.WriteString(w, `{"status":"success","job_id":"4f1c"}`)
	})

	out, err := c.CreateJob(context.Background(), JobRequest{Content: "Senior Go engineer"})
	require.NoError(t, err)
	assert.Equal(t, "4f1c", out["job_id"])

	_, err = c.CreateJob(context.Background(), JobRequest{JobID: "x", Content: "  "})
	assert.ErrorContains(t, err, "content is required")
}

func TestMatchEndpoints(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		var req MatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, MatchRequest{CVFilename: "resume.pdf", JobID: "job-1"}, req)

		if r.URL.Path == MatchStatPath {
			_, _ = io.WriteString(w, `{"score":0.73,"details":{"n_common":12,"n_job_tokens":40,"top_common":["python","react","sql"]}}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"success","score":0.5}`)
	})

	req := MatchRequest{CVFilename: "resume.pdf", JobID: "job-1"}

	legacy, err := c.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.5, legacy["score"])

	stat, err := c.MatchStat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.73, stat.Score)
	assert.Equal(t, 12, stat.Details.NCommon)
	assert.Equal(t, 40, stat.Details.NJobTokens)
	assert.Equal(t, []string{"python", "react", "sql"}, stat.Details.TopCommon)

	assert.Equal(t, []string{MatchPath, MatchStatPath}, paths)
}

func TestMatchStatRejectsOutOfRangeScore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"score":73,"details":{"n_common":1,"top_common":[]}}`)
	})

	_, err := c.MatchStat(context.Background(), MatchRequest{CVFilename: "a", JobID: "b"})
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
}

func TestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ChatPath, r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ocr text\n\nspeech text", req.Prompt)

		_, _ = io.WriteString(w, `{"reply":"hello"}`)
	})

	out, err := c.Chat(context.Background(), "ocr text\n\nspeech text")
	require.NoError(t, err)
	assert.Equal(t, "hello", out["reply"])
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{name: "fastapi detail", status: http.StatusNotFound, body: `{"detail":"Job file not found: jobs/x.json"}`, wantDetail: "Job file not found: jobs/x.json"},
		{name: "validation detail", status: http.StatusUnprocessableEntity, body: `{"detail":[{"loc":["body","job_id"],"msg":"field required"}]}`, wantDetail: `[{"loc":["body","job_id"],"msg":"field required"}]`},
		{name: "plain body", status: http.StatusBadGateway, body: "upstream down", wantDetail: "upstream down"},
		{name: "empty body", status: http.StatusInternalServerError, body: "", wantDetail: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.MatchStat(context.Background(), MatchRequest{CVFilename: "a", JobID: "b"})
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.Code)
			assert.Equal(t, tt.wantDetail, statusErr.Detail)
			assert.NotEmpty(t, statusErr.RequestID)
		})
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Health(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

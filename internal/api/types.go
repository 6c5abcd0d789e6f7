package api

import (
	"errors"
	"fmt"
	"math"
)

// ErrScoreOutOfRange is returned when the backend reports a score outside [0,1].
var ErrScoreOutOfRange = errors.New("score out of range")

type JobRequest struct {
	JobID   string `json:"job_id,omitempty"`
	Content string `json:"content"`
}

type MatchRequest struct {
	CVFilename string `json:"cv_filename"`
	JobID      string `json:"job_id"`
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type MatchStatResult struct {
	Score   float64      `json:"score" yaml:"score"`
	Details MatchDetails `json:"details" yaml:"details"`
}

type MatchDetails struct {
	NCommon      int      `json:"n_common" yaml:"n_common"`
	NJobTokens   int      `json:"n_job_tokens,omitempty" yaml:"n_job_tokens,omitempty"`
	NCVTokens    int      `json:"n_cv_tokens,omitempty" yaml:"n_cv_tokens,omitempty"`
	RatioJobToCV float64  `json:"ratio_job_to_cv,omitempty" yaml:"ratio_job_to_cv,omitempty"`
	TopCommon    []string `json:"top_common" yaml:"top_common"`
}

// Validate checks the score lies in [0,1].
func (r *MatchStatResult) Validate() error {
	if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
		return fmt.Errorf("%w: %v", ErrScoreOutOfRange, r.Score)
	}
	return nil
}

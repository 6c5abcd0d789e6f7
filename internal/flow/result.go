package flow

import (
	"strconv"

	"github.com/spigell/cvscan/internal/api"
	"github.com/spigell/cvscan/internal/utils"

	"github.com/mitchellh/mapstructure"
)

// MaxSharedTerms caps the shared terms shown for a match.
const MaxSharedTerms = 8

// referenceKeys is the lookup order used to find the stored file reference
// in loosely shaped upload responses.
var referenceKeys = []string{"filename", "path", "name"}

// StoredFile is the canonical upload result, whatever backend produced it.
type StoredFile struct {
	Backend   Mode           `json:"backend" yaml:"backend"`
	Reference string         `json:"reference" yaml:"reference"`
	PublicURL string         `json:"public_url,omitempty" yaml:"public_url,omitempty"`
	Raw       map[string]any `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// ResolveReference returns the first non-empty value among the filename, path
// and name fields of raw. Non-string scalars are converted.
func ResolveReference(raw map[string]any) (string, error) {
	values := make([]string, 0, len(referenceKeys))
	for _, key := range referenceKeys {
		var value string
		// Objects and lists do not decode into a string and count as empty.
		if err := mapstructure.WeakDecode(raw[key], &value); err != nil {
			continue
		}
		values = append(values, value)
	}

	ref := utils.FirstNonEmpty(values...)
	if ref == "" {
		return "", ErrNoReference
	}

	return ref, nil
}

// MatchView is the rendered form of a statistical match.
type MatchView struct {
	Score       float64  `json:"score" yaml:"score"`
	Percent     string   `json:"percent" yaml:"percent"`
	SharedCount int      `json:"shared_count" yaml:"shared_count"`
	SharedTerms []string `json:"shared_terms" yaml:"shared_terms"`
}

func NewMatchView(r *api.MatchStatResult) *MatchView {
	if r == nil {
		return nil
	}

	terms := r.Details.TopCommon
	if len(terms) > MaxSharedTerms {
		terms = terms[:MaxSharedTerms]
	}

	return &MatchView{
		Score:       r.Score,
		Percent:     FormatScore(r.Score),
		SharedCount: r.Details.NCommon,
		SharedTerms: append([]string(nil), terms...),
	}
}

// FormatScore renders a [0,1] score as a percentage with one decimal.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64) + "%"
}

// View is a snapshot of the flow for display.
type View struct {
	State    State       `json:"state" yaml:"state"`
	Mode     Mode        `json:"mode" yaml:"mode"`
	Document string      `json:"document,omitempty" yaml:"document,omitempty"`
	JobID    string      `json:"job_id" yaml:"job_id"`
	Upload   *StoredFile `json:"upload,omitempty" yaml:"upload,omitempty"`
	Match    *MatchView  `json:"match,omitempty" yaml:"match,omitempty"`
	FailedAt State       `json:"failed_at,omitempty" yaml:"failed_at,omitempty"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
}

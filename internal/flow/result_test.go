package flow

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spigell/cvscan/internal/api"
)

func TestResolveReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     map[string]any
		want    string
		wantErr error
	}{
		{name: "filename only", raw: map[string]any{"filename": "resume.pdf"}, want: "resume.pdf"},
		{name: "path only", raw: map[string]any{"path": "1717-resume.pdf"}, want: "1717-resume.pdf"},
		{name: "name only", raw: map[string]any{"name": "cv.txt"}, want: "cv.txt"},
		{name: "filename beats path and name", raw: map[string]any{"name": "c", "path": "b", "filename": "a"}, want: "a"},
		{name: "path beats name", raw: map[string]any{"name": "c", "path": "b"}, want: "b"},
		{name: "blank filename falls through", raw: map[string]any{"filename": "  ", "path": "b"}, want: "b"},
		{name: "null filename falls through", raw: map[string]any{"filename": nil, "name": "c"}, want: "c"},
		{name: "object path is ignored", raw: map[string]any{"path": map[string]any{"full": "x"}, "name": "c"}, want: "c"},
		{name: "numeric name is converted", raw: map[string]any{"name": 42}, want: "42"},
		{name: "nothing usable", raw: map[string]any{"status": "success"}, wantErr: ErrNoReference},
		{name: "nil response", raw: nil, wantErr: ErrNoReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveReference(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveReferenceSingleField(t *testing.T) {
	t.Parallel()

	for _, key := range referenceKeys {
		got, err := ResolveReference(map[string]any{key: "value-for-" + key})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", key, err)
		}
		if got != "value-for-"+key {
			t.Fatalf("%s: got %q", key, got)
		}
	}
}

func TestNewMatchView(t *testing.T) {
	t.Parallel()

	view := NewMatchView(&api.MatchStatResult{
		Score: 0.73,
		Details: api.MatchDetails{
			NCommon:   12,
			TopCommon: []string{"python", "react", "sql"},
		},
	})

	if view.Percent != "73.0%" {
		t.Fatalf("expected 73.0%%, got %q", view.Percent)
	}
	if view.SharedCount != 12 {
		t.Fatalf("expected 12 shared terms, got %d", view.SharedCount)
	}
	if !reflect.DeepEqual(view.SharedTerms, []string{"python", "react", "sql"}) {
		t.Fatalf("unexpected terms: %v", view.SharedTerms)
	}

	if NewMatchView(nil) != nil {
		t.Fatal("expected nil view for nil result")
	}
}

func TestNewMatchViewCapsTerms(t *testing.T) {
	t.Parallel()

	terms := []string{"go", "sql", "k8s", "grpc", "redis", "kafka", "aws", "docker", "linux", "git"}
	view := NewMatchView(&api.MatchStatResult{Score: 0.9, Details: api.MatchDetails{NCommon: 10, TopCommon: terms}})

	if len(view.SharedTerms) != MaxSharedTerms {
		t.Fatalf("expected %d terms, got %d", MaxSharedTerms, len(view.SharedTerms))
	}
	if view.SharedTerms[7] != "docker" {
		t.Fatalf("expected terms to keep their order, got %v", view.SharedTerms)
	}
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	for score, want := range map[float64]string{
		0:      "0.0%",
		0.6:    "60.0%",
		0.73:   "73.0%",
		0.8567: "85.7%",
		1:      "100.0%",
	} {
		if got := FormatScore(score); got != want {
			t.Fatalf("FormatScore(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Mode{
		"storage":  ModeStorage,
		"Supabase": ModeStorage,
		" backend": ModeBackend,
		"render":   ModeBackend,
	} {
		got, err := ParseMode(input)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", input, got, err, want)
		}
	}

	if _, err := ParseMode("ftp"); !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

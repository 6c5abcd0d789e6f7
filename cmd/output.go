package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/cvscan/internal/flow"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

const (
	goodScore = 0.75
	fairScore = 0.5
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, want one of: %s", format,
			strings.Join([]string{outputText, outputJSON, outputYAML}, ", "))
	}
}

// printResult writes a raw api payload. Text output is indented JSON.
func printResult(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputJSON, outputText:
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(pretty))
		return err
	default:
		return validateOutput(format)
	}
}

func printView(w io.Writer, format string, view *flow.View) error {
	if format != outputText {
		return printResult(w, format, view)
	}

	renderView(w, view)
	return nil
}

func renderView(w io.Writer, view *flow.View) {
	label := color.New(color.Bold).SprintFunc()

	if view.Document != "" {
		fmt.Fprintf(w, "%s %s (%s)\n", label("Document:"), view.Document, view.Mode)
	}
	fmt.Fprintf(w, "%s %s\n", label("Job:"), view.JobID)

	if view.Upload != nil {
		fmt.Fprintf(w, "%s %s\n", label("Stored as:"), view.Upload.Reference)
		if view.Upload.PublicURL != "" {
			fmt.Fprintf(w, "%s %s\n", label("Public URL:"), view.Upload.PublicURL)
		}
	}

	if view.State == flow.StateError {
		fmt.Fprintln(w, color.RedString("Failed while %s: %s", view.FailedAt, view.Error))
		return
	}

	if view.Match != nil {
		renderMatch(w, view.Match)
	}
}

func renderMatch(w io.Writer, m *flow.MatchView) {
	label := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", label("Match score:"), scoreColor(m.Score)(m.Percent))
	fmt.Fprintf(w, "%s %d\n", label("Shared terms:"), m.SharedCount)
	if len(m.SharedTerms) > 0 {
		fmt.Fprintf(w, "%s %s\n", label("Top shared:"), strings.Join(m.SharedTerms, ", "))
	}
}

func scoreColor(score float64) func(a ...any) string {
	switch {
	case score >= goodScore:
		return color.New(color.FgGreen).SprintFunc()
	case score >= fairScore:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.YellowString("warning: "+format, args...))
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pycalls/internal/paths"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *CallDiagramResponse:
		return formatCallDiagramHuman(v)
	case *PathsResponse:
		return formatPathsHuman(v)
	case *ErrorResponse:
		return formatErrorHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// displayRoot is the directory human output shortens paths against
func displayRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

func formatCallDiagramHuman(resp *CallDiagramResponse) (string, error) {
	var b strings.Builder
	root := displayRoot()
	r := resp.Result

	b.WriteString(fmt.Sprintf("Call diagram for %s\n", r.Target))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if r.Unit != nil {
		b.WriteString(fmt.Sprintf("Unit:        %s\n", r.Unit.Name))
		b.WriteString(fmt.Sprintf("Origin:      %s\n", paths.Display(r.Unit.Origin, root)))
	}
	if r.Start != nil {
		b.WriteString(fmt.Sprintf("Start file:  %s\n", paths.Display(r.Start.Path, root)))
		remaining := strings.Join(r.Start.Leftover, ".")
		if remaining == "" {
			remaining = "(whole file)"
		}
		b.WriteString(fmt.Sprintf("Remaining:   %s\n", remaining))
	}
	if r.Symbol != nil {
		b.WriteString(fmt.Sprintf("Symbol:      %s %s at %s:%d-%d\n",
			r.Symbol.Kind, r.Symbol.QualifiedPath,
			paths.Display(r.Symbol.Path, root), r.Symbol.Line, r.Symbol.EndLine))
	}

	walk := r.Walk.Direction
	switch {
	case r.Walk.Radius > 0:
		walk = fmt.Sprintf("radius %d", r.Walk.Radius)
	case r.Walk.Forward > 0 && r.Walk.Backward > 0:
		walk = fmt.Sprintf("forward %d, backward %d", r.Walk.Forward, r.Walk.Backward)
	case r.Walk.Forward > 0:
		walk = fmt.Sprintf("forward %d", r.Walk.Forward)
	case r.Walk.Backward > 0:
		walk = fmt.Sprintf("backward %d", r.Walk.Backward)
	}
	if !r.Walk.Implemented && r.Walk.Direction != "none" {
		walk += " (traversal not available)"
	}
	b.WriteString(fmt.Sprintf("Walk:        %s\n", walk))

	b.WriteString(fmt.Sprintf("\nSearch path (%s", r.PathMode))
	if resp.DefaultPathSource != "" {
		b.WriteString(fmt.Sprintf(", default from %s", resp.DefaultPathSource))
	}
	b.WriteString("):\n")
	for _, dir := range paths.DisplayAll(r.SearchPath, root) {
		b.WriteString(fmt.Sprintf("  %s\n", dir))
	}

	if len(r.Symbols) > 0 {
		b.WriteString(fmt.Sprintf("\nDefinitions in %s:\n", paths.Display(r.Start.Path, root)))
		for _, sym := range r.Symbols {
			b.WriteString(fmt.Sprintf("  %5d-%-5d %-8s %s\n", sym.Line, sym.EndLine, sym.Kind, sym.QualifiedPath))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("  ! %s\n", w))
		}
	}

	b.WriteString(fmt.Sprintf("\nRun: %s\n", r.RunID))
	return b.String(), nil
}

func formatPathsHuman(resp *PathsResponse) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Search path (%s", resp.Mode))
	if resp.DefaultPathSource != "" {
		b.WriteString(fmt.Sprintf(", default from %s", resp.DefaultPathSource))
	}
	b.WriteString(")\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")
	if resp.ProjectRoot != "" {
		b.WriteString(fmt.Sprintf("Project: %s\n\n", resp.ProjectRoot))
	}

	for i, e := range resp.Entries {
		missing := ""
		if !e.Exists {
			missing = "  (missing)"
		}
		b.WriteString(fmt.Sprintf("%3d. [%-10s] %s%s\n", i+1, e.Origin, e.Dir, missing))
	}
	if len(resp.Entries) == 0 {
		b.WriteString("  (empty)\n")
	}

	return b.String(), nil
}

func formatErrorHuman(resp *ErrorResponse) (string, error) {
	var b strings.Builder
	e := resp.Error

	b.WriteString(fmt.Sprintf("Error [%s]: %s\n", e.Code, e.Message))
	if len(e.SuggestedFixes) > 0 {
		b.WriteString("\nSuggested fixes:\n")
		for _, fix := range e.SuggestedFixes {
			b.WriteString(fmt.Sprintf("  - %s\n", fix.Description))
			if fix.Command != "" {
				b.WriteString(fmt.Sprintf("      %s\n", fix.Command))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

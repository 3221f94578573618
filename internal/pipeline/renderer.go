package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/docattest/claimcheck/internal/model"
)

// Renderer writes reports as JSON, Markdown, and stdout summaries.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON.
func (r *Renderer) RenderJSON(rep *model.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as a Markdown document.
func (r *Renderer) RenderMarkdown(rep *model.Report, path string) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Claim check: %s\n\n", rep.Document))
	sb.WriteString(fmt.Sprintf("- Checked at: %s\n", rep.CheckedAt.Format("2006-01-02 15:04:05 UTC")))
	sb.WriteString(fmt.Sprintf("- Document size: %d bytes\n", rep.SizeBytes))
	sb.WriteString(fmt.Sprintf("- SHA-256: `%s`\n", rep.SHA256))
	if rep.Source.ContentType != "" {
		sb.WriteString(fmt.Sprintf("- Content type: %s\n", rep.Source.ContentType))
	}
	if rep.Source.FromCache {
		sb.WriteString("- Served from cache\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Claims\n\n")
	sb.WriteString("| Page | Offset | Substring | Outcome |\n")
	sb.WriteString("|------|--------|-----------|--------|\n")
	for _, o := range rep.Outcomes {
		outcome := "rejected: " + o.Rejection
		if o.Result != nil {
			if o.Result.Verified {
				outcome = "verified"
			} else {
				outcome = "not verified"
			}
		}
		sb.WriteString(fmt.Sprintf("| %d | %d | `%s` | %s |\n",
			o.Claim.Page, o.Claim.Offset, truncate(o.Claim.Substring, 40), outcome))
	}
	sb.WriteString("\n")

	sb.WriteString("## Summary\n\n")
	s := rep.Summary
	sb.WriteString(fmt.Sprintf("- Claims: %d total, %d verified, %d not verified, %d rejected\n",
		s.Total, s.Verified, s.Unverified, s.Rejected))
	sb.WriteString(fmt.Sprintf("- Match rate: %.2f\n", s.MatchRate))
	if len(s.Rejections) > 0 {
		kinds := make([]string, 0, len(s.Rejections))
		for k := range s.Rejections {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		sb.WriteString("- Rejections:\n")
		for _, k := range kinds {
			sb.WriteString(fmt.Sprintf("  - %s: %d\n", k, s.Rejections[k]))
		}
	}
	sb.WriteString("\n")

	if len(s.Signals) > 0 {
		sb.WriteString("## Signals\n\n")
		for _, sig := range s.Signals {
			sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", sig.Type, sig.Severity, sig.Description))
		}
		sb.WriteString("\n")
	}

	if r.includeFooter {
		sb.WriteString("---\n")
		sb.WriteString("Generated by claimcheck. A claim is verified only when the expected substring occurs at the exact stated offset; claimcheck does not interpret document content.\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderLLMMarkdown writes the separate narration artifact.
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write LLM markdown: %w", err)
	}
	return nil
}

// RenderSummary prints the per-claim outcomes and totals to stdout.
func (r *Renderer) RenderSummary(rep *model.Report) {
	for _, o := range rep.Outcomes {
		switch {
		case o.Result != nil:
			fmt.Printf("verified: %t (page %d, offset %d) %s\n",
				o.Result.Verified, o.Result.PageNumber, o.Result.Offset, o.Result.Metadata)
		default:
			fmt.Printf("rejected: %s (page %d, offset %d)\n",
				o.Rejection, o.Claim.Page, o.Claim.Offset)
		}
	}

	s := rep.Summary
	if s.Total > 1 {
		fmt.Printf("%d claims: %d verified, %d not verified, %d rejected\n",
			s.Total, s.Verified, s.Unverified, s.Rejected)
	}
}

// truncate shortens long substrings for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

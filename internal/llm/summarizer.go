package llm

import (
	"context"
	"fmt"

	"github.com/docattest/claimcheck/internal/model"
)

// Summarizer wraps a provider and produces the optional LLMSummary for a
// report. It never touches outcomes; a failed narration degrades to a
// warning, not an error, at the pipeline level.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; a disabled config yields a
// summarizer whose IsEnabled is false.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider's name, or "".
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary narrates the report. A disabled summarizer returns
// (nil, nil).
func (s *Summarizer) GenerateSummary(ctx context.Context, rep model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:  true,
			Provider: s.provider.Name(),
			Warnings: []string{"provider unavailable; narration skipped"},
		}, nil
	}

	resp, err := s.provider.Narrate(ctx, NarrateRequest{
		Report:    rep,
		Documents: []string{rep.Document},
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("narrate: %w", err)
	}

	return &model.LLMSummary{
		Enabled:         true,
		Provider:        s.provider.Name(),
		Model:           resp.Model,
		StrictAllowlist: s.config.StrictAllowlist,
		SummaryMD:       resp.Narration,
	}, nil
}

// RenderSeparateMarkdown renders the narration as its own artifact with
// an explicit disclaimer separating it from the verification record.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	md := "# LLM narration\n\n"
	md += "> This narration is generated by a language model and has no effect on verification outcomes. The JSON report is the record.\n\n"
	if summary.Provider != "" {
		md += fmt.Sprintf("Provider: %s", summary.Provider)
		if summary.Model != "" {
			md += fmt.Sprintf(" (%s)", summary.Model)
		}
		md += "\n\n"
	}
	md += summary.SummaryMD
	md += "\n"
	if len(summary.Warnings) > 0 {
		md += "\n## Warnings\n\n"
		for _, w := range summary.Warnings {
			md += fmt.Sprintf("- %s\n", w)
		}
	}
	return md
}

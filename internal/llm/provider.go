package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docattest/claimcheck/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Narrate generates a narration of the report with the strict
	// document allowlist enforced
	Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// NarrateRequest contains the input for LLM narration
type NarrateRequest struct {
	// Report is the claim-check report to narrate
	Report model.Report

	// Documents is the STRICT allowlist of document references the LLM
	// may mention. The narration cannot introduce documents that were
	// never checked.
	Documents []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// NarrateResponse contains the LLM's narration output
type NarrateResponse struct {
	// Narration is the generated text
	Narration string

	// MentionedDocuments are the allowlisted references the LLM actually
	// used (for verification)
	MentionedDocuments []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for OpenAI-compatible endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictAllowlist enforces the document allowlist (should always be true)
	StrictAllowlist bool

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:        "", // Disabled by default
		Model:           "",
		Timeout:         30,
		StrictAllowlist: true, // CRITICAL: Always enforce
		MaxTokens:       1000,
	}
}

// BuildPrompt constructs the default narration prompt. The narration
// describes verification outcomes; it never asserts anything about
// document meaning or truth.
func BuildPrompt(rep model.Report, documents []string) string {
	s := rep.Summary

	prompt := fmt.Sprintf(`You are narrating a claimcheck report. claimcheck verifies whether expected substrings occur at exact byte offsets in documents - it NEVER interprets document content or asserts truth.

CRITICAL RULES:
1. You may ONLY mention documents from this allowed list:
%s

2. DO NOT infer, speculate, or reference documents beyond this list.
3. Describe outcomes only: verified, not verified, or rejected.
4. A "not verified" claim means the substring was absent at the stated offset - nothing more.
5. A "rejected" claim was malformed (bad offset, page, or empty input) and was never checked.

Report Summary:
- Document: %s
- Claims: %d total
- Verified: %d
- Not verified: %d
- Rejected: %d
- Match rate: %.2f

Key Signals:
`, joinDocuments(documents), rep.Document, s.Total, s.Verified, s.Unverified, s.Rejected, s.MatchRate)

	for i, signal := range s.Signals {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- %s: %s\n", signal.Type, signal.Description)
	}

	prompt += "\nProvide a 3-4 sentence narration of the outcomes. Do not speculate about why claims did not match."

	return prompt
}

// Helper functions

// mentionedDocuments returns the allowlisted references that appear
// verbatim in the narration.
func mentionedDocuments(narration string, allowed []string) []string {
	var mentioned []string
	for _, doc := range allowed {
		if strings.Contains(narration, doc) {
			mentioned = append(mentioned, doc)
		}
	}
	return mentioned
}

// findAllowlistLeak returns the first URL in the narration that is not on
// the allowlist, or "" if the narration is clean. Only URLs can be
// detected reliably; bare file paths are indistinguishable from prose.
func findAllowlistLeak(narration string, allowed []string) string {
	urlPattern := regexp.MustCompile(`https?://[^\s\)]+`)
	for _, match := range urlPattern.FindAllString(narration, -1) {
		match = strings.TrimRight(match, ".,;:!?")
		if !contains(allowed, match) {
			return match
		}
	}
	return ""
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func joinDocuments(documents []string) string {
	if len(documents) == 0 {
		return "(No documents available)"
	}
	result := ""
	for i, doc := range documents {
		if i >= 20 { // Limit to first 20 to avoid token bloat
			result += fmt.Sprintf("\n... and %d more documents", len(documents)-20)
			break
		}
		result += fmt.Sprintf("\n- %s", doc)
	}
	return result
}

package model

import "time"

// Report is the complete result of checking one document's claims.
type Report struct {
	Document  string     `json:"document"`             // Path or URL that was checked
	SHA256    string     `json:"sha256"`               // Digest of the document bytes
	SizeBytes int        `json:"size_bytes"`           // Document length in bytes
	CheckedAt time.Time  `json:"checked_at"`           // When the check occurred
	Source    SourceMeta `json:"source_meta"`          // Transport metadata (remote documents)

	Outcomes []ClaimOutcome `json:"outcomes"`          // One entry per claim, in manifest order

	Summary Summary `json:"summary"`                   // Transparent counts and signals

	LLM *LLMSummary `json:"llm,omitempty"`             // Optional narration (never affects outcomes)
}

// ClaimOutcome pairs a claim with either its result or its rejection.
// Exactly one of Result/Rejection is set.
type ClaimOutcome struct {
	Claim         ClaimSpec    `json:"claim"`
	Result        *ClaimResult `json:"result,omitempty"`
	Rejection     string       `json:"rejection,omitempty"`      // Validation error text for rejected requests
	RejectionKind string       `json:"rejection_kind,omitempty"` // Stable error label (e.g. "empty_document")
}

// SourceMeta contains transport metadata captured while loading a document.
// For local files only SizeBytes is meaningful and it is mirrored in Report.
type SourceMeta struct {
	StatusCode   int               `json:"status_code,omitempty"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	FromCache    bool              `json:"from_cache,omitempty"`
}

// Summary is the transparent breakdown of a report: every number a signal
// derives from is present in the signal's data.
type Summary struct {
	Total      int            `json:"total"`                // Claims submitted
	Verified   int            `json:"verified"`             // verified=true
	Unverified int            `json:"unverified"`           // verified=false (normal outcome)
	Rejected   int            `json:"rejected"`             // Validation failures
	MatchRate  float64        `json:"match_rate"`           // verified / (total - rejected)
	Rejections map[string]int `json:"rejections,omitempty"` // Error kind -> count
	Signals    []Signal       `json:"signals"`              // Diagnostic signals
}

// Signal is a diagnostic observation about a report.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs the signal derives from
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalAllVerified      SignalType = "all_verified"      // Every accepted claim matched
	SignalUnverifiedClaims SignalType = "unverified_claims" // Accepted claims that did not match
	SignalRejectedClaims   SignalType = "rejected_claims"   // Claims rejected at validation
	SignalNoClaims         SignalType = "no_claims"         // Empty claim set
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains optional LLM-generated narration of a report.
// CRITICAL: This never affects outcomes and is clearly separated.
type LLMSummary struct {
	Enabled        bool     `json:"enabled"`
	Provider       string   `json:"provider,omitempty"`
	Model          string   `json:"model,omitempty"`
	StrictAllowlist bool    `json:"strict_allowlist"`     // Whether document allowlist was enforced
	SummaryMD      string   `json:"summary_md,omitempty"` // Markdown narration
	Warnings       []string `json:"warnings,omitempty"`
}

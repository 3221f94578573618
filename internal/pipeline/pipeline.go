package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docattest/claimcheck/internal/cache"
	"github.com/docattest/claimcheck/internal/llm"
	"github.com/docattest/claimcheck/internal/model"
	"github.com/docattest/claimcheck/internal/report"
	"github.com/docattest/claimcheck/internal/source"
	"github.com/docattest/claimcheck/internal/verify"
)

// Pipeline orchestrates the complete check: load the document, verify
// each claim against it, summarize, render.
type Pipeline struct {
	loader     *source.Loader
	verifier   *verify.Verifier
	docCache   cache.Cache // nil when caching is disabled
	renderer   *Renderer
	summarizer *llm.Summarizer // Optional narration (nil if disabled)
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration.
func NewPipeline(cfg *model.Config) *Pipeline {
	var docCache cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		docCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		loader:     source.NewLoader(cfg.HTTP),
		verifier:   verify.NewVerifier(),
		docCache:   docCache,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
	}
}

// CheckResult contains the complete check result for one document.
type CheckResult struct {
	Report *model.Report
	Error  error
}

// CheckDocument loads one document and verifies every claim against it.
// Rejected claims are recorded in the report; only a failure to load the
// document itself fails the check.
func (p *Pipeline) CheckDocument(ctx context.Context, ref string, claims []model.ClaimSpec) (*CheckResult, error) {
	doc, err := p.loadDocument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	outcomes := make([]model.ClaimOutcome, 0, len(claims))
	for _, claim := range claims {
		outcomes = append(outcomes, p.verifyOne(doc, claim))
	}

	rep := &model.Report{
		Document:  ref,
		SHA256:    doc.SHA256,
		SizeBytes: len(doc.Bytes),
		CheckedAt: time.Now().UTC(),
		Source:    doc.Meta,
		Outcomes:  outcomes,
		Summary:   report.Summarize(outcomes),
	}

	// Narration runs AFTER summarizing and never affects outcomes
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		narration, err := p.summarizer.GenerateSummary(ctx, *rep)
		if err != nil {
			fmt.Printf("Warning: LLM narration failed: %v\n", err)
		} else if narration != nil {
			rep.LLM = narration
		}
	}

	return &CheckResult{Report: rep}, nil
}

// CheckClaim is the single-claim convenience wrapper used by the verify
// command.
func (p *Pipeline) CheckClaim(ctx context.Context, claim model.ClaimSpec) (*CheckResult, error) {
	return p.CheckDocument(ctx, claim.Document, []model.ClaimSpec{claim})
}

// verifyOne runs the verifier for one claim against loaded bytes.
func (p *Pipeline) verifyOne(doc *source.Document, claim model.ClaimSpec) model.ClaimOutcome {
	outcome := model.ClaimOutcome{Claim: claim}

	result, err := p.verifier.Verify(claim.Request(doc.Bytes))
	if err != nil {
		outcome.Rejection = err.Error()
		outcome.RejectionKind = verify.Kind(err)
		return outcome
	}

	outcome.Result = result
	return outcome
}

// loadDocument resolves a reference through the cache. Only remote
// documents are cached; local files are always read fresh.
func (p *Pipeline) loadDocument(ctx context.Context, ref string) (*source.Document, error) {
	if p.docCache == nil || !source.IsRemote(ref) {
		return p.loader.Load(ctx, ref)
	}

	key := cache.Key(ref)
	if data, found := p.docCache.Get(key); found {
		return &source.Document{
			Ref:    ref,
			Bytes:  data,
			SHA256: cache.Digest(data),
			Meta:   model.SourceMeta{FromCache: true},
		}, nil
	}

	doc, err := p.loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := p.docCache.Set(key, doc.Bytes, 0); err != nil {
		fmt.Printf("Warning: cache write failed: %v\n", err)
	}

	return doc, nil
}

// RenderReport renders the report to the specified outputs.
func (p *Pipeline) RenderReport(rep *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(rep, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(rep, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Narration goes to its own file so it can never be mistaken for the
	// verification record
	if rep.LLM != nil && rep.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(rep.LLM), llmPath); err != nil {
			fmt.Printf("Warning: Failed to write LLM narration: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM narration: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(rep)
	return nil
}

package worker

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/docattest/claimcheck/internal/model"
	"github.com/docattest/claimcheck/internal/pipeline"
	"github.com/docattest/claimcheck/internal/source"
)

// Checker defines the interface for checking one document's claims
type Checker interface {
	CheckDocument(ctx context.Context, ref string, claims []model.ClaimSpec) (*pipeline.CheckResult, error)
}

// Manifest is the batch input file: a list of claims, each naming its
// document by path or URL.
type Manifest struct {
	Claims []model.ClaimSpec `yaml:"claims"`
}

// DocumentClaims groups a manifest's claims by document, preserving
// first-seen document order.
type DocumentClaims struct {
	Document string
	Claims   []model.ClaimSpec
}

// CheckJob checks all of one document's claims
type CheckJob struct {
	Document string
	Claims   []model.ClaimSpec
	Checker  Checker
	Limiter  *Limiter // nil disables rate limiting
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil && source.IsRemote(j.Document) {
		if err := j.Limiter.Wait(ctx, j.Document); err != nil {
			return &CheckResult{Document: j.Document, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	result, err := j.Checker.CheckDocument(ctx, j.Document, j.Claims)
	if err != nil {
		return &CheckResult{Document: j.Document, Error: err}
	}
	return &CheckResult{Document: j.Document, Report: result.Report}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Document string
	Report   *model.Report
	Error    error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks multiple documents concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. A requestsPerSecond
// of zero disables rate limiting.
func NewBatchProcessor(checker Checker, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}

	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessDocuments checks document groups concurrently
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, groups []DocumentClaims) []*CheckResult {
	if len(groups) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start(ctx)

	// Submission runs alongside draining so a batch larger than the
	// queue buffers cannot wedge Submit against full channels.
	go func() {
		for _, group := range groups {
			pool.Submit(&CheckJob{
				Document: group.Document,
				Claims:   group.Claims,
				Checker:  b.checker,
				Limiter:  b.limiter,
			})
		}
		pool.Finish()
	}()

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckResult)
	}

	return checkResults
}

// ReadManifest reads a YAML claim manifest and groups its claims by
// document. Exact duplicate claims are dropped.
func ReadManifest(path string) ([]DocumentClaims, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(manifest.Claims) == 0 {
		return nil, fmt.Errorf("manifest contains no claims")
	}

	byDoc := make(map[string][]model.ClaimSpec)
	var order []string
	seen := make(map[model.ClaimSpec]bool)

	for _, claim := range manifest.Claims {
		if claim.Document == "" {
			return nil, fmt.Errorf("manifest claim missing document reference")
		}
		if seen[claim] {
			continue
		}
		seen[claim] = true

		if _, ok := byDoc[claim.Document]; !ok {
			order = append(order, claim.Document)
		}
		byDoc[claim.Document] = append(byDoc[claim.Document], claim)
	}

	groups := make([]DocumentClaims, 0, len(order))
	for _, doc := range order {
		groups = append(groups, DocumentClaims{Document: doc, Claims: byDoc[doc]})
	}

	return groups, nil
}

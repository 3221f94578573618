package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docattest/claimcheck/internal/model"
	"github.com/docattest/claimcheck/internal/pipeline"
	"github.com/docattest/claimcheck/internal/report"
)

// MockChecker implements the Checker interface
type MockChecker struct {
	ShouldError bool
}

func (m *MockChecker) CheckDocument(ctx context.Context, ref string, claims []model.ClaimSpec) (*pipeline.CheckResult, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.ShouldError {
		return nil, errors.New("check error")
	}

	outcomes := make([]model.ClaimOutcome, len(claims))
	for i, c := range claims {
		outcomes[i] = model.ClaimOutcome{
			Claim:  c,
			Result: &model.ClaimResult{Verified: true, PageNumber: c.Page, Offset: c.Offset, Substring: c.Substring},
		}
	}
	return &pipeline.CheckResult{
		Report: &model.Report{
			Document: ref,
			Outcomes: outcomes,
			Summary:  report.Summarize(outcomes),
		},
	}, nil
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessDocuments(t *testing.T) {
	checker := &MockChecker{}
	processor := NewBatchProcessor(checker, 2, 0, 0)

	groups := []DocumentClaims{
		{Document: "a.pdf", Claims: []model.ClaimSpec{{Document: "a.pdf", Substring: "x"}}},
		{Document: "b.pdf", Claims: []model.ClaimSpec{{Document: "b.pdf", Substring: "y"}}},
		{Document: "c.pdf", Claims: []model.ClaimSpec{{Document: "c.pdf", Substring: "z"}}},
	}

	results := processor.ProcessDocuments(context.Background(), groups)

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Document, res.Error)
		}
		if res.Report == nil {
			t.Errorf("expected report for %s", res.Document)
		}
	}
}

func TestBatchProcessor_ManyDocuments(t *testing.T) {
	// Far more documents than the pool buffers can hold must still
	// drain to completion.
	checker := &MockChecker{}
	processor := NewBatchProcessor(checker, 2, 0, 0)

	groups := make([]DocumentClaims, 25)
	for i := range groups {
		doc := fmt.Sprintf("doc-%d.pdf", i)
		groups[i] = DocumentClaims{Document: doc, Claims: []model.ClaimSpec{{Document: doc, Substring: "x"}}}
	}

	done := make(chan []*CheckResult, 1)
	go func() {
		done <- processor.ProcessDocuments(context.Background(), groups)
	}()

	select {
	case results := <-done:
		if len(results) != len(groups) {
			t.Errorf("expected %d results, got %d", len(groups), len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch stalled with more documents than pool buffers")
	}
}

func TestBatchProcessor_ProcessDocuments_Error(t *testing.T) {
	checker := &MockChecker{ShouldError: true}
	processor := NewBatchProcessor(checker, 2, 0, 0)

	results := processor.ProcessDocuments(context.Background(), []DocumentClaims{
		{Document: "a.pdf", Claims: []model.ClaimSpec{{Document: "a.pdf", Substring: "x"}}},
	})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockChecker{}, 2, 0, 0)

	results := processor.ProcessDocuments(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadManifest(t *testing.T) {
	path := writeManifest(t, `claims:
  - document: ./invoice.pdf
    page: 0
    offset: 120
    substring: "Total Due: $419.00"
  - document: ./invoice.pdf
    page: 1
    offset: 16
    substring: "Account"
  - document: https://example.com/contract.pdf
    offset: 0
    substring: "Agreement"
  - document: ./invoice.pdf
    page: 0
    offset: 120
    substring: "Total Due: $419.00"
`)

	groups, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 document groups, got %d", len(groups))
	}

	// First-seen document order preserved
	if groups[0].Document != "./invoice.pdf" || groups[1].Document != "https://example.com/contract.pdf" {
		t.Errorf("unexpected document order: %s, %s", groups[0].Document, groups[1].Document)
	}

	// Exact duplicate dropped
	if len(groups[0].Claims) != 2 {
		t.Errorf("expected 2 deduplicated claims for invoice.pdf, got %d", len(groups[0].Claims))
	}
	if groups[0].Claims[0].Offset != 120 || groups[0].Claims[0].Substring != "Total Due: $419.00" {
		t.Errorf("unexpected first claim: %+v", groups[0].Claims[0])
	}
}

func TestReadManifest_Invalid(t *testing.T) {
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing manifest")
	}

	empty := writeManifest(t, "claims: []\n")
	if _, err := ReadManifest(empty); err == nil {
		t.Error("expected error for empty manifest")
	}

	noDoc := writeManifest(t, "claims:\n  - offset: 3\n    substring: x\n")
	if _, err := ReadManifest(noDoc); err == nil {
		t.Error("expected error for claim without document")
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docattest/claimcheck/internal/model"
)

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.HTTP.CheckRobots = false
	cfg.Cache.Enabled = false
	return cfg
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCheckClaim_Verified(t *testing.T) {
	path := writeFixture(t, "Important Document - This is a sample")
	p := NewPipeline(testConfig())

	result, err := p.CheckClaim(context.Background(), model.ClaimSpec{
		Document:  path,
		Offset:    0,
		Substring: "Important Document",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rep := result.Report
	if len(rep.Outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(rep.Outcomes))
	}
	if rep.Outcomes[0].Result == nil || !rep.Outcomes[0].Result.Verified {
		t.Errorf("Expected verified outcome, got %+v", rep.Outcomes[0])
	}
	if rep.SHA256 == "" || rep.SizeBytes != 37 {
		t.Errorf("Expected document identity in report, got sha=%q size=%d", rep.SHA256, rep.SizeBytes)
	}
	if rep.Summary.Verified != 1 {
		t.Errorf("Unexpected summary: %+v", rep.Summary)
	}
}

func TestCheckDocument_MixedClaims(t *testing.T) {
	path := writeFixture(t, "Important Document - This is a sample")
	p := NewPipeline(testConfig())

	claims := []model.ClaimSpec{
		{Document: path, Offset: 0, Substring: "Important Document"},
		{Document: path, Offset: 5, Substring: "Important Document"},
		{Document: path, Offset: 9999, Substring: "Important"},
		{Document: path, Page: 10001, Substring: "Important"},
	}

	result, err := p.CheckDocument(context.Background(), path, claims)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rep := result.Report
	if len(rep.Outcomes) != 4 {
		t.Fatalf("Expected 4 outcomes, got %d", len(rep.Outcomes))
	}

	s := rep.Summary
	if s.Verified != 1 || s.Unverified != 1 || s.Rejected != 2 {
		t.Errorf("Unexpected summary counts: %+v", s)
	}
	if s.Rejections["offset_out_of_bounds"] != 1 || s.Rejections["invalid_page_number"] != 1 {
		t.Errorf("Unexpected rejection breakdown: %v", s.Rejections)
	}

	// Rejected outcomes still carry the claim and a reason
	if rep.Outcomes[2].Rejection == "" || rep.Outcomes[2].Result != nil {
		t.Errorf("Expected rejection-only outcome, got %+v", rep.Outcomes[2])
	}
}

func TestCheckDocument_LoadFailure(t *testing.T) {
	p := NewPipeline(testConfig())

	_, err := p.CheckDocument(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"), []model.ClaimSpec{
		{Substring: "x"},
	})
	if err == nil {
		t.Fatal("Expected error for missing document")
	}
	if !strings.Contains(err.Error(), "load document") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestCheckDocument_RemoteCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, "Important Document - remote")
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()
	p := NewPipeline(cfg)

	claim := model.ClaimSpec{Document: server.URL, Offset: 0, Substring: "Important"}

	if _, err := p.CheckClaim(context.Background(), claim); err != nil {
		t.Fatalf("First check failed: %v", err)
	}
	result, err := p.CheckClaim(context.Background(), claim)
	if err != nil {
		t.Fatalf("Second check failed: %v", err)
	}

	if hits.Load() != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", hits.Load())
	}
	if !result.Report.Source.FromCache {
		t.Error("Expected second report to be marked as served from cache")
	}
}

func TestRenderReport_JSONAndMarkdown(t *testing.T) {
	path := writeFixture(t, "Important Document - sample")
	p := NewPipeline(testConfig())

	result, err := p.CheckClaim(context.Background(), model.ClaimSpec{
		Document:  path,
		Offset:    0,
		Substring: "Important Document",
	})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	if err := p.RenderReport(result.Report, jsonPath, mdPath, false); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read JSON report: %v", err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("JSON report does not round-trip: %v", err)
	}
	if decoded.Document != result.Report.Document || decoded.SHA256 != result.Report.SHA256 {
		t.Errorf("Round-tripped report lost fields: %+v", decoded)
	}
	if len(decoded.Outcomes) != 1 || decoded.Outcomes[0].Result == nil || !decoded.Outcomes[0].Result.Verified {
		t.Errorf("Round-tripped outcomes wrong: %+v", decoded.Outcomes)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read Markdown report: %v", err)
	}
	for _, want := range []string{"# Claim check:", "| Page | Offset |", "verified", "Match rate"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

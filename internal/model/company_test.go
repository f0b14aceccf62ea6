package model

import (
	"testing"
	"time"
)

func TestCompanyInput_Normalize_PrependsScheme(t *testing.T) {
	in := CompanyInput{Name: "Stripe", HomepageURL: "stripe.com"}
	out, err := in.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.HomepageURL != "https://stripe.com" {
		t.Errorf("expected scheme prepended, got %q", out.HomepageURL)
	}
}

func TestCompanyInput_Normalize_RejectsEmptyName(t *testing.T) {
	in := CompanyInput{Name: "", HomepageURL: "https://stripe.com"}
	if _, err := in.Normalize(); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestCompanyInput_Normalize_RejectsUnparseableURL(t *testing.T) {
	in := CompanyInput{Name: "X", HomepageURL: "https://"}
	if _, err := in.Normalize(); err == nil {
		t.Error("expected error for unparseable url")
	}
}

func TestCompanyRecord_AddLLMCall_TracksTotals(t *testing.T) {
	rec := NewCompanyRecord("id-1", CompanyInput{Name: "X", HomepageURL: "https://x.com"}, time.Now())

	rec.AddLLMCall(LLMCallRecord{Phase: "selection", PromptTokens: 100, OutputTokens: 20, CostUSD: 0.01})
	rec.AddLLMCall(LLMCallRecord{Phase: "extraction", PromptTokens: 500, OutputTokens: 200, CostUSD: 0.05})

	if rec.TotalInputTokens != 600 {
		t.Errorf("expected 600 input tokens, got %d", rec.TotalInputTokens)
	}
	if rec.TotalOutputTokens != 220 {
		t.Errorf("expected 220 output tokens, got %d", rec.TotalOutputTokens)
	}

	var sum float64
	for _, c := range rec.LLMCallsBreakdown {
		sum += c.CostUSD
	}
	if sum != rec.TotalCostUSD {
		t.Errorf("total_cost_usd (%v) must equal sum of breakdown costs (%v)", rec.TotalCostUSD, sum)
	}
}

func TestCompanyRecord_StatusTransitions(t *testing.T) {
	rec := NewCompanyRecord("id-1", CompanyInput{Name: "X", HomepageURL: "https://x.com"}, time.Now())
	if rec.ScrapeStatus != ScrapeStatusPending {
		t.Fatalf("expected pending, got %s", rec.ScrapeStatus)
	}

	start := time.Now()
	rec.MarkInProgress(start)
	if rec.ScrapeStatus != ScrapeStatusInProgress {
		t.Fatalf("expected in_progress, got %s", rec.ScrapeStatus)
	}

	end := start.Add(2 * time.Second)
	rec.MarkSuccess(start, end)
	if rec.ScrapeStatus != ScrapeStatusSuccess {
		t.Fatalf("expected success, got %s", rec.ScrapeStatus)
	}
	if rec.ScrapeDurationSeconds < 2 {
		t.Errorf("expected duration >= 2s, got %v", rec.ScrapeDurationSeconds)
	}
}

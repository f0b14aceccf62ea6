package model

import "time"

// ResourceStats summarizes how a batch run used crawl/time resources
// across all companies, computed post hoc from the collected records
// rather than from shared mutable counters (see SPEC_FULL.md §9).
type ResourceStats struct {
	TotalPagesCrawled    int
	AvgPagesPerCompany   float64
	AvgSecondsPerCompany float64
	ParallelEfficiency   float64
}

// BatchResult is the orchestrator's output: every company's record plus
// aggregate accounting.
type BatchResult struct {
	Total                 int
	Successful             int
	Failed                 int
	StartTime              time.Time
	EndTime                time.Time
	TotalDurationSeconds   float64
	CompaniesPerMinute     float64
	CompanyRecords         []*CompanyRecord
	Errors                 map[string]string
	ResourceStats          ResourceStats
}

// Finalize computes derived totals from the collected records. It is
// called once, at batch end, and never mutates per-company state.
func Finalize(start, end time.Time, records []*CompanyRecord, errs map[string]string) BatchResult {
	r := BatchResult{
		StartTime:      start,
		EndTime:        end,
		CompanyRecords: records,
		Errors:         errs,
		Total:          len(records) + len(errs),
	}

	var totalWall float64
	var totalPages int
	for _, rec := range records {
		if rec.ScrapeStatus == ScrapeStatusSuccess {
			r.Successful++
		} else {
			r.Failed++
		}
		totalWall += rec.ScrapeDurationSeconds
		totalPages += len(rec.PagesCrawled)
	}
	r.Failed += len(errs)

	r.TotalDurationSeconds = end.Sub(start).Seconds()
	if r.TotalDurationSeconds > 0 {
		r.CompaniesPerMinute = float64(r.Successful) / r.TotalDurationSeconds * 60
	}

	n := len(records)
	if n > 0 {
		r.ResourceStats.TotalPagesCrawled = totalPages
		r.ResourceStats.AvgPagesPerCompany = float64(totalPages) / float64(n)
		r.ResourceStats.AvgSecondsPerCompany = totalWall / float64(n)
	}
	if r.TotalDurationSeconds > 0 {
		r.ResourceStats.ParallelEfficiency = totalWall / r.TotalDurationSeconds
	}

	return r
}

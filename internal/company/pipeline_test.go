package company

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/antoinebi/antoine/internal/cost"
	"github.com/antoinebi/antoine/internal/crawl"
	"github.com/antoinebi/antoine/internal/discovery"
	"github.com/antoinebi/antoine/internal/extraction"
	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/llm"
	"github.com/antoinebi/antoine/internal/model"
	"github.com/antoinebi/antoine/internal/progress"
	"github.com/antoinebi/antoine/internal/promptstore"
	"github.com/antoinebi/antoine/internal/selection"
)

const companyHomepageHTML = `<html><head><title>Acme</title></head><body>
<nav><a href="/about">About</a><a href="/contact">Contact</a></nav>
</body></html>`

const companyAboutHTML = `<html><head><title>About Acme</title></head><body>
<article><p>Acme builds durable widgets for industrial customers across North America. Founded in 2011.</p></article>
</body></html>`

func newCompanyTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(companyHomepageHTML))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(companyAboutHTML))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Contact Acme at hello@acme.example.</p></body></html>`))
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func newTestPipeline(t *testing.T, llmClient *llm.MockClient) *Pipeline {
	t.Helper()
	store, err := promptstore.Load(filepath.Join(t.TempDir(), "prompts.json"))
	require.NoError(t, err)
	calc := cost.NewCalculator(cost.DefaultRates())

	f := fetcher.New()
	return New(
		discovery.New(f),
		selection.New(llmClient, store, calc),
		crawl.New(f),
		extraction.New(llmClient, store, calc),
	)
}

func TestPipeline_Run_FullFlowSucceeds(t *testing.T) {
	srv := newCompanyTestServer(t)
	defer srv.Close()

	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(&llm.Response{
		Content: `{"selected_paths": ["/about", "/contact"]}`,
	}, nil).Once()
	client.On("Complete", mock.Anything, mock.Anything).Return(&llm.Response{
		Content: `{"company_name": "Acme", "industry": "Industrial widgets", "founding_year": "2011"}`,
	}, nil)

	p := newTestPipeline(t, client)
	record := model.NewCompanyRecord("job-1", model.CompanyInput{Name: "Acme", HomepageURL: srv.URL}, time.Now())

	var phases []progress.Phase
	p.Run(context.Background(), record, Options{
		CrawlPolitenessMs: 1,
	}, func(jobID string, phase progress.Phase, message string) {
		phases = append(phases, phase)
	})

	require.Equal(t, model.ScrapeStatusSuccess, record.ScrapeStatus)
	require.Equal(t, "Acme", record.Fields.CompanyName)
	require.NotEmpty(t, record.PagesCrawled)
	require.Contains(t, phases, PhaseDiscovery)
	require.Contains(t, phases, PhaseExtraction)
}

func TestPipeline_Run_EmptyCrawlMarksFailed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	p := newTestPipeline(t, client)
	record := model.NewCompanyRecord("job-2", model.CompanyInput{Name: "Empty Co", HomepageURL: srv.URL}, time.Now())

	p.Run(context.Background(), record, Options{CrawlPolitenessMs: 1}, nil)

	require.Equal(t, model.ScrapeStatusFailed, record.ScrapeStatus)
	require.Equal(t, "No content extracted from pages", record.ScrapeError)
}

func TestPipeline_Run_CostCeilingAbortsBeforeCrawl(t *testing.T) {
	srv := newCompanyTestServer(t)
	defer srv.Close()

	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(&llm.Response{
		Content: `{"selected_paths": ["/about", "/contact"]}`,
		Tokens:  model.TokenUsage{PromptTokens: 1000, CompletionTokens: 1000, TotalTokens: 2000},
	}, nil)

	p := newTestPipeline(t, client)
	record := model.NewCompanyRecord("job-3", model.CompanyInput{Name: "Acme", HomepageURL: srv.URL}, time.Now())

	p.Run(context.Background(), record, Options{
		CrawlPolitenessMs: 1,
		SelectionModel:    "claude-haiku-4-5-20251001",
		MaxCostUSD:        0.000001,
	}, nil)

	require.Equal(t, model.ScrapeStatusFailed, record.ScrapeStatus)
	require.Equal(t, "cost ceiling exceeded", record.ScrapeError)
	require.Empty(t, record.PagesCrawled)
	// Two selection calls (2 paths < 8 triggers the under-selection retry)
	// and no extraction call.
	client.AssertNumberOfCalls(t, "Complete", 2)
}

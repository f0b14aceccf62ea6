package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/model"
)

func longParagraph(n int) string {
	return strings.Repeat("Antoine extracts company facts from public web pages. ", n)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/rich", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Rich Page</title></head><body>
			<nav>skip this nav text</nav>
			<article><p>` + longParagraph(20) + `</p></article>
		</body></html>`))
	})

	mux.HandleFunc("/thin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Thin</title></head><body>
			<div class="content"><p>` + longParagraph(30) + `</p></div>
		</body></html>`))
	})

	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Empty</title></head><body></body></html>`))
	})

	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	return httptest.NewServer(mux)
}

func TestCrawler_Run_PrimaryAcceptedWhenLongEnough(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := New(fetcher.New())
	result := c.Run(context.Background(), srv.URL, []string{"/rich"}, Options{PolitenessDelayMs: 1})

	if result.SuccessfulPages != 1 {
		t.Fatalf("expected 1 successful page, got %d (errors: %v)", result.SuccessfulPages, result.Errors)
	}
	if result.PageResults[0].ExtractionMethod != model.ExtractionMethodPrimary {
		t.Errorf("expected primary extraction, got %s", result.PageResults[0].ExtractionMethod)
	}
}

func TestCrawler_Run_ThinPageSucceeds(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := New(fetcher.New())
	result := c.Run(context.Background(), srv.URL, []string{"/thin"}, Options{PolitenessDelayMs: 1})

	if result.SuccessfulPages != 1 {
		t.Fatalf("expected 1 successful page, got %d", result.SuccessfulPages)
	}
}

func TestCrawler_Run_PerPageFailureDoesNotBlockOthers(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := New(fetcher.New())
	result := c.Run(context.Background(), srv.URL, []string{"/broken", "/rich"}, Options{PolitenessDelayMs: 1})

	if result.TotalPages != 2 {
		t.Fatalf("expected 2 total pages, got %d", result.TotalPages)
	}
	if result.FailedPages != 1 || result.SuccessfulPages != 1 {
		t.Errorf("expected 1 failed and 1 successful page, got failed=%d successful=%d", result.FailedPages, result.SuccessfulPages)
	}
}

func TestCrawler_Run_EmptyPageYieldsNoContentError(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := New(fetcher.New())
	result := c.Run(context.Background(), srv.URL, []string{"/empty"}, Options{PolitenessDelayMs: 1})

	if result.SuccessfulPages != 0 {
		t.Fatalf("expected no successful pages for empty body, got %d", result.SuccessfulPages)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(result.Errors))
	}
}

func TestCrawler_Run_ContentTruncatedAtMaxContentPerPage(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := New(fetcher.New())
	result := c.Run(context.Background(), srv.URL, []string{"/rich"}, Options{PolitenessDelayMs: 1, MaxContentPerPage: 50})

	if result.SuccessfulPages != 1 {
		t.Fatalf("expected 1 successful page, got %d", result.SuccessfulPages)
	}
	got := result.PageResults[0].Content
	if !strings.HasSuffix(got, model.TruncationMarker) {
		t.Errorf("expected truncation marker suffix, got %q", got)
	}
}

func TestCrawler_Run_AggregationIsDeterministicByURL(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := New(fetcher.New())
	result := c.Run(context.Background(), srv.URL, []string{"/rich", "/thin"}, Options{PolitenessDelayMs: 1})

	idxRich := strings.Index(result.AggregatedContent, srv.URL+"/rich")
	idxThin := strings.Index(result.AggregatedContent, srv.URL+"/thin")
	if idxRich == -1 || idxThin == -1 {
		t.Fatalf("expected both page URLs in aggregated content")
	}
	if idxRich > idxThin {
		t.Errorf("expected /rich before /thin (sorted order), got reversed")
	}
}

func TestTruncate_LeavesShortContentUnchanged(t *testing.T) {
	in := "short content"
	if got := truncate(in, 1000); got != in {
		t.Errorf("expected unchanged content, got %q", got)
	}
}

func TestResolvePath_JoinsRelativePathAgainstBase(t *testing.T) {
	got := resolvePath("https://example.com", "/about")
	if got != "https://example.com/about" {
		t.Errorf("expected https://example.com/about, got %q", got)
	}
}

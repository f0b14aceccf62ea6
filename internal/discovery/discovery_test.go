package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/model"
)

const homepageHTML = `<!DOCTYPE html>
<html><body>
<header><a href="/about">About</a></header>
<nav><a href="/products">Products</a><a href="https://external.example.com/x">External</a></nav>
<footer><a href="/contact">Contact</a></footer>
</body></html>`

const sitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>BASE/about</loc></url>
<url><loc>BASE/careers</loc></url>
</urlset>`

const robotsTXT = `User-agent: *
Allow: /about
Disallow: /admin
Sitemap: BASE/sitemap.xml
`

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	mux := http.NewServeMux()
	var base string

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(homepageHTML)) //nolint:errcheck
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(sitemapXML, "BASE", base))) //nolint:errcheck
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(robotsTXT, "BASE", base))) //nolint:errcheck
	})

	srv := httptest.NewServer(mux)
	base = srv.URL
	return srv, base
}

func TestDiscoverer_Run_AggregatesAllThreeSources(t *testing.T) {
	srv, base := newTestServer(t)
	defer srv.Close()

	d := New(fetcher.New())
	result := d.Run(context.Background(), base, Options{OverallTimeoutSeconds: 10, ProbeTimeoutSeconds: 2})

	want := map[string]bool{"/about": true, "/products": true, "/contact": true, "/careers": true}
	for _, p := range result.AllPaths {
		delete(want, p)
	}
	if len(want) != 0 {
		t.Errorf("missing expected paths: %v (got %v)", want, result.AllPaths)
	}
}

func TestDiscoverer_Run_RestrictedPathsExcludedFromAllPaths(t *testing.T) {
	srv, base := newTestServer(t)
	defer srv.Close()

	d := New(fetcher.New())
	result := d.Run(context.Background(), base, Options{OverallTimeoutSeconds: 10, ProbeTimeoutSeconds: 2})

	for _, p := range result.AllPaths {
		if p == "/admin" {
			t.Error("/admin is disallowed and must not appear in all_paths")
		}
	}
	found := false
	for _, p := range result.RestrictedPaths {
		if p == "/admin" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /admin in restricted_paths, got %v", result.RestrictedPaths)
	}
}

func TestDiscoverer_Run_ExternalLinksExcluded(t *testing.T) {
	srv, base := newTestServer(t)
	defer srv.Close()

	d := New(fetcher.New())
	result := d.Run(context.Background(), base, Options{OverallTimeoutSeconds: 10, ProbeTimeoutSeconds: 2})

	for _, p := range result.AllPaths {
		if strings.Contains(p, "external.example.com") {
			t.Errorf("external link leaked into all_paths: %q", p)
		}
	}
}

func TestDiscoverer_Run_RobotsSitemapCollected(t *testing.T) {
	srv, base := newTestServer(t)
	defer srv.Close()

	d := New(fetcher.New())
	result := d.Run(context.Background(), base, Options{OverallTimeoutSeconds: 10, ProbeTimeoutSeconds: 2})

	found := false
	for _, tag := range result.PathSources["/sitemap.xml"] {
		if tag == model.SourceRobotsSitemap {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /sitemap.xml tagged %q from robots.txt Sitemap: directive, got %v",
			model.SourceRobotsSitemap, result.PathSources["/sitemap.xml"])
	}
}

func TestDiscoverer_Run_UniquePathCountInvariant(t *testing.T) {
	srv, base := newTestServer(t)
	defer srv.Close()

	d := New(fetcher.New())
	result := d.Run(context.Background(), base, Options{OverallTimeoutSeconds: 10, ProbeTimeoutSeconds: 2})

	if result.UniquePathCount() != len(result.AllPaths) {
		t.Errorf("unique_path_count mismatch: %d vs %d", result.UniquePathCount(), len(result.AllPaths))
	}
}

func TestDiscoverer_Run_OneSubDiscoveryFailureDoesNotBlockOthers(t *testing.T) {
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(homepageHTML)) //nolint:errcheck
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(robotsTXT, "BASE", base))) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	d := New(fetcher.New())
	result := d.Run(context.Background(), base, Options{OverallTimeoutSeconds: 10, ProbeTimeoutSeconds: 2})

	if len(result.Errors) == 0 {
		t.Error("expected sitemap failure recorded in errors")
	}
	found := false
	for _, p := range result.AllPaths {
		if p == "/about" {
			found = true
		}
	}
	if !found {
		t.Error("expected navigation-derived path despite sitemap failure")
	}
}

func TestCandidateHosts_BareDomainAddsWWW(t *testing.T) {
	hosts := candidateHosts("example.com")
	if len(hosts) != 2 || hosts[0] != "example.com" || hosts[1] != "www.example.com" {
		t.Errorf("unexpected hosts: %v", hosts)
	}
}

func TestCandidateHosts_WWWDomainAddsBare(t *testing.T) {
	hosts := candidateHosts("www.example.com")
	if len(hosts) != 2 || hosts[0] != "www.example.com" || hosts[1] != "example.com" {
		t.Errorf("unexpected hosts: %v", hosts)
	}
}

func TestDiscoverer_Run_AlreadyCanceledContextReturnsEmptyResultNotPanic(t *testing.T) {
	srv, base := newTestServer(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(fetcher.New())
	result := d.Run(ctx, base, Options{OverallTimeoutSeconds: 5, ProbeTimeoutSeconds: 1})

	if len(result.AllPaths) != 0 {
		t.Errorf("expected no paths discovered under a pre-canceled context, got %v", result.AllPaths)
	}
}


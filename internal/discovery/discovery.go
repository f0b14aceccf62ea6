// Package discovery implements antoine's Discovery phase (SPEC_FULL.md
// §4.1): given a homepage URL, produce a deduplicated, source-annotated
// set of same-domain URL paths drawn from three independent sources —
// header/footer navigation, sitemap.xml, and robots.txt.
package discovery

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/model"
)

// Options configures one Discovery run.
type Options struct {
	LocaleFilter         string
	UserAgentFilter      string
	OverallTimeoutSeconds int
	ProbeTimeoutSeconds  int
}

func (o Options) withDefaults() Options {
	if o.UserAgentFilter == "" {
		o.UserAgentFilter = "*"
	}
	if o.OverallTimeoutSeconds <= 0 {
		o.OverallTimeoutSeconds = 60
	}
	if o.ProbeTimeoutSeconds <= 0 {
		o.ProbeTimeoutSeconds = 10
	}
	return o
}

// Discoverer runs Discovery for one company homepage.
type Discoverer struct {
	fetcher fetcher.Client
}

// New creates a Discoverer backed by fetcher.
func New(f fetcher.Client) *Discoverer {
	return &Discoverer{fetcher: f}
}

// Run executes the three sub-discoveries concurrently under a shared
// overall timeout and aggregates their results.
func (d *Discoverer) Run(ctx context.Context, homepageURL string, opts Options) model.DiscoveryResult {
	start := time.Now()
	opts = opts.withDefaults()

	canonical, warnings := d.canonicalize(ctx, homepageURL, opts)

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.OverallTimeoutSeconds)*time.Second)
	defer cancel()

	var (
		navPaths       []string
		navTags        map[string][]model.PathSourceTag
		sitemapPaths   []string
		robotsAllowed  []string
		robotsDenied   []string
		robotsSitemaps []string

		errsMu sync.Mutex
		errs   []string
	)

	addErr := func(err string) {
		errsMu.Lock()
		errs = append(errs, err)
		errsMu.Unlock()
	}

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		paths, tags, err := discoverNavigation(gCtx, d.fetcher, canonical)
		if err != nil {
			logDiscoveryError("navigation", err)
			addErr(eris.Wrap(err, "discovery: navigation").Error())
			return nil
		}
		navPaths, navTags = paths, tags
		return nil
	})

	g.Go(func() error {
		paths, err := discoverSitemap(gCtx, d.fetcher, canonical, opts.LocaleFilter)
		if err != nil {
			logDiscoveryError("sitemap", err)
			addErr(eris.Wrap(err, "discovery: sitemap").Error())
			return nil
		}
		sitemapPaths = paths
		return nil
	})

	g.Go(func() error {
		allowed, denied, sitemaps, err := discoverRobots(gCtx, d.fetcher, canonical, opts.UserAgentFilter)
		if err != nil {
			logDiscoveryError("robots", err)
			addErr(eris.Wrap(err, "discovery: robots").Error())
			return nil
		}
		robotsAllowed, robotsDenied, robotsSitemaps = allowed, denied, sitemaps
		return nil
	})

	// A deadline here is not a programmer error: it is the documented
	// trigger for Selection's deterministic fallback (spec §4.1, §7).
	_ = g.Wait()
	if runCtx.Err() == context.DeadlineExceeded {
		warnings = append(warnings, "discovery: overall timeout exceeded, returning partial results")
	}

	result := model.NewDiscoveryResult(canonical, navPaths, sitemapPaths, robotsAllowed, robotsDenied, robotsSitemaps, navTags)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warnings...)
	result.ElapsedSeconds = time.Since(start).Seconds()
	return result
}

// canonicalize prepends a scheme if missing, then probes both www. and
// bare-domain variants with a short HEAD request; the first variant
// returning 200 becomes the canonical base.
func (d *Discoverer) canonicalize(ctx context.Context, raw string, opts Options) (string, []string) {
	var warnings []string

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw, []string{"discovery: could not parse homepage URL for canonicalization"}
	}

	variants := candidateHosts(parsed.Host)
	probeTimeout := time.Duration(opts.ProbeTimeoutSeconds) * time.Second

	for _, host := range variants {
		probeURL := *parsed
		probeURL.Host = host
		resp, err := d.fetcher.Head(ctx, probeURL.String(), fetcher.Options{Timeout: probeTimeout})
		if err != nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return strings.TrimRight(probeURL.Scheme+"://"+probeURL.Host, "/"), warnings
		}
	}

	warnings = append(warnings, "discovery: neither www nor bare-domain variant responded 200; using original URL")
	return strings.TrimRight(parsed.Scheme+"://"+parsed.Host, "/"), warnings
}

// candidateHosts returns the host itself plus its www./bare-domain
// counterpart, host first.
func candidateHosts(host string) []string {
	if strings.HasPrefix(host, "www.") {
		return []string{host, strings.TrimPrefix(host, "www.")}
	}
	return []string{host, "www." + host}
}

func logDiscoveryError(phase string, err error) {
	zap.L().Warn("discovery sub-task failed", zap.String("phase", phase), zap.Error(err))
}

package discovery

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/model"
)

// navSelector pairs a CSS selector with the PathSourceTag its matches get.
type navSelector struct {
	selector string
	tag      model.PathSourceTag
}

// Explicit selector list per SPEC_FULL.md §4.1: header/footer/nav plus the
// common collapsed-menu class names.
var navSelectors = []navSelector{
	{"header a[href]", model.SourceNavigationHeader},
	{"nav a[href]", model.SourceNavigationNav},
	{"footer a[href]", model.SourceNavigationFooter},
	{".menu a[href]", model.SourceNavigationMenu},
	{".navigation a[href]", model.SourceNavigationMenu},
	{".main-nav a[href]", model.SourceNavigationMenu},
	{".primary-nav a[href]", model.SourceNavigationMenu},
	{".dropdown-menu a[href]", model.SourceNavigationMenu},
	{".mobile-menu a[href]", model.SourceNavigationMenu},
}

// discoverNavigation fetches the homepage once and extracts same-domain
// anchor paths from header/nav/footer/menu regions.
func discoverNavigation(ctx context.Context, f fetcher.Client, canonicalBase string) ([]string, map[string][]model.PathSourceTag, error) {
	resp, err := f.Fetch(ctx, canonicalBase, fetcher.Options{Timeout: 15 * time.Second})
	if err != nil {
		return nil, nil, eris.Wrap(err, "navigation: fetch homepage")
	}
	if resp.StatusCode >= 400 {
		return nil, nil, eris.Errorf("navigation: homepage returned status %d", resp.StatusCode)
	}

	base, err := url.Parse(canonicalBase)
	if err != nil {
		return nil, nil, eris.Wrap(err, "navigation: parse canonical base")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		// Non-HTML homepages are treated as empty navigation, not an error.
		return nil, nil, nil
	}

	var paths []string
	tags := make(map[string][]model.PathSourceTag)
	seen := make(map[string]bool)

	for _, sel := range navSelectors {
		doc.Find(sel.selector).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			path, ok := samePathDomain(base, href)
			if !ok {
				return
			}
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
			tags[path] = appendTagUnique(tags[path], sel.tag)
		})
	}

	return paths, tags, nil
}

// samePathDomain resolves href against base and, if it resolves to the
// same host, returns its path form (leading "/", root preserved).
func samePathDomain(base *url.URL, href string) (string, bool) {
	resolved, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if resolved.Host != "" && resolved.Host != base.Host {
		return "", false
	}
	path := resolved.Path
	if path == "" {
		path = "/"
	}
	return path, true
}

func appendTagUnique(tags []model.PathSourceTag, tag model.PathSourceTag) []model.PathSourceTag {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

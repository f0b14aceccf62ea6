package discovery

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/antoinebi/antoine/internal/fetcher"
)

// sitemapURLSet is a basic sitemap.xml <urlset> document.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapLoc `xml:"url"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// sitemapIndex is a sitemap-of-sitemaps document.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

// discoverSitemap fetches /sitemap.xml, recursing one level into any
// nested sitemap index, and returns same-domain paths (optionally
// filtered to a locale subtree).
func discoverSitemap(ctx context.Context, f fetcher.Client, canonicalBase, localeFilter string) ([]string, error) {
	base, err := url.Parse(canonicalBase)
	if err != nil {
		return nil, eris.Wrap(err, "sitemap: parse canonical base")
	}

	locs, err := fetchSitemapLocs(ctx, f, canonicalBase+"/sitemap.xml")
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]bool)
	addPath := func(raw string) {
		path, ok := samePathDomain(base, raw)
		if !ok || seen[path] {
			return
		}
		seen[path] = true
		paths = append(paths, path)
	}
	for _, loc := range locs {
		addPath(loc)
	}

	if localeFilter != "" {
		paths = filterByLocale(paths, localeFilter)
	}
	return paths, nil
}

// fetchSitemapLocs fetches and parses one sitemap document, recursing one
// level if it is a sitemap index rather than a urlset.
func fetchSitemapLocs(ctx context.Context, f fetcher.Client, sitemapURL string) ([]string, error) {
	resp, err := f.Fetch(ctx, sitemapURL, fetcher.Options{Timeout: 15 * time.Second})
	if err != nil {
		return nil, eris.Wrapf(err, "sitemap: fetch %s", sitemapURL)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("sitemap: %s returned status %d", sitemapURL, resp.StatusCode)
	}

	var idx sitemapIndex
	if err := xml.Unmarshal(resp.Body, &idx); err == nil && len(idx.Sitemaps) > 0 {
		var all []string
		for _, child := range idx.Sitemaps {
			if child.Loc == "" {
				continue
			}
			// Recurse exactly one level: nested sitemaps are fetched as
			// plain urlsets, not as further indexes.
			childResp, err := f.Fetch(ctx, child.Loc, fetcher.Options{Timeout: 15 * time.Second})
			if err != nil {
				continue
			}
			var urlSet sitemapURLSet
			if err := xml.Unmarshal(childResp.Body, &urlSet); err != nil {
				continue
			}
			for _, u := range urlSet.URLs {
				if u.Loc != "" {
					all = append(all, u.Loc)
				}
			}
		}
		return all, nil
	}

	var urlSet sitemapURLSet
	if err := xml.Unmarshal(resp.Body, &urlSet); err != nil {
		return nil, eris.Wrap(err, "sitemap: unmarshal urlset")
	}
	locs := make([]string, 0, len(urlSet.URLs))
	for _, u := range urlSet.URLs {
		if u.Loc != "" {
			locs = append(locs, u.Loc)
		}
	}
	return locs, nil
}

// filterByLocale retains only paths whose segment form contains the
// locale as a path component, with both hyphen and underscore forms
// accepted (e.g. "en-ca" or "en_ca").
func filterByLocale(paths []string, locale string) []string {
	needleHyphen := "/" + strings.ToLower(locale) + "/"
	needleUnderscore := "/" + strings.ReplaceAll(strings.ToLower(locale), "-", "_") + "/"

	var out []string
	for _, p := range paths {
		lower := strings.ToLower(p) + "/"
		if strings.Contains(lower, needleHyphen) || strings.Contains(lower, needleUnderscore) {
			out = append(out, p)
		}
	}
	return out
}

package discovery

import (
	"bufio"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/antoinebi/antoine/internal/fetcher"
)

// discoverRobots fetches /robots.txt and collects the Allow/Disallow paths
// from the group whose user-agent matches userAgentFilter (or the
// wildcard group "*" if no specific match exists), plus any top-level
// Sitemap: URLs (spec §4.1), resolved to same-domain paths.
//
// robots.txt groups are a simple line-oriented format with no published
// Go library exposing raw rule enumeration (only URL-membership testing,
// which the spec does not ask for here) — parsed directly.
func discoverRobots(ctx context.Context, f fetcher.Client, canonicalBase, userAgentFilter string) (allowed, disallowed, sitemaps []string, err error) {
	resp, err := f.Fetch(ctx, canonicalBase+"/robots.txt", fetcher.Options{Timeout: 15 * time.Second})
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "robots: fetch")
	}
	if resp.StatusCode >= 400 {
		// No robots.txt is not an error condition for Discovery.
		return nil, nil, nil, nil
	}

	base, parseErr := url.Parse(canonicalBase)
	if parseErr != nil {
		return nil, nil, nil, eris.Wrap(parseErr, "robots: parse canonical base")
	}

	allowed, disallowed, sitemapURLs := parseRobots(string(resp.Body), userAgentFilter)
	seen := make(map[string]bool)
	for _, raw := range sitemapURLs {
		path, ok := samePathDomain(base, raw)
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		sitemaps = append(sitemaps, path)
	}
	return allowed, disallowed, sitemaps, nil
}

// parseRobots scans robots.txt groups (delimited by one or more
// consecutive User-agent: lines) and returns the Allow/Disallow path
// values from the first group matching filter, falling back to the "*"
// group, plus every Sitemap: URL declared anywhere in the file (Sitemap
// directives are not scoped to a user-agent group).
func parseRobots(body, filter string) (allowed, disallowed, sitemaps []string) {
	type group struct {
		agents     []string
		allowed    []string
		disallowed []string
	}

	var groups []*group
	var current *group
	inAgentBlock := false

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "user-agent":
			if current == nil || !inAgentBlock {
				current = &group{}
				groups = append(groups, current)
			}
			current.agents = append(current.agents, strings.ToLower(value))
			inAgentBlock = true
		case "allow":
			inAgentBlock = false
			if current != nil && value != "" {
				current.allowed = append(current.allowed, value)
			}
		case "disallow":
			inAgentBlock = false
			if current != nil && value != "" {
				current.disallowed = append(current.disallowed, value)
			}
		case "sitemap":
			inAgentBlock = false
			if value != "" {
				sitemaps = append(sitemaps, value)
			}
		default:
			inAgentBlock = false
		}
	}

	filter = strings.ToLower(filter)
	var wildcard *group
	for _, g := range groups {
		for _, a := range g.agents {
			if a == "*" {
				wildcard = g
			}
			if filter != "" && filter != "*" && strings.Contains(a, filter) {
				return g.allowed, g.disallowed, sitemaps
			}
		}
	}
	if wildcard != nil {
		return wildcard.allowed, wildcard.disallowed, sitemaps
	}
	return nil, nil, sitemaps
}

// splitDirective splits a "Key: value" robots.txt line.
func splitDirective(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

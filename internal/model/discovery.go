package model

import "sort"

// PathSourceTag identifies which Discovery sub-source contributed a path.
type PathSourceTag string

const (
	SourceNavigationHeader  PathSourceTag = "navigation_header"
	SourceNavigationNav     PathSourceTag = "navigation_nav"
	SourceNavigationFooter  PathSourceTag = "navigation_footer"
	SourceNavigationMenu    PathSourceTag = "navigation_menu"
	SourceSitemap           PathSourceTag = "sitemap"
	SourceRobotsAllowed     PathSourceTag = "robots_allowed"
	SourceRobotsDisallowed  PathSourceTag = "robots_disallowed"
	SourceRobotsSitemap     PathSourceTag = "robots_sitemap"
)

// DiscoveryResult is the output of phase 1. All_paths is the deduplicated,
// sorted union of the three sub-discoveries.
type DiscoveryResult struct {
	CanonicalURL      string
	AllPaths          []string
	NavigationPaths   []string
	ContentPaths      []string
	RestrictedPaths   []string
	SitemapReferences []string
	PathSources       map[string][]PathSourceTag
	Errors            []string
	Warnings          []string
	ElapsedSeconds    float64
}

// UniquePathCount returns len(AllPaths); kept as a named accessor because
// the invariant unique_path_count == len(all_paths) == len(set(all_paths))
// is load-bearing and easy to violate by hand-building AllPaths elsewhere.
func (d DiscoveryResult) UniquePathCount() int {
	return len(d.AllPaths)
}

// NewDiscoveryResult builds a DiscoveryResult from raw (possibly
// duplicated, unsorted) path sets, computing the deduplicated union and
// the path_sources map.
func NewDiscoveryResult(canonicalURL string, navPaths, sitemapPaths, robotsAllowed, robotsDisallowed, robotsSitemaps []string, navTags map[string][]PathSourceTag) DiscoveryResult {
	sources := make(map[string][]PathSourceTag)
	addSource := func(p string, tag PathSourceTag) {
		for _, t := range sources[p] {
			if t == tag {
				return
			}
		}
		sources[p] = append(sources[p], tag)
	}

	seen := make(map[string]bool)
	var all []string
	addPath := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		all = append(all, p)
	}

	for _, p := range navPaths {
		addPath(p)
		tags := navTags[p]
		if len(tags) == 0 {
			tags = []PathSourceTag{SourceNavigationNav}
		}
		for _, tag := range tags {
			addSource(p, tag)
		}
	}
	for _, p := range sitemapPaths {
		addPath(p)
		addSource(p, SourceSitemap)
	}
	for _, p := range robotsAllowed {
		addPath(p)
		addSource(p, SourceRobotsAllowed)
	}
	for _, p := range robotsDisallowed {
		addSource(p, SourceRobotsDisallowed)
	}
	for _, p := range robotsSitemaps {
		addPath(p)
		addSource(p, SourceRobotsSitemap)
	}

	sort.Strings(all)
	sort.Strings(robotsDisallowed)

	return DiscoveryResult{
		CanonicalURL:      canonicalURL,
		AllPaths:          all,
		NavigationPaths:   dedupSorted(navPaths),
		ContentPaths:      dedupSorted(sitemapPaths),
		RestrictedPaths:   dedupSorted(robotsDisallowed),
		SitemapReferences: dedupSorted(sitemapPaths),
		PathSources:       sources,
	}
}

func dedupSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

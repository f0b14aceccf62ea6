package selection

import (
	"fmt"

	"github.com/antoinebi/antoine/internal/model"
)

// standardFallbackPaths is used when the orchestrator detected no locale
// in the homepage URL (SPEC_FULL.md §4.2).
var standardFallbackPaths = []string{
	"/", "/about", "/about-us", "/about/our-company", "/company", "/contact",
	"/contact-us", "/careers", "/jobs", "/business", "/enterprise", "/support",
	"/help", "/products", "/services", "/solutions", "/leadership", "/team",
	"/news", "/press",
}

// localeFallbackSuffixes are appended to the locale prefix; "/" and
// "/about"/"/contact" are added unprefixed per spec.
var localeFallbackSuffixes = []string{
	"", "/about", "/about-us", "/company", "/contact", "/contact-us",
	"/careers", "/products", "/services", "/news",
}

// Fallback builds the deterministic SelectionResult used whenever the
// selection LLM call fails outright (network, parse, empty after retry).
// It never fails and always reports zero cost.
func Fallback(locale string) model.SelectionResult {
	paths := fallbackPaths(locale)
	priorities := make(map[string]float64, len(paths))
	for _, p := range paths {
		priorities[p] = 1.0
	}
	return model.SelectionResult{
		Success:       true,
		SelectedPaths: paths,
		PathPriorities: priorities,
		ModelUsed:     model.ModelUsedFallback,
		CostUSD:       0,
	}
}

func fallbackPaths(locale string) []string {
	if locale == "" {
		out := make([]string, len(standardFallbackPaths))
		copy(out, standardFallbackPaths)
		return out
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, suffix := range localeFallbackSuffixes {
		add(fmt.Sprintf("/%s%s", locale, suffix))
	}
	add("/")
	add("/about")
	add("/contact")
	return out
}

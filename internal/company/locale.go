package company

import (
	"net/url"
	"regexp"
	"strings"
)

// localePatterns are checked in order against the homepage URL's path;
// the first match's capture group becomes the detected locale
// (spec §4.5).
var localePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/([a-z]{2}-[a-z]{2})(/|$)`),
	regexp.MustCompile(`^/([a-z]{2}_[a-z]{2})(/|$)`),
	regexp.MustCompile(`^/([a-z]{2})(/|$)`),
	regexp.MustCompile(`^/([a-z]{2}-[a-z]{3})(/|$)`),
	regexp.MustCompile(`^/([a-z]{3}-[a-z]{2})(/|$)`),
}

var numericOnly = regexp.MustCompile(`^[0-9]+([_-][0-9]+)?$`)

// detectLocale extracts a locale segment from the homepage URL's path, or
// "" if none of the patterns match or the capture is purely numeric.
func detectLocale(homepageURL string) string {
	u, err := url.Parse(homepageURL)
	if err != nil {
		return ""
	}
	path := strings.ToLower(u.Path)

	for _, pat := range localePatterns {
		m := pat.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		locale := strings.ReplaceAll(m[1], "_", "-")
		if numericOnly.MatchString(locale) {
			continue
		}
		return locale
	}
	return ""
}

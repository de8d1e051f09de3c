package api

import (
	"net/url"
	"regexp"
)

// The widget runs inside an iframe under /embed/<slug> (and the demo pages
// under /demo/<slug>), so the Referer path carries the tenant when the embed
// script posts without an explicit slug.
var refererPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/embed/([^/]+)`),
	regexp.MustCompile(`/demo/([^/]+)`),
}

// resolveSlug applies the slug resolution policy in order: the explicit
// request value wins, then the Referer path patterns, then failure ("").
func resolveSlug(explicit, referer string) string {
	if explicit != "" {
		return explicit
	}
	return slugFromReferer(referer)
}

func slugFromReferer(referer string) string {
	if referer == "" {
		return ""
	}

	parsed, err := url.Parse(referer)
	if err != nil {
		return ""
	}

	for _, pattern := range refererPatterns {
		if match := pattern.FindStringSubmatch(parsed.EscapedPath()); match != nil {
			if decoded, err := url.PathUnescape(match[1]); err == nil {
				return decoded
			}
			return match[1]
		}
	}
	return ""
}

package fetcher

import (
	"net/url"
	"strings"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/htmltext"
)

// skippedPathParts mark utility pages whose content adds noise, not substance.
var skippedPathParts = []string{
	"login", "signup", "register", "contact", "about",
	"terms", "privacy",
}

// navPhrases are anchor texts that belong to site navigation.
var navPhrases = []string{
	"sign in", "log in", "register", "contact", "about us",
}

// filterLinks keeps substantive same-domain links in document order, up to
// maxLinks, with duplicates removed.
func filterLinks(anchors []htmltext.Link, base *url.URL, maxLinks int) []string {
	if maxLinks <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	for _, anchor := range anchors {
		href := strings.TrimSpace(anchor.Href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			continue
		}

		resolved, err := base.Parse(href)
		if err != nil || resolved.Host != base.Host {
			continue
		}
		resolved.Fragment = ""
		target := resolved.String()
		if target == base.String() || seen[target] {
			continue
		}

		if isUtilityPath(resolved.Path) || isNavText(anchor.Text) {
			continue
		}

		seen[target] = true
		links = append(links, target)
		if len(links) == maxLinks {
			break
		}
	}
	return links
}

func isUtilityPath(p string) bool {
	p = strings.ToLower(p)
	for _, part := range skippedPathParts {
		if strings.Contains(p, part) {
			return true
		}
	}
	return false
}

// isNavText rejects short anchors and common navigation labels. Substantive
// links tend to carry descriptive text.
func isNavText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= 5 {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range navPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

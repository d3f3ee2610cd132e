// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roadmap

import (
	"regexp"
	"strings"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^\)]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s\)]+`)
)

// ParseContent extracts the description text and resource URLs from a
// topic's Markdown content file (R3.1, R3.2). The description is the body
// text with headings removed and links unwrapped; resources are the deduped
// URLs, pipe-joined.
func ParseContent(content string) (description, resources string) {
	if content == "" {
		return "", ""
	}
	return extractDescription(content), extractResources(content)
}

// extractDescription strips heading lines, unwraps Markdown links to their
// text, and joins the remaining paragraphs with spaces.
func extractDescription(content string) string {
	var parts []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts = append(parts, markdownLinkRe.ReplaceAllString(trimmed, "$1"))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// extractResources collects Markdown link targets and bare URLs, preserving
// first-seen order and dropping duplicates.
func extractResources(content string) string {
	var urls []string
	seen := make(map[string]bool)

	add := func(url string) {
		if strings.HasPrefix(url, "http") && !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}

	for _, m := range markdownLinkRe.FindAllStringSubmatch(content, -1) {
		add(m[2])
	}
	for _, url := range bareURLRe.FindAllString(content, -1) {
		add(url)
	}

	return strings.Join(urls, "|")
}

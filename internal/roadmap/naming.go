// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roadmap

import (
	"regexp"
	"strings"
)

var (
	nonSlugRe    = regexp.MustCompile(`[^\w\s-]`)
	separatorRe  = regexp.MustCompile(`[\s_-]+`)
	edgeHyphenRe = regexp.MustCompile(`^-+|-+$`)
)

// Slugify converts a topic label to the filename slug used by the
// developer-roadmap content directory (R4.1). Content files are named
// slug@nodeID.md.
func Slugify(label string) string {
	s := strings.ToLower(label)
	s = nonSlugRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "-")
	return edgeHyphenRe.ReplaceAllString(s, "")
}

// FormatCategory turns a roadmap name like "engineering-manager" into a
// display category like "Engineering Manager" (R4.2).
func FormatCategory(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

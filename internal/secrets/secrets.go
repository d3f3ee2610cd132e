// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names recognized by Load. Files with any other name are ignored.
const (
	// GeminiAPIKey authenticates enrichment calls to the Gemini API.
	GeminiAPIKey = "gemini-api-key"

	// GitHubToken raises the GitHub API rate limit for content fetching.
	GitHubToken = "github-token"
)

var knownKeys = map[string]bool{
	GeminiAPIKey: true,
	GitHubToken:  true,
}

// Load reads the recognized key files in dir and returns a map of key name to
// trimmed contents. A missing directory or missing files are not errors; Load
// returns an empty map. Unrecognized or unreadable files produce a warning on
// stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !knownKeys[name] {
			fmt.Fprintf(os.Stderr, "warning: ignoring unrecognized secret %s\n", name)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

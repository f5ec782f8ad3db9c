package service

import "strings"

// FilterModels keeps the slugs whose words contain query, ignoring case.
// Hyphens in slugs count as spaces so "dyson v8" matches "dyson-v8".
func FilterModels(slugs []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if strings.Contains(strings.ReplaceAll(strings.ToLower(slug), "-", " "), query) {
			matches = append(matches, slug)
		}
	}
	return matches
}

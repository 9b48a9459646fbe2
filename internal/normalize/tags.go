package normalize

import "strings"

// NormalizeTags trims every tag, drops empties and repeats, and keeps the
// original relative order. Case is left untouched.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ParseTags splits a comma-delimited tag string and normalizes the result.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}

// JoinTags is the inverse of ParseTags, used for persistence.
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

package utils

import "strings"

// ParseTags splits a comma-separated tag list. Tags are trimmed, empty
// entries dropped and duplicates removed, keeping first-seen order.
func ParseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// NormalizeTags returns the canonical stored form of a tag list.
func NormalizeTags(raw string) string {
	return strings.Join(ParseTags(raw), ",")
}

// TagLikePattern returns a LIKE pattern, using '!' as the escape
// character, that matches tag as a whole element of the column wrapped in
// commas.
func TagLikePattern(tag string) string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(tag)
	return "%," + escaped + ",%"
}

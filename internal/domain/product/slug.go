package product

import "strings"

// Slugify lowercases the name and collapses runs of non-alphanumeric
// characters into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

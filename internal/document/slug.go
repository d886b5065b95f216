package document

import "strings"

// ToSlug derives a document id from a title: lowercased, with every run of
// non-alphanumeric characters collapsed to a single '-', and no leading or
// trailing '-'.
func ToSlug(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

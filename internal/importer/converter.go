package importer

import "strings"

// NameToID converts a display name to a snake_case identifier. Letters and
// digits are lowercased, each run of spaces, hyphens and underscores becomes
// a single underscore, and anything else is dropped.
//
// Postcondition: result contains only [a-z0-9_], never starts or ends with
// '_', and NameToID(NameToID(s)) == NameToID(s).
func NameToID(name string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			gap = true
		}
	}
	return b.String()
}

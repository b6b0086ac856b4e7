package printer

import "strings"

// Truncate shortens a text to max runes, marking the cut with "...".
// New lines are flattened so the text fits in a table cell.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

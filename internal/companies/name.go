package companies

import "strings"

// NormalizeName trims a company name and collapses internal whitespace. Case is kept.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

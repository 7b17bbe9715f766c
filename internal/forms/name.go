package forms

import (
	"fmt"
	"strings"
)

// GDPRSuffix selects the consent variant of a template.
const GDPRSuffix = "_gdpr"

// NormalizeName trims and lower-cases a template name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ResolveVariant returns the effective template name for a base name and consent flag.
func ResolveVariant(base string, gdpr bool) string {
	name := NormalizeName(base)
	if gdpr {
		name += GDPRSuffix
	}
	return name
}

// NotFoundMessage is the client-facing message for a missing template.
func NotFoundMessage(name string) string {
	return fmt.Sprintf("Form with name '%s' not found.", name)
}

// Package labels resolves the fixed field captions printed on guest documents.
package labels

import "strings"

// Field keys with built-in captions.
const (
	FirstName          = "first_name"
	LastName           = "last_name"
	Company            = "company"
	Phone              = "phone"
	Email              = "email"
	SafetyInstructions = "safety_instructions"
	GDPRConsent        = "gdpr_consent"
	Signature          = "signature"
	Yes                = "yes"
	No                 = "no"
)

// Table maps field key to locale to caption. A Table is read-only once built.
type Table struct {
	entries map[string]map[string]string
}

// NewTable copies entries into a new Table. Locale keys are lower-cased.
func NewTable(entries map[string]map[string]string) Table {
	copied := make(map[string]map[string]string, len(entries))
	for key, byLocale := range entries {
		inner := make(map[string]string, len(byLocale))
		for locale, caption := range byLocale {
			inner[strings.ToLower(locale)] = caption
		}
		copied[key] = inner
	}
	return Table{entries: copied}
}

// Resolve returns the caption for key in locale, or key itself when either is unknown.
func (t Table) Resolve(key, locale string) string {
	byLocale, ok := t.entries[key]
	if !ok {
		return key
	}
	if caption, ok := byLocale[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return caption
	}
	return key
}

// Bool returns the yes or no caption for v.
func (t Table) Bool(v bool, locale string) string {
	if v {
		return t.Resolve(Yes, locale)
	}
	return t.Resolve(No, locale)
}

var defaultTable = NewTable(map[string]map[string]string{
	FirstName:          {"cs": "Jméno", "en": "First Name", "de": "Vorname"},
	LastName:           {"cs": "Příjmení", "en": "Last Name", "de": "Nachname"},
	Company:            {"cs": "Společnost", "en": "Company", "de": "Firma"},
	Phone:              {"cs": "Telefonní číslo", "en": "Phone Number", "de": "Telefonnummer"},
	Email:              {"cs": "E-mail", "en": "Email", "de": "E-Mail"},
	SafetyInstructions: {"cs": "Bezpečnostní pokyny", "en": "Safety Instructions", "de": "Sicherheitsanweisungen"},
	GDPRConsent:        {"cs": "Souhlas GDPR", "en": "GDPR Consent", "de": "DSGVO-Zustimmung"},
	Signature:          {"cs": "Podpis", "en": "Signature", "de": "Unterschrift"},
	Yes:                {"cs": "Ano", "en": "Yes", "de": "Ja"},
	No:                 {"cs": "Ne", "en": "No", "de": "Nein"},
})

// Default returns the built-in cs/en/de table.
func Default() Table { return defaultTable }

// Resolve looks key up in the default table.
func Resolve(key, locale string) string { return defaultTable.Resolve(key, locale) }

package guestbook

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const filenameTimeLayout = "20060102_150405"

// DocumentFilename derives the download filename for a submission, e.g.
// ("Novák", "Jiří", 2024-03-05 14:30:00) -> "novak_jiri_20240305_143000.pdf".
// The time is formatted in its own location, the one the admin listing shows.
// Diacritics are folded to ASCII; whitespace and anything unsafe in a header value become '_'.
func DocumentFilename(lastName, firstName string, createdAt time.Time) string {
	base := lastName + "_" + firstName + "_" + createdAt.Format(filenameTimeLayout)
	base = strings.ToLower(strings.TrimSpace(base))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, base)
	if err != nil {
		folded = base
	}

	var b strings.Builder
	b.Grow(len(folded) + 4)
	for _, r := range folded {
		switch {
		case r > unicode.MaxASCII:
			// dropped: no ASCII form after folding (e.g. ł, ß)
		case r == ' ' || r == '"' || r == '/' || r == '\\' || unicode.IsControl(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(".pdf")
	return b.String()
}

package guestbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentFilename(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		last  string
		first string
		at    time.Time
		want  string
	}{
		{"czech diacritics", "Novák", "Jiří", at, "novak_jiri_20240305_143000.pdf"},
		{"german umlauts", "Müller", "Jörg", at, "muller_jorg_20240305_143000.pdf"},
		{"surrounding whitespace", "  Smith", "Anna ", at, "smith_anna__20240305_143000.pdf"},
		{"header unsafe characters", `O"Brien/x`, `a\b`, at, "o_brien_x_a_b_20240305_143000.pdf"},
		{"non latin dropped", "Łukasz", "Zoë", at, "ukasz_zoe_20240305_143000.pdf"},
		{"wall clock of its zone", "Doe", "Jane", time.Date(2024, 3, 5, 14, 30, 0, 0, time.FixedZone("CET", 3600)), "doe_jane_20240305_143000.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentFilename(tt.last, tt.first, tt.at))
		})
	}
}

func TestDocumentFilenameMatchesListedTime(t *testing.T) {
	prague, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		t.Skip("tzdata not available")
	}
	createdAt := time.Date(2024, 3, 5, 13, 30, 0, 0, time.UTC).In(prague)

	assert.Equal(t, "novak_jiri_20240305_143000.pdf", DocumentFilename("Novák", "Jiří", createdAt))
	assert.Equal(t, "novak_jiri_20240305_133000.pdf", DocumentFilename("Novák", "Jiří", createdAt.UTC()))
}

package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVariant(t *testing.T) {
	tests := []struct {
		base string
		gdpr bool
		want string
	}{
		{"visitor", false, "visitor"},
		{"visitor", true, "visitor_gdpr"},
		{"  Visitor ", true, "visitor_gdpr"},
		{"EN", false, "en"},
		{"", true, "_gdpr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveVariant(tt.base, tt.gdpr), "%q gdpr=%v", tt.base, tt.gdpr)
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Form with name 'visitor_gdpr' not found.", NotFoundMessage("visitor_gdpr"))
}

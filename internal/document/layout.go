package document

import "time"

// RGB is an 8-bit colour.
type RGB struct{ R, G, B int }

// Layout holds page geometry and typography in millimetres and points.
// Renderers copy it on construction.
type Layout struct {
	PageSize     string
	MarginLeft   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64

	FontSize       float64 // body text, points
	LineHeight     float64 // body line advance, mm
	HeaderFontSize float64
	HeadingSizes   [6]float64 // h1..h6, points
	ParagraphGap   float64
	ListIndent     float64

	LabelWidth      float64
	SignatureWidth  float64 // bounding box; the image is scaled to fit
	SignatureHeight float64

	HeadingColor RGB
	LabelColor   RGB
	TextColor    RGB
	RuleColor    RGB

	// DocumentDate is written as the PDF creation and modification date so
	// identical input renders identical bytes.
	DocumentDate time.Time
	Producer     string
}

// DefaultLayout returns A4 with 15mm side and 8mm top/bottom margins and 12px (9pt) body text.
func DefaultLayout() Layout {
	return Layout{
		PageSize:     "A4",
		MarginLeft:   15,
		MarginTop:    8,
		MarginRight:  15,
		MarginBottom: 8,

		FontSize:       9,
		LineHeight:     4.5,
		HeaderFontSize: 18,
		HeadingSizes:   [6]float64{18, 13.5, 10.5, 9, 7.5, 6},
		ParagraphGap:   1.5,
		ListIndent:     5,

		LabelWidth:      40,
		SignatureWidth:  60,
		SignatureHeight: 30,

		HeadingColor: RGB{0x01, 0x57, 0x9b},
		LabelColor:   RGB{0x55, 0x55, 0x55},
		TextColor:    RGB{0, 0, 0},
		RuleColor:    RGB{0xcc, 0xcc, 0xcc},

		DocumentDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Producer:     "guestdesk",
	}
}

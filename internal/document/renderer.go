// Package document renders guest registration PDFs from a form template,
// visitor data and a hand-drawn signature.
package document

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/guestdesk/backend/internal/labels"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
)

const (
	fontFamily    = "Go"
	signatureName = "signature"
	ptToMM        = 25.4 / 72
	pxToMM        = 25.4 / 96
)

var fontFaces = []struct {
	style string
	data  []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
	{"BI", gobolditalic.TTF},
}

// Request is the per-visitor input to Render.
type Request struct {
	Header       string
	Locale       string
	Visitor      models.Visitor
	Acknowledged bool
	GDPR         bool
	Signature    Signature
}

// Renderer produces PDF documents. It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	layout Layout
	labels labels.Table
}

// NewRenderer creates a renderer with its own copy of layout and table.
func NewRenderer(layout Layout, table labels.Table) *Renderer {
	return &Renderer{layout: layout, labels: table}
}

// Render builds the document for req around the template body. Any failure
// is returned as an apperr rendering error and no bytes are returned.
func (r *Renderer) Render(req Request, body string) ([]byte, error) {
	if len(req.Signature.Data) == 0 {
		return nil, ErrInvalidSignature
	}
	l := r.layout
	pdf := fpdf.New("P", "mm", l.PageSize, "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(l.DocumentDate)
	pdf.SetModificationDate(l.DocumentDate)
	pdf.SetProducer(l.Producer, true)
	pdf.SetTitle(req.Header, true)
	for _, face := range fontFaces {
		pdf.AddUTF8FontFromBytes(fontFamily, face.style, face.data)
	}
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginRight)
	pdf.SetAutoPageBreak(true, l.MarginBottom)
	pdf.AddPage()

	w := &writer{pdf: pdf, layout: l}
	w.heading(req.Header, l.HeaderFontSize, AlignLeft)
	w.rule()
	for _, block := range Parse(Sanitize(body)) {
		w.block(block)
	}
	w.rule()
	r.fields(w, req)
	w.signature(r.labels.Resolve(labels.Signature, req.Locale), req.Signature)

	if err := pdf.Error(); err != nil {
		return nil, apperr.Rendering(err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Rendering(err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fields(w *writer, req Request) {
	loc := req.Locale
	email := ""
	if req.Visitor.Email != nil {
		email = *req.Visitor.Email
	}
	rows := []struct{ key, value string }{
		{labels.FirstName, req.Visitor.FirstName},
		{labels.LastName, req.Visitor.LastName},
		{labels.Company, req.Visitor.Company},
		{labels.Phone, req.Visitor.Phone},
		{labels.Email, email},
		{labels.SafetyInstructions, r.labels.Bool(req.Acknowledged, loc)},
		{labels.GDPRConsent, r.labels.Bool(req.GDPR, loc)},
	}
	w.pdf.Ln(w.layout.ParagraphGap)
	for _, row := range rows {
		w.field(r.labels.Resolve(row.key, loc), row.value)
	}
}

// writer draws onto a single document.
type writer struct {
	pdf    *fpdf.Fpdf
	layout Layout
}

func (w *writer) setFont(run Run, size float64) {
	style := ""
	if run.Bold {
		style += "B"
	}
	if run.Italic {
		style += "I"
	}
	if run.Underline {
		style += "U"
	}
	w.pdf.SetFont(fontFamily, style, size)
}

func (w *writer) setColor(c RGB) { w.pdf.SetTextColor(c.R, c.G, c.B) }

func (w *writer) block(b Block) {
	l := w.layout
	switch b.Kind {
	case BlockRule:
		w.rule()
	case BlockHeading:
		size := l.HeadingSizes[clamp(b.Level, 1, 6)-1]
		w.heading(b.Text(), size, b.Align)
	case BlockListItem:
		marker := "•"
		if b.Ordered {
			marker = strconv.Itoa(b.Index) + "."
		}
		indent := l.ListIndent * float64(b.Level+1)
		w.setColor(l.TextColor)
		w.setFont(Run{}, l.FontSize)
		w.pdf.SetX(l.MarginLeft + indent - l.ListIndent)
		w.pdf.CellFormat(l.ListIndent, l.LineHeight, marker, "", 0, "L", false, 0, "")
		w.indented(l.MarginLeft+indent, b.Runs)
		w.pdf.Ln(l.LineHeight)
	case BlockQuote:
		w.setColor(l.LabelColor)
		w.indented(l.MarginLeft+l.ListIndent, b.Runs)
		w.pdf.Ln(l.LineHeight + l.ParagraphGap)
	default:
		w.setColor(l.TextColor)
		if len(b.Runs) == 0 {
			w.pdf.Ln(l.LineHeight)
			return
		}
		if b.Align != AlignLeft && b.Align != "" {
			// Aligned text is set as one cell in the style of its first run.
			w.setFont(b.Runs[0], l.FontSize)
			w.pdf.MultiCell(0, l.LineHeight, b.Text(), "", string(b.Align), false)
		} else {
			w.runs(b.Runs)
			w.pdf.Ln(l.LineHeight)
		}
		w.pdf.Ln(l.ParagraphGap)
	}
}

func (w *writer) runs(runs []Run) {
	for _, run := range runs {
		w.setFont(run, w.layout.FontSize)
		w.pdf.Write(w.layout.LineHeight, run.Text)
	}
}

// indented writes runs with a temporary left margin so wrapped lines stay aligned.
func (w *writer) indented(left float64, runs []Run) {
	w.pdf.SetLeftMargin(left)
	w.pdf.SetX(left)
	w.runs(runs)
	w.pdf.SetLeftMargin(w.layout.MarginLeft)
}

func (w *writer) heading(text string, size float64, align Align) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.setColor(w.layout.HeadingColor)
	w.pdf.SetFont(fontFamily, "B", size)
	w.pdf.MultiCell(0, size*ptToMM*1.3, text, "", string(align), false)
	w.pdf.Ln(w.layout.ParagraphGap)
	w.setColor(w.layout.TextColor)
}

func (w *writer) rule() {
	l := w.layout
	pageWidth, _ := w.pdf.GetPageSize()
	y := w.pdf.GetY() + 1
	w.pdf.SetDrawColor(l.RuleColor.R, l.RuleColor.G, l.RuleColor.B)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Line(l.MarginLeft, y, pageWidth-l.MarginRight, y)
	w.pdf.SetY(y + 2)
}

func (w *writer) field(label, value string) {
	l := w.layout
	w.setColor(l.LabelColor)
	w.pdf.SetFont(fontFamily, "B", l.FontSize)
	w.pdf.CellFormat(l.LabelWidth, l.LineHeight, label+":", "", 0, "L", false, 0, "")
	w.setColor(l.TextColor)
	w.pdf.SetFont(fontFamily, "", l.FontSize)
	w.pdf.MultiCell(0, l.LineHeight, value, "", "L", false)
	w.pdf.Ln(l.ParagraphGap)
}

func (w *writer) signature(label string, sig Signature) {
	l := w.layout
	w.setColor(l.LabelColor)
	w.pdf.SetFont(fontFamily, "B", l.FontSize)
	w.pdf.CellFormat(0, l.LineHeight, label+":", "", 1, "L", false, 0, "")
	w.pdf.Ln(l.ParagraphGap)

	width, height := fit(float64(sig.Width)*pxToMM, float64(sig.Height)*pxToMM, l.SignatureWidth, l.SignatureHeight)
	_, pageHeight := w.pdf.GetPageSize()
	if w.pdf.GetY()+height > pageHeight-l.MarginBottom {
		w.pdf.AddPage()
	}
	opts := fpdf.ImageOptions{ImageType: sig.imageType()}
	source := sig.Source
	if len(source) == 0 {
		source = sig.Data
	}
	// The drawn image may be transcoded; the attachment keeps the decoded bytes.
	w.pdf.SetAttachments([]fpdf.Attachment{{
		Content:     source,
		Filename:    sig.attachmentName(),
		Description: label,
	}})
	w.pdf.RegisterImageOptionsReader(signatureName, opts, bytes.NewReader(sig.Data))
	if w.pdf.Err() {
		return
	}
	x, y := w.pdf.GetX(), w.pdf.GetY()
	w.pdf.ImageOptions(signatureName, x, y, width, height, false, opts, 0, "")
	w.pdf.SetDrawColor(l.RuleColor.R, l.RuleColor.G, l.RuleColor.B)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Rect(x, y, width, height, "D")
	w.pdf.SetY(y + height)
}

// fit shrinks w×h to fit inside maxW×maxH keeping the aspect ratio. It never enlarges.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := 1.0
	if s := maxW / w; s < scale {
		scale = s
	}
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

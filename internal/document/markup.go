package document

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

var nbspReplacer = strings.NewReplacer("&nbsp;", " ", "&#160;", " ", "\u00a0", " ")

// Sanitize replaces non-breaking spaces, trims, and strips everything outside
// the rich-text subset the renderer understands.
func Sanitize(body string) string {
	trimmed := strings.TrimSpace(nbspReplacer.Replace(body))
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"p", "br", "h1", "h2", "h3", "h4", "h5", "h6",
			"strong", "b", "em", "i", "u", "s",
			"ol", "ul", "li", "blockquote", "span", "hr",
		)
		policy.AllowAttrs("class").Matching(regexp.MustCompile(`^(ql-[a-z0-9-]+)( ql-[a-z0-9-]+)*$`)).Globally()
		policy.AllowAttrs("data-list").Matching(regexp.MustCompile(`^(bullet|ordered)$`)).OnElements("li")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.AllowElements("a")
		markupPolicy = policy
	})
	return markupPolicy
}

// BlockKind is the layout role of a block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockQuote
	BlockRule
)

// Align is horizontal text alignment.
type Align string

const (
	AlignLeft    Align = "L"
	AlignCenter  Align = "C"
	AlignRight   Align = "R"
	AlignJustify Align = "J"
)

// Run is a span of text with a single style.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

func (r Run) sameStyle(o Run) bool {
	return r.Bold == o.Bold && r.Italic == o.Italic && r.Underline == o.Underline
}

// Block is one vertically stacked unit of the template body.
type Block struct {
	Kind    BlockKind
	Level   int // heading level 1-6, or list nesting depth starting at 0
	Ordered bool
	Index   int // 1-based position in an ordered list
	Align   Align
	Runs    []Run
}

// Text returns the concatenated run text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Parse converts sanitized markup into blocks. Whitespace is collapsed the way
// a browser would; text outside any block element forms its own paragraph.
func Parse(markup string) []Block {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil
	}
	p := &parser{}
	for _, n := range nodes {
		p.walk(n, Run{})
	}
	p.close()
	return p.blocks
}

type listContext struct {
	ordered bool
	count   int
}

type parser struct {
	blocks   []Block
	cur      *Block
	hasBreak bool
	lists    []listContext
}

func (p *parser) walk(n *html.Node, style Run) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, style)
		return
	case html.ElementNode:
	default:
		p.children(n, style)
		return
	}

	switch n.DataAtom {
	case atom.P, atom.Div:
		if p.cur != nil && p.cur.Kind == BlockListItem {
			// Paragraphs inside list items continue the item on a new line.
			if len(p.cur.Runs) > 0 {
				p.lineBreak(style)
			}
			p.children(n, style)
			return
		}
		p.open(Block{Kind: BlockParagraph, Align: alignOf(n)})
		p.children(n, style)
		p.close()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		p.open(Block{Kind: BlockHeading, Level: level, Align: alignOf(n)})
		style.Bold = true
		p.children(n, style)
		p.close()
	case atom.Blockquote:
		p.open(Block{Kind: BlockQuote, Align: alignOf(n)})
		style.Italic = true
		p.children(n, style)
		p.close()
	case atom.Ul, atom.Ol:
		p.close()
		p.lists = append(p.lists, listContext{ordered: n.DataAtom == atom.Ol})
		p.children(n, style)
		p.lists = p.lists[:len(p.lists)-1]
	case atom.Li:
		p.close()
		block := Block{Kind: BlockListItem, Align: AlignLeft, Level: indentOf(n)}
		if depth := len(p.lists); depth > 0 {
			ctx := &p.lists[depth-1]
			ctx.count++
			block.Ordered = ctx.ordered
			if kind := attr(n, "data-list"); kind != "" {
				block.Ordered = kind == "ordered"
			}
			block.Index = ctx.count
			block.Level += depth - 1
		}
		p.open(block)
		p.children(n, style)
		p.close()
	case atom.Br:
		if p.cur == nil {
			p.open(Block{Kind: BlockParagraph, Align: AlignLeft})
		}
		p.lineBreak(style)
	case atom.Hr:
		p.close()
		p.blocks = append(p.blocks, Block{Kind: BlockRule})
	case atom.Strong, atom.B:
		style.Bold = true
		p.children(n, style)
	case atom.Em, atom.I:
		style.Italic = true
		p.children(n, style)
	case atom.U, atom.A:
		style.Underline = true
		p.children(n, style)
	default:
		p.children(n, style)
	}
}

func (p *parser) children(n *html.Node, style Run) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, style)
	}
}

func (p *parser) open(b Block) {
	p.close()
	p.cur = &b
	p.hasBreak = false
}

func (p *parser) close() {
	if p.cur == nil {
		return
	}
	b := *p.cur
	p.cur = nil
	for len(b.Runs) > 0 {
		last := &b.Runs[len(b.Runs)-1]
		last.Text = strings.TrimRight(last.Text, " \n")
		if last.Text != "" {
			break
		}
		b.Runs = b.Runs[:len(b.Runs)-1]
	}
	// An editor's empty line (<p><br></p>) is kept as a spacer paragraph.
	if len(b.Runs) == 0 && !(p.hasBreak && b.Kind == BlockParagraph) {
		return
	}
	p.blocks = append(p.blocks, b)
}

func (p *parser) text(s string, style Run) {
	collapsed := collapseSpace(s)
	if collapsed == "" {
		return
	}
	if p.cur == nil {
		if strings.TrimSpace(collapsed) == "" {
			return
		}
		p.open(Block{Kind: BlockParagraph, Align: AlignLeft})
	}
	if strings.HasPrefix(collapsed, " ") && p.atLineStart() {
		collapsed = collapsed[1:]
	}
	if collapsed == "" {
		return
	}
	p.appendRun(Run{Text: collapsed, Bold: style.Bold, Italic: style.Italic, Underline: style.Underline})
}

func (p *parser) lineBreak(style Run) {
	p.hasBreak = true
	p.appendRun(Run{Text: "\n", Bold: style.Bold, Italic: style.Italic, Underline: style.Underline})
}

func (p *parser) appendRun(r Run) {
	runs := p.cur.Runs
	if n := len(runs); n > 0 && runs[n-1].sameStyle(r) {
		runs[n-1].Text += r.Text
		return
	}
	p.cur.Runs = append(runs, r)
}

func (p *parser) atLineStart() bool {
	runs := p.cur.Runs
	if len(runs) == 0 {
		return true
	}
	last := runs[len(runs)-1].Text
	return last == "" || strings.HasSuffix(last, " ") || strings.HasSuffix(last, "\n")
}

func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func alignOf(n *html.Node) Align {
	for _, class := range strings.Fields(attr(n, "class")) {
		switch class {
		case "ql-align-center":
			return AlignCenter
		case "ql-align-right":
			return AlignRight
		case "ql-align-justify":
			return AlignJustify
		}
	}
	return AlignLeft
}

func indentOf(n *html.Node) int {
	for _, class := range strings.Fields(attr(n, "class")) {
		if rest, ok := strings.CutPrefix(class, "ql-indent-"); ok {
			if level, err := strconv.Atoi(rest); err == nil && level > 0 {
				return level
			}
		}
	}
	return 0
}

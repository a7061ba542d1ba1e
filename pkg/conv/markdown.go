package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags
	mxPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Tags the Matrix client-server spec allows in formatted_body
	mxPolicy.AllowElements(
		"del", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "p",
		"ul", "ol", "sup", "sub", "li", "b", "i", "u", "strong", "em",
		"s", "strike", "code", "hr", "br", "div", "table", "thead",
		"tbody", "tr", "th", "td", "caption", "pre", "span",
	)
	mxPolicy.AllowAttrs("href").OnElements("a")
	mxPolicy.AllowAttrs("class").OnElements("code")
	mxPolicy.AllowAttrs("start").OnElements("ol")
}

// MarkdownToMatrixHTML renders markdown into HTML restricted to the subset
// Matrix clients are expected to understand.
func MarkdownToMatrixHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	sanitized := mxPolicy.SanitizeBytes(unsafeHTML)

	return string(sanitized)
}

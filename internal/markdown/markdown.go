package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// engine is the shared goldmark instance. Parsing and rendering are pure per
// input, so one configured instance serves all documents.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
)

// Render converts a Markdown body (frontmatter already removed) to HTML.
func Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// PlainText strips markup from rendered HTML, collapsing whitespace. Feed
// summaries use this to carry readable text without embedded tags.
func PlainText(rendered []byte) string {
	node, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		// Fall back to the raw input; better a tagged summary than none.
		return strings.TrimSpace(string(rendered))
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		// Block elements separate words when their markup is dropped.
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "br", "blockquote", "pre":
				sb.WriteString(" ")
			}
		}
	}
	walk(node)

	return strings.Join(strings.Fields(sb.String()), " ")
}

package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_BasicMarkdown(t *testing.T) {
	out, err := Render([]byte("# Heading\n\nSome *emphasis*.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<h1")
	require.Contains(t, string(out), "<em>emphasis</em>")
}

func TestRender_GFMTable(t *testing.T) {
	out, err := Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestRender_Deterministic(t *testing.T) {
	body := []byte("Some **bold** text with a [link](https://example.com).\n")
	first, err := Render(body)
	require.NoError(t, err)
	second, err := Render(body)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPlainText_StripsMarkup(t *testing.T) {
	out, err := Render([]byte("# Title\n\nA *short* paragraph.\n"))
	require.NoError(t, err)
	require.Equal(t, "Title A short paragraph.", PlainText(out))
}

func TestPlainText_CollapsesWhitespace(t *testing.T) {
	require.Equal(t, "a b c", PlainText([]byte("<p>a</p>\n\n<p>b\n   c</p>")))
}

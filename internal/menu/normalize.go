package menu

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeText concatenates the text nodes under node, line breaks and block
// boundaries become spaces so words from separate lines do not run together.
func nodeText(node *html.Node) string {
	var buffer bytes.Buffer
	nodeTextRecursive(node, &buffer)
	return buffer.String()
}

func nodeTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		switch node.DataAtom {
		case atom.Br:
			buffer.WriteByte(' ')
			return
		case atom.Script, atom.Style:
			return
		case atom.P, atom.Div, atom.Li:
			defer buffer.WriteByte(' ')
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		nodeTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

var artifactReplacer = strings.NewReplacer(
	"\u00a0", " ", // nbsp
	"\u2007", " ",
	"\u202f", " ",
	"\u200b", "", // zero width space
	"\u200c", "",
	"\u200d", "",
	"\u00ad", "", // soft hyphen
	"\ufeff", "",
)

// NormalizeCell collapses whitespace and strips layout artifacts from the
// text of one table cell.
func NormalizeCell(text string) string {
	text = artifactReplacer.Replace(text)

	var out strings.Builder
	for _, c := range text {
		switch {
		case unicode.IsSpace(c):
			out.WriteRune(' ')
		case unicode.IsPrint(c):
			out.WriteRune(c)
		}
	}

	text = innerWhitespace.ReplaceAllString(out.String(), " ")
	text = strings.TrimSpace(text)
	// footnote markers
	text = strings.TrimRight(text, "*")
	return strings.TrimSpace(text)
}

// NormalizeRow applies NormalizeCell to every cell.
func NormalizeRow(cells []string) RawRow {
	row := make(RawRow, len(cells))
	for i, c := range cells {
		row[i] = NormalizeCell(c)
	}
	return row
}

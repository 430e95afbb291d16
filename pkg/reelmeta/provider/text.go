package provider

import (
	"strings"

	"golang.org/x/net/html"
)

// plainText reduces provider-supplied titles and alt texts, which may carry
// markup or entities, to single-spaced plain text.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}

// firstTag returns the first entry of a comma separated tag list.
func firstTag(tags string) string {
	first, _, _ := strings.Cut(tags, ",")
	return plainText(first)
}

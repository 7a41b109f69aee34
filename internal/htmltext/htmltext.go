// Package htmltext extracts visible text, titles and links from HTML
// documents. It is shared by the file extractor and the web content fetcher.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// strippedSelectors are removed before text extraction: they carry chrome,
// not content.
const strippedSelectors = "script, style, header, footer, nav"

// ExtractText parses an HTML document and returns its visible text with
// whitespace collapsed. Script, style, header, footer and nav elements are
// stripped first.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	doc.Find(strippedSelectors).Remove()

	var b strings.Builder
	for _, node := range doc.Selection.Nodes {
		collectText(node, &b)
	}
	return CollapseWhitespace(b.String()), nil
}

// collectText appends the text content of n and its children, one text node
// per line.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString("\n")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// CollapseWhitespace trims every line, splits runs of internal double spaces,
// and drops blank lines.
func CollapseWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(line, "  ") {
			phrase = strings.TrimSpace(phrase)
			if phrase != "" {
				lines = append(lines, phrase)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Title returns the content of the document's <title> element, or "".
func Title(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}

// Link is an anchor found in a document, with its resolved target and anchor
// text.
type Link struct {
	Href string
	Text string
}

// Links returns all <a href> anchors in document order with their anchor text.
// Hrefs are returned as written; resolution against a base URL is the
// caller's concern.
func Links(htmlContent string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, Link{
			Href: href,
			Text: strings.TrimSpace(s.Text()),
		})
	})
	return links, nil
}

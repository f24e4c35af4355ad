package fetch

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// NoTitle stands in for a missing <title>. A failed fetch yields
// NoTitle followed by an empty body.
const NoTitle = "No title found"

const irrelevantSelectors = "script, style, img, input"

// ContentExtractor turns an HTML document into "title\n\nbody text",
// truncated to a character budget.
type ContentExtractor struct {
	limit int
}

func NewContentExtractor(limit int) *ContentExtractor {
	if limit <= 0 {
		limit = DefaultContentLimit
	}
	return &ContentExtractor{limit: limit}
}

// Run extracts page text. With useReadability the body text comes from the
// readability main-content pass, falling back to the whole body when that
// finds nothing.
func (e *ContentExtractor) Run(data []byte, pageURL *url.URL, useReadability bool) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = NoTitle
	}

	text := ""
	if useReadability && pageURL != nil {
		text = e.readableText(data, pageURL)
	}
	if text == "" {
		text = bodyText(doc)
	}

	return e.truncate(norm.NFC.String(title + "\n\n" + text)), nil
}

func (e *ContentExtractor) readableText(data []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		slog.Debug("Readability extraction failed, using body text", "url", pageURL, "error", err)
		return ""
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(article.TextContent, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// bodyText joins the stripped text nodes of <body> with newlines.
func bodyText(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}

	body.Find(irrelevantSelectors).Remove()

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(body.Nodes[0])

	return strings.Join(parts, "\n")
}

func (e *ContentExtractor) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= e.limit {
		return text
	}
	return string(runes[:e.limit])
}

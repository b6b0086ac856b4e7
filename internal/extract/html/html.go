// Package html parses rendered pages into their title, links and main content.
package html

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"

	"github.com/slok/scraper/internal/model"
)

// noiseSelectors are removed before getting the main content.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// Page is the parsed content of an HTML page.
type Page struct {
	Title    string
	Links    []model.Link
	MainText string
	Markdown string
}

// Parser parses HTML pages.
type Parser struct{}

// NewParser returns a new HTML parser.
func NewParser() *Parser { return &Parser{} }

// Parse parses the HTML. Title and links are taken from the full document,
// main text and markdown only from the best content container.
func (p *Parser) Parse(rawHTML string) (*Page, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, fmt.Errorf("HTML content is empty")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &Page{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Links: links(doc),
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return page, nil
	}

	page.MainText = visibleText(content)

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("serializing content: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	page.Markdown = strings.TrimSpace(md)

	return page, nil
}

func links(doc *goquery.Document) []model.Link {
	links := []model.Link{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, model.Link{
			Text: strings.Join(strings.Fields(s.Text()), " "),
			Href: href,
		})
	})

	return links
}

// visibleText joins every text node with a space so adjacent block elements
// don't merge their words.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Package goquery extracts ameblo entries from HTML using goquery.
package goquery

import (
	"iter"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ameblodoc"
	"golang.org/x/net/html"
)

// Ensure Extractor implements ameblodoc.EntryExtractor at compile time.
var _ ameblodoc.EntryExtractor = (*Extractor)(nil)

// Extractor builds entries from ameblo article markup.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Entries yields one entry per matching article, in document order.
// Articles are built only as the sequence is consumed.
func (e *Extractor) Entries(html string, sel ameblodoc.ArticleSelector, headerTag string) iter.Seq2[*ameblodoc.Entry, error] {
	return func(yield func(*ameblodoc.Entry, error) bool) {
		articles, err := Articles(html, sel)
		if err != nil {
			yield(nil, err)
			return
		}
		for i := range articles.Length() {
			entry, err := BuildEntry(articles.Eq(i), headerTag)
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// Articles returns every <article> whose amb-component and
// data-unique-ameba-id attributes equal sel. Pages that don't follow the
// expected markup simply yield no matches.
func Articles(html string, sel ameblodoc.ArticleSelector) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ameblodoc.Errorf(ameblodoc.EPARSE, "failed to parse HTML: %v", err)
	}

	return doc.Find("article").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return attrEquals(s, "amb-component", sel.Component) &&
			attrEquals(s, "data-unique-ameba-id", sel.Blog)
	}), nil
}

// BuildEntry extracts title, link, date and body blocks from one article.
// Returns EPARSE when the title header or the date is missing or malformed.
func BuildEntry(article *goquery.Selection, headerTag string) (*ameblodoc.Entry, error) {
	title, link, err := entryTitle(article, headerTag)
	if err != nil {
		return nil, err
	}

	date, err := entryDate(article)
	if err != nil {
		return nil, err
	}

	return ameblodoc.NewEntry(title, link, date, entryContents(article)...), nil
}

func entryTitle(article *goquery.Selection, headerTag string) (title, link string, err error) {
	header := component(article, headerTag, "entryTitle")
	if header.Length() == 0 {
		return "", "", ameblodoc.Errorf(ameblodoc.EPARSE, "entry title <%s> not found", headerTag)
	}

	anchors := header.Children()
	if anchors.Length() == 0 {
		return "", "", ameblodoc.Errorf(ameblodoc.EPARSE, "entry title <%s> has no link", headerTag)
	}

	// The last element child wins, matching how the header is laid out.
	anchor := anchors.Last()
	link, _ = anchor.Attr("href")
	if first := anchor.Nodes[0].FirstChild; first != nil {
		title = strings.TrimSpace(nodeText(first))
	}
	if title == "" {
		return "", "", ameblodoc.Errorf(ameblodoc.EPARSE, "entry title <%s> has no text", headerTag)
	}
	return title, link, nil
}

func entryDate(article *goquery.Selection) (time.Time, error) {
	p := component(article, "p", "entryDate")
	if p.Length() == 0 {
		return time.Time{}, ameblodoc.Errorf(ameblodoc.EPARSE, "entry date not found")
	}

	holders := p.Children()
	if holders.Length() == 0 {
		return time.Time{}, ameblodoc.Errorf(ameblodoc.EPARSE, "entry date not found")
	}

	// An icon may precede the date text inside the holder element.
	holder := holders.Last().Nodes[0]
	text := holder.FirstChild
	if text != nil && text.NextSibling != nil {
		text = text.NextSibling
	}
	if text == nil {
		return time.Time{}, ameblodoc.Errorf(ameblodoc.EPARSE, "entry date is empty")
	}

	raw := strings.TrimSpace(nodeText(text))
	date, err := time.Parse(ameblodoc.DateLayout, raw)
	if err != nil {
		return time.Time{}, ameblodoc.Errorf(ameblodoc.EPARSE, "entry date %q does not match %q", raw, ameblodoc.DateLayout)
	}
	return date, nil
}

// entryContents walks the direct children of the entry body in order.
// For each child the first matching rule applies:
//  1. an element holding an <img> yields one ImageBlock;
//  2. an element whose first child is an element yields one TextBlock per
//     child of that first child;
//  3. an element with any child yields a TextBlock from its first child;
//  4. a bare text node yields a TextBlock.
func entryContents(article *goquery.Selection) []ameblodoc.Block {
	body := component(article, "div", "entryBody")
	if body.Length() == 0 {
		return nil
	}

	var blocks []ameblodoc.Block
	for n := body.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.ElementNode:
			if src, ok := imageSource(n); ok {
				blocks = append(blocks, ameblodoc.ImageBlock{SourceURL: src})
				continue
			}
			first := n.FirstChild
			switch {
			case first == nil:
			case first.Type == html.ElementNode:
				for c := first.FirstChild; c != nil; c = c.NextSibling {
					blocks = append(blocks, ameblodoc.TextBlock{Text: nodeText(c)})
				}
			default:
				blocks = append(blocks, ameblodoc.TextBlock{Text: nodeText(first)})
			}
		case html.TextNode:
			blocks = append(blocks, ameblodoc.TextBlock{Text: n.Data})
		}
	}
	return blocks
}

// imageSource returns the src of n when n is an <img> or contains one.
func imageSource(n *html.Node) (string, bool) {
	sel := goquery.NewDocumentFromNode(n).Selection
	img := sel.Filter("img")
	if img.Length() == 0 {
		img = sel.Find("img").First()
	}
	if img.Length() == 0 {
		return "", false
	}
	src, _ := img.Attr("src")
	return src, true
}

// component returns the first tag descendant of s whose amb-component
// attribute equals name.
func component(s *goquery.Selection, tag, name string) *goquery.Selection {
	return s.Find(tag).FilterFunction(func(_ int, c *goquery.Selection) bool {
		return attrEquals(c, "amb-component", name)
	}).First()
}

func attrEquals(s *goquery.Selection, attr, want string) bool {
	v, ok := s.Attr(attr)
	return ok && v == want
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	return goquery.NewDocumentFromNode(n).Text()
}

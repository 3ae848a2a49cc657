// Package extract turns raw HTML into whitespace-normalized plain text.
package extract

import (
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

var reSpaces = regexp.MustCompile(`\s+`)

// Normalize collapses all whitespace runs to single spaces and trims.
func Normalize(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Truncate caps s at max bytes without splitting a multi-byte rune; the cut
// backs up to the nearest rune boundary. max <= 0 means no cap.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// BodyText parses HTML and returns the visible text of the <body>: text
// nodes only, scripts/styles/comments excluded, joined with single spaces.
func BodyText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	body := findBody(doc)
	if body == nil {
		return "", nil
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "iframe":
				return
			}
		case html.TextNode:
			if t := Normalize(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	return strings.Join(parts, " "), nil
}

// ArticleText runs readability main-content extraction over raw HTML and
// returns the normalized article title and text.
func ArticleText(rawHTML, pageURL string) (title, text string, err error) {
	article, err := readability.FromReader(strings.NewReader(rawHTML), mustParseURL(pageURL))
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(article.Title), Normalize(article.TextContent), nil
}

// Title returns the content of the first <title> element, if any.
func Title(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = Normalize(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}

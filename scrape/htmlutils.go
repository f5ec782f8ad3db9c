package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

// extractTitle extracts the title from the HTML document
func extractTitle(doc *html.Node) string {
	var title string
	var findTitle func(*html.Node)

	findTitle = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}

	findTitle(doc)
	return title
}

// extractMetaDescription extracts the meta description from the HTML document
func extractMetaDescription(doc *html.Node) string {
	return findMetaContent(doc, "description")
}

// extractMetaKeywords extracts the comma separated meta keywords from the HTML document
func extractMetaKeywords(doc *html.Node) []string {
	content := findMetaContent(doc, "keywords")
	if content == "" {
		return nil
	}
	var keywords []string
	for _, keyword := range strings.Split(content, ",") {
		trimmed := strings.TrimSpace(keyword)
		if trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

// extractCanonical returns the href of <link rel="canonical">
func extractCanonical(doc *html.Node) string {
	n := findNode(doc, func(n *html.Node) bool {
		return n.Data == "link" && attr(n, "rel") == "canonical"
	})
	if n == nil {
		return ""
	}
	return attr(n, "href")
}

func findMetaContent(doc *html.Node, name string) string {
	n := findNode(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "name") == name && attr(n, "content") != ""
	})
	if n == nil {
		return ""
	}
	return attr(n, "content")
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findNode(c, match); result != nil {
			return result
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

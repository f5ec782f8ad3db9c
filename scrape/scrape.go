package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/vacuumpartshub/service/vo"
)

// MaxBodySize caps how much of a downloaded page is read; the rest is dropped.
const MaxBodySize = 4 << 20

// Scrape downloads url and converts the first node matching selector to markdown.
func Scrape(ctx context.Context, client *http.Client, url, selector string) (*vo.DocumentSummary, vo.Markdown, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	return Convert(io.LimitReader(resp.Body, MaxBodySize), url, selector)
}

// Convert parses an HTML document, extracts its summary and converts the
// first node matching selector to markdown. A canonical link in the document
// takes precedence over url.
func Convert(r io.Reader, url, selector string) (*vo.DocumentSummary, vo.Markdown, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selected := doc.Find(selector).First()
	if selected.Length() == 0 {
		return nil, "", fmt.Errorf("failed to extract node with selector '%s': no match", selector)
	}

	markdownBytes, err := htmltomarkdown.ConvertNode(selected.Get(0))
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	root := doc.Get(0)
	if canonical := extractCanonical(root); canonical != "" {
		url = canonical
	}
	summary := &vo.DocumentSummary{
		URL: url,
		ContentSummary: vo.ContentSummary{
			Title:       extractTitle(root),
			Description: extractMetaDescription(root),
			Keywords:    extractMetaKeywords(root),
		},
	}
	return summary, vo.Markdown(string(markdownBytes)), nil
}

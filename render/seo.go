package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/foomo/vacuumpartshub/service/vo"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type SitemapEntry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name       `xml:"urlset"`
	Xmlns   string         `xml:"xmlns,attr"`
	URLs    []SitemapEntry `xml:"url"`
}

// SitemapEntries lists the home page, every model page and every problem page.
func (r *Renderer) SitemapEntries(models []*vo.ModelRecord) []SitemapEntry {
	lastMod := r.settings.Now().UTC().Format(time.DateOnly)
	entries := []SitemapEntry{{
		Loc:        r.URL("/"),
		LastMod:    lastMod,
		ChangeFreq: "daily",
		Priority:   1,
	}}
	for _, model := range models {
		entries = append(entries, SitemapEntry{
			Loc:        r.URL(modelPath(model.Slug)),
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
		for _, problem := range model.Problems {
			entries = append(entries, SitemapEntry{
				Loc:        r.URL(problemPath(model.Slug, problem.ID)),
				LastMod:    lastMod,
				ChangeFreq: "weekly",
				Priority:   0.6,
			})
		}
	}
	return entries
}

func (r *Renderer) Sitemap(w io.Writer, entries []SitemapEntry) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{Xmlns: sitemapNamespace, URLs: entries}); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return enc.Close()
}

func (r *Renderer) Robots(w io.Writer) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /private/\n\nSitemap: %s\n", r.URL("/sitemap.xml"))
	return err
}

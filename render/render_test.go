package render

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/vacuumpartshub/affiliate"
	"github.com/foomo/vacuumpartshub/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Settings{
		BaseURL:  "https://vacuumpartshub.com/",
		SiteName: "VacuumPartsHub",
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}, affiliate.NewLinker("vacuumhub-20"))
	require.NoError(t, err)
	return r
}

func dysonV8() *vo.ModelRecord {
	return &vo.ModelRecord{
		Slug:        "dyson-v8",
		Brand:       "Dyson",
		Model:       "V8",
		ImageURL:    vo.Some("/images/dyson-v8.png"),
		ManualPDF:   "https://example.com/dyson-v8.pdf",
		SEOKeywords: []string{"dyson v8 battery", "dyson v8 repair"},
		Problems: []vo.Problem{
			{
				ID:             "battery-wont-charge",
				Title:          "Battery Won't Charge",
				Description:    "The charging light stays off.",
				PossibleCauses: []string{"Worn battery"},
				SolutionSteps:  []string{"Check the charger", "Clean the contacts", "Replace the battery"},
				RequiredParts:  []vo.Part{{Name: "Battery Pack", SearchQuery: "Dyson V8 replacement battery"}},
			},
			{
				ID:            "pulsing",
				Title:         "Vacuum Pulsing",
				Description:   "Suction goes on and off.",
				SolutionSteps: []string{"Wash the filter"},
			},
		},
		FAQs: vo.Some([]vo.FAQ{{Question: "How long does the battery last?", Answer: "About 40 minutes."}}),
	}
}

func parse(t *testing.T, buf *bytes.Buffer) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(buf)
	require.NoError(t, err)
	return doc
}

func TestHome(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Home(&buf, []string{"dyson-v8", "shark-nv352"}, "dy"))
	doc := parse(t, &buf)

	assert.Equal(t, "VacuumPartsHub - Vacuum Repair Guides & Parts Locator", doc.Find("title").Text())
	assert.Equal(t, "2 Guides Found:", doc.Find(".models h2").Text())
	links := doc.Find(".models li a")
	require.Equal(t, 2, links.Length())
	assert.Equal(t, "Dyson V8", links.First().Text())
	href, _ := links.First().Attr("href")
	assert.Equal(t, "/guide/dyson-v8", href)
	value, _ := doc.Find("input[name=q]").Attr("value")
	assert.Equal(t, "dy", value)
	canonical, _ := doc.Find("link[rel=canonical]").Attr("href")
	assert.Equal(t, "https://vacuumpartshub.com/", canonical)
}

func TestHomeNoResults(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Home(&buf, nil, `<script>alert(1)</script>`))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	doc := parse(t, &buf)
	assert.Equal(t, "0 Guides Found:", doc.Find(".models h2").Text())
	assert.Contains(t, doc.Find(".empty").Text(), `No guides found for "<script>alert(1)</script>"`)
}

func TestModel(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Model(&buf, dysonV8()))
	doc := parse(t, &buf)

	assert.Equal(t, "Dyson V8 Repair Guide", doc.Find("title").Text())
	assert.Equal(t, "Dyson V8 Repair Guide", doc.Find("h1").Text())
	description, _ := doc.Find("meta[name=description]").Attr("content")
	assert.Equal(t, "Fix your Dyson V8: 2 common problems with step-by-step solutions and the replacement parts you need.", description)
	keywords, _ := doc.Find("meta[name=keywords]").Attr("content")
	assert.Equal(t, "dyson v8 battery, dyson v8 repair", keywords)

	cards := doc.Find(".problem-card")
	require.Equal(t, 2, cards.Length())
	href, _ := cards.First().Attr("href")
	assert.Equal(t, "/guide/dyson-v8/battery-wont-charge", href)
	assert.Equal(t, "Battery Won't Charge", cards.First().Find("h2").Text())

	src, ok := doc.Find(".model-image").Attr("src")
	require.True(t, ok)
	assert.Equal(t, "/images/dyson-v8.png", src)
	assert.Equal(t, "How long does the battery last?", doc.Find(".faq h3").Text())
}

func TestModelWithoutOptionalFields(t *testing.T) {
	r := newTestRenderer(t)
	model := dysonV8()
	model.ImageURL = vo.None[string]()
	model.FAQs = vo.None[[]vo.FAQ]()
	model.Problems = nil

	var buf bytes.Buffer
	require.NoError(t, r.Model(&buf, model))
	doc := parse(t, &buf)
	assert.Equal(t, 0, doc.Find(".model-image").Length())
	assert.Equal(t, 0, doc.Find(".faq").Length())
	assert.Equal(t, 1, doc.Find(".problems .empty").Length())
}

func TestProblem(t *testing.T) {
	r := newTestRenderer(t)
	model := dysonV8()
	var buf bytes.Buffer
	require.NoError(t, r.Problem(&buf, model, &model.Problems[0]))
	doc := parse(t, &buf)

	assert.Equal(t, "Battery Won't Charge - Dyson V8", doc.Find("title").Text())
	back, _ := doc.Find("a.back").Attr("href")
	assert.Equal(t, "/guide/dyson-v8", back)

	var steps []string
	doc.Find("ol.steps li").Each(func(_ int, s *goquery.Selection) {
		steps = append(steps, s.Text())
	})
	assert.Equal(t, []string{"Check the charger", "Clean the contacts", "Replace the battery"}, steps)

	link := doc.Find("a.part-link")
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "https://www.amazon.com/s?k=Dyson%20V8%20replacement%20battery&tag=vacuumhub-20", href)
	rel, _ := link.Attr("rel")
	assert.Contains(t, rel, "sponsored")
	assert.Equal(t, "Battery Pack", doc.Find(".part-name").Text())
	assert.Equal(t, 1, doc.Find(".disclosure").Length())
}

func TestProblemWithoutParts(t *testing.T) {
	r := newTestRenderer(t)
	model := dysonV8()
	var buf bytes.Buffer
	require.NoError(t, r.Problem(&buf, model, &model.Problems[1]))
	doc := parse(t, &buf)
	assert.Equal(t, 0, doc.Find(".parts").Length())
	assert.Equal(t, 0, doc.Find(".causes").Length())
}

func TestNotFound(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.NotFound(&buf))
	doc := parse(t, &buf)
	assert.Equal(t, "Page Not Found", doc.Find("h1").Text())
	assert.Equal(t, 0, doc.Find("link[rel=canonical]").Length())
}

func TestSitemap(t *testing.T) {
	r := newTestRenderer(t)
	entries := r.SitemapEntries([]*vo.ModelRecord{dysonV8()})
	require.Len(t, entries, 4)
	assert.Equal(t, SitemapEntry{Loc: "https://vacuumpartshub.com/", LastMod: "2026-03-01", ChangeFreq: "daily", Priority: 1}, entries[0])
	assert.Equal(t, "https://vacuumpartshub.com/guide/dyson-v8", entries[1].Loc)
	assert.Equal(t, 0.8, entries[1].Priority)
	assert.Equal(t, "https://vacuumpartshub.com/guide/dyson-v8/pulsing", entries[3].Loc)

	var buf bytes.Buffer
	require.NoError(t, r.Sitemap(&buf, entries))
	assert.Contains(t, buf.String(), `<urlset xmlns="`+sitemapNamespace+`">`)
	var decoded urlSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, entries, decoded.URLs)
}

func TestRobots(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Robots(&buf))
	assert.Contains(t, buf.String(), "Disallow: /private/")
	assert.Contains(t, buf.String(), "Sitemap: https://vacuumpartshub.com/sitemap.xml")
}

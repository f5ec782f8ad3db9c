package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/foomo/vacuumpartshub/affiliate"
	"github.com/foomo/vacuumpartshub/service/vo"
)

const (
	DefaultBaseURL  = "https://vacuumpartshub.com"
	DefaultSiteName = "VacuumPartsHub"

	StylesheetPath = "/static/site.css"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/site.css
var stylesheet []byte

type Settings struct {
	BaseURL  string
	SiteName string
	// Now is used for the footer year and sitemap dates; defaults to time.Now.
	Now func() time.Time
}

// Renderer turns catalog records into HTML pages and SEO files.
type Renderer struct {
	settings Settings
	linker   affiliate.Linker
	pages    map[string]*template.Template
}

// page is the data every template receives.
type page struct {
	Summary   vo.ContentSummary
	Canonical string
	SiteName  string
	Year      int
	Body      any
}

type HomeData struct {
	Query  string
	Models []ModelLink
}

type ModelLink struct {
	Slug string
	Name string
	Path string
}

type ModelData struct {
	Model *vo.ModelRecord
	Image string
	FAQs  []vo.FAQ
}

type ProblemData struct {
	Model   *vo.ModelRecord
	Problem *vo.Problem
	Parts   []vo.PartLink
}

func New(settings Settings, linker affiliate.Linker) (*Renderer, error) {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}
	settings.BaseURL = strings.TrimSuffix(settings.BaseURL, "/")
	if settings.SiteName == "" {
		settings.SiteName = DefaultSiteName
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}

	funcs := template.FuncMap{
		"join":        strings.Join,
		"displayName": vo.DisplayName,
		"modelPath":   modelPath,
		"problemPath": problemPath,
	}
	pages := map[string]*template.Template{}
	for _, name := range []string{"home", "model", "problem", "notfound"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{
		settings: settings,
		linker:   linker,
		pages:    pages,
	}, nil
}

func (r *Renderer) Settings() Settings {
	return r.settings
}

func (r *Renderer) Linker() affiliate.Linker {
	return r.linker
}

// URL makes a site path absolute.
func (r *Renderer) URL(path string) string {
	return r.settings.BaseURL + path
}

func (r *Renderer) Stylesheet() []byte {
	return stylesheet
}

// Home renders the home page listing the given slugs; query is echoed into the search box.
func (r *Renderer) Home(w io.Writer, slugs []string, query string) error {
	models := make([]ModelLink, len(slugs))
	for i, slug := range slugs {
		models[i] = ModelLink{Slug: slug, Name: vo.DisplayName(slug), Path: modelPath(slug)}
	}
	return r.execute(w, "home", r.HomeSummary(), r.URL("/"), HomeData{Query: query, Models: models})
}

func (r *Renderer) Model(w io.Writer, model *vo.ModelRecord) error {
	faqs, _ := model.FAQs.Get()
	return r.execute(w, "model", r.ModelSummary(model), r.URL(modelPath(model.Slug)), ModelData{
		Model: model,
		Image: model.ImageURL.OrElse(""),
		FAQs:  faqs,
	})
}

func (r *Renderer) Problem(w io.Writer, model *vo.ModelRecord, problem *vo.Problem) error {
	return r.execute(w, "problem", r.ProblemSummary(model, problem), r.URL(problemPath(model.Slug, problem.ID)), ProblemData{
		Model:   model,
		Problem: problem,
		Parts:   r.linker.PartLinks(problem.RequiredParts),
	})
}

func (r *Renderer) NotFound(w io.Writer) error {
	return r.execute(w, "notfound", vo.ContentSummary{
		Title:       "Page Not Found - " + r.settings.SiteName,
		Description: "The requested repair guide does not exist.",
	}, "", nil)
}

func (r *Renderer) HomeSummary() vo.ContentSummary {
	return vo.ContentSummary{
		Title:       r.settings.SiteName + " - Vacuum Repair Guides & Parts Locator",
		Description: "AI-Powered Vacuum Repair Guide & Parts Locator",
		Keywords:    []string{"vacuum repair", "vacuum parts", "vacuum troubleshooting"},
	}
}

func (r *Renderer) ModelSummary(model *vo.ModelRecord) vo.ContentSummary {
	problems := "problems"
	if len(model.Problems) == 1 {
		problems = "problem"
	}
	return vo.ContentSummary{
		Title: model.Name() + " Repair Guide",
		Description: fmt.Sprintf("Fix your %s: %d common %s with step-by-step solutions and the replacement parts you need.",
			model.Name(), len(model.Problems), problems),
		Keywords: model.SEOKeywords,
	}
}

func (r *Renderer) ProblemSummary(model *vo.ModelRecord, problem *vo.Problem) vo.ContentSummary {
	return vo.ContentSummary{
		Title:       problem.Title + " - " + model.Name(),
		Description: problem.Description,
		Keywords:    model.SEOKeywords,
	}
}

// execute renders into a buffer first so a failing template never leaves a
// half-written page behind.
func (r *Renderer) execute(w io.Writer, name string, summary vo.ContentSummary, canonical string, body any) error {
	var buf bytes.Buffer
	err := r.pages[name].ExecuteTemplate(&buf, "layout", page{
		Summary:   summary,
		Canonical: canonical,
		SiteName:  r.settings.SiteName,
		Year:      r.settings.Now().Year(),
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("failed to render %s page: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// site paths are duplicated from the service package, which imports render.
func modelPath(modelID string) string {
	return "/guide/" + modelID
}

func problemPath(modelID, problemID string) string {
	return "/guide/" + modelID + "/" + problemID
}

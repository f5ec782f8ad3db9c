package vo

type Markdown string

type PageKind string

const (
	PageKindHome    PageKind = "home"
	PageKindModel   PageKind = "model"
	PageKindProblem PageKind = "problem"
)

type ContentSummary struct {
	Title       string   `json:"title"`       // Page title
	Description string   `json:"description"` // Meta description
	Keywords    []string `json:"keywords"`    // Meta keywords
}

type DocumentSummary struct {
	URL            string   `json:"url"`            // Absolute page URL
	ID             string   `json:"id,omitempty"`   // Model slug or problem id
	Kind           PageKind `json:"kind,omitempty"` // Page kind
	ContentSummary `json:"contentSummary"`
}

type Document struct {
	DocumentSummary DocumentSummary
	Markdown        Markdown `json:"markdown,omitempty"` // Page body in markdown

	Breadcrump   []DocumentSummary `json:"breadcrump,omitempty"`
	Children     []DocumentSummary `json:"children,omitempty"` // Models of home, problems of a model
	PrevSiblings []DocumentSummary `json:"prev,omitempty"`
	NextSiblings []DocumentSummary `json:"next,omitempty"`
}

// PartLink is a required part together with its outbound affiliate search URL.
type PartLink struct {
	Part
	URL string `json:"url"`
}

// ProblemDetail is a problem in the context of its model, with part links resolved.
type ProblemDetail struct {
	ModelID string     `json:"modelId"`
	Brand   string     `json:"brand"`
	Model   string     `json:"model"`
	URL     string     `json:"url"`
	Problem Problem    `json:"problem"`
	Parts   []PartLink `json:"parts"`
}

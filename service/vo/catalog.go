package vo

// ModelRecord is one appliance model as stored in <slug>.json.
// Records are shared between callers once loaded and must not be mutated.
type ModelRecord struct {
	Slug        string           `json:"slug"`
	Brand       string           `json:"brand"`
	Model       string           `json:"model"`
	ImageURL    Optional[string] `json:"image_url,omitzero"`
	ManualPDF   string           `json:"manual_pdf"`
	SEOKeywords []string         `json:"seo_keywords"`
	Problems    []Problem        `json:"problems"`
	FAQs        Optional[[]FAQ]  `json:"faqs,omitzero"`
}

type Problem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	PossibleCauses []string `json:"possible_causes"`
	SolutionSteps  []string `json:"solution_steps"`
	RequiredParts  []Part   `json:"required_parts"`
}

type Part struct {
	Name        string `json:"name"`
	SearchQuery string `json:"search_query"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Name returns brand and model, e.g. "Dyson V8".
func (m *ModelRecord) Name() string {
	if m.Brand == "" {
		return m.Model
	}
	return m.Brand + " " + m.Model
}

// Problem looks up a problem by id.
func (m *ModelRecord) Problem(id string) (*Problem, bool) {
	for i := range m.Problems {
		if m.Problems[i].ID == id {
			return &m.Problems[i], true
		}
	}
	return nil, false
}

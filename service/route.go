package service

import (
	"strings"

	"github.com/foomo/vacuumpartshub/service/vo"
)

const GuidePrefix = "/guide/"

// Route is a parsed site path.
type Route struct {
	Kind      vo.PageKind
	ModelID   string
	ProblemID string
}

// Path is the canonical site path of the route.
func (r Route) Path() string {
	switch r.Kind {
	case vo.PageKindModel:
		return ModelPath(r.ModelID)
	case vo.PageKindProblem:
		return ProblemPath(r.ModelID, r.ProblemID)
	default:
		return "/"
	}
}

func ModelPath(modelID string) string {
	return GuidePrefix + modelID
}

func ProblemPath(modelID, problemID string) string {
	return GuidePrefix + modelID + "/" + problemID
}

// ParseRoute maps "/", "/guide/<model>" and "/guide/<model>/<problem>" to a
// route. A trailing slash or "index.html" is tolerated; anything else is
// ErrNotFound.
func ParseRoute(path string) (Route, error) {
	path = strings.TrimSuffix(path, "index.html")
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "/" || path == "" {
		return Route{Kind: vo.PageKindHome}, nil
	}
	rest, ok := strings.CutPrefix(path, GuidePrefix)
	if !ok {
		return Route{}, ErrNotFound
	}
	parts := strings.Split(rest, "/")
	for _, part := range parts {
		if !ValidSlug(part) {
			return Route{}, ErrNotFound
		}
	}
	switch len(parts) {
	case 1:
		return Route{Kind: vo.PageKindModel, ModelID: parts[0]}, nil
	case 2:
		return Route{Kind: vo.PageKindProblem, ModelID: parts[0], ProblemID: parts[1]}, nil
	default:
		return Route{}, ErrNotFound
	}
}

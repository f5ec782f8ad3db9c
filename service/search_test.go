package service

import (
	"testing"

	"github.com/foomo/vacuumpartshub/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterModels(t *testing.T) {
	slugs := []string{"dyson-v8", "dyson-v11", "shark-navigator-nv352"}

	assert.Equal(t, slugs, FilterModels(slugs, ""))
	assert.Equal(t, []string{"dyson-v8", "dyson-v11"}, FilterModels(slugs, "Dyson"))
	assert.Equal(t, []string{"dyson-v8"}, FilterModels(slugs, "dyson v8"))
	assert.Equal(t, []string{"shark-navigator-nv352"}, FilterModels(slugs, "  NV352 "))
	assert.Empty(t, FilterModels(slugs, "miele"))
	assert.Empty(t, FilterModels(nil, "dyson"))
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Kind: vo.PageKindHome}},
		{"", Route{Kind: vo.PageKindHome}},
		{"/index.html", Route{Kind: vo.PageKindHome}},
		{"/guide/dyson-v8", Route{Kind: vo.PageKindModel, ModelID: "dyson-v8"}},
		{"/guide/dyson-v8/", Route{Kind: vo.PageKindModel, ModelID: "dyson-v8"}},
		{"/guide/dyson-v8/battery-wont-charge", Route{Kind: vo.PageKindProblem, ModelID: "dyson-v8", ProblemID: "battery-wont-charge"}},
		{"/guide/dyson-v8/battery-wont-charge/index.html", Route{Kind: vo.PageKindProblem, ModelID: "dyson-v8", ProblemID: "battery-wont-charge"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseRoute(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, path := range []string{"/about", "/guide/", "/guide/../etc", "/guide/Dyson-V8", "/guide/a/b/c", "/dyson/dyson-v8"} {
		t.Run(path, func(t *testing.T) {
			_, err := ParseRoute(path)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRoutePath(t *testing.T) {
	assert.Equal(t, "/", Route{Kind: vo.PageKindHome}.Path())
	assert.Equal(t, "/guide/dyson-v8", Route{Kind: vo.PageKindModel, ModelID: "dyson-v8"}.Path())
	assert.Equal(t, "/guide/dyson-v8/pulsing", Route{Kind: vo.PageKindProblem, ModelID: "dyson-v8", ProblemID: "pulsing"}.Path())
}

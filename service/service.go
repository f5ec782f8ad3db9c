package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/foomo/vacuumpartshub/render"
	"github.com/foomo/vacuumpartshub/scrape"
	"github.com/foomo/vacuumpartshub/service/vo"
	"go.uber.org/zap"
)

// DefaultContentSelector selects the page body every template renders.
const DefaultContentSelector = "main"

type Service interface {
	ListModels(ctx context.Context, query string) ([]vo.DocumentSummary, error)
	GetModel(ctx context.Context, modelID string) (*vo.ModelRecord, error)
	GetProblem(ctx context.Context, modelID, problemID string) (*vo.ProblemDetail, error)
	GetDocument(ctx context.Context, path string) (*vo.Document, error)
}

type SiteSettings struct {
	ContentSelector string
}

type service struct {
	logger       *zap.Logger
	resolver     *Resolver
	renderer     *render.Renderer
	siteSettings SiteSettings
}

func NewService(
	logger *zap.Logger,
	resolver *Resolver,
	renderer *render.Renderer,
	siteSettings SiteSettings,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if siteSettings.ContentSelector == "" {
		siteSettings.ContentSelector = DefaultContentSelector
	}
	return &service{
		logger:       logger,
		resolver:     resolver,
		renderer:     renderer,
		siteSettings: siteSettings,
	}
}

func (s *service) ListModels(ctx context.Context, query string) ([]vo.DocumentSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.resolver.ModelIDs()
	if err != nil {
		return nil, err
	}
	ids = FilterModels(ids, query)
	summaries := make([]vo.DocumentSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.modelSummary(id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *service) GetModel(ctx context.Context, modelID string) (*vo.ModelRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.resolver.Model(modelID)
}

func (s *service) GetProblem(ctx context.Context, modelID, problemID string) (*vo.ProblemDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model, problem, err := s.resolver.Problem(modelID, problemID)
	if err != nil {
		return nil, err
	}
	return &vo.ProblemDetail{
		ModelID: model.Slug,
		Brand:   model.Brand,
		Model:   model.Model,
		URL:     s.renderer.URL(ProblemPath(model.Slug, problem.ID)),
		Problem: *problem,
		Parts:   s.renderer.Linker().PartLinks(problem.RequiredParts),
	}, nil
}

// GetDocument resolves a site path into its document: summary, breadcrumb,
// children, siblings and the page body as markdown.
func (s *service) GetDocument(ctx context.Context, path string) (*vo.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	route, err := ParseRoute(path)
	if err != nil {
		return nil, err
	}

	var (
		page bytes.Buffer
		doc  = &vo.Document{}
	)
	switch route.Kind {
	case vo.PageKindHome:
		ids, err := s.resolver.ModelIDs()
		if err != nil {
			return nil, err
		}
		if err := s.renderer.Home(&page, ids, ""); err != nil {
			return nil, err
		}
		for _, id := range ids {
			child, err := s.modelSummary(id)
			if err != nil {
				return nil, err
			}
			doc.Children = append(doc.Children, child)
		}

	case vo.PageKindModel:
		model, err := s.resolver.Model(route.ModelID)
		if err != nil {
			return nil, err
		}
		if err := s.renderer.Model(&page, model); err != nil {
			return nil, err
		}
		doc.Breadcrump = []vo.DocumentSummary{s.homeSummary()}
		for i := range model.Problems {
			doc.Children = append(doc.Children, s.problemSummary(model, &model.Problems[i]))
		}
		if err := s.loadModelSiblings(doc, model.Slug); err != nil {
			return nil, err
		}

	case vo.PageKindProblem:
		model, problem, err := s.resolver.Problem(route.ModelID, route.ProblemID)
		if err != nil {
			return nil, err
		}
		if err := s.renderer.Problem(&page, model, problem); err != nil {
			return nil, err
		}
		doc.Breadcrump = []vo.DocumentSummary{s.homeSummary(), s.summaryOf(model)}
		isPrevious := true
		for i := range model.Problems {
			sibling := &model.Problems[i]
			if sibling.ID == problem.ID {
				isPrevious = false
				continue
			}
			if isPrevious {
				doc.PrevSiblings = append(doc.PrevSiblings, s.problemSummary(model, sibling))
			} else {
				doc.NextSiblings = append(doc.NextSiblings, s.problemSummary(model, sibling))
			}
		}
	}

	summary, markdown, err := scrape.Convert(&page, s.renderer.URL(route.Path()), s.siteSettings.ContentSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", route.Path(), err)
	}
	s.loadRouteData(summary, route)
	doc.DocumentSummary = *summary
	doc.Markdown = markdown
	return doc, nil
}

func (s *service) loadModelSiblings(doc *vo.Document, modelID string) error {
	ids, err := s.resolver.ModelIDs()
	if err != nil {
		return err
	}
	isPrevious := true
	for _, id := range ids {
		if id == modelID {
			isPrevious = false
			continue
		}
		sibling, err := s.modelSummary(id)
		if err != nil {
			return err
		}
		if isPrevious {
			doc.PrevSiblings = append(doc.PrevSiblings, sibling)
		} else {
			doc.NextSiblings = append(doc.NextSiblings, sibling)
		}
	}
	return nil
}

func (s *service) loadRouteData(d *vo.DocumentSummary, route Route) {
	d.Kind = route.Kind
	switch route.Kind {
	case vo.PageKindModel:
		d.ID = route.ModelID
	case vo.PageKindProblem:
		d.ID = route.ProblemID
	}
}

func (s *service) homeSummary() vo.DocumentSummary {
	return vo.DocumentSummary{
		URL:            s.renderer.URL("/"),
		Kind:           vo.PageKindHome,
		ContentSummary: s.renderer.HomeSummary(),
	}
}

func (s *service) modelSummary(modelID string) (vo.DocumentSummary, error) {
	model, err := s.resolver.Model(modelID)
	if err != nil {
		return vo.DocumentSummary{}, err
	}
	return s.summaryOf(model), nil
}

func (s *service) summaryOf(model *vo.ModelRecord) vo.DocumentSummary {
	return vo.DocumentSummary{
		URL:            s.renderer.URL(ModelPath(model.Slug)),
		ID:             model.Slug,
		Kind:           vo.PageKindModel,
		ContentSummary: s.renderer.ModelSummary(model),
	}
}

func (s *service) problemSummary(model *vo.ModelRecord, problem *vo.Problem) vo.DocumentSummary {
	return vo.DocumentSummary{
		URL:            s.renderer.URL(ProblemPath(model.Slug, problem.ID)),
		ID:             problem.ID,
		Kind:           vo.PageKindProblem,
		ContentSummary: s.renderer.ProblemSummary(model, problem),
	}
}

package site

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/foomo/vacuumpartshub/observability"
	"github.com/foomo/vacuumpartshub/render"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/foomo/vacuumpartshub/service/vo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

type Settings struct {
	OutDir      string
	Concurrency int
}

// Report summarizes a finished build.
type Report struct {
	Models   int
	Problems int
	Pages    int
}

// Builder writes the whole site as static files.
type Builder struct {
	logger   *zap.Logger
	resolver *service.Resolver
	renderer *render.Renderer
	metrics  *observability.Metrics
	settings Settings
	pages    atomic.Int64
}

func NewBuilder(logger *zap.Logger, resolver *service.Resolver, renderer *render.Renderer, metrics *observability.Metrics, settings Settings) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = DefaultConcurrency
	}
	return &Builder{
		logger:   logger,
		resolver: resolver,
		renderer: renderer,
		metrics:  metrics,
		settings: settings,
	}
}

// Build loads every model and writes all pages. Any malformed data file
// aborts the build before anything is written.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	b.pages.Store(0)
	models, err := b.resolver.Models()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := os.MkdirAll(b.settings.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	slugs := make([]string, len(models))
	problems := 0
	for i, model := range models {
		slugs[i] = model.Slug
		problems += len(model.Problems)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.settings.Concurrency)

	g.Go(func() error {
		return b.write(vo.PageKindHome, "index.html", func(buf *bytes.Buffer) error {
			return b.renderer.Home(buf, slugs, "")
		})
	})
	g.Go(func() error {
		return b.write("", "404.html", func(buf *bytes.Buffer) error {
			return b.renderer.NotFound(buf)
		})
	})
	g.Go(func() error {
		return b.write("", "sitemap.xml", func(buf *bytes.Buffer) error {
			return b.renderer.Sitemap(buf, b.renderer.SitemapEntries(models))
		})
	})
	g.Go(func() error {
		return b.write("", "robots.txt", func(buf *bytes.Buffer) error {
			return b.renderer.Robots(buf)
		})
	})
	g.Go(func() error {
		return b.write("", filepath.FromSlash(render.StylesheetPath[1:]), func(buf *bytes.Buffer) error {
			_, err := buf.Write(b.renderer.Stylesheet())
			return err
		})
	})

	for _, model := range models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return b.write(vo.PageKindModel, pagePath(service.ModelPath(model.Slug)), func(buf *bytes.Buffer) error {
				return b.renderer.Model(buf, model)
			})
		})
		for i := range model.Problems {
			problem := &model.Problems[i]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return b.write(vo.PageKindProblem, pagePath(service.ProblemPath(model.Slug, problem.ID)), func(buf *bytes.Buffer) error {
					return b.renderer.Problem(buf, model, problem)
				})
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Models:   len(models),
		Problems: problems,
		Pages:    int(b.pages.Load()),
	}
	b.logger.Info("site built",
		zap.String("outDir", b.settings.OutDir),
		zap.Int("models", report.Models),
		zap.Int("problems", report.Problems),
		zap.Int("files", report.Pages),
	)
	return report, nil
}

// write renders into memory and writes the file relative to the output directory.
func (b *Builder) write(kind vo.PageKind, name string, renderFn func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := renderFn(&buf); err != nil {
		return err
	}
	path := filepath.Join(b.settings.OutDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	b.pages.Add(1)
	if kind != "" && b.metrics != nil {
		b.metrics.PagesRendered.WithLabelValues(string(kind)).Inc()
	}
	b.logger.Debug("wrote page", zap.String("file", name))
	return nil
}

// pagePath maps a site path such as /guide/dyson-v8 to guide/dyson-v8/index.html.
func pagePath(sitePath string) string {
	return filepath.Join(filepath.FromSlash(sitePath[1:]), "index.html")
}

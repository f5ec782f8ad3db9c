package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/foomo/vacuumpartshub/observability"
	"github.com/foomo/vacuumpartshub/render"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/foomo/vacuumpartshub/service/vo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Settings struct {
	// MCPEndpoint is where an optional MCP handler is mounted, e.g. "/mcp".
	MCPEndpoint string
}

// Server serves the site pages dynamically from the catalog.
type Server struct {
	echo     *echo.Echo
	logger   *zap.Logger
	resolver *service.Resolver
	renderer *render.Renderer
	metrics  *observability.Metrics
}

// New wires routes; mcpHandler may be nil.
func New(logger *zap.Logger, resolver *service.Resolver, renderer *render.Renderer, metrics *observability.Metrics, mcpHandler http.Handler, settings Settings) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		logger:   logger,
		resolver: resolver,
		renderer: renderer,
		metrics:  metrics,
	}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRoutePath: true,
		LogLatency:   true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(v.Status)).Inc()
			s.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.GET("/", s.home)
	e.GET("/guide/:model", s.model)
	e.GET("/guide/:model/", s.model)
	e.GET("/guide/:model/:problem", s.problem)
	e.GET("/guide/:model/:problem/", s.problem)
	e.GET("/sitemap.xml", s.sitemap)
	e.GET("/robots.txt", s.robots)
	e.GET(render.StylesheetPath, func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/css; charset=utf-8", renderer.Stylesheet())
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if mcpHandler != nil && settings.MCPEndpoint != "" {
		e.Any(settings.MCPEndpoint, echo.WrapHandler(mcpHandler))
		e.Any(settings.MCPEndpoint+"/*", echo.WrapHandler(mcpHandler))
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	s.logger.Info("starting site server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) home(c echo.Context) error {
	ids, err := s.resolver.ModelIDs()
	if err != nil {
		return err
	}
	query := c.QueryParam("q")
	return s.html(c, vo.PageKindHome, func(buf *bytes.Buffer) error {
		return s.renderer.Home(buf, service.FilterModels(ids, query), query)
	})
}

func (s *Server) model(c echo.Context) error {
	model, err := s.resolver.Model(c.Param("model"))
	if err != nil {
		return err
	}
	return s.html(c, vo.PageKindModel, func(buf *bytes.Buffer) error {
		return s.renderer.Model(buf, model)
	})
}

func (s *Server) problem(c echo.Context) error {
	model, problem, err := s.resolver.Problem(c.Param("model"), c.Param("problem"))
	if err != nil {
		return err
	}
	return s.html(c, vo.PageKindProblem, func(buf *bytes.Buffer) error {
		return s.renderer.Problem(buf, model, problem)
	})
}

func (s *Server) sitemap(c echo.Context) error {
	models, err := s.resolver.Models()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.renderer.Sitemap(&buf, s.renderer.SitemapEntries(models)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, buf.Bytes())
}

func (s *Server) robots(c echo.Context) error {
	var buf bytes.Buffer
	if err := s.renderer.Robots(&buf); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}

func (s *Server) html(c echo.Context, kind vo.PageKind, renderFn func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := renderFn(&buf); err != nil {
		return err
	}
	s.metrics.PagesRendered.WithLabelValues(string(kind)).Inc()
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// handleError renders the not found page for unknown routes and catalog ids.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.As(err, &he):
		code = he.Code
	}

	if code == http.StatusNotFound {
		var buf bytes.Buffer
		if renderErr := s.renderer.NotFound(&buf); renderErr == nil {
			_ = c.HTMLBlob(code, buf.Bytes())
			return
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	_ = c.String(code, http.StatusText(code))
}

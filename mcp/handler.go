package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/foomo/vacuumpartshub/scrape"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/foomo/vacuumpartshub/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const Version = "0.1.0"

type ScrapeRequest struct {
	URL      string `json:"url"`      // The URL to scrape
	Selector string `json:"selector"` // CSS selector to extract content
}

type ScrapeResponse struct {
	Summary  *vo.DocumentSummary `json:"summary"`
	Markdown string              `json:"markdown"` // The extracted content in markdown format
}

type ListModelsRequest struct {
	Query string `json:"query"` // Optional search text, e.g. "dyson v8"
}

type ListModelsResponse struct {
	Models []vo.DocumentSummary `json:"models"`
}

type GetModelRequest struct {
	Model string `json:"model"` // Model slug
}

type GetModelResponse struct {
	Model *vo.ModelRecord `json:"model"`
}

type GetProblemRequest struct {
	Model   string `json:"model"`   // Model slug
	Problem string `json:"problem"` // Problem id
}

type GetProblemResponse struct {
	Problem *vo.ProblemDetail `json:"problem"`
}

type GetDocumentRequest struct {
	Path string `json:"path"` // The path to get the document for
}

type GetDocumentResponse struct {
	Document *vo.Document `json:"document"` // The document with full structure
}

// NewServer creates a new MCP server with the scrape tool and, when a service
// is given, the catalog tools.
func NewServer(logger *zap.Logger, client *http.Client, serviceInstance service.Service) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	s := server.NewMCPServer(
		"VacuumPartsHub MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Scrape a published guide page and convert it to markdown"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the webpage to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector to extract specific content (e.g., 'main', '#content', 'ol.steps')"),
		),
	)
	s.AddTool(scrapeTool, withCallLog(logger, mcp.NewTypedToolHandler(getScrapeHandler(client))))

	if serviceInstance == nil {
		return s
	}

	listModelsTool := mcp.NewTool("listModels",
		mcp.WithDescription("List vacuum models that have a repair guide, optionally filtered by a search text"),
		mcp.WithString("query",
			mcp.Description("Search text matched against the model name, e.g. 'dyson' or 'shark nv352'"),
		),
	)
	s.AddTool(listModelsTool, withCallLog(logger, mcp.NewTypedToolHandler(getListModelsHandler(serviceInstance))))

	getModelTool := mcp.NewTool("getModel",
		mcp.WithDescription("Get the full record of a vacuum model: manual, keywords, problems and FAQ"),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("The model slug, e.g. 'dyson-v8'"),
		),
	)
	s.AddTool(getModelTool, withCallLog(logger, mcp.NewTypedToolHandler(getModelHandler(serviceInstance))))

	getProblemTool := mcp.NewTool("getProblem",
		mcp.WithDescription("Get one problem of a model with its causes, fix steps and affiliate part links"),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("The model slug, e.g. 'dyson-v8'"),
		),
		mcp.WithString("problem",
			mcp.Required(),
			mcp.Description("The problem id, e.g. 'battery-wont-charge'"),
		),
	)
	s.AddTool(getProblemTool, withCallLog(logger, mcp.NewTypedToolHandler(getProblemHandler(serviceInstance))))

	getDocumentTool := mcp.NewTool("getDocument",
		mcp.WithDescription("Get a site page as a document with breadcrumbs, siblings, children and markdown body"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The site path, e.g. '/', '/guide/dyson-v8' or '/guide/dyson-v8/battery-wont-charge'"),
		),
	)
	s.AddTool(getDocumentTool, withCallLog(logger, mcp.NewTypedToolHandler(getDocumentHandler(serviceInstance))))

	return s
}

func getScrapeHandler(client *http.Client) func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if args.Selector == "" {
			return mcp.NewToolResultError("selector is required"), nil
		}

		summary, markdown, err := scrape.Scrape(ctx, client, args.URL, args.Selector)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}

		return jsonResult(ScrapeResponse{
			Summary:  summary,
			Markdown: string(markdown),
		})
	}
}

func getListModelsHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ListModelsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListModelsRequest) (*mcp.CallToolResult, error) {
		models, err := serviceInstance.ListModels(ctx, args.Query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list models: %v", err)), nil
		}
		return jsonResult(ListModelsResponse{Models: models})
	}
}

func getModelHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetModelRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetModelRequest) (*mcp.CallToolResult, error) {
		if args.Model == "" {
			return mcp.NewToolResultError("model is required"), nil
		}
		model, err := serviceInstance.GetModel(ctx, args.Model)
		if err != nil {
			return toolError("model", args.Model, err), nil
		}
		return jsonResult(GetModelResponse{Model: model})
	}
}

func getProblemHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetProblemRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetProblemRequest) (*mcp.CallToolResult, error) {
		if args.Model == "" {
			return mcp.NewToolResultError("model is required"), nil
		}
		if args.Problem == "" {
			return mcp.NewToolResultError("problem is required"), nil
		}
		detail, err := serviceInstance.GetProblem(ctx, args.Model, args.Problem)
		if err != nil {
			return toolError("problem", args.Model+"/"+args.Problem, err), nil
		}
		return jsonResult(GetProblemResponse{Problem: detail})
	}
}

func getDocumentHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		document, err := serviceInstance.GetDocument(ctx, args.Path)
		if err != nil {
			return toolError("document", args.Path, err), nil
		}
		return jsonResult(GetDocumentResponse{Document: document})
	}
}

// withCallLog logs every tool call, with the caller's address when it came in over HTTP.
func withCallLog(logger *zap.Logger, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fields := []zap.Field{zap.String("tool", request.Params.Name)}
		if r, ok := httpRequestFromContext(ctx); ok {
			fields = append(fields, zap.String("remoteAddr", r.RemoteAddr))
		}
		logger.Debug("tool call", fields...)
		return handler(ctx, request)
	}
}

func toolError(kind, id string, err error) *mcp.CallToolResult {
	if errors.Is(err, service.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("%s not found: %s", kind, id))
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to get %s: %v", kind, err))
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

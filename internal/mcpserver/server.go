// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes corpus validation tools to LLM authoring clients via stdio
// transport. There is no network listener.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hallgrim/notelint/internal/models"
	"github.com/hallgrim/notelint/internal/report"
	"github.com/hallgrim/notelint/internal/validate"
)

// Server wraps the MCP server with notelint tools.
type Server struct {
	mcp    *server.MCPServer
	runner *validate.Runner
}

// New creates a new MCP server with all notelint tools registered.
func New(runner *validate.Runner) *Server {
	s := &Server{runner: runner}

	s.mcp = server.NewMCPServer(
		"notelint",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_corpus",
		mcp.WithDescription("Validate the note corpus: parse every document, build the slug index, "+
			"and check cross-references and image references. Returns the defect list."),
	), s.validateCorpus)

	s.mcp.AddTool(mcp.NewTool("lookup_document",
		mcp.WithDescription("Resolve a slug to its document: path, metadata, headings, and references."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug (e.g. wwdc23-10149)")),
	), s.lookupDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List every document in the corpus as slug/path/title triples."),
	), s.listDocuments)

	// Resource: the note format contract authors must follow.
	s.mcp.AddResource(
		mcp.NewResource("notelint://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical note format that all corpus documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) validateCorpus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defects := rep.Defects
	if defects == nil {
		defects = []models.Defect{}
	}
	out, _ := json.MarshalIndent(struct {
		Documents int             `json:"documents"`
		Summary   string          `json:"summary"`
		Defects   []models.Defect `json:"defects"`
	}{
		Documents: rep.Index.Len(),
		Summary:   report.Summary(defects),
		Defects:   defects,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) lookupDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := rep.Index.Lookup(slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("slug not found: %s", slug)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type item struct {
		Slug  string `json:"slug"`
		Path  string `json:"path"`
		Title string `json:"title"`
	}
	items := make([]item, 0, rep.Index.Len())
	for _, doc := range rep.Index.All() {
		items = append(items, item{Slug: doc.Slug, Path: doc.Path, Title: doc.Metadata.Title})
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "notelint://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hallgrim/notelint/internal/storage"
	"github.com/hallgrim/notelint/internal/testutil"
	"github.com/hallgrim/notelint/internal/validate"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	root, store := testutil.TestCorpus(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := validate.NewRunner(store, storage.NewAssetDir(t.TempDir()), nil, logger, 2)
	return New(runner), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct call-tool test helper, so the handler functions
	// are invoked directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "validate_corpus":
		result, err = srv.validateCorpus(ctx, req)
	case "lookup_document":
		result, err = srv.lookupDocument(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestValidateCorpus_ReportsDefects(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteNote(t, root, "a.md",
		"---\ntitle: A\nkind: overview\nslug: a\n---\nsee [[missing-doc]]\n")

	r := callTool(t, srv, "validate_corpus", nil)
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}

	var decoded struct {
		Documents int `json:"documents"`
		Defects   []struct {
			Kind   string `json:"kind"`
			Target string `json:"target"`
		} `json:"defects"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Documents != 1 || len(decoded.Defects) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Defects[0].Target != "missing-doc" {
		t.Errorf("target = %q", decoded.Defects[0].Target)
	}
}

func TestValidateCorpus_CleanCorpusEmptyDefectList(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteNote(t, root, "a.md", testutil.SessionNote("Clean", ""))

	r := callTool(t, srv, "validate_corpus", nil)
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if strings.Contains(resultText(r), "null") {
		t.Errorf("clean corpus rendered defects as null:\n%s", resultText(r))
	}
}

func TestLookupDocument(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteNote(t, root, "2023/talk.md",
		"---\ntitle: Talk\nkind: overview\nslug: the-talk\n---\nbody\n")

	r := callTool(t, srv, "lookup_document", map[string]interface{}{"slug": "the-talk"})
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "2023/talk.md") {
		t.Errorf("result missing path:\n%s", resultText(r))
	}
}

func TestLookupDocument_UnknownSlug(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "lookup_document", map[string]interface{}{"slug": "ghost"})
	if !r.IsError {
		t.Error("expected tool error for unknown slug")
	}
}

func TestLookupDocument_MissingArgument(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "lookup_document", nil)
	if !r.IsError {
		t.Error("expected tool error for missing slug argument")
	}
}

func TestListDocuments(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteNote(t, root, "b.md", "---\ntitle: B\nkind: overview\nslug: b\n---\nbody\n")
	testutil.WriteNote(t, root, "a.md", "---\ntitle: A\nkind: overview\nslug: a\n---\nbody\n")

	r := callTool(t, srv, "list_documents", nil)
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	var items []struct {
		Slug string `json:"slug"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(items) != 2 || items[0].Path != "a.md" || items[1].Path != "b.md" {
		t.Errorf("items = %v", items)
	}
}

func TestNoteFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected text resource contents")
	}
	if !strings.Contains(tc.Text, "kind: session") {
		t.Error("contract is missing the metadata example")
	}
}

package application

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jira-bitbucket-mcp-server/internal/domain"
	"jira-bitbucket-mcp-server/internal/infrastructure"
)

const testCommitDiff = `diff --git a/main.go b/main.go
index abc123..def456 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+// added line
`

// setupMockBitbucketServer creates a mock Bitbucket upstream and counts the
// requests it receives.
func setupMockBitbucketServer(requestCount *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount != nil {
			atomic.AddInt64(requestCount, 1)
		}

		switch {
		case r.Method == "GET" && r.URL.Path == "/2.0/repositories/acme/backend":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(domain.Repository{
				Name:      "backend",
				Slug:      "backend",
				FullName:  "acme/backend",
				IsPrivate: true,
			})

		case r.Method == "POST" && r.URL.Path == "/2.0/repositories/acme/new-service":
			var createReq domain.RepositoryCreate
			json.NewDecoder(r.Body).Decode(&createReq)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(domain.Repository{
				Name:      "new-service",
				Slug:      "new-service",
				IsPrivate: createReq.IsPrivate,
			})

		case r.Method == "POST" && r.URL.Path == "/2.0/repositories/acme/backend/pullrequests":
			var createReq domain.PullRequestCreate
			if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil ||
				createReq.Title == "" || createReq.Source.Branch.Name == "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": {"message": "invalid pull request"}}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(domain.PullRequest{
				ID:          42,
				Title:       createReq.Title,
				State:       "OPEN",
				Source:      createReq.Source,
				Destination: createReq.Destination,
			})

		case r.Method == "POST" && r.URL.Path == "/2.0/repositories/acme/backend/pullrequests/1/merge":
			var mergeReq domain.MergeRequest
			json.NewDecoder(r.Body).Decode(&mergeReq)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(domain.PullRequest{
				ID:          1,
				State:       "MERGED",
				MergeCommit: &domain.CommitRef{Hash: "abc123def"},
			})

		case r.Method == "DELETE" && r.URL.Path == "/2.0/repositories/acme/backend/pullrequests/1/approve":
			w.WriteHeader(http.StatusNoContent)

		case r.Method == "GET" && r.URL.Path == "/2.0/repositories/acme/backend/diff/abc123def":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte(testCommitDiff))

		case r.Method == "DELETE" && r.URL.Path == "/2.0/repositories/acme/backend/refs/branches/stale":
			w.WriteHeader(http.StatusNoContent)

		case r.Method == "POST" && r.URL.Path == "/2.0/repositories/acme/backend/issues":
			var createReq domain.BitbucketIssueCreate
			json.NewDecoder(r.Body).Decode(&createReq)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(domain.BitbucketIssue{
				ID:       8,
				Title:    createReq.Title,
				Kind:     createReq.Kind,
				Priority: createReq.Priority,
				State:    "new",
			})

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"message": "Resource not found"}}`))
		}
	}))
}

func createBitbucketHandler(serverURL string) *BitbucketHandler {
	client := infrastructure.NewBitbucketClient(serverURL, http.DefaultClient)
	return NewBitbucketHandler(client, domain.NewResponseMapper())
}

func TestBitbucketHandler_ToolName(t *testing.T) {
	handler := createBitbucketHandler("http://localhost")

	if handler.ToolName() != "bitbucket" {
		t.Errorf("Expected tool name 'bitbucket', got '%s'", handler.ToolName())
	}
}

func TestBitbucketHandler_ListTools(t *testing.T) {
	handler := createBitbucketHandler("http://localhost")

	tools := handler.ListTools()
	if len(tools) != 27 {
		t.Errorf("Expected 27 tools, got %d", len(tools))
	}

	for _, tool := range tools {
		if !strings.HasPrefix(tool.Name, "bitbucket_") {
			t.Errorf("Tool %s missing bitbucket_ prefix", tool.Name)
		}
		if tool.InputSchema.Type != "object" {
			t.Errorf("Tool %s schema type should be object, got '%s'", tool.Name, tool.InputSchema.Type)
		}
		for _, required := range tool.InputSchema.Required {
			if _, ok := tool.InputSchema.Properties[required]; !ok {
				t.Errorf("Tool %s requires undeclared property %s", tool.Name, required)
			}
		}
	}
}

func TestBitbucketHandler_HandleGetRepository(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBGetRepository,
		Arguments: map[string]interface{}{
			"workspace": "acme",
			"repoSlug":  "backend",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resp.Content[0].Text, "acme/backend") {
		t.Errorf("Expected repository in response: %s", resp.Content[0].Text)
	}
}

func TestBitbucketHandler_HandleGetRepository_MissingParams(t *testing.T) {
	var requestCount int64
	server := setupMockBitbucketServer(&requestCount)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolBBGetRepository,
		Arguments: map[string]interface{}{"workspace": "acme"},
	})
	if err == nil {
		t.Fatal("Expected error for missing repoSlug")
	}

	domainErr, ok := err.(*domain.Error)
	if !ok || domainErr.Code != domain.InvalidParams {
		t.Errorf("Expected InvalidParams, got %v", err)
	}

	if atomic.LoadInt64(&requestCount) != 0 {
		t.Errorf("Expected no upstream requests, got %d", requestCount)
	}
}

func TestBitbucketHandler_HandleCreateRepository_DefaultsPrivate(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBCreateRepository,
		Arguments: map[string]interface{}{
			"workspace": "acme",
			"repoSlug":  "new-service",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resp.Content[0].Text, `"is_private": true`) {
		t.Errorf("Expected private repository by default: %s", resp.Content[0].Text)
	}
}

func TestBitbucketHandler_HandleCreatePullRequest(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBCreatePullRequest,
		Arguments: map[string]interface{}{
			"workspace":         "acme",
			"repoSlug":          "backend",
			"title":             "Add feature",
			"sourceBranch":      "feature/x",
			"destinationBranch": "main",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := resp.Content[0].Text
	if !strings.Contains(text, `"id": 42`) || !strings.Contains(text, "feature/x") {
		t.Errorf("Unexpected pull request response: %s", text)
	}
}

func TestBitbucketHandler_HandleCreatePullRequest_MissingBranch(t *testing.T) {
	var requestCount int64
	server := setupMockBitbucketServer(&requestCount)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBCreatePullRequest,
		Arguments: map[string]interface{}{
			"workspace": "acme",
			"repoSlug":  "backend",
			"title":     "Add feature",
		},
	})
	if err == nil {
		t.Fatal("Expected error for missing sourceBranch")
	}

	if atomic.LoadInt64(&requestCount) != 0 {
		t.Errorf("Expected no upstream requests, got %d", requestCount)
	}
}

func TestBitbucketHandler_HandleMergePullRequest_DefaultStrategy(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBMergePullRequest,
		Arguments: map[string]interface{}{
			"workspace":     "acme",
			"repoSlug":      "backend",
			"pullRequestId": 1,
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resp.Content[0].Text, "MERGED") {
		t.Errorf("Expected merged state: %s", resp.Content[0].Text)
	}
}

func TestBitbucketHandler_HandleUpdatePullRequest_NoFields(t *testing.T) {
	var requestCount int64
	server := setupMockBitbucketServer(&requestCount)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBUpdatePullRequest,
		Arguments: map[string]interface{}{
			"workspace":     "acme",
			"repoSlug":      "backend",
			"pullRequestId": 1,
		},
	})
	if err == nil {
		t.Fatal("Expected error when no fields provided")
	}

	domainErr, ok := err.(*domain.Error)
	if !ok || domainErr.Code != domain.InvalidParams {
		t.Errorf("Expected InvalidParams, got %v", err)
	}

	if atomic.LoadInt64(&requestCount) != 0 {
		t.Errorf("Expected no upstream requests, got %d", requestCount)
	}
}

func TestBitbucketHandler_HandleUnapprovePullRequest(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBUnapprovePR,
		Arguments: map[string]interface{}{
			"workspace":     "acme",
			"repoSlug":      "backend",
			"pullRequestId": 1,
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resp.Content[0].Text, "success") {
		t.Errorf("Unexpected response: %s", resp.Content[0].Text)
	}
}

func TestBitbucketHandler_HandleGetCommitDiff_RawText(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBGetCommitDiff,
		Arguments: map[string]interface{}{
			"workspace":  "acme",
			"repoSlug":   "backend",
			"commitHash": "abc123def",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	// The diff must pass through as raw text, not JSON-wrapped.
	if len(resp.Content) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(resp.Content))
	}
	if !strings.HasPrefix(resp.Content[0].Text, "diff --git") {
		t.Errorf("Expected raw diff, got: %s", resp.Content[0].Text)
	}
}

func TestBitbucketHandler_HandleDeleteBranch(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBDeleteBranch,
		Arguments: map[string]interface{}{
			"workspace":  "acme",
			"repoSlug":   "backend",
			"branchName": "stale",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resp.Content[0].Text, "success") {
		t.Errorf("Unexpected response: %s", resp.Content[0].Text)
	}
}

func TestBitbucketHandler_HandleCreateIssue_Defaults(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBCreateIssue,
		Arguments: map[string]interface{}{
			"workspace": "acme",
			"repoSlug":  "backend",
			"title":     "Crash on startup",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := resp.Content[0].Text
	if !strings.Contains(text, `"kind": "bug"`) || !strings.Contains(text, `"priority": "major"`) {
		t.Errorf("Expected default kind and priority: %s", text)
	}
}

func TestBitbucketHandler_HandleUnknownTool(t *testing.T) {
	handler := createBitbucketHandler("http://localhost")

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      "bitbucket_nonexistent",
		Arguments: map[string]interface{}{},
	})
	if err == nil {
		t.Fatal("Expected error for unknown tool")
	}

	domainErr, ok := err.(*domain.Error)
	if !ok || domainErr.Code != domain.MethodNotFound {
		t.Errorf("Expected MethodNotFound, got %v", err)
	}
}

func TestBitbucketHandler_HandleUpstreamError(t *testing.T) {
	server := setupMockBitbucketServer(nil)
	defer server.Close()

	handler := createBitbucketHandler(server.URL)

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolBBGetRepository,
		Arguments: map[string]interface{}{
			"workspace": "acme",
			"repoSlug":  "missing",
		},
	})
	if err == nil {
		t.Fatal("Expected error for missing repository")
	}

	domainErr, ok := err.(*domain.Error)
	if !ok || domainErr.Code != domain.APIError {
		t.Errorf("Expected APIError for 404, got %v", err)
	}

	data, ok := domainErr.Data.(map[string]interface{})
	if !ok || data["statusCode"] != http.StatusNotFound {
		t.Errorf("Expected status code in error data, got %v", domainErr.Data)
	}
}

// syncBuffer is a goroutine-safe bytes.Buffer for capturing transport output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

// TestCreatePullRequest_EndToEnd drives the full request path: a JSON-RPC
// tools/call arrives on the stdio transport, the server routes it to the
// Bitbucket handler, the handler calls the mock upstream, and the response
// comes back on stdout.
func TestCreatePullRequest_EndToEnd(t *testing.T) {
	upstream := setupMockBitbucketServer(nil)
	defer upstream.Close()

	request := domain.Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name": ToolBBCreatePullRequest,
			"arguments": map[string]interface{}{
				"workspace":         "acme",
				"repoSlug":          "backend",
				"title":             "Add feature",
				"sourceBranch":      "feature/x",
				"destinationBranch": "main",
			},
		},
	}
	requestBytes, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	output := &syncBuffer{}
	transport := domain.NewStdioTransportWithIO(
		strings.NewReader(string(requestBytes)+"\n"),
		output,
	)

	handler := createBitbucketHandler(upstream.URL)
	router := NewRequestRouter(handler)
	config := &domain.Config{
		Server: domain.ServerConfig{Name: "jira-bitbucket-mcp-server", Version: "1.0.0"},
	}

	srv := NewServer(transport, router, config)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer srv.Close()

	// Wait for the response to be written.
	deadline := time.Now().Add(2 * time.Second)
	for output.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	var response domain.Response
	if err := json.Unmarshal(bytes.TrimSpace(output.Bytes()), &response); err != nil {
		t.Fatalf("Failed to parse response: %v (output: %s)", err, output.Bytes())
	}

	if response.Error != nil {
		t.Fatalf("Unexpected error response: %+v", response.Error)
	}

	resultBytes, _ := json.Marshal(response.Result)
	var toolResp domain.ToolResponse
	if err := json.Unmarshal(resultBytes, &toolResp); err != nil {
		t.Fatalf("Failed to parse tool response: %v", err)
	}

	if len(toolResp.Content) == 0 {
		t.Fatal("Expected content blocks")
	}

	text := toolResp.Content[0].Text
	if !strings.Contains(text, `"id": 42`) || !strings.Contains(text, `"state": "OPEN"`) {
		t.Errorf("Unexpected pull request payload: %s", text)
	}
}

package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"jira-bitbucket-mcp-server/internal/domain"
)

// mockTransport is a mock implementation of domain.Transport for testing.
type mockTransport struct {
	mu        sync.Mutex
	reqChan   chan *domain.Request
	responses []*domain.Response
	started   bool
	closed    bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		reqChan:   make(chan *domain.Request, 10),
		responses: make([]*domain.Response, 0),
	}
}

func (m *mockTransport) Start(ctx context.Context) error {
	m.started = true
	return nil
}

func (m *mockTransport) Send(response *domain.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	return nil
}

func (m *mockTransport) Receive() <-chan *domain.Request {
	return m.reqChan
}

func (m *mockTransport) Close() error {
	m.closed = true
	close(m.reqChan)
	return nil
}

func (m *mockTransport) sendRequest(req *domain.Request) {
	m.reqChan <- req
}

func (m *mockTransport) getLastResponse() *domain.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		return nil
	}
	return m.responses[len(m.responses)-1]
}

// mockToolHandler is a mock implementation of domain.ToolHandler for testing.
type mockToolHandler struct {
	name     string
	tools    []domain.ToolDefinition
	response *domain.ToolResponse
	err      error
}

func (m *mockToolHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockToolHandler) ListTools() []domain.ToolDefinition {
	return m.tools
}

func (m *mockToolHandler) ToolName() string {
	return m.name
}

// createTestServer creates a server with mock dependencies for testing.
func createTestServer() (*Server, *mockTransport) {
	transport := newMockTransport()

	jiraHandler := &mockToolHandler{
		name: "jira",
		tools: []domain.ToolDefinition{
			{
				Name:        "jira_get_issue",
				Description: "Get a JIRA issue",
				InputSchema: domain.JSONSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"issueKey": map[string]interface{}{"type": "string"},
					},
					Required: []string{"issueKey"},
				},
			},
		},
		response: &domain.ToolResponse{
			Content: []domain.ContentBlock{
				{Type: "text", Text: "Issue retrieved"},
			},
		},
	}

	router := NewRequestRouter(jiraHandler)

	config := &domain.Config{
		Server: domain.ServerConfig{
			Name:    "jira-bitbucket-mcp-server",
			Version: "1.0.0",
		},
		Services: domain.ServicesConfig{
			Jira: &domain.ServiceConfig{
				BaseURL: "https://example.atlassian.net",
				Auth: domain.AuthConfig{
					Type:     "basic",
					Username: "testuser",
					Password: "testpass",
				},
			},
		},
	}

	server := NewServer(transport, router, config)
	return server, transport
}

func TestNewServer(t *testing.T) {
	server, transport := createTestServer()

	if server == nil {
		t.Fatal("NewServer returned nil")
	}

	if server.transport != transport {
		t.Error("Server transport not set correctly")
	}

	if server.router == nil {
		t.Error("Server router is nil")
	}

	if server.config == nil {
		t.Error("Server config is nil")
	}

	if server.logger == nil {
		t.Error("Server logger is nil")
	}
}

func TestServerStart(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := server.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !transport.started {
		t.Error("Transport was not started")
	}
}

func TestHandleInitialize(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params:  map[string]interface{}{},
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result is not a map")
	}

	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("Unexpected protocolVersion: %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("Missing serverInfo in response")
	}

	if serverInfo["name"] != "jira-bitbucket-mcp-server" {
		t.Errorf("Unexpected server name: %v", serverInfo["name"])
	}

	if result["capabilities"] == nil {
		t.Error("Missing capabilities in response")
	}
}

func TestHandleToolsList(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "tools/list",
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result is not a map")
	}

	tools, ok := result["tools"].([]domain.ToolDefinition)
	if !ok {
		t.Fatal("Tools is not a slice of ToolDefinition")
	}

	if len(tools) == 0 {
		t.Error("Expected at least one tool")
	}

	if tools[0].Name != "jira_get_issue" {
		t.Errorf("Expected tool name 'jira_get_issue', got '%s'", tools[0].Name)
	}
}

func TestHandleToolsCall_Success(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name": "jira_get_issue",
			"arguments": map[string]interface{}{
				"issueKey": "TEST-1",
			},
		},
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if resp.Result == nil {
		t.Fatal("Result is nil")
	}
}

func TestHandleToolsCall_MissingParams(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params:  nil,
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error == nil {
		t.Fatal("Expected error response")
	}

	if resp.Error.Code != domain.InvalidParams {
		t.Errorf("Expected error code %d, got %d", domain.InvalidParams, resp.Error.Code)
	}
}

func TestHandleToolsCall_MissingToolName(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      5,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"arguments": map[string]interface{}{},
		},
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error == nil {
		t.Fatal("Expected error response")
	}

	if resp.Error.Code != domain.InvalidParams {
		t.Errorf("Expected error code %d, got %d", domain.InvalidParams, resp.Error.Code)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      6,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      "unknown_tool",
			"arguments": map[string]interface{}{},
		},
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error == nil {
		t.Fatal("Expected error response for unknown tool")
	}

	if resp.Error.Code != domain.MethodNotFound {
		t.Errorf("Expected error code %d, got %d", domain.MethodNotFound, resp.Error.Code)
	}
}

func TestHandleToolsCall_HandlerError(t *testing.T) {
	transport := newMockTransport()

	// Handler that always fails with a pre-mapped JSON-RPC error.
	jiraHandler := &mockToolHandler{
		name: "jira",
		err: &domain.Error{
			Code:    domain.APIError,
			Message: "Resource not found",
		},
	}

	router := NewRequestRouter(jiraHandler)
	config := &domain.Config{
		Server: domain.ServerConfig{Name: "test", Version: "0.0.1"},
	}

	server := NewServer(transport, router, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      "jira_get_issue",
			"arguments": map[string]interface{}{"issueKey": "TEST-404"},
		},
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error == nil {
		t.Fatal("Expected error response")
	}

	if resp.Error.Code != domain.APIError {
		t.Errorf("Expected error code %d, got %d", domain.APIError, resp.Error.Code)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	server, transport := createTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req := &domain.Request{
		JSONRPC: "2.0",
		ID:      8,
		Method:  "unknown/method",
	}

	transport.sendRequest(req)

	time.Sleep(100 * time.Millisecond)

	resp := transport.getLastResponse()
	if resp == nil {
		t.Fatal("No response received")
	}

	if resp.Error == nil {
		t.Fatal("Expected error response")
	}

	if resp.Error.Code != domain.MethodNotFound {
		t.Errorf("Expected error code %d, got %d", domain.MethodNotFound, resp.Error.Code)
	}
}

func TestValidateRequest_InvalidJSONRPC(t *testing.T) {
	server, _ := createTestServer()

	req := &domain.Request{
		JSONRPC: "1.0",
		Method:  "test",
	}

	err := server.validateRequest(req)
	if err == nil {
		t.Fatal("Expected validation error for invalid JSONRPC version")
	}
}

func TestValidateRequest_MissingMethod(t *testing.T) {
	server, _ := createTestServer()

	req := &domain.Request{
		JSONRPC: "2.0",
		Method:  "",
	}

	err := server.validateRequest(req)
	if err == nil {
		t.Fatal("Expected validation error for missing method")
	}
}

func TestParseToolRequest_Valid(t *testing.T) {
	server, _ := createTestServer()

	params := map[string]interface{}{
		"name": "jira_get_issue",
		"arguments": map[string]interface{}{
			"issueKey": "TEST-1",
		},
	}

	toolReq, err := server.parseToolRequest(params)
	if err != nil {
		t.Fatalf("Failed to parse tool request: %v", err)
	}

	if toolReq.Name != "jira_get_issue" {
		t.Errorf("Expected name 'jira_get_issue', got '%s'", toolReq.Name)
	}

	if toolReq.Arguments["issueKey"] != "TEST-1" {
		t.Errorf("Expected issueKey 'TEST-1', got '%v'", toolReq.Arguments["issueKey"])
	}
}

func TestParseToolRequest_NilParams(t *testing.T) {
	server, _ := createTestServer()

	_, err := server.parseToolRequest(nil)
	if err == nil {
		t.Fatal("Expected error for nil params")
	}
}

func TestParseToolRequest_MissingName(t *testing.T) {
	server, _ := createTestServer()

	params := map[string]interface{}{
		"arguments": map[string]interface{}{},
	}

	_, err := server.parseToolRequest(params)
	if err == nil {
		t.Fatal("Expected error for missing tool name")
	}
}

func TestServerClose(t *testing.T) {
	server, transport := createTestServer()

	err := server.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if !transport.closed {
		t.Error("Transport was not closed")
	}
}

func TestStructuredLogger_BuildLogEntry(t *testing.T) {
	logger := NewStructuredLogger()

	entry := logger.buildLogEntry("INFO", "test", nil, map[string]interface{}{
		"key": "value",
	})

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(entry), &parsed); err != nil {
		t.Fatalf("Log entry is not valid JSON: %v", err)
	}

	if parsed["level"] != "INFO" {
		t.Errorf("Expected level 'INFO', got '%v'", parsed["level"])
	}

	if parsed["message"] != "test" {
		t.Errorf("Expected message 'test', got '%v'", parsed["message"])
	}

	if parsed["key"] != "value" {
		t.Errorf("Expected key 'value', got '%v'", parsed["key"])
	}
}

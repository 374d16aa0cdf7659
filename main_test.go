package main

import (
	"os"
	"testing"

	"jira-bitbucket-mcp-server/internal/application"
	"jira-bitbucket-mcp-server/internal/domain"
	"jira-bitbucket-mcp-server/internal/infrastructure"
)

// TestConfigurationLoading tests that configuration can be loaded successfully
func TestConfigurationLoading(t *testing.T) {
	configContent := `
server:
  name: test-server
  version: 0.1.0

services:
  jira:
    base_url: https://example.atlassian.net
    auth:
      type: basic
      username: user@example.com
      password: api-token
`

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	for _, key := range []string{"JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN",
		"BITBUCKET_URL", "BITBUCKET_USERNAME", "BITBUCKET_APP_PASSWORD"} {
		t.Setenv(key, "")
	}

	config, err := domain.LoadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if config.Server.Name != "test-server" {
		t.Errorf("Expected server name 'test-server', got '%s'", config.Server.Name)
	}

	if config.Services.Jira == nil {
		t.Fatal("Expected JIRA to be configured")
	}

	if config.Services.Bitbucket != nil {
		t.Error("Expected Bitbucket to be unconfigured")
	}
}

// TestServerWiring tests that the full server stack can be assembled from a
// loaded configuration the same way main does.
func TestServerWiring(t *testing.T) {
	config := &domain.Config{
		Server: domain.ServerConfig{Name: "test-server", Version: "0.1.0"},
		Services: domain.ServicesConfig{
			Jira: &domain.ServiceConfig{
				BaseURL: "https://example.atlassian.net",
				Auth: domain.AuthConfig{
					Type:     "basic",
					Username: "user@example.com",
					Password: "api-token",
				},
			},
			Bitbucket: &domain.ServiceConfig{
				BaseURL: domain.DefaultBitbucketBaseURL,
				Auth: domain.AuthConfig{
					Type:     "basic",
					Username: "bb-user",
					Password: "app-password",
				},
			},
		},
	}

	credStore := domain.NewCredentialStoreFromConfig(config)
	mapper := domain.NewResponseMapper()

	var handlers []domain.ToolHandler

	jiraHTTP, err := credStore.Client("jira")
	if err != nil {
		t.Fatalf("Failed to build JIRA HTTP client: %v", err)
	}
	jiraClient := infrastructure.NewJiraClient(config.Services.Jira.BaseURL, jiraHTTP)
	handlers = append(handlers, application.NewJiraHandler(jiraClient, mapper))

	bbHTTP, err := credStore.Client("bitbucket")
	if err != nil {
		t.Fatalf("Failed to build Bitbucket HTTP client: %v", err)
	}
	bbClient := infrastructure.NewBitbucketClient(config.Services.Bitbucket.BaseURL, bbHTTP)
	handlers = append(handlers, application.NewBitbucketHandler(bbClient, mapper))

	router := application.NewRequestRouter(handlers...)

	tools := router.ListAllTools()
	if len(tools) != 48 {
		t.Errorf("Expected 48 tools across both services, got %d", len(tools))
	}

	if _, exists := router.GetHandler("jira"); !exists {
		t.Error("Expected jira handler to be registered")
	}
	if _, exists := router.GetHandler("bitbucket"); !exists {
		t.Error("Expected bitbucket handler to be registered")
	}
}

// TestCredentialValidation_FailsAtStartup ensures broken credentials are
// rejected when the client is built, before any tool call happens.
func TestCredentialValidation_FailsAtStartup(t *testing.T) {
	config := &domain.Config{
		Server: domain.ServerConfig{Name: "test-server", Version: "0.1.0"},
		Services: domain.ServicesConfig{
			Jira: &domain.ServiceConfig{
				BaseURL: "https://example.atlassian.net",
				Auth: domain.AuthConfig{
					Type:     "basic",
					Username: "user@example.com",
					// password missing
				},
			},
		},
	}

	credStore := domain.NewCredentialStoreFromConfig(config)

	client, err := credStore.Client("jira")
	if err == nil {
		t.Fatal("Expected error for incomplete credentials")
	}
	if client != nil {
		t.Error("Expected nil client on credential failure")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"jira-bitbucket-mcp-server/internal/application"
	"jira-bitbucket-mcp-server/internal/domain"
	"jira-bitbucket-mcp-server/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional, environment variables used otherwise)")
	flag.Parse()

	// Load a .env file when present; a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env file")
	}

	if *configPath == "" {
		*configPath = os.Getenv("MCP_CONFIG_PATH")
	}

	config, err := domain.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")

	// Credentials are resolved once at startup; a misconfigured service
	// is a fatal error before any request is accepted.
	credStore := domain.NewCredentialStoreFromConfig(config)
	mapper := domain.NewResponseMapper()

	var handlers []domain.ToolHandler

	if config.Services.Jira != nil {
		log.Println("Initializing JIRA client and handler")
		httpClient, err := credStore.Client("jira")
		if err != nil {
			log.Fatalf("Failed to create authenticated client for JIRA: %v", err)
		}
		jiraClient := infrastructure.NewJiraClient(config.Services.Jira.BaseURL, httpClient)
		handlers = append(handlers, application.NewJiraHandler(jiraClient, mapper))
		log.Println("JIRA handler registered")
	}

	if config.Services.Bitbucket != nil {
		log.Println("Initializing Bitbucket client and handler")
		httpClient, err := credStore.Client("bitbucket")
		if err != nil {
			log.Fatalf("Failed to create authenticated client for Bitbucket: %v", err)
		}
		bitbucketClient := infrastructure.NewBitbucketClient(config.Services.Bitbucket.BaseURL, httpClient)
		handlers = append(handlers, application.NewBitbucketHandler(bitbucketClient, mapper))
		log.Println("Bitbucket handler registered")
	}

	if len(handlers) == 0 {
		log.Fatal("No services configured - at least one of JIRA or Bitbucket must be configured")
	}

	router := application.NewRequestRouter(handlers...)
	log.Printf("Request router initialized with %d handler(s)", len(handlers))

	transport := domain.NewStdioTransport()
	server := application.NewServer(transport, router, config)
	log.Println("MCP server created")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	log.Println("MCP server started successfully (stdio transport)")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()
	case err := <-errChan:
		log.Printf("Server error: %v", err)
		cancel()
		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
		os.Exit(1)
	}

	log.Println("Closing server...")
	if err := server.Close(); err != nil {
		log.Printf("Error during server shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server shutdown complete")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/athapong/notegraph/prompts"
	"github.com/athapong/notegraph/tools"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	enableSSE := flag.Bool("sse", false, "Enable SSE server")
	sseAddr := flag.String("sse-addr", ":8080", "Address for SSE server to listen on")
	sseBasePath := flag.String("sse-base-path", "/mcp", "Base path for SSE endpoints")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Error loading env file %s: %v\n", *envFile, err)
	}
	// Create MCP server
	mcpServer := server.NewMCPServer(
		"notegraph",
		"1.0.0",
		server.WithLogging(),
		server.WithPromptCapabilities(true),
	)

	isEnabled := enabledTools(os.Getenv("ENABLE_TOOLS"))

	if isEnabled("entities") {
		tools.RegisterEntityTools(mcpServer)
	}

	if isEnabled("fetch") {
		tools.RegisterFetchTool(mcpServer)
	}

	if isEnabled("followup") {
		prompts.RegisterFollowUpPrompt(mcpServer)
	}

	// Check if SSE server should be enabled
	if *enableSSE || os.Getenv("ENABLE_SSE") == "true" {
		serveSSE(mcpServer, *sseAddr, *sseBasePath)
		return
	}

	// Use stdio server as before
	if err := server.ServeStdio(mcpServer); err != nil {
		panic(fmt.Sprintf("Server error: %v", err))
	}
}

// enabledTools parses a comma-separated ENABLE_TOOLS value. An empty value
// enables everything.
func enabledTools(value string) func(string) bool {
	enableTools := strings.Split(value, ",")
	for i := range enableTools {
		enableTools[i] = strings.TrimSpace(enableTools[i])
	}
	allToolsEnabled := len(enableTools) == 1 && enableTools[0] == ""

	return func(toolName string) bool {
		return allToolsEnabled || slices.Contains(enableTools, toolName)
	}
}

func serveSSE(mcpServer *server.MCPServer, addr, basePath string) {
	// Create SSE server
	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBasePath(basePath),
	)

	// Start SSE server in a goroutine
	go func() {
		log.Printf("Starting SSE server on %s with base path %s", addr, basePath)
		if err := sseServer.Start(addr); err != nil {
			log.Fatalf("Failed to start SSE server: %v", err)
		}
	}()

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Wait for termination signal
	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	// Gracefully shutdown the SSE server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sseServer.Shutdown(ctx); err != nil {
		log.Printf("Error during SSE server shutdown: %v", err)
	}
	log.Println("SSE server shutdown complete")
}

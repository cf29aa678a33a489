package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	internalmcp "github.com/tmm/rustdoc-twoslash/internal/mcp"
	"github.com/tmm/rustdoc-twoslash/pkg/twoslash"
)

func main() {
	var (
		portFlag    = flag.Int("port", 0, "TCP port to listen on (0 for stdio)")
		debugFlag   = flag.Bool("debug", false, "Enable debug logging")
		versionFlag = flag.Bool("version", false, "Show version information")
		scratchFlag = flag.String("scratch-dir", "", "Scratch directory for the analyzer's build cache")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println("twoslash-mcp v0.1.0")
		fmt.Println("Model Context Protocol server for snippet type annotations")
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if !twoslash.Enabled() {
		logger.Warn("twoslash processing is disabled; snippets will get no annotations",
			"env", twoslash.EnableEnv)
	}

	mcpServer := server.NewMCPServer(
		"twoslash-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	state := internalmcp.NewServer(logger)
	state.ScratchDir = *scratchFlag
	defer state.Close()

	state.WatchManifest(context.Background())
	internalmcp.RegisterTools(mcpServer, state)

	if *portFlag == 0 {
		if err := server.ServeStdio(mcpServer); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	} else {
		httpServer := server.NewStreamableHTTPServer(mcpServer)
		logger.Info("starting HTTP server", "port", *portFlag)
		if err := httpServer.Start(fmt.Sprintf(":%d", *portFlag)); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}
}

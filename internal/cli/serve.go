package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vitiral/rag/internal/index"
	"github.com/vitiral/rag/internal/lsp"
	"github.com/vitiral/rag/internal/parser"
	"github.com/vitiral/rag/internal/watcher"
)

// serveCmd runs the language server on stdio
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve workspace blocks over LSP on stdio",
	Long: `Index the workspace, watch it for changes and answer language server
requests (document and workspace symbols, hover, definition, references)
on stdin/stdout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Printf("docparse starting, root=%s", root)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Println("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initialize parser registry with default matchers
	registry := parser.NewRegistry()
	parser.RegisterDefaults(registry)

	// Create and build the index
	idx, err := index.New(root, registry, cfg.IndexOptions())
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Build(ctx); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	for _, fileErr := range idx.Errors() {
		log.Printf("skipped %v", fileErr)
	}

	// Start file watcher
	w, err := watcher.New(root, idx.Filter(), cfg.Debounce(), func(changed, removed []string) {
		for _, path := range removed {
			idx.RemoveFile(path)
		}
		for _, path := range changed {
			if err := idx.UpdateFile(path); err != nil {
				log.Printf("failed to update file %s: %v", path, err)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Start LSP server on stdio
	server := lsp.NewServer(idx, Version)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("LSP server error: %w", err)
	}

	log.Println("docparse shutdown complete")
	return nil
}

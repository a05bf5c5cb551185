package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/laminakit/lamina/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server exposing the REST API for chunking, ingestion
and search.

Examples:
  lamina serve
  lamina serve --port 9000
  lamina serve --host 0.0.0.0 --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return err
	}

	srv := server.New(svc, server.Config{
		Host: serveHost,
		Port: servePort,
	})

	// Handle graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		fmt.Println("\nShutting down...")
		srv.Shutdown()
		svc.Close()
	}()

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	fmt.Printf("Lamina server listening on http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  POST   /api/chunk               - Chunk text without storing")
	fmt.Println("  POST   /api/documents           - Ingest a document")
	fmt.Println("  GET    /api/documents           - List documents")
	fmt.Println("  GET    /api/documents/:id       - Get a document")
	fmt.Println("  GET    /api/documents/:id/chunks - Get a document's chunks")
	fmt.Println("  DELETE /api/documents/:id       - Delete a document")
	fmt.Println("  POST   /api/search              - Semantic search")
	fmt.Println("  GET    /api/stats               - Statistics")
	fmt.Println("  GET    /health                  - Health check")

	return srv.Start()
}

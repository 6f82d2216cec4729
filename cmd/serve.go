package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnmore-edu/extractor/internal/handlers"
	"github.com/learnmore-edu/extractor/internal/questionbank"
	"github.com/learnmore-edu/extractor/internal/recognition"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the question extraction API server",
		Long: `Starts the Extractor API on the specified port.

The API accepts question image uploads, recognizes the questions in them
using a vision-capable LLM (Gemini, OpenAI or Ollama), and drives the
one-at-a-time review/edit/save workflow against a local question bank.`,
		Example: `  # Start server on default port 8888
  extractor serve

  # Start server on custom port with a dedicated question bank
  extractor serve --port 3000 --db /var/lib/extractor/questions.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := questionbank.Open(dbPath)
			if err != nil {
				return err
			}
			defer bank.Close()

			handler := handlers.New(recognition.NewService(), bank)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/questions", handler.HandleQuestions)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Extractor API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&dbPath, "db", "questions.db", "Path to the question bank SQLite database")

	return cmd
}

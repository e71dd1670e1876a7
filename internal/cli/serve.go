package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"legalflow/internal/app"
	"legalflow/internal/config"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	Long: `Run the API server. Configuration is read from the environment, for example:

  PORT=8080 STORE_DRIVER=redis REDIS_URI=localhost:6379 LLM_API_KEY=... legalflow serve`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/register, /v1/auth/login, /v1/auth/logout")
		log.Println("  GET  /v1/domains, /v1/scores, /v1/me")
		log.Println("  PUT  /v1/domains/{domain}/questions/{question}/answer")
		log.Println("  GET/POST /v1/domains/{domain}/messages")
		log.Println("  POST /v1/domains/{domain}/uploads")
		log.Println("  GET  /v1/domains/{domain}/risks, /v1/domains/{domain}/analysis")
		log.Println("  WS   /v1/ws?token=...")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.Close(ctx)
		return fmt.Errorf("listening: %w", err)
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Printf("Closing backends: %v", err)
	}

	log.Println("Server exited")
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-login/internal/config"
	"github.com/kozaktomas/face-login/internal/database/postgres"
	"github.com/kozaktomas/face-login/internal/web"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Login web server.
The browser streams its webcam to the server; "Register Face" stores the
current face for the browser session and "Login" compares against it.
Models load in the background, requests fail with 503 until they are ready.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8085)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (defaults to random)")
}

// applyServeFlags lets flags override the environment.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	applyServeFlags(cmd, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stack, err := newFaceStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	fmt.Printf("Loading %s models from %s in the background...\n", cfg.Detector.Kind, cfg.Models.Path)
	stack.loader.Start(ctx)

	deps := web.Deps{
		Matcher: stack.matcher,
		Models:  stack.loader,
	}

	if cfg.Database.URL != "" {
		fmt.Printf("Connecting to PostgreSQL database...\n")
		pool, err := postgres.Open(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		defer pool.Close()
		deps.Events = postgres.NewAuthEventRepository(pool)
		fmt.Printf("Audit log enabled (PostgreSQL)\n")
	}

	server := web.NewServer(cfg, deps)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting Face Login on http://%s\n", cfg.Web.Addr())
	fmt.Println("Press Ctrl+C to stop")

	// Run returns after open requests drained, so the deferred closes run last.
	if err := server.Run(ctx, shutdownTimeout); err != nil {
		return fmt.Errorf("running server: %w", err)
	}
	fmt.Println("Server stopped")
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/jarvis/internal"
	"github.com/iksnae/jarvis/internal/httpapi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a conversation over a local JSON API",
	Long: `Start a local HTTP server that owns one conversation and exposes it to a
web front end:

  GET  /api/health
  GET  /api/contexts
  GET  /api/session
  POST /api/session/prompt                 {"prompt": "..."}
  POST /api/session/suggestions/{index}
  PUT  /api/session/context                {"id": "..."}
  GET  /api/session/messages/{index}/csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("listen") {
			addr = listenAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, _, err := newSession(ctx)
		if err != nil {
			return err
		}
		api := httpapi.NewServer(session, httpapi.Options{AllowedOrigins: cfg.CORSOrigins})
		return serve(ctx, addr, api.Router())
	},
}

// serve runs handler on addr until ctx is done, then shuts down gracefully
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		internal.LogInfo("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		internal.LogInfo("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "Address to listen on (overrides JARVIS_LISTEN_ADDR)")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	apiconfig "finmodel/pkg/api/config"
	"finmodel/pkg/api/model"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}
		noPersist, _ := cmd.Flags().GetBool("no-persist")

		e, err := newEngine(ctx, cfg, noPersist)
		if err != nil {
			return err
		}
		defer e.Close()

		r := newRouter(e, e.persist)
		srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		log.Info().Str("component", "api").Str("addr", addr).Msg("listening")
		log.Info().Str("component", "api").Msg("  - POST /api/model/run")
		log.Info().Str("component", "api").Msg("  - POST /api/model/batch")
		log.Info().Str("component", "api").Msg("  - POST /api/model/forecast")
		log.Info().Str("component", "api").Msg("  - GET  /api/config")

		// graceful shutdown
		select {
		case <-ctx.Done():
			log.Info().Str("component", "api").Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().Bool("no-persist", false, "skip every table writer")
}

func newRouter(runner model.Runner, persist bool) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", model.HandleHealthz)
	r.Mount("/api/model", model.NewHandler(runner, persist).Routes())
	r.Get("/api/config", apiconfig.NewHandler(cfg).HandleConfig)
	return r
}

package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hybridd/internal/httpapi"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			log := newLogger(cfg.LogLevel)

			rt, err := buildRouter(cfg, log)
			if err != nil {
				return err
			}

			// Base context canceled on shutdown so in-flight generations stop
			// with the server.
			baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mux := httpapi.NewMux(rt, httpapi.Options{
				Logger:             log,
				BaseContext:        baseCtx,
				CORSEnabled:        cfg.CORSEnabled,
				CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			})
			srv := &http.Server{Addr: cfg.Addr, Handler: mux}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Msg("hybridd listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-baseCtx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8090")
	return cmd
}

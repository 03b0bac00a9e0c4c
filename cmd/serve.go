package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/gridsplit/internal/render"
	"github.com/kiesman99/gridsplit/internal/server"
	"github.com/kiesman99/gridsplit/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the grid splitting API",
	Long: `Start an HTTP server that provides a REST API for splitting images.

Images can be split in one request (POST /api/v1/split) or edited in a
session: upload once, adjust rows, columns, dividers and crop, then split
and download single tiles or a zip archive.

Examples:
  # Start server on default port 8080
  gridsplit serve

  # Start server on custom port
  gridsplit serve --port 3000

  # Start server with custom bind address and larger uploads
  gridsplit serve --bind 0.0.0.0 --port 8080 --max-upload 67108864`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	serveCmd.Flags().Int64("max-upload", server.DefaultMaxUpload, "maximum upload size in bytes")
	serveCmd.Flags().Duration("session-ttl", time.Hour, "discard sessions idle for longer than this")
	serveCmd.Flags().Int("workers", 0, "tiles encoded concurrently per split (default: number of CPUs)")
	serveCmd.Flags().String("compression", "default", "PNG compression (default|none|speed|best)")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.max_upload", serveCmd.Flags().Lookup("max-upload"))
	viper.BindPFlag("session.ttl", serveCmd.Flags().Lookup("session-ttl"))
}

func runServe(cmd *cobra.Command, args []string) error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")
	ttl := viper.GetDuration("session.ttl")

	// render.* keys are shared with the root command; serve flags win when set
	workers := viper.GetInt("render.workers")
	if f := cmd.Flags().Lookup("workers"); f.Changed {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	compressionName := viper.GetString("render.compression")
	if f := cmd.Flags().Lookup("compression"); f.Changed {
		compressionName = f.Value.String()
	}
	compression, err := render.ParseCompression(compressionName)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", bind, port)

	store := session.NewStore()
	apiServer := server.NewServer(Version, server.Options{
		Renderer: render.New(render.Options{
			Workers:     workers,
			Compression: compression,
			Logger:      logger,
		}),
		Store:     store,
		MaxUpload: viper.GetInt64("server.max_upload"),
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(apiServer, server.RouterOptions{Timeout: timeout, Logger: logger}),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if ttl > 0 {
		go sweepSessions(ctx, store, ttl)
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown error")
		}
	}()

	logger.WithField("addr", addr).Info("starting gridsplit server")
	logger.Infof("Health check: http://%s/api/v1/health", addr)
	logger.Infof("Split endpoint: http://%s/api/v1/split", addr)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// sweepSessions evicts idle sessions until ctx is done
func sweepSessions(ctx context.Context, store *session.Store, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(ttl); n > 0 {
				logger.WithField("evicted", n).Info("swept idle sessions")
			}
		}
	}
}

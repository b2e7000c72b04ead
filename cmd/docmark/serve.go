package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/docmark/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter over HTTP",
		Long: `Serve starts an HTTP server with the endpoints /health, /formats and
/convert (also available under /api). It stops gracefully on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := a.cfg.MarkdownOptions()
			if err != nil {
				return err
			}

			srv := server.New(a.engine(), server.Config{
				Addr:           a.cfg.Server.Addr,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
				MaxConnections: a.cfg.Server.MaxConnections,
				Workers:        a.cfg.Server.Workers,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Defaults:       defaults,
				Version:        version,
			}, a.logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.Int64("max-upload-bytes", 50<<20, "largest accepted upload in bytes")
	f.Int("max-connections", 64, "simultaneous connection limit, 0 for none")
	f.Int("workers", 0, "concurrent conversions, 0 for one per CPU")
	f.StringSlice("allowed-origins", nil, "CORS origins allowed to call the API")
	f.Bool("ocr", false, "recognize text on scanned PDF pages (needs an ocr build)")
	f.String("ocr-language", "eng", "Tesseract language for OCR")
	return cmd
}

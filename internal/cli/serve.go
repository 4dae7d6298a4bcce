package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausula/internal/logger"
	"github.com/ppiankov/clausula/internal/pipeline"
	"github.com/ppiankov/clausula/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP extraction service",
	Long: `Serve exposes the extractor over HTTP:
  GET  /health   -> {"ok": true}
  POST /extract  -> multipart field "file" (PDF or DOCX)

Example:
  clausula serve
  clausula serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8001)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.GetDefault()
	srv := server.New(pipeline.NewPipeline(cfg), cfg, log)
	return srv.ListenAndServe(ctx)
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kamusis/roster-cli/internal/metrics"
	"github.com/kamusis/roster-cli/internal/server"
	"github.com/spf13/cobra"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyze / update / template HTTP API",
	Long: `Start an HTTP server with:

  POST /analyze          multipart file1, file2 (.txt)
  POST /update-excel     multipart excel_file, data_file1, data_file2 + year_column
  POST /create-template  form year_columns=2023-2024,2024-2025
  GET  /health
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	addr := cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:           addr,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Version:        version,
		Engine:         newEngine(cfg),
		Apply:          applyOptions(cfg),
		Metrics:        metrics.New(),
	})
	printInfo("", "listening on "+addr+" (Ctrl+C to stop)")
	return srv.Run(ctx)
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/worksetmap/internal/render"
	"github.com/KaramelBytes/worksetmap/internal/web"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		style := render.DefaultStyle()
		if c.DPI > 0 {
			style.DPI = c.DPI
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.NewServer(web.Config{
			Addr:        addr,
			MaxUploadMB: c.MaxUploadMB,
			Options:     c.DatasetOptions(),
			Style:       style,
			Logger:      slog.Default(),
		})
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8501", "listen address (overrides config)")
}

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"pyscope/internal/config"
	"pyscope/internal/server"
)

var serveAddr string

// serveCmd runs the web server: upload form, outline API, embedded renderer.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pyscope web server",
	Long: `Serve the interactive structure explorer. Upload a Python file in the
browser to see its outline as a clickable diagram; selecting a node shows the
original source for that declaration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg.Server, slog.Default())
		if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads configuration for the current directory, or for the
// project the --config file belongs to.
func loadConfig() (*config.Config, error) {
	root := "."
	if cfgFile != "" {
		// --config points at <root>/.pyscope/config.yml.
		root = filepath.Dir(filepath.Dir(cfgFile))
	}
	return config.NewLoader(root).Load()
}

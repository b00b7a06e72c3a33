package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/plc-visualizer/plc2yaml/internal/api"
	"github.com/plc-visualizer/plc2yaml/internal/config"
	"github.com/plc-visualizer/plc2yaml/internal/convert"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/storage"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cmd.OutOrStdout(), a.cfg)
		},
	}

	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().String("bind", "", "bind address")
	cmd.Flags().String("data-dir", "", "directory for stored conversions")
	return cmd
}

// newServer wires storage, the converter and the API into an Echo instance.
func newServer(cfg *config.Config) (*echo.Echo, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStore(cfg.Storage.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		BodyLimit:      cfg.Server.BodyLimit,
		RequestLogging: cfg.Server.EnableRequestLogging,
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:       store,
		Converter:   convert.New(convert.OptionsFromConfig(cfg)),
		Encoders:    export.GetGlobalRegistry(),
		RecentLimit: cfg.Storage.RecentLimit,
		Version:     Version,
	}))
	return e, nil
}

func runServer(ctx context.Context, out io.Writer, cfg *config.Config) error {
	e, err := newServer(cfg)
	if err != nil {
		return err
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(out, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		klog.Info("Shutting down conversion service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func printBanner(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(out, "║           PLC Tag Export Service                          ║\n")
	fmt.Fprintf(out, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(out, "║  Version:    %-45s║\n", Version)
	fmt.Fprintf(out, "║  Build Time: %-45s║\n", BuildTime)
	fmt.Fprintf(out, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(out, "║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Fprintf(out, "║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Fprintf(out, "╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Fprintf(out, "\n")
}

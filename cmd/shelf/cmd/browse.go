package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/printandread/shelf/internal/metrics"
	"github.com/printandread/shelf/internal/tui"
)

func newBrowseCommand(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalogue interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(cmd.OutOrStdout()) {
				return errors.New("browse needs an interactive terminal")
			}

			addr := metricsAddr
			if addr == "" {
				addr = a.cfg.Metrics.Addr
			}
			if addr != "" {
				stop, err := serveMetrics(addr, a)
				if err != nil {
					return err
				}
				defer stop()
			}

			model := tui.NewModel(a.catalog, a.state, a.tracker, a.bookmark, a.launcher).WithSearcher(a.search)
			defer model.Close()

			p := tea.NewProgram(
				model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)

			a.logger.Info("starting TUI")
			if _, err := p.Run(); err != nil {
				a.logger.Error("TUI error", "error", err)
				return fmt.Errorf("TUI error: %w", err)
			}
			a.logger.Info("shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	return cmd
}

// serveMetrics exposes /metrics until the returned stop function is called
func serveMetrics(addr string, a *app) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to stop metrics server", "error", err)
		}
	}, nil
}

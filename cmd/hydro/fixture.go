package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/hydro.report/internal/analysis"
	"github.com/banshee-data/hydro.report/internal/dashboard"
	"github.com/banshee-data/hydro.report/internal/monitoring"
	"github.com/banshee-data/hydro.report/internal/narrative"
)

// DefaultFixtureListen matches the local analysis service address.
const DefaultFixtureListen = "127.0.0.1:5000"

var fixtureLogf = monitoring.Component("FixtureServer")

// NewFixtureCmd creates the fixture subcommand.
func NewFixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve canned analysis and summary responses for local development",
		Long: `fixture runs a stand-in for the analysis service on ` + DefaultFixtureListen + `,
answering ` + analysis.AnalyzePath + ` from a fixtures file and ` + narrative.SummaryPath + ` with a
canned narrative.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			listen, _ := cmd.Flags().GetString("listen")
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				file = cfg.GetFixturePath()
			}
			handler, err := fixtureHandler(file)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveHTTP(ctx, &http.Server{Addr: listen, Handler: handler}, nil)
		},
	}
	cmd.Flags().String("listen", DefaultFixtureListen, "Listen address")
	cmd.Flags().String("file", "", "Fixtures file (defaults to fixture_path, then the built-in fixtures)")
	return cmd
}

// fixtureHandler mounts both canned endpoints.
func fixtureHandler(path string) (http.Handler, error) {
	fixtures, err := analysis.LoadFixtures(path)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(analysis.AnalyzePath, fixtures.Handler())
	mux.Handle(narrative.SummaryPath, narrative.FixtureHandler())
	return dashboard.LoggingMiddleware(mux), nil
}

// serveHTTP runs srv until ctx is done, then shuts it down. When ready is
// non-nil it receives the bound address once the listener is up.
func serveHTTP(ctx context.Context, srv *http.Server, ready chan<- string) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	fixtureLogf("Starting HTTP server on %s", ln.Addr())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	fixtureLogf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fixtureLogf("HTTP server shutdown error: %v", err)
	}
	fixtureLogf("HTTP server routine stopped")
	return nil
}

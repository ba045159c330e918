package main

import (
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/hydro.report/internal/analysis"
	"github.com/banshee-data/hydro.report/internal/config"
	"github.com/banshee-data/hydro.report/internal/dashboard"
	"github.com/banshee-data/hydro.report/internal/monitoring"
	"github.com/banshee-data/hydro.report/internal/narrative"
	"github.com/banshee-data/hydro.report/internal/scan"
	"github.com/banshee-data/hydro.report/internal/timeutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			listen, _ := cmd.Flags().GetString("listen")
			if listen == "" {
				listen = cfg.GetListen()
			}
			host, _ := cmd.Flags().GetString("public-host")
			if host == "" {
				host = listenHost(listen)
			}
			dev, _ := cmd.Flags().GetBool("dev")

			baseURL := cfg.GetBaseURL(host)
			if dev {
				baseURL = config.DefaultLocalURL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			if dev {
				handler, err := fixtureHandler(cfg.GetFixturePath())
				if err != nil {
					return err
				}
				g.Go(func() error {
					return serveHTTP(ctx, &http.Server{Addr: DefaultFixtureListen, Handler: handler}, nil)
				})
			}

			srv, err := newDashboard(cfg, listen, baseURL, timeutil.RealClock{})
			if err != nil {
				return err
			}
			g.Go(func() error {
				return srv.Start(ctx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			monitoring.Logf("Graceful shutdown complete")
			return nil
		},
	}
	cmd.Flags().String("listen", "", "Dashboard listen address (defaults to listen from config, then "+config.DefaultListen+")")
	cmd.Flags().String("public-host", "", "Host name the dashboard is reached under; selects the analysis service")
	cmd.Flags().Bool("dev", false, "Also serve built-in fixtures on "+DefaultFixtureListen+" and use them")
	return cmd
}

// newDashboard wires the analysis client, scan controller, state and
// narrative client into a dashboard server.
func newDashboard(cfg *config.Config, listen, baseURL string, clock timeutil.Clock) (*dashboard.Server, error) {
	state := dashboard.NewState(clock, cfg.GetNotificationLimit())
	ctrl, err := scan.NewController(scan.Config{
		Analyzer:    analysis.NewClient(nil, baseURL),
		Views:       state.Views(),
		Clock:       clock,
		HideDelay:   cfg.GetHideDelay(),
		Timeout:     cfg.GetScanTimeout(),
		HistorySize: cfg.GetHistorySize(),
	})
	if err != nil {
		return nil, err
	}
	logf := monitoring.Component("Serve")
	logf("Analysis service at %s", baseURL)

	return dashboard.NewServer(dashboard.Config{
		Address:     listen,
		Controller:  ctrl,
		State:       state,
		Narrative:   narrative.NewClient(nil, baseURL),
		Clock:       clock,
		BaseURL:     baseURL,
		VolumeUnits: cfg.GetVolumeUnits(),
		AreaUnits:   cfg.GetAreaUnits(),
	})
}

// listenHost returns the host part of a listen address, treating an
// unspecified host as local.
func listenHost(listen string) string {
	host, _, err := net.SplitHostPort(listen)
	if err != nil || host == "" || host == "0.0.0.0" || host == "::" {
		return "localhost"
	}
	return host
}

package cli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/jobtracker/internal/metrics"
	"github.com/roach88/jobtracker/internal/server"
	"github.com/roach88/jobtracker/internal/tracker"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker over a local HTTP API",
		Long: `Serve one tracker session over a local JSON HTTP API, with Prometheus
metrics on /metrics.

The listen address comes from --addr, then JNT_LISTEN_ADDR. The server stops
gracefully on interrupt.

Examples:
  jnt serve
  jnt serve --addr 127.0.0.1:9090 --delay 0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default JNT_LISTEN_ADDR or 127.0.0.1:8080)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := opts.Logger()

	addr := opts.Addr
	if addr == "" {
		addr = opts.config.ListenAddr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(reg)

	s, err := opts.openSession(ctx, tracker.WithMetrics(recorder))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			logger.Error("error closing session", "error", closeErr)
		}
	}()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	srv := server.New(addr, s.tracker, reg, logger)
	fmt.Fprintf(cmd.OutOrStdout(), "Tracker API listening on http://%s\n", ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	logger.Info("api server stopped")
	return nil
}

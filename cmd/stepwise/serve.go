package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise"
	httpadapter "github.com/aretw0/stepwise/pkg/adapters/http"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/script"
	"github.com/aretw0/stepwise/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve <flow.yaml>",
	Short: "Serve a flow over HTTP",
	Long:  `Hosts independent sessions of the flow behind a JSON API, with server-sent events and Prometheus metrics.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadFlow(args[0])
		if err != nil {
			return err
		}
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")

		diagram, err := flowDiagram(def)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		streams := httpadapter.NewStreamManager()
		streams.SetLogger(logger)
		sessions := session.NewManager(nil,
			func(ctx context.Context, id string) (*stepwise.Controller[*script.Board], *script.Board, error) {
				return script.Start(def,
					stepwise.WithLogger(logger.With("session_id", id)),
					stepwise.WithScheduleOnStart(),
					stepwise.WithLifecycleHooks(domain.MergeHooks(
						metrics.Hooks(),
						streams.Hooks(id),
						observability.LoggingHooks(logger.With("session_id", id)),
					)),
				)
			},
			session.WithLogger(logger),
		)

		handler := httpadapter.NewHandler(sessions,
			func(b *script.Board) any { return b.Snapshot() },
			httpadapter.WithLogger(logger),
			httpadapter.WithGraph(diagram),
			httpadapter.WithStreams(streams),
			httpadapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		// Shutdown does not cancel open event streams.
		srv.RegisterOnShutdown(streams.CloseAll)

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting server", "addr", srv.Addr, "flow", def.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %q on %s\n", def.Name, srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			if err := sessions.Close(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stepwise server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}

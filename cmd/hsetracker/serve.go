package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/hsetracker/internal/api"
	"github.com/erazemk/hsetracker/internal/config"
	"github.com/erazemk/hsetracker/internal/expiry"
	"github.com/erazemk/hsetracker/internal/monitor"
	"github.com/erazemk/hsetracker/internal/notify"
	"github.com/erazemk/hsetracker/internal/store"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily expiry monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg)
		},
	}

	cmd.Flags().StringP("addr", "a", ":8080", "listen address")
	cmd.Flags().Duration("fetch-timeout", 5*time.Second, "timeout for loading equipment from the database")
	cmd.Flags().Bool("metrics", true, "expose prometheus metrics on /metrics")
	a.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	a.v.BindPFlag("fetch_timeout", cmd.Flags().Lookup("fetch-timeout"))
	a.v.BindPFlag("metrics", cmd.Flags().Lookup("metrics"))
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx, os.Stdout, cfg.DB, cfg.AdminUser)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DB)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	push, closePush := pushSink(cfg)
	defer closePush()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mon := monitor.New(monitor.Config{
		DB:           database,
		Location:     loc,
		FetchTimeout: cfg.FetchTimeout,
		Alerts:       &notify.InApp{DB: database},
		Push:         push,
		Metrics:      monitor.NewMetrics(registry),
		Logger:       slog.Default().With("component", "monitor"),
	})

	apiRouter := api.NewRouter(api.Options{
		DB:             database,
		JWTSecret:      jwtSecret,
		Monitor:        mon,
		Location:       loc,
		EquipmentTypes: cfg.EquipmentTypes,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok " + mon.State().String() + "\n"))
	})
	if cfg.Metrics {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := mon.Start(ctx); err != nil && !errors.Is(err, expiry.ErrStopped) {
			return err
		}
		<-ctx.Done()
		mon.Stop()
		return nil
	})

	g.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	err = g.Wait()
	slog.Info("server stopped, closing database")
	return err
}

// pushSink picks the platform notification channel: Kafka when brokers are
// configured, the log otherwise.
func pushSink(cfg *config.Config) (expiry.Sink, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return &notify.Log{Logger: slog.Default().With("component", "push")}, func() {}
	}

	sink := notify.NewKafka(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	slog.Info("publishing push notifications to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return sink, func() {
		if err := sink.Close(); err != nil {
			slog.Warn("closing kafka writer failed", "error", err)
		}
	}
}

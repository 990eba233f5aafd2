// Package app wires the santa server runtime: config, logging, the draw
// service with its persistence backend, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"santa/cmd/internal/draw"
	drawapi "santa/cmd/internal/draw/api"
	"santa/cmd/internal/notify"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is the server runtime: it owns the HTTP server and the draw service
// dependencies.
type App struct {
	cfg Config
	log Logger

	store     draw.Store
	pool      *pgxpool.Pool
	dbEnabled bool

	svc *draw.Service
	api *drawapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	mode, err := draw.ParseMode(cfg.DrawMode)
	if err != nil {
		return nil, errors.New("invalid SANTA_DRAW_MODE: " + cfg.DrawMode)
	}

	store, pool, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := draw.NewService(store,
		draw.WithLogger(log),
		draw.WithNotifier(notifier),
		draw.WithMode(mode),
		draw.WithBaseURL(cfg.AppURL),
	)
	if err != nil {
		return nil, err
	}

	api, err := drawapi.NewHandler(log, svc, drawapi.Config{
		AdminPasswordHash: cfg.AdminPasswordHash,
		AdminPassword:     cfg.AdminPassword,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		pool:      pool,
		dbEnabled: dbEnabled,
		svc:       svc,
		api:       api,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	a.registerHTTP(mux)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(WithHTTPMetrics(mux), a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"mode", a.cfg.DrawMode,
		"db_enabled", a.dbEnabled,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}
	if a.pool != nil {
		a.pool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func (a *App) registerHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.ReadinessRequireDB && !a.dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if a.dbEnabled && a.pool != nil {
			if err := PingDB(r.Context(), a.pool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				a.log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.api.Register(mux)
}

// newStore decides between Postgres-backed persistence and the JSON file
// store; the decision happens once here, never inside the core.
func newStore(ctx context.Context, cfg Config, log Logger) (draw.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.file_store", "path", cfg.DataFile)
		st, err := draw.NewFileStore(cfg.DataFile, log)
		if err != nil {
			return nil, nil, false, err
		}
		return st, nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	st, err := draw.NewPostgresStore(pool, log)
	if err != nil {
		pool.Close()
		return nil, nil, false, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return st, pool, true, nil
}

func newNotifier(cfg Config, log Logger) (notify.Notifier, error) {
	if cfg.SMTPHost == "" {
		log.Info("notify.disabled.noop")
		return notify.Noop{Log: log}, nil
	}
	return notify.NewSMTP(notify.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"roadside-booking-api/internal/booking"
	"roadside-booking-api/internal/cache"
	"roadside-booking-api/internal/config"
	"roadside-booking-api/internal/data"
	"roadside-booking-api/internal/handler"
	"roadside-booking-api/internal/metrics"
	"roadside-booking-api/internal/middleware"
	"roadside-booking-api/internal/notice"
	"roadside-booking-api/internal/notify"
	"roadside-booking-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	st := store.New(pool)
	if err := st.Ping(ctx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")

	if err := st.Migrate(ctx, cfg.Postgres.Migrations); err != nil {
		logger.Warn("migration skipped", "error", err)
	} else {
		logger.Info("migration applied")
	}

	// redis is optional: without it the catalog is not cached and
	// idempotency keys are ignored
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = cache.NewClient(ctx, cache.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			logger.Warn("redis unavailable, running without cache", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
			logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	metrics.Register()

	backend := cache.WrapCatalog(st, rdb, cfg.Redis.CatalogTTL)
	// migrations may have changed the catalog
	if err := backend.InvalidateCatalog(ctx); err != nil {
		logger.Warn("catalog cache not cleared", "error", err)
	}
	dc := data.New(backend, data.WithReporter(notice.LogReporter(logger)))
	dispatcher := notify.NewHTTPDispatcher(cfg.NotifyURL(), cfg.Notify.Key, cfg.Notify.Timeout)
	wf := booking.New(dc, dispatcher, logger)

	mailer, err := notify.NewResendMailer(cfg.Resend.URL, cfg.Resend.APIKey, cfg.Notify.Timeout)
	if err != nil {
		logger.Error("mailer", "error", err)
		os.Exit(1)
	}
	confirmations := notify.NewHandler(mailer, cfg.Resend.From, cfg.Resend.Brand, logger)

	h := handler.New(dc, wf, st, cfg.Auth.JWTSecret, logger)
	h.SecureCookies = cfg.Auth.SecureCookie

	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	httpSrv := &http.Server{
		Addr: ":" + cfg.HTTP.Port,
		Handler: h.Routes(handler.RouterOptions{
			Limiter:       rl,
			Redis:         rdb,
			Confirmations: confirmations,
			Ping:          st.Ping,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ops grpc: health + reflection
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.UnaryRateLimit(rl)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)
	reflection.Register(grpcSrv)

	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc health on", "port", cfg.GRPC.Port)
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("http on", "port", cfg.HTTP.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// flip health with the database
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			status := healthpb.HealthCheckResponse_SERVING
			if err := st.Ping(gctx); err != nil {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			hs.SetServingStatus("", status)
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hs.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}

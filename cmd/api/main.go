package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-booking/internal/api/router"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/clock"
	"github.com/sanosuguru/go-event-booking/internal/config"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/memory"
	redisinfra "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-booking/internal/seed"
	"github.com/sanosuguru/go-event-booking/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "起動エラー: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	flagSet := pflag.NewFlagSet("event-booking", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "待ち受けポート")
	flagSet.StringVar(&cfg.App.Env, "env", cfg.App.Env, "実行環境（development / production）")
	flagSet.StringVar(&cfg.App.SeedFile, "seed-file", cfg.App.SeedFile, "デモイベントのYAMLファイル（省略時は組み込みデータ）")
	noSeed := flagSet.Bool("no-seed", false, "デモイベントを登録しない")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *noSeed {
		cfg.App.SeedEnabled = false
	}

	log := logger.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	logger.Set(log)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()
	clk := clock.NewSystem()

	opts := []application.LedgerOption{
		application.WithClock(clk),
		application.WithMetrics(m),
		application.WithFeaturedLimit(cfg.Ledger.FeaturedLimit),
	}

	// Redisは残席数キャッシュとしてのみ使う（未設定なら台帳を直接参照）
	if cfg.Redis.Enabled {
		redisClient, err := redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		opts = append(opts, application.WithAvailabilityCache(redisinfra.NewAvailabilityCache(redisClient, cfg.Redis.CacheTTL)))
		log.Info("Redisキャッシュ有効", zap.String("addr", cfg.Redis.Addr()), zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	ledger := application.NewLedger(memory.NewEventRepository(), memory.NewBookingRepository(), opts...)

	if cfg.App.SeedEnabled {
		events, err := loadSeed(cfg.App.SeedFile)
		if err != nil {
			return err
		}
		if err := ledger.Seed(context.Background(), events); err != nil {
			return err
		}
	}

	authService := application.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)

	e := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(clk),
		Auth:    handler.NewAuthHandler(authService),
		Event:   handler.NewEventHandler(ledger),
		Booking: handler.NewBookingHandler(ledger),
		Stats:   handler.NewStatsHandler(ledger),
	}, router.Options{
		Tokens:          authService,
		Metrics:         m,
		MetricsUser:     cfg.Metrics.User,
		MetricsPassword: cfg.Metrics.Password,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := worker.NewLedgerMetricsCollector(ledger, m, cfg.Metrics.CollectorInterval)
	go collector.Start(ctx)

	go func() {
		log.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("サーバーをシャットダウンしています...")

	collector.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーシャットダウンエラー: %w", err)
	}

	log.Info("サーバーが正常にシャットダウンしました")
	return nil
}

func loadSeed(path string) ([]*event.Event, error) {
	if path == "" {
		return seed.Demo()
	}
	return seed.LoadFile(path)
}

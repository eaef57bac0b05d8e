package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jobtrail/jobtrail/internal/api"
	"github.com/jobtrail/jobtrail/internal/app/progression"
	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/health"
	"github.com/jobtrail/jobtrail/internal/infra/redisstore"
	"github.com/jobtrail/jobtrail/internal/infra/sqlite"
)

// Daemon is the jobtrail runtime. It wires together all services.
type Daemon struct {
	Config  Config
	Log     *zap.Logger
	DB      *sqlite.DB
	Redis   *redis.Client
	Store   domain.ProgressStore
	Service *progression.Service
	Server  *api.Server
	Health  *health.Checker
	cancel  context.CancelFunc
}

// New loads the configuration and builds a Daemon.
func New(log *zap.Logger) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg, log)
}

// NewWithConfig creates a Daemon with the given configuration. A Redis
// cache that cannot be reached is skipped with a warning.
func NewWithConfig(cfg Config, log *zap.Logger) (*Daemon, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{Config: cfg, Log: log, DB: db, Store: db}
	checks := []health.Check{health.SQLiteCheck(db), health.DataDirCheck(cfg.Storage.Dir)}

	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := redisstore.Dial(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, serving without goals cache", zap.Error(err))
		} else {
			cache := redisstore.NewGoalsCache(db, client, cfg.RedisTTL(), log)
			d.Redis = client
			d.Store = cache
			checks = append(checks, health.RedisCheck(cache))
		}
	}

	d.Service = progression.NewService(d.Store, log)
	d.Service.SetLocation(loc)
	if cfg.Notifications.Enabled {
		policy := domain.NotificationPolicy{
			MaxPerDay:  cfg.Notifications.MaxPerDay,
			QuietStart: cfg.Notifications.QuietStart,
			QuietEnd:   cfg.Notifications.QuietEnd,
		}
		d.Service.SetNotifier(progression.NewNotifierWithPolicy(d.Store, policy, log))
	}

	d.Health = health.NewChecker(log, checks...)

	d.Server = api.NewServer(d.Service, log)
	d.Server.SetHealth(d.Health)
	d.Server.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			d.Log.Info("shutdown signal received")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Log.Info("jobtrail serving",
		zap.String("addr", "http://"+addr),
		zap.Bool("redis_cache", d.Redis != nil),
		zap.Bool("metrics", d.Config.Telemetry.Prometheus),
	)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	_ = d.Log.Sync()
}

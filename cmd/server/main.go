package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tourism-gateway/internal/config"
	"github.com/iliyamo/tourism-gateway/internal/database"
	"github.com/iliyamo/tourism-gateway/internal/handler"
	"github.com/iliyamo/tourism-gateway/internal/logger"
	"github.com/iliyamo/tourism-gateway/internal/queue"
	"github.com/iliyamo/tourism-gateway/internal/repository"
	"github.com/iliyamo/tourism-gateway/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, sync := logger.New(cfg.IsProd())
	defer func() { _ = sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected", zap.String("addr", cfg.DB.Addr()), zap.String("db", cfg.DB.Name))

	var rdb *redis.Client
	if cfg.RateLimit.Enabled {
		if rdb = config.NewRedisClient(cfg.Redis); rdb == nil {
			log.Warn("redis unreachable, rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
		} else {
			defer rdb.Close()
		}
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		pub, err := queue.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue, log)
		if err != nil {
			log.Warn("change events disabled", zap.Error(err))
		} else {
			events = pub
		}
	}
	defer events.Close()

	var auditDone <-chan struct{}
	if cfg.Events.AuditLog {
		auditDone = startAuditConsumer(ctx, &queue.AuditConsumer{
			URL:      cfg.Events.URL,
			Queue:    cfg.Events.Queue,
			Dir:      cfg.Events.AuditLogDir,
			Prefetch: cfg.Events.AuditPrefetch,
			Log:      log.Named("audit"),
		}, log)
	}

	h := handler.NewEntityHandler(repository.NewTableRepo(db), events, log)
	e := router.New(h, router.Options{
		BodyLimit: cfg.BodyLimit,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Log:       log,
	})

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err = <-errc:
	case <-ctx.Done():
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = e.Shutdown(sctx)
		cancel()
	}

	// stop the consumer and let an in-flight audit write finish before the
	// deferred closes run
	stop()
	if auditDone != nil {
		<-auditDone
	}
	return err
}

// startAuditConsumer runs a until ctx is cancelled. The returned channel is
// closed once Run has returned.
func startAuditConsumer(ctx context.Context, a *queue.AuditConsumer, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit consumer stopped", zap.Error(err))
		}
	}()
	return done
}

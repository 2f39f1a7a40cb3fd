package main // entry point of the bid relay

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/auction-bid-relay/internal/config"
	"github.com/iliyamo/auction-bid-relay/internal/database"
	"github.com/iliyamo/auction-bid-relay/internal/handler"
	"github.com/iliyamo/auction-bid-relay/internal/lock"
	"github.com/iliyamo/auction-bid-relay/internal/logger"
	"github.com/iliyamo/auction-bid-relay/internal/middleware"
	"github.com/iliyamo/auction-bid-relay/internal/queue"
	"github.com/iliyamo/auction-bid-relay/internal/repository"
	"github.com/iliyamo/auction-bid-relay/internal/router"
	"github.com/iliyamo/auction-bid-relay/internal/service"
)

func main() {
	os.Exit(serve())
}

// serve returns the process exit code.  Deferred cleanups, the final log
// flush included, run before main calls os.Exit.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		log := logger.GetLogger(false)
		log.Error("load config", zap.Error(err))
		_ = log.Sync()
		return 1
	}
	log := logger.GetLogger(cfg.IsProd())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("relay stopped", zap.Error(err))
		return 1
	}
	log.Info("relay stopped")
	return 0
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	bids := repository.NewBidRepo(db)
	auctions := repository.NewAuctionRepo(db)
	arbiter := service.NewArbiter(rdb, lock.NewRedisLocker(rdb), cfg.Arbiter, log.Named("arbiter"))
	pipeline := service.NewPipeline(bids, auctions, arbiter, log.Named("pipeline"))

	producer := queue.NewProducer(queue.NewAMQPDialer(cfg.Stream.DialTimeout), cfg.Stream, log.Named("producer"))
	defer producer.Close()
	if err := producer.EnsureStream(ctx); err != nil {
		// the producer declares again on every publish
		log.Warn("stream not declared at startup", zap.String("stream", cfg.Stream.Name), zap.Error(err))
	}
	newConsumer := func(dialTimeout time.Duration) *queue.Consumer {
		return queue.NewConsumer(queue.NewAMQPDialer(dialTimeout), cfg.Stream, pipeline, log.Named("consumer"))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(log.Named("http")))
	router.RegisterRoutes(e, handler.Ready(map[string]handler.Check{
		"mysql": db.PingContext,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}))
	router.RegisterBids(e, &handler.BidHandler{
		Producer:      producer,
		NewReceiver:   func() handler.BidReceiver { return newConsumer(cfg.Stream.ReceiveDialTimeout()) },
		Cache:         arbiter,
		Auctions:      auctions,
		Bids:          bids,
		Log:           log.Named("handler"),
		ReceiveWindow: cfg.Stream.ReceiveWindow,
	},
		middleware.NewTokenBucket(cfg.RateLimit, rdb, log.Named("ratelimit")),
		middleware.NewRedisCache(cfg.Cache, rdb, log.Named("cache")),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		return e.Shutdown(shutdownCtx)
	})
	if cfg.Stream.ConsumerEnabled {
		g.Go(func() error {
			n, err := newConsumer(cfg.Stream.DialTimeout).Run(ctx)
			log.Info("background consumer stopped", zap.Int("processed", n))
			// a broker that never came up is logged; the HTTP side keeps serving
			if err != nil {
				log.Error("background consumer", zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

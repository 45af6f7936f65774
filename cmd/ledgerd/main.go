package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"ledger/internal/admission"
	"ledger/internal/api"
	"ledger/internal/bus"
	"ledger/internal/kyc"
	"ledger/internal/model"
	"ledger/internal/obs"
	"ledger/internal/ops"
	"ledger/internal/order"
	"ledger/internal/portfolio"
	"ledger/internal/pricing"
	"ledger/internal/reference"
	"ledger/internal/settlement"
	"ledger/internal/trade"
	"ledger/internal/wallet"
	"ledger/pkg/conn"
	"ledger/pkg/kafka"
	"ledger/pkg/pricecache"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Printf("ledgerd: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to JSON config")
	envFile := flag.String("env", ".env", "Optional .env file")
	migrate := flag.Bool("migrate", true, "Auto-migrate the ledger schema on start")
	flag.Parse()

	if err := ops.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Profiling.ServerAddress != "" {
		profiler, err := startProfiler(cfg.Profiling)
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	client, err := conn.New(cfg.Database)
	if err != nil {
		return err
	}
	defer client.Close()
	db := client.DB()

	if *migrate {
		if err := client.Migrate(model.Models()...); err != nil {
			return err
		}
	}

	registry := reference.New(db)
	if err := registry.Seed(ctx, cfg.Catalog); err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	events := bus.NewQueue(cfg.QueueSize)
	pumpDone, err := startPump(cfg, events, metrics)
	if err != nil {
		return err
	}

	prices := portfolio.Chain{}
	if cfg.RedisEnabled {
		cache, err := pricecache.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer cache.Close()
		prices = append(prices, cache)
	}
	prices = append(prices, cfg.Prices)

	ledger := wallet.New(db)
	trades := trade.NewRepository(db)
	oracle := pricing.NewOracle(registry, trades)

	handler := api.NewHandler(api.Deps{
		Orders:     order.NewUsecase(db, ledger, registry, oracle, admission.NewGate(cfg.Admission), metrics),
		Settlement: settlement.NewProcessor(db, ledger, registry, events, metrics),
		Trades:     trades,
		Ledger:     ledger,
		Registry:   registry,
		Kyc:        kyc.NewGate(db),
		Portfolio:  portfolio.NewValuer(ledger, registry, prices),
		Metrics:    metrics,
	})

	if cfg.HTTP.Mode != "" {
		gin.SetMode(cfg.HTTP.Mode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logs.Infof("ledgerd listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	logs.Infof("ledgerd shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logs.Errorf("http shutdown, err: %+v", err)
	}

	events.Close()
	select {
	case <-pumpDone:
	case <-time.After(drainTimeout):
		logs.Errorf("event pump did not drain within %s", drainTimeout)
	}
	return nil
}

// startPump forwards settlement events to kafka, or just logs them when kafka is disabled. The pump
// outlives the signal context so queued events are drained after the server stops.
func startPump(cfg ops.Loaded, events *bus.Queue, metrics *obs.Metrics) (<-chan struct{}, error) {
	done := make(chan struct{})

	if !cfg.KafkaEnabled {
		go func() {
			defer close(done)
			events.Run(context.Background(), func(e bus.Event) {
				logs.Infof("event %s, key: %s, payload: %s", e.Topic, e.Key, e.Payload)
			})
		}()
		return done, nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	go func() {
		defer close(done)
		defer producer.Close()
		bus.Pump(context.Background(), events, producer, func(bus.Event, error) {
			metrics.IncEventDrop()
		})
	}()
	return done, nil
}

func startProfiler(cfg ops.ProfilingConfig) (*pyroscope.Profiler, error) {
	name := cfg.ApplicationName
	if name == "" {
		name = "ledgerd"
	}
	return pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.ServerAddress,
		Tags:            cfg.Tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}

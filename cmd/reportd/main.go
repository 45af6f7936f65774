package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"ledger/internal/ops"
	"ledger/internal/reference"
	"ledger/internal/report"
	"ledger/internal/trade"
	"ledger/pkg/checkpoint"
	"ledger/pkg/conn"
)

const defaultCheckpointDir = "data/report"

func main() {
	if err := run(); err != nil {
		log.Printf("reportd: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to JSON config")
	envFile := flag.String("env", ".env", "Optional .env file")
	once := flag.Bool("once", false, "Copy pending trades once and exit")
	flag.Parse()

	if err := ops.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	client, err := conn.New(cfg.Database)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Migrate(report.Models()...); err != nil {
		return err
	}

	dir := cfg.Report.CheckpointDir
	if dir == "" {
		dir = defaultCheckpointDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	store, err := checkpoint.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	db := client.DB()
	job := report.NewJob(db, trade.NewRepository(db), reference.New(db), store, cfg.Report)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		n, err := job.RunOnce(ctx)
		if err != nil {
			return err
		}
		logs.Infof("reportd copied %d trades", n)
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		job.Run(ctx)
	}()

	<-sys.Shutdown()
	logs.Infof("reportd shutting down")
	cancel()
	<-done
	return nil
}

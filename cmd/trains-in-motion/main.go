package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/theoremus-urban-solutions/trains-in-motion/config"
	"github.com/theoremus-urban-solutions/trains-in-motion/server"
	"github.com/theoremus-urban-solutions/trains-in-motion/stations"
	"github.com/theoremus-urban-solutions/trains-in-motion/tracker"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	_ = godotenv.Load()

	configFile := flag.String("config", "", "path to config file (overrides CONFIG_FILE)")
	flag.Parse()
	if *configFile != "" {
		os.Setenv("CONFIG_FILE", *configFile)
	}

	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg := &config.Config

	if env := os.Getenv("PORT"); env != "" {
		port, err := strconv.Atoi(env)
		if err != nil {
			log.Fatalf("invalid PORT %q: %v", env, err)
		}
		cfg.Server.Port = port
	}

	table, err := stations.Load(cfg.Stations.File)
	if err != nil {
		log.Fatalf("stations: %v", err)
	}
	log.Printf("Loaded %d stations from %s (%d rows skipped)", table.Len(), cfg.Stations.File, table.Skipped())

	store := tracker.NewStore()
	agg := tracker.NewAggregator(cfg, table, store)
	srv := server.New(cfg, store, agg, table)
	agg.SetOnPublish(srv.Broadcast)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := tracker.NewScheduler(agg, time.Duration(cfg.Poller.IntervalSec)*time.Second)
	go sched.Run(ctx)

	srv.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Printf("Received %s, shutting down", s)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/ratelimiter"
	"github.com/distfs/distfs/pkg/config"
	"github.com/distfs/distfs/pkg/naming"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.LoadNaming(*configPath)
	if err != nil {
		log.Fatalf("failed to load naming config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	srv := naming.NewServer()

	serviceSk := naming.NewServiceSkeleton(srv)
	if err := serviceSk.SetAddress(cfg.BindHost, cfg.ServicePort); err != nil {
		log.Fatalf("failed to bind service skeleton: %v", err)
	}
	registrationSk := naming.NewRegistrationSkeleton(srv)
	if err := registrationSk.SetAddress(cfg.BindHost, cfg.RegistrationPort); err != nil {
		log.Fatalf("failed to bind registration skeleton: %v", err)
	}

	if cfg.MaxConnRate > 0 {
		serviceSk.AcceptLimiter = ratelimiter.New(cfg.MaxConnRate, cfg.MaxConnRate*2)
		registrationSk.AcceptLimiter = ratelimiter.New(cfg.MaxConnRate, cfg.MaxConnRate*2)
		logger.Info("accept rate limited to %d conn/s per skeleton", cfg.MaxConnRate)
	}

	if err := serviceSk.Start(); err != nil {
		log.Fatalf("failed to start service skeleton: %v", err)
	}
	if err := registrationSk.Start(); err != nil {
		serviceSk.Stop()
		log.Fatalf("failed to start registration skeleton: %v", err)
	}

	logger.Info("naming server listening: service=%s registration=%s", serviceSk.Address(), registrationSk.Address())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping skeletons")
	serviceSk.Stop()
	registrationSk.Stop()
	logger.Info("naming server stopped")
}

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/pkg/bootstrap"
	"github.com/distfs/distfs/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.LoadStorage(*configPath)
	if err != nil {
		log.Fatalf("failed to load storage config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	result, err := bootstrap.Run(bootstrap.Config{
		LocalRoot:     cfg.LocalRoot,
		AdvertiseHost: cfg.AdvertiseHost,
		BindHost:      cfg.BindHost,
		DataPort:      cfg.DataPort,
		CommandPort:   cfg.CommandPort,
		NamingAddress: cfg.NamingAddress,
		MaxConnRate:   cfg.MaxConnRate,
	})
	if err != nil {
		log.Fatalf("storage server bootstrap failed: %v", err)
	}

	logger.Info("storage server listening: data=%s command=%s, serving %s",
		result.DataStub.Address(), result.CommandStub.Address(), cfg.LocalRoot)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping skeletons")
	result.Stop()
	logger.Info("storage server stopped")
}

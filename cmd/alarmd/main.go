package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/groupalarm/alarmd/internal/config"
	"github.com/groupalarm/alarmd/internal/daemon"
	"github.com/groupalarm/alarmd/pkg/logger"
)

func main() {
	var configPath string
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println("alarmd:", err.Error())
		os.Exit(1)
	}

	l := logger.NewStandardLogger(log.Default())
	defer l.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := daemon.New(cfg, l, "dev").Run(ctx); err != nil {
		fmt.Println("alarmd:", err.Error())
		os.Exit(1)
	}
}

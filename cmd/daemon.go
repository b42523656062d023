package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/groupalarm/alarmd/internal/config"
	"github.com/groupalarm/alarmd/internal/daemon"
	"github.com/groupalarm/alarmd/pkg/logger"
)

var configPath string

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "config, c",
		Usage:       "path of the configuration file",
		Destination: &configPath,
	},
}

func runDaemon(ctx *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		printRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	// The --socket flag overrides the configured socket so a client and
	// daemon started with the same flags find each other.
	if ctx.GlobalIsSet("socket") || ctx.IsSet("socket") {
		cfg.Daemon.SocketPath = socketPath
	}

	l := logger.NewStandardLogger(log.Default())
	defer l.Close()

	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d := daemon.New(cfg, l, version)
	if err := d.Run(sigCtx); err != nil {
		printRuntimeErr(ctx, "daemon", "run", err)
	}
	return nil
}

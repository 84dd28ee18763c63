package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"matka/cmd"
	"matka/config"
	"matka/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}
	cmd.ConfigureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := "serve"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	switch command {
	case "serve":
		err = cmd.Run(ctx, cfg)
	case "migrate":
		err = handleMigrationCommand(cfg, args)
	case "declare":
		err = cmd.Declare(ctx, cfg, args)
	case "open-account":
		err = cmd.OpenAccount(ctx, cfg, args)
	default:
		err = fmt.Errorf("unknown command %q (serve, migrate, declare, open-account)", command)
	}

	if err != nil {
		stop()
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matka migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp(cfg.DatabaseURL)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(cfg.DatabaseURL, steps)
	case "status":
		return database.MigrateStatus(cfg.DatabaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

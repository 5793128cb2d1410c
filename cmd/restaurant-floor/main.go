package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"restaurant-floor/internal/common/config"
	"restaurant-floor/internal/common/logger"
	floorsvc "restaurant-floor/internal/microservices/floor"
	"restaurant-floor/internal/microservices/notificator"
	"restaurant-floor/internal/snapshot"
)

func main() {
	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "restaurant-floor",
		Usage: "table, order and billing coordination for one restaurant floor",
		Commands: []*cli.Command{
			{
				Name:  "floor-service",
				Usage: "serve the staff, admin, kitchen and customer HTTP API",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "overrides FLOOR_HTTP_PORT"},
				},
				Action: runFloorService,
			},
			{
				Name:  "notification-subscriber",
				Usage: "follow the document as one user and log their notifications",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "user id to follow"},
					&cli.DurationFlag{Name: "heartbeat-interval", Usage: "overrides FLOOR_HEARTBEAT_INTERVAL"},
				},
				Action: runSubscriber,
			},
			{
				Name:  "init-document",
				Usage: "write the default document to the remote store if none exists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing document"},
				},
				Action: runInitDocument,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		lg.Error("fatal", err, nil)
		os.Exit(1)
	}
}

func setup(service string) (config.App, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.App{}, nil, err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return config.App{}, nil, err
	}
	return cfg, logger.New(service), nil
}

func runFloorService(c *cli.Context) error {
	cfg, log, err := setup("floor-service")
	if err != nil {
		return err
	}
	if p := c.Int("port"); p != 0 {
		cfg.HTTPPort = p
	}
	sessions, err := sessionsFor(cfg, log)
	if err != nil {
		return err
	}
	ch, closeFn, err := openChannel(c.Context, cfg, log, "floor-service")
	if err != nil {
		return err
	}
	defer closeFn()

	store := snapshot.NewStore(ch, cfg.DineInTables, log)
	if err := store.Open(c.Context); err != nil {
		return err
	}
	return floorsvc.Run(c.Context, cfg.HTTPPort, store, sessions, log)
}

func runSubscriber(c *cli.Context) error {
	cfg, log, err := setup("notification-subscriber")
	if err != nil {
		return err
	}
	beat := cfg.HeartbeatInterval
	if d := c.Duration("heartbeat-interval"); d > 0 {
		beat = d
	}
	ch, closeFn, err := openChannel(c.Context, cfg, log, "notification-subscriber-"+c.String("user"))
	if err != nil {
		return err
	}
	defer closeFn()

	store := snapshot.NewStore(ch, cfg.DineInTables, log)
	return notificator.Start(c.Context, store, log, c.String("user"), beat)
}

func runInitDocument(c *cli.Context) error {
	cfg, log, err := setup("init-document")
	if err != nil {
		return err
	}
	if cfg.Sync != config.SyncRemote {
		return cli.Exit("init-document needs FLOOR_SYNC=remote", 2)
	}
	ch, closeFn, err := openChannel(c.Context, cfg, log, "init-document")
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()
	return initDocument(ctx, ch, cfg.DineInTables, c.Bool("force"), log)
}

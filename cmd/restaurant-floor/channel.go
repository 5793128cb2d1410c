package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"restaurant-floor/internal/common/auth"
	"restaurant-floor/internal/common/config"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/connections/database"
	"restaurant-floor/internal/connections/rabbitmq"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/snapshot"
)

// openChannel builds the sync channel FLOOR_SYNC asks for. The returned func
// releases its connections.
func openChannel(ctx context.Context, cfg config.App, log *logger.Logger, consumer string) (snapshot.Channel, func(), error) {
	if cfg.Sync == config.SyncMemory {
		log.Warn("memory_sync", nil, map[string]any{"detail": "document is not shared with other processes"})
		return snapshot.NewMemoryChannel(), func() {}, nil
	}

	db, err := database.ConnectDB(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	repo := snapshot.NewPostgresDocuments(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	mq, err := rabbitmq.Dial(rabbitmq.Config{
		Host:     cfg.Rabbit.Host,
		Port:     cfg.Rabbit.Port,
		User:     cfg.Rabbit.User,
		Password: cfg.Rabbit.Password,
		VHost:    cfg.Rabbit.VHost,
		UseTLS:   cfg.Rabbit.TLS,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	fanout, err := snapshot.NewFanout(mq, consumer)
	if err != nil {
		mq.Close()
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("remote_sync_connected", map[string]any{
		"path":     cfg.DocumentPath,
		"database": cfg.Database.Host,
		"rabbitmq": cfg.Rabbit.Host,
	})
	return snapshot.NewRemoteChannel(cfg.DocumentPath, repo, fanout, log), func() {
		mq.Close()
		_ = db.Close()
	}, nil
}

func initDocument(ctx context.Context, ch snapshot.Channel, dineIn int, force bool, log *logger.Logger) error {
	_, ok, err := ch.Load(ctx)
	if err != nil {
		return err
	}
	if ok && !force {
		log.Info("document_exists", nil)
		return nil
	}
	doc := domain.DefaultDocument(dineIn, time.Now().UnixMilli())
	if err := ch.Replace(ctx, doc); err != nil {
		return err
	}
	log.Info("document_written", map[string]any{"tables": len(doc.Tables), "overwrote": ok})
	return nil
}

// sessionsFor returns the session signer. Several processes sharing a
// remote document must share FLOOR_SESSION_SECRET, so it is required there.
// A memory run signs with a throwaway key.
func sessionsFor(cfg config.App, log *logger.Logger) (*auth.Sessions, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		if cfg.Sync == config.SyncRemote {
			return nil, errors.New("remote sync needs FLOOR_SESSION_SECRET")
		}
		var err error
		if secret, err = auth.RandomSecret(); err != nil {
			return nil, err
		}
		log.Warn("session_secret_generated", nil, map[string]any{"detail": "sessions end when the process exits"})
	}
	return auth.NewSessions(secret, cfg.SessionTTL), nil
}

package notificator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/microservices/notificator/service"
	"restaurant-floor/internal/snapshot"
)

// Start follows the document as userID until ctx ends or the user disappears.
func Start(ctx context.Context, store *snapshot.Store, log *logger.Logger, userID string, beatEvery time.Duration) error {
	if err := store.Open(ctx); err != nil {
		return err
	}
	doc := store.Read()
	if _, err := doc.User(userID); err != nil {
		return err
	}
	ns := service.New(store, log, userID, beatEvery).NotificatorService

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(ctx) })
	g.Go(func() error { return ns.Notify(ctx) })
	g.Go(func() error { return ns.Beat(ctx) })
	log.Info("service_started", map[string]any{"user_id": userID, "heartbeat": beatEvery.String()})
	return g.Wait()
}

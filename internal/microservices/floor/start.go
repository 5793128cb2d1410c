package floor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"restaurant-floor/internal/common/auth"
	"restaurant-floor/internal/common/httpx"
	"restaurant-floor/internal/common/logger"
	engine "restaurant-floor/internal/floor"
	"restaurant-floor/internal/microservices/floor/handlers"
	"restaurant-floor/internal/microservices/floor/service"
	"restaurant-floor/internal/snapshot"
)

// Run serves the floor API until ctx ends. The store must be open.
func Run(ctx context.Context, port int, store *snapshot.Store, sessions *auth.Sessions, log *logger.Logger) error {
	svc := service.New(store, engine.NewEngine(), log)
	hub := handlers.NewHub(log)
	h := handlers.New(svc, hub, sessions)
	srv := httpx.New(port, handlers.Router(h, svc.FloorService, log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(ctx) })
	g.Go(func() error {
		docs, stop := store.Watch()
		defer stop()
		hub.Run(ctx, docs)
		return nil
	})
	g.Go(func() error {
		log.Info("service_started", map[string]any{"port": port})
		return srv.Run(ctx)
	})
	return g.Wait()
}

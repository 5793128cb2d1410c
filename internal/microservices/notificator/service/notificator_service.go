package service

import (
	"context"
	"errors"
	"time"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/floor"
	"restaurant-floor/internal/snapshot"
)

// NotificatorService is a station that follows the shared document for one
// user: it reports each notification the user has not seen yet and keeps the
// user's lastActive fresh.
type NotificatorService struct {
	store     *snapshot.Store
	engine    *floor.Engine
	log       *logger.Logger
	UserID    string
	BeatEvery time.Duration

	seen map[string]struct{}
}

func NewNotificatorService(store *snapshot.Store, engine *floor.Engine, log *logger.Logger, userID string, beatEvery time.Duration) *NotificatorService {
	if beatEvery <= 0 {
		beatEvery = 15 * time.Second
	}
	return &NotificatorService{
		store:     store,
		engine:    engine,
		log:       log.With(map[string]any{"user_id": userID}),
		UserID:    userID,
		BeatEvery: beatEvery,
		seen:      map[string]struct{}{},
	}
}

// Fresh returns the notifications visible to the user in doc that were not
// returned by an earlier call. Ids that left the document are forgotten.
func (ns *NotificatorService) Fresh(doc domain.Document) ([]domain.Notification, error) {
	u, err := doc.User(ns.UserID)
	if err != nil {
		return nil, err
	}
	visible := floor.NotificationsFor(doc, *u)
	present := make(map[string]struct{}, len(visible))
	var out []domain.Notification
	for _, n := range visible {
		present[n.ID] = struct{}{}
		if _, ok := ns.seen[n.ID]; ok || n.Read {
			continue
		}
		out = append(out, n)
	}
	ns.seen = present
	return out, nil
}

func (ns *NotificatorService) Notify(ctx context.Context) error {
	docs, stop := ns.store.Watch()
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case doc := <-docs:
			fresh, err := ns.Fresh(doc)
			if err != nil {
				ns.log.Warn("user_missing", err, nil)
				continue
			}
			for _, n := range fresh {
				ns.log.Info("notification_received", map[string]any{
					"notification_id": n.ID,
					"type":            n.Type,
					"title":           n.Title,
					"message":         n.Message,
					"tables":          n.TableRef(),
				})
			}
		}
	}
}

func (ns *NotificatorService) Heartbeat(ctx context.Context) error {
	_, err := ns.store.Commit(ctx, func(d domain.Document) (domain.Document, error) {
		return ns.engine.TouchUser(d, ns.UserID)
	})
	return err
}

// Beat sends a heartbeat every BeatEvery until ctx ends. Failures are logged
// and the next tick tries again.
func (ns *NotificatorService) Beat(ctx context.Context) error {
	t := time.NewTicker(ns.BeatEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			err := ns.Heartbeat(ctx)
			switch {
			case err == nil:
				ns.log.Debug("heartbeat_sent", nil)
			case errors.Is(err, domain.ErrNotFound):
				return err
			default:
				ns.log.Warn("heartbeat_failed", err, nil)
			}
		}
	}
}

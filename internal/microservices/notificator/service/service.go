package service

import (
	"time"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/floor"
	"restaurant-floor/internal/snapshot"
)

type Service struct {
	NotificatorService *NotificatorService
}

func New(store *snapshot.Store, log *logger.Logger, userID string, beatEvery time.Duration) *Service {
	return &Service{NotificatorService: NewNotificatorService(store, floor.NewEngine(), log, userID, beatEvery)}
}

package service

import (
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/floor"
	"restaurant-floor/internal/snapshot"
)

type Service struct {
	FloorService FloorServiceInterface
}

func New(store *snapshot.Store, engine *floor.Engine, log *logger.Logger) *Service {
	return &Service{
		FloorService: NewFloorService(store, engine, log),
	}
}

package handlers

import (
	"restaurant-floor/internal/common/auth"
	"restaurant-floor/internal/microservices/floor/service"
)

type Handler struct {
	FloorHandler    *FloorHandler
	CustomerHandler *CustomerHandler
	Hub             *Hub
	Sessions        *auth.Sessions
}

func New(s *service.Service, hub *Hub, sessions *auth.Sessions) *Handler {
	return &Handler{
		FloorHandler:    NewFloorHandler(s.FloorService, sessions),
		CustomerHandler: NewCustomerHandler(s.FloorService),
		Hub:             hub,
		Sessions:        sessions,
	}
}

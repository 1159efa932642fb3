package handlers

import (
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger     *logging.Logger
	dayService *services.DayService
}

// New creates a new handler instance
func New(logger *logging.Logger, dayService *services.DayService) *Handler {
	return &Handler{
		logger:     logger,
		dayService: dayService,
	}
}

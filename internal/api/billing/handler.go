package billing

import (
	"errors"
	"net/http"

	"streamdraw/internal/participation"
)

// Handler serves the paid-join flow on top of the participation engine.
type Handler struct {
	Engine *participation.Engine
	// SupportEmail is shown when a paid user could not be admitted.
	SupportEmail string
}

func NewHandler(engine *participation.Engine, supportEmail string) *Handler {
	return &Handler{Engine: engine, SupportEmail: supportEmail}
}

// joinStatus maps workflow errors onto HTTP statuses.
func joinStatus(err error) (int, string) {
	switch {
	case errors.Is(err, participation.ErrNotFound):
		return http.StatusNotFound, "Stream or user not found"
	case errors.Is(err, participation.ErrInvalidState):
		return http.StatusBadRequest, "Stream is no longer running"
	case errors.Is(err, participation.ErrConflict):
		return http.StatusConflict, "You have already joined this stream"
	case errors.Is(err, participation.ErrGateway):
		return http.StatusBadGateway, "Payment gateway unavailable, please retry"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/model"
	"github.com/stageset/stageset/internal/processor"
)

// StateHandler serves the full plan snapshot clients use to seed or
// resynchronise their local projection.
type StateHandler struct {
	proc *processor.Processor
}

// NewStateHandler builds a StateHandler around the mutation processor.
func NewStateHandler(proc *processor.Processor) *StateHandler {
	return &StateHandler{proc: proc}
}

// stateResponse is the snapshot plus the name of the show it came from,
// so a client can detect a show switch that raced its refetch.
type stateResponse struct {
	model.FullState
	CurrentShow string `json:"currentShow"`
}

// Get returns the complete current state of the selected show.
func (h *StateHandler) Get(c echo.Context) error {
	state, err := h.proc.Snapshot(c.Request().Context())
	if err != nil {
		if errors.Is(err, database.ErrNoShow) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "No show selected"})
		}
		log.Printf("state: snapshot failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load state"})
	}
	return c.JSON(http.StatusOK, stateResponse{FullState: state, CurrentShow: h.proc.CurrentShow()})
}

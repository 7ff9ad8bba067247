package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stageset/stageset/internal/database"
	"github.com/stageset/stageset/internal/processor"
)

// ShowHandler exposes the show catalogue: listing, creating, switching and
// deleting the per-show database files.  Switching and creating go through
// the processor so every connected client receives the show:changed
// broadcast.
type ShowHandler struct {
	proc *processor.Processor
}

// NewShowHandler builds a ShowHandler around the mutation processor.
func NewShowHandler(proc *processor.Processor) *ShowHandler {
	return &ShowHandler{proc: proc}
}

type showRequest struct {
	Name string `json:"name"`
}

// List returns every known show plus the currently selected one.  The
// current show is null until a show has been selected or created.
func (h *ShowHandler) List(c echo.Context) error {
	shows, err := h.proc.ListShows()
	if err != nil {
		log.Printf("shows: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list shows"})
	}
	var current any
	if name := h.proc.CurrentShow(); name != "" {
		current = name
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": shows, "currentShow": current})
}

// Create makes a new show file, selects it and broadcasts the fresh
// snapshot to every client.
func (h *ShowHandler) Create(c echo.Context) error {
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.proc.CreateShow(c.Request().Context(), req.Name); err != nil {
		return showError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "name": req.Name})
}

// Select switches every client to another show.
func (h *ShowHandler) Select(c echo.Context) error {
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.proc.SelectShow(c.Request().Context(), req.Name); err != nil {
		return showError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "name": req.Name})
}

// Delete removes a show file.  The active show cannot be deleted; switch
// away from it first.
func (h *ShowHandler) Delete(c echo.Context) error {
	if err := h.proc.DeleteShow(c.Param("name")); err != nil {
		return showError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// showError maps store sentinels onto HTTP statuses; anything else is a
// server fault.
func showError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, database.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, database.ErrShowExists),
		errors.Is(err, database.ErrActiveShow),
		errors.Is(err, database.ErrBadName):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		log.Printf("shows: operation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "show operation failed"})
	}
}

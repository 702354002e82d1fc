package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/livetone/internal/denylist"
)

// DenyListHandler serves the effective deny-list.
type DenyListHandler struct {
	deny *denylist.DenyList
}

// NewDenyListHandler creates a handler for deny.
func NewDenyListHandler(deny *denylist.DenyList) *DenyListHandler {
	return &DenyListHandler{deny: deny}
}

// DenyListGet returns the deny-list, each category sorted.
func (h *DenyListHandler) DenyListGet(c echo.Context) error {
	return c.JSON(http.StatusOK, DenyListResponse{
		Properties: h.deny.Properties(),
		Functions:  h.deny.Functions(),
		Objects:    h.deny.Objects(),
	})
}

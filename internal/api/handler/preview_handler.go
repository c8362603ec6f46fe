package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/service"
)

// PreviewHandler serves the local images shown while an avatar uploads.
type PreviewHandler struct {
	previews *service.Previews
}

func NewPreviewHandler(previews *service.Previews) *PreviewHandler {
	return &PreviewHandler{previews: previews}
}

// Get serves one preview. Previews are revoked once their upload settles.
//
// @Summary      Avatar preview
// @Tags         previews
// @Produce      image/png
// @Param        id   path  string  true  "Preview ID"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /previews/{id} [get]
func (h *PreviewHandler) Get(c echo.Context) error {
	p, ok := h.previews.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "preview not found")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, p.ContentType, p.Data)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"firebay/internal/core"
	"firebay/internal/types"
	"firebay/internal/windy"
)

// WindMapHandler serves the live map embed configuration.
type WindMapHandler struct {
	region types.Region
	zoom   int
}

// NewWindMapHandler creates a WindMapHandler pinned to the monitored zone.
func NewWindMapHandler(region types.Region, zoom int) *WindMapHandler {
	return &WindMapHandler{region: region, zoom: zoom}
}

// RegisterRoutes mounts the map endpoints.
func (h *WindMapHandler) RegisterRoutes(r chi.Router) {
	r.Get("/map/embed", h.HandleEmbed)
	r.Get("/map/layers", h.HandleLayers)
}

// HandleEmbed handles GET /v1/map/embed?layer=. The layer defaults to wind.
func (h *WindMapHandler) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	embed, err := windy.BuildEmbed(h.region.Lat, h.region.Lon, h.zoom, r.URL.Query().Get("layer"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: embed})
}

// HandleLayers handles GET /v1/map/layers.
func (h *WindMapHandler) HandleLayers(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: windy.Layers})
}

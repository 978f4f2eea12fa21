// Package windy builds embed URLs for the windy.com live map widget shown on
// the dashboard. The widget is configured entirely through query parameters;
// the parameter order is part of the embed contract, so the URL is assembled
// with a fixed format string rather than url.Values.
package windy

import (
	"fmt"

	"firebay/internal/types"
)

// Layers lists the overlays the dashboard exposes, in display order.
var Layers = []string{"wind", "temp", "clouds", "rain", "pressure", "humidity", "fires"}

// DefaultLayer is used when no overlay is requested.
const DefaultLayer = "wind"

const embedURLFormat = "https://embed.windy.com/embed2.html?lat=%v&lon=%v&zoom=%d&overlay=%s&menu=&message=true&marker=&calendar=&pressure=&type=map&location=coordinates"

// Embed describes a configured map widget.
type Embed struct {
	URL    string  `json:"url"`
	IFrame string  `json:"iframe"`
	Layer  string  `json:"layer"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Zoom   int     `json:"zoom"`
}

// ValidLayer reports whether layer is one of the supported overlays.
func ValidLayer(layer string) bool {
	for _, l := range Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// BuildEmbed returns the embed URL and iframe snippet for the given position
// and overlay. An unknown layer is rejected.
func BuildEmbed(lat, lon float64, zoom int, layer string) (Embed, error) {
	if layer == "" {
		layer = DefaultLayer
	}
	if !ValidLayer(layer) {
		return Embed{}, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidLayer,
			fmt.Sprintf("unknown map layer %q", layer),
			nil,
			map[string]any{"supported_layers": Layers},
		)
	}

	url := fmt.Sprintf(embedURLFormat, lat, lon, zoom, layer)

	return Embed{
		URL:    url,
		IFrame: fmt.Sprintf(`<iframe width="100%%" height="450" src="%s" frameborder="0"></iframe>`, url),
		Layer:  layer,
		Lat:    lat,
		Lon:    lon,
		Zoom:   zoom,
	}, nil
}

// Package view maps dataset results into the declarative descriptions the
// dashboard's rendering widgets consume, and decodes the events they emit.
package view

import (
	"encoding/json"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
)

// Marker is one map point with the metadata the dashboard attaches to it. The
// name/id pair rides along as custom data and comes back in click events.
type Marker struct {
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
	Name string  `json:"name"`
	ID   int     `json:"id"`
}

// Markers converts a filtered subset into map markers, preserving order.
func Markers(subset []dataset.Glacier) []Marker {
	markers := make([]Marker, 0, len(subset))
	for _, g := range subset {
		markers = append(markers, Marker{
			Lon:  g.Longitude,
			Lat:  g.Latitude,
			Name: g.Name,
			ID:   g.ID,
		})
	}
	return markers
}

// ClickEvent mirrors the payload the map widget posts when a point is clicked:
// the clicked point carries its [name, id] custom data.
type ClickEvent struct {
	Points []ClickPoint `json:"points"`
}

// ClickPoint is one clicked point within a ClickEvent.
type ClickPoint struct {
	CustomData []json.RawMessage `json:"customdata"`
}

// SelectedID extracts the glacier id from a click event. A nil event (no click
// has happened yet) or a malformed payload yields nil, which callers treat as
// "use the default site".
func SelectedID(ev *ClickEvent) *int {
	if ev == nil || len(ev.Points) == 0 {
		return nil
	}
	data := ev.Points[0].CustomData
	if len(data) < 2 {
		return nil
	}

	// The widget serializes the id as a JSON number, which may arrive with or
	// without a fractional part.
	var asFloat float64
	if err := json.Unmarshal(data[1], &asFloat); err != nil {
		return nil
	}
	id := int(asFloat)
	return &id
}

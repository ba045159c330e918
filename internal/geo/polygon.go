// Package geo turns drawn map shapes into the single point the analysis
// service accepts.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/hydro.report/internal/water"
)

// ErrEmptyShape is returned for shapes with no area.
var ErrEmptyShape = errors.New("shape has no area")

// PointFromGeoJSON decodes a GeoJSON geometry or feature and returns the
// point to analyse: a Point as-is, or the area centroid of a Polygon or
// MultiPolygon.
func PointFromGeoJSON(data []byte) (water.Point, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return water.Point{}, fmt.Errorf("invalid geojson: %w", err)
	}

	var g orb.Geometry
	switch head.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return water.Point{}, fmt.Errorf("invalid geojson feature: %w", err)
		}
		g = f.Geometry
	case "":
		return water.Point{}, errors.New("invalid geojson: missing type")
	default:
		gg, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return water.Point{}, fmt.Errorf("invalid geojson geometry: %w", err)
		}
		g = gg.Geometry()
	}
	return PointFromGeometry(g)
}

// PointFromGeometry returns the analysis point for g.
func PointFromGeometry(g orb.Geometry) (water.Point, error) {
	var c orb.Point
	switch v := g.(type) {
	case orb.Point:
		c = v
	case orb.Polygon, orb.MultiPolygon:
		var area float64
		c, area = planar.CentroidArea(v)
		if area == 0 {
			return water.Point{}, ErrEmptyShape
		}
	case nil:
		return water.Point{}, errors.New("missing geometry")
	default:
		return water.Point{}, fmt.Errorf("unsupported geometry %s, draw a polygon", g.GeoJSONType())
	}

	p := water.Point{Lat: c.Lat(), Lng: c.Lon()}
	if err := p.Validate(); err != nil {
		return water.Point{}, err
	}
	return p, nil
}

package models

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude] —
// GeoJSON order, matching the 2dsphere index on delivery-agent locations.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// GeoShape is a GeoJSON polygon used by service areas.
type GeoShape struct {
	Type        string        `bson:"type" json:"type"`
	Coordinates [][][]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a point from a longitude/latitude pair.
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// Lon returns the longitude component.
func (p GeoPoint) Lon() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude component.
func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[1]
}

// IsZero reports whether the point is absent or is the (0,0) placeholder
// the original seed data used for agents that never reported a location.
func (p GeoPoint) IsZero() bool {
	return len(p.Coordinates) != 2 || (p.Coordinates[0] == 0 && p.Coordinates[1] == 0)
}

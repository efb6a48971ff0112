package utils

import (
	"errors"
	"math"
	"sort"

	"github.com/herbtrade/herbtrade-backend-go/models"
)

// ErrMissingDeliveryLocation is returned when an order has no usable
// delivery coordinate to rank agents against.
var ErrMissingDeliveryLocation = errors.New("order has no delivery location")

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// latitude/longitude pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// AgentDistance is one ranked candidate for a delivery assignment.
type AgentDistance struct {
	Agent         models.Seller `json:"agent"`
	DistanceKm    float64       `json:"distanceKm"`
	InServiceArea bool          `json:"inServiceArea"`
}

// RankAgents filters candidates down to active, available agents with a
// known location whose service radius contains the order's delivery point,
// sorted nearest first. Distance ties are broken by agent id so the order
// is stable between calls.
func RankAgents(orderPoint models.GeoPoint, candidates []models.Seller) ([]AgentDistance, error) {
	if orderPoint.IsZero() {
		return nil, ErrMissingDeliveryLocation
	}

	ranked := make([]AgentDistance, 0, len(candidates))
	for _, agent := range candidates {
		if !agent.IsActive || !agent.IsAvailable || agent.CurrentLocation.IsZero() {
			continue
		}

		dist := Haversine(
			orderPoint.Lat(), orderPoint.Lon(),
			agent.CurrentLocation.Lat(), agent.CurrentLocation.Lon(),
		)

		radius := agent.MaxDeliveryRadius
		if radius <= 0 {
			radius = models.DefaultDeliveryRadiusKm
		}
		if dist > radius {
			continue
		}

		ranked = append(ranked, AgentDistance{
			Agent:         agent,
			DistanceKm:    dist,
			InServiceArea: true,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Agent.ID.Hex() < ranked[j].Agent.ID.Hex()
	})

	return ranked, nil
}

// NearestAgent returns the closest in-range agent, if any.
func NearestAgent(orderPoint models.GeoPoint, candidates []models.Seller) (*AgentDistance, error) {
	ranked, err := RankAgents(orderPoint, candidates)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	return &ranked[0], nil
}

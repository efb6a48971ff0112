package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/herbtrade/herbtrade-backend-go/models"
)

func agent(idHex string, lon, lat, radius float64) models.Seller {
	id, _ := primitive.ObjectIDFromHex(idHex)
	return models.Seller{
		ID:                id,
		Role:              models.RoleDelivery,
		IsActive:          true,
		IsAvailable:       true,
		CurrentLocation:   models.NewGeoPoint(lon, lat),
		MaxDeliveryRadius: radius,
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{8.80, 76.90, 8.84, 76.95},
		{0, 0, 45, 90},
		{-33.87, 151.21, 51.51, -0.13},
	}
	for _, p := range pairs {
		require.InDelta(t, Haversine(p[0], p[1], p[2], p[3]), Haversine(p[2], p[3], p[0], p[1]), 1e-9)
	}
}

func TestHaversine_Identity(t *testing.T) {
	require.Zero(t, Haversine(8.80, 76.90, 8.80, 76.90))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Agent point and order point roughly 7 km apart near Trivandrum.
	d := Haversine(8.80, 76.90, 8.84, 76.95)
	require.InDelta(t, 7.07, d, 0.05)
}

func TestRankAgents_MissingLocation(t *testing.T) {
	agents := []models.Seller{agent("650000000000000000000001", 76.90, 8.80, 10)}

	_, err := RankAgents(models.GeoPoint{}, agents)
	require.ErrorIs(t, err, ErrMissingDeliveryLocation)

	_, err = RankAgents(models.NewGeoPoint(0, 0), agents)
	require.ErrorIs(t, err, ErrMissingDeliveryLocation)
}

func TestRankAgents_ContainmentAndOrder(t *testing.T) {
	order := models.NewGeoPoint(76.95, 8.84)
	agents := []models.Seller{
		agent("650000000000000000000001", 76.90, 8.80, 10), // ~7 km, in range
		agent("650000000000000000000002", 76.96, 8.85, 10), // ~1.5 km, in range
		agent("650000000000000000000003", 77.50, 9.50, 10), // ~100 km, out of range
	}

	ranked, err := RankAgents(order, agents)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	for _, r := range ranked {
		require.True(t, r.InServiceArea)
		require.LessOrEqual(t, r.DistanceKm, r.Agent.MaxDeliveryRadius)
	}
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, ranked[i].DistanceKm, ranked[i-1].DistanceKm)
	}
	require.Equal(t, "650000000000000000000002", ranked[0].Agent.ID.Hex())
}

func TestRankAgents_FiltersUnavailable(t *testing.T) {
	order := models.NewGeoPoint(76.95, 8.84)

	inactive := agent("650000000000000000000001", 76.90, 8.80, 10)
	inactive.IsActive = false

	busy := agent("650000000000000000000002", 76.90, 8.80, 10)
	busy.IsAvailable = false

	noLocation := agent("650000000000000000000003", 0, 0, 10)

	ranked, err := RankAgents(order, []models.Seller{inactive, busy, noLocation})
	require.NoError(t, err)
	require.Empty(t, ranked)
}

func TestRankAgents_ScenarioInRange(t *testing.T) {
	// Agent at (76.90, 8.80) with a 10 km radius must contain an order at
	// (76.95, 8.84).
	order := models.NewGeoPoint(76.95, 8.84)
	ranked, err := RankAgents(order, []models.Seller{agent("650000000000000000000001", 76.90, 8.80, 10)})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.True(t, ranked[0].InServiceArea)
}

func TestRankAgents_ScenarioOutOfRange(t *testing.T) {
	// The same agent must be excluded for an order ~100 km away.
	order := models.NewGeoPoint(77.50, 9.50)
	ranked, err := RankAgents(order, []models.Seller{agent("650000000000000000000001", 76.90, 8.80, 10)})
	require.NoError(t, err)
	require.Empty(t, ranked)
}

func TestRankAgents_StableTieBreak(t *testing.T) {
	order := models.NewGeoPoint(76.95, 8.84)
	a := agent("650000000000000000000002", 76.90, 8.80, 10)
	b := agent("650000000000000000000001", 76.90, 8.80, 10)

	ranked, err := RankAgents(order, []models.Seller{a, b})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	require.Equal(t, "650000000000000000000001", ranked[0].Agent.ID.Hex())

	// Same input in the other order yields the same ranking.
	ranked2, err := RankAgents(order, []models.Seller{b, a})
	require.NoError(t, err)
	require.Equal(t, ranked[0].Agent.ID, ranked2[0].Agent.ID)
}

func TestRankAgents_DefaultRadius(t *testing.T) {
	order := models.NewGeoPoint(76.95, 8.84)
	a := agent("650000000000000000000001", 76.90, 8.80, 0) // falls back to 10 km

	ranked, err := RankAgents(order, []models.Seller{a})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
}

func TestNearestAgent(t *testing.T) {
	order := models.NewGeoPoint(76.95, 8.84)
	near := agent("650000000000000000000001", 76.96, 8.85, 10)
	far := agent("650000000000000000000002", 76.90, 8.80, 10)

	got, err := NearestAgent(order, []models.Seller{far, near})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, near.ID, got.Agent.ID)

	got, err = NearestAgent(order, nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

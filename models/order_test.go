package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoupledOrderStatus(t *testing.T) {
	tests := []struct {
		delivery DeliveryStatus
		want     OrderStatus
		ok       bool
	}{
		{DeliveryPickedUp, OrderStatusProcessing, true},
		{DeliveryOutForDelivery, OrderStatusShipped, true},
		{DeliveryDelivered, OrderStatusDelivered, true},
		{DeliveryFailed, OrderStatusProcessing, true},
		{DeliveryAssigned, "", false},
		{DeliveryUnassigned, "", false},
	}

	for _, tt := range tests {
		got, ok := CoupledOrderStatus(tt.delivery)
		require.Equal(t, tt.ok, ok, "status %s", tt.delivery)
		require.Equal(t, tt.want, got, "status %s", tt.delivery)
	}
}

func TestValidAgentDeliveryStatus(t *testing.T) {
	for _, s := range []DeliveryStatus{DeliveryPickedUp, DeliveryOutForDelivery, DeliveryDelivered, DeliveryFailed} {
		require.True(t, ValidAgentDeliveryStatus(s))
	}
	for _, s := range []DeliveryStatus{DeliveryUnassigned, DeliveryAssigned, "bogus"} {
		require.False(t, ValidAgentDeliveryStatus(s))
	}
}

func TestCanCancel(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusPending, OrderStatusConfirmed}
	for _, s := range cancellable {
		o := Order{Status: s}
		require.True(t, o.CanCancel(), "status %s", s)
	}

	locked := []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled}
	for _, s := range locked {
		o := Order{Status: s}
		require.False(t, o.CanCancel(), "status %s", s)
	}
}

func TestNewDeliveryEvent(t *testing.T) {
	e := NewDeliveryEvent(DeliveryPickedUp, "picked up at warehouse")
	require.Equal(t, DeliveryPickedUp, e.Status)
	require.Equal(t, "picked up at warehouse", e.Message)
	require.False(t, e.Timestamp.IsZero())
}

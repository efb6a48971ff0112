package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// DeliveryStatus is the delivery track of an order, parallel to the order
// status itself.
type DeliveryStatus string

const (
	DeliveryUnassigned     DeliveryStatus = "unassigned"
	DeliveryAssigned       DeliveryStatus = "assigned"
	DeliveryPickedUp       DeliveryStatus = "picked_up"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
	DeliveryFailed         DeliveryStatus = "failed"
)

type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"` // unit price at order time
}

// ShippingAddress is snapshotted onto the order at checkout.
type ShippingAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Country string `bson:"country" json:"country"`
}

// DeliveryEvent is one entry in the order's append-only delivery log.
type DeliveryEvent struct {
	Status    DeliveryStatus `bson:"status" json:"status"`
	Message   string         `bson:"message" json:"message"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}

type Order struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User             primitive.ObjectID  `bson:"user" json:"user"`
	Items            []OrderItem         `bson:"items" json:"items"`
	TotalAmount      float64             `bson:"totalAmount" json:"totalAmount"`
	Status           OrderStatus         `bson:"status" json:"status"`
	ShippingAddress  ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	DeliveryLocation GeoPoint            `bson:"deliveryLocation,omitempty" json:"deliveryLocation,omitempty"`
	DeliveryAssignee *primitive.ObjectID `bson:"deliveryAssignee,omitempty" json:"deliveryAssignee,omitempty"`
	DeliveryStatus   DeliveryStatus      `bson:"deliveryStatus" json:"deliveryStatus"`
	DeliveryEvents   []DeliveryEvent     `bson:"deliveryEvents,omitempty" json:"deliveryEvents,omitempty"`
	DeliveryNotes    string              `bson:"deliveryNotes,omitempty" json:"deliveryNotes,omitempty"`
	PaymentMethod    string              `bson:"paymentMethod" json:"paymentMethod"` // cod or online
	PaymentStatus    string              `bson:"paymentStatus" json:"paymentStatus"` // pending, paid, failed
	OrderDate        time.Time           `bson:"orderDate" json:"orderDate"`
	DeliveryDate     *time.Time          `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	TrackingNumber   string              `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	Notes            string              `bson:"notes,omitempty" json:"notes,omitempty"`
}

// agentDeliveryStatuses are the transitions a delivery agent may report.
var agentDeliveryStatuses = map[DeliveryStatus]bool{
	DeliveryPickedUp:       true,
	DeliveryOutForDelivery: true,
	DeliveryDelivered:      true,
	DeliveryFailed:         true,
}

// ValidAgentDeliveryStatus reports whether s is a status a delivery agent
// is allowed to set on an assigned order.
func ValidAgentDeliveryStatus(s DeliveryStatus) bool {
	return agentDeliveryStatuses[s]
}

// CoupledOrderStatus maps a delivery-status change to the order status it
// forces. A failed delivery keeps the order in processing so it can be
// re-dispatched rather than cancelled.
func CoupledOrderStatus(s DeliveryStatus) (OrderStatus, bool) {
	switch s {
	case DeliveryPickedUp:
		return OrderStatusProcessing, true
	case DeliveryOutForDelivery:
		return OrderStatusShipped, true
	case DeliveryDelivered:
		return OrderStatusDelivered, true
	case DeliveryFailed:
		return OrderStatusProcessing, true
	}
	return "", false
}

// CanCancel reports whether the order is still in a cancellable state.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// NewDeliveryEvent stamps an event for the append-only delivery log.
func NewDeliveryEvent(status DeliveryStatus, message string) DeliveryEvent {
	return DeliveryEvent{Status: status, Message: message, Timestamp: time.Now()}
}

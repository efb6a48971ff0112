package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herbtrade/herbtrade-backend-go/database"
	"github.com/herbtrade/herbtrade-backend-go/middleware"
	"github.com/herbtrade/herbtrade-backend-go/models"
)

// AssignedOrders lists the orders assigned to the calling agent.
func AssignedOrders(c echo.Context) error {
	agentID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(database.ColOrders).Find(ctx,
		bson.M{"deliveryAssignee": agentID},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch assigned orders"})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch assigned orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// AvailableOrders lists unassigned orders an agent could claim.
func AvailableOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(database.ColOrders).Find(ctx,
		bson.M{"deliveryAssignee": nil, "status": bson.M{"$nin": []models.OrderStatus{models.OrderStatusCancelled, models.OrderStatusDelivered}}},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch available orders"})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch available orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// ClaimOrder lets an agent self-assign an unassigned order. The same
// conditional update guards against two agents claiming at once.
func ClaimOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	agent := c.Get(middleware.CtxPrincipal).(models.Seller)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.DB.Collection(database.ColOrders).FindOne(ctx, bson.M{"_id": orderID}).Err(); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}

	event := models.NewDeliveryEvent(models.DeliveryAssigned, fmt.Sprintf("Claimed by %s", agent.Name))
	assigned, err := assignAgent(ctx, orderID, agent, event)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to claim order"})
	}
	if !assigned {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order already assigned"})
	}

	middleware.CountAssignment("claim")

	var order models.Order
	if err := database.DB.Collection(database.ColOrders).FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to claim order"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Order claimed successfully", "order": order})
}

// UpdateDeliveryStatus moves an assigned order along the delivery track
// and applies the coupled order-status change.
func UpdateDeliveryStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	var req struct {
		Status models.DeliveryStatus `json:"status"`
		Note   string                `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if !models.ValidAgentDeliveryStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid delivery status"})
	}

	agentID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coupledStatus, _ := models.CoupledOrderStatus(req.Status)
	set := bson.M{
		"deliveryStatus": req.Status,
		"status":         coupledStatus,
	}
	if req.Note != "" {
		set["deliveryNotes"] = req.Note
	}
	if req.Status == models.DeliveryDelivered {
		set["deliveryDate"] = time.Now()
	}

	var order models.Order
	err = database.DB.Collection(database.ColOrders).FindOneAndUpdate(ctx,
		bson.M{"_id": orderID, "deliveryAssignee": agentID},
		bson.M{
			"$set":  set,
			"$push": bson.M{"deliveryEvents": models.NewDeliveryEvent(req.Status, req.Note)},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found or not assigned to you"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update delivery status"})
	}

	middleware.CountDeliveryTransition(string(req.Status))
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Delivery status updated", "order": order})
}

// UpdateLocation records the agent's current position as a GeoJSON point.
func UpdateLocation(c echo.Context) error {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Latitude == nil || req.Longitude == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Latitude and longitude are required"})
	}

	agentID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	location := models.NewGeoPoint(*req.Longitude, *req.Latitude)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection(database.ColSellers).UpdateOne(ctx,
		bson.M{"_id": agentID},
		bson.M{"$set": bson.M{"currentLocation": location}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update location"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Location updated successfully", "location": location})
}

// ToggleAvailability flips whether the agent accepts new assignments.
func ToggleAvailability(c echo.Context) error {
	agentID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var agent models.Seller
	err := database.DB.Collection(database.ColSellers).FindOneAndUpdate(ctx,
		bson.M{"_id": agentID},
		bson.A{bson.M{"$set": bson.M{"isAvailable": bson.M{"$not": "$isAvailable"}}}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0}),
	).Decode(&agent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to toggle availability"})
	}

	state := "unavailable"
	if agent.IsAvailable {
		state = "available"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("You are now %s for deliveries", state),
		"isAvailable": agent.IsAvailable,
	})
}

// DeliveryProfile returns the agent's own record.
func DeliveryProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, c.Get(middleware.CtxPrincipal))
}

// UpdateDeliveryProfile updates agent-specific fields like vehicle and
// service radius.
func UpdateDeliveryProfile(c echo.Context) error {
	var req struct {
		Phone             string   `json:"phone"`
		ProfilePic        string   `json:"profilePic"`
		VehicleType       string   `json:"vehicleType"`
		LicenseNumber     string   `json:"licenseNumber"`
		MaxDeliveryRadius *float64 `json:"maxDeliveryRadius"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	update := bson.M{}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.ProfilePic != "" {
		update["profilePic"] = req.ProfilePic
	}
	if req.VehicleType != "" {
		update["vehicleType"] = req.VehicleType
	}
	if req.LicenseNumber != "" {
		update["licenseNumber"] = req.LicenseNumber
	}
	if req.MaxDeliveryRadius != nil && *req.MaxDeliveryRadius > 0 {
		update["maxDeliveryRadius"] = *req.MaxDeliveryRadius
	}
	if len(update) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nothing to update"})
	}

	agentID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection(database.ColSellers).UpdateOne(ctx,
		bson.M{"_id": agentID},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated"})
}

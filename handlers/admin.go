package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/herbtrade/herbtrade-backend-go/database"
	"github.com/herbtrade/herbtrade-backend-go/middleware"
	"github.com/herbtrade/herbtrade-backend-go/models"
	"github.com/herbtrade/herbtrade-backend-go/utils"
)

type addStaffRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	VehicleType   string `json:"vehicleType"`
	LicenseNumber string `json:"licenseNumber"`
}

// AddEmployee creates a staff account with a generated password that is
// emailed to the new employee.
func AddEmployee(c echo.Context) error {
	return addStaff(c, "")
}

// AddDeliveryAgent creates a staff account fixed to the delivery role with
// the default service radius.
func AddDeliveryAgent(c echo.Context) error {
	return addStaff(c, models.RoleDelivery)
}

func addStaff(c echo.Context, forcedRole string) error {
	var req addStaffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name and email are required"})
	}
	if !isValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
	}

	role := forcedRole
	if role == "" {
		role = req.Role
		if role == "" {
			role = models.RoleEmployee
		}
	}
	switch role {
	case models.RoleSeller, models.RoleEmployee, models.RoleManager, models.RoleSupervisor, models.RoleDelivery:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid role"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	taken, err := emailTaken(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create employee"})
	}
	if taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already exists in the system"})
	}

	password, err := utils.GeneratePassword(8)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate password"})
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process password"})
	}

	adminID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	staff := models.Seller{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     string(hashedPassword),
		Role:         role,
		Department:   req.Department,
		IsActive:     true,
		IsFirstLogin: true,
		CreatedBy:    &adminID,
		CreatedAt:    time.Now(),
	}
	if role == models.RoleDelivery {
		staff.MaxDeliveryRadius = models.DefaultDeliveryRadiusKm
		staff.IsAvailable = true
		staff.VehicleType = req.VehicleType
		if staff.VehicleType == "" {
			staff.VehicleType = "bike"
		}
		staff.LicenseNumber = req.LicenseNumber
	}

	if _, err := database.DB.Collection(database.ColSellers).InsertOne(ctx, staff); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create employee"})
	}

	mailer.SendEmployeeCredentials(staff.Email, staff.Name, password, staff.Role)

	staff.Password = ""
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Employee added successfully", "employee": staff})
}

// ListEmployees returns all staff accounts except delivery agents.
func ListEmployees(c echo.Context) error {
	return listStaff(c, bson.M{"role": bson.M{"$in": []string{
		models.RoleSeller, models.RoleEmployee, models.RoleManager, models.RoleSupervisor,
	}}})
}

// ListDeliveryAgents returns all delivery agents with their availability
// and location state.
func ListDeliveryAgents(c echo.Context) error {
	return listStaff(c, bson.M{"role": models.RoleDelivery})
}

func listStaff(c echo.Context, filter bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(database.ColSellers).Find(ctx, filter,
		options.Find().
			SetProjection(bson.M{"password": 0}).
			SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch employees"})
	}
	defer cursor.Close(ctx)

	staff := []models.Seller{}
	if err := cursor.All(ctx, &staff); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch employees"})
	}
	return c.JSON(http.StatusOK, staff)
}

// DeactivateEmployee soft-deletes a staff account.
func DeactivateEmployee(c echo.Context) error {
	staffID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid employee ID"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection(database.ColSellers).UpdateOne(ctx,
		bson.M{"_id": staffID},
		bson.M{"$set": bson.M{"isActive": false, "isAvailable": false}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to deactivate employee"})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Employee not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Employee deactivated"})
}

// Stats returns headline counts for the admin dashboard.
func Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sellers := database.DB.Collection(database.ColSellers)

	totalUsers, err := database.DB.Collection(database.ColUsers).CountDocuments(ctx, bson.M{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}
	totalSellers, err := sellers.CountDocuments(ctx, bson.M{"role": models.RoleSeller})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}
	totalEmployees, err := sellers.CountDocuments(ctx, bson.M{"role": bson.M{"$in": []string{
		models.RoleEmployee, models.RoleManager, models.RoleSupervisor,
	}}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}
	totalDelivery, err := sellers.CountDocuments(ctx, bson.M{"role": models.RoleDelivery})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}
	totalOrders, err := database.DB.Collection(database.ColOrders).CountDocuments(ctx, bson.M{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}

	return c.JSON(http.StatusOK, map[string]int64{
		"totalUsers":     totalUsers,
		"totalSellers":   totalSellers,
		"totalEmployees": totalEmployees,
		"totalDelivery":  totalDelivery,
		"totalOrders":    totalOrders,
	})
}

// availableAgents loads active, available delivery agents without their
// password hashes.
func availableAgents(ctx context.Context) ([]models.Seller, error) {
	cursor, err := database.DB.Collection(database.ColSellers).Find(ctx,
		bson.M{"role": models.RoleDelivery, "isActive": true, "isAvailable": true},
		options.Find().SetProjection(bson.M{"password": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	agents := []models.Seller{}
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// NearestDeliveries ranks available delivery agents by distance to the
// order's delivery point, keeping only those whose service radius contains
// it.
func NearestDeliveries(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := database.DB.Collection(database.ColOrders).FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}

	agents, err := availableAgents(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch delivery agents"})
	}

	ranked, err := utils.RankAgents(order.DeliveryLocation, agents)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order has no delivery location"})
	}
	return c.JSON(http.StatusOK, ranked)
}

// assignAgent is the shared persistence step for auto and manual
// assignment: one conditional pipeline update that only succeeds while
// the order is still unassigned. The assignee, delivery status, event
// and the pending -> confirmed flip all land in the same write, so a
// crash can never leave an assigned order stuck in pending.
func assignAgent(ctx context.Context, orderID primitive.ObjectID, agent models.Seller, event models.DeliveryEvent) (bool, error) {
	update := bson.A{bson.M{"$set": bson.M{
		"deliveryAssignee": agent.ID,
		"deliveryStatus":   models.DeliveryAssigned,
		"status": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", models.OrderStatusPending}},
			models.OrderStatusConfirmed,
			"$status",
		}},
		"deliveryEvents": bson.M{"$concatArrays": bson.A{
			bson.M{"$ifNull": bson.A{"$deliveryEvents", bson.A{}}},
			bson.A{bson.M{"$literal": event}},
		}},
	}}}

	res, err := database.DB.Collection(database.ColOrders).UpdateOne(ctx,
		bson.M{"_id": orderID, "deliveryAssignee": nil},
		update,
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// AutoAssignDelivery assigns the nearest in-range agent to the order.
func AutoAssignDelivery(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := database.DB.Collection(database.ColOrders).FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}
	if order.DeliveryAssignee != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order already assigned"})
	}

	agents, err := availableAgents(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch delivery agents"})
	}

	nearest, err := utils.NearestAgent(order.DeliveryLocation, agents)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order has no delivery location"})
	}
	if nearest == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No available delivery agent in range"})
	}

	event := models.NewDeliveryEvent(models.DeliveryAssigned,
		fmt.Sprintf("Auto-assigned to %s (%.2f km away)", nearest.Agent.Name, nearest.DistanceKm))

	assigned, err := assignAgent(ctx, orderID, nearest.Agent, event)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to assign delivery"})
	}
	if !assigned {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order already assigned"})
	}

	middleware.CountAssignment("auto")
	logrus.WithFields(logrus.Fields{
		"order":    orderID.Hex(),
		"agent":    nearest.Agent.ID.Hex(),
		"distance": nearest.DistanceKm,
	}).Info("delivery auto-assigned")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Delivery assigned",
		"agent":      nearest.Agent,
		"distanceKm": nearest.DistanceKm,
	})
}

// AssignDelivery assigns a caller-chosen agent. The service radius is not
// enforced here: manual assignment is the admin's override for agents the
// auto path would filter out.
func AssignDelivery(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	var req struct {
		AgentID string `json:"agentId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	agentID, err := primitive.ObjectIDFromHex(req.AgentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid agent ID"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := database.DB.Collection(database.ColOrders).FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}
	if order.DeliveryAssignee != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order already assigned"})
	}

	var agent models.Seller
	err = database.DB.Collection(database.ColSellers).FindOne(ctx,
		bson.M{"_id": agentID, "role": models.RoleDelivery, "isActive": true},
		options.FindOne().SetProjection(bson.M{"password": 0}),
	).Decode(&agent)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid delivery agent"})
	}

	message := fmt.Sprintf("Manually assigned to %s", agent.Name)
	if !order.DeliveryLocation.IsZero() && !agent.CurrentLocation.IsZero() {
		dist := utils.Haversine(
			order.DeliveryLocation.Lat(), order.DeliveryLocation.Lon(),
			agent.CurrentLocation.Lat(), agent.CurrentLocation.Lon(),
		)
		message = fmt.Sprintf("Manually assigned to %s (%.2f km away)", agent.Name, dist)
	}

	assigned, err := assignAgent(ctx, orderID, agent, models.NewDeliveryEvent(models.DeliveryAssigned, message))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to assign delivery"})
	}
	if !assigned {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order already assigned"})
	}

	middleware.CountAssignment("manual")
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Delivery assigned", "agent": agent})
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herbtrade/herbtrade-backend-go/database"
	"github.com/herbtrade/herbtrade-backend-go/middleware"
	"github.com/herbtrade/herbtrade-backend-go/models"
)

type CreateOrderRequest struct {
	Items []struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	ShippingAddress  models.ShippingAddress `json:"shippingAddress"`
	DeliveryLocation []float64              `json:"deliveryLocation"` // [longitude, latitude]
	PaymentMethod    string                 `json:"paymentMethod"`
	Notes            string                 `json:"notes"`
}

// CreateOrder validates stock and creates the order. Stock is reserved at
// creation time with a conditional decrement per product; if a later line
// item fails, the earlier decrements are compensated before returning.
func CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order must contain at least one item"})
	}

	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products := database.DB.Collection(database.ColProducts)

	var totalAmount float64
	var orderItems []models.OrderItem
	var reserved []models.OrderItem

	fail := func(status int, msg string) error {
		restoreStock(ctx, reserved)
		return c.JSON(status, map[string]string{"error": msg})
	}

	for _, item := range req.Items {
		if item.Quantity < 1 {
			return fail(http.StatusBadRequest, "Item quantity must be at least 1")
		}
		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return fail(http.StatusBadRequest, "Invalid product ID")
		}

		var product models.Product
		if err := products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			return fail(http.StatusBadRequest, fmt.Sprintf("Product %s not found", item.Product))
		}

		// Decrement only if enough stock remains; a concurrent checkout
		// that drained the product makes this a no-op.
		res, err := products.UpdateOne(ctx,
			bson.M{"_id": productID, "inStock": bson.M{"$gte": item.Quantity}},
			bson.M{"$inc": bson.M{"inStock": -item.Quantity}},
		)
		if err != nil {
			return fail(http.StatusInternalServerError, "Failed to reserve stock")
		}
		if res.ModifiedCount == 0 {
			return fail(http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %s", product.Name))
		}

		line := models.OrderItem{Product: productID, Quantity: item.Quantity, Price: product.Price}
		reserved = append(reserved, line)
		orderItems = append(orderItems, line)
		totalAmount += product.Price * float64(item.Quantity)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cod"
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		User:            userID,
		Items:           orderItems,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		DeliveryStatus:  models.DeliveryUnassigned,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   "pending",
		OrderDate:       time.Now(),
		Notes:           req.Notes,
	}
	if len(req.DeliveryLocation) == 2 {
		order.DeliveryLocation = models.NewGeoPoint(req.DeliveryLocation[0], req.DeliveryLocation[1])
	}

	if _, err := database.DB.Collection(database.ColOrders).InsertOne(ctx, order); err != nil {
		restoreStock(ctx, reserved)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create order"})
	}

	return c.JSON(http.StatusCreated, order)
}

// restoreStock compensates reserved line items, e.g. after a failed create
// or a cancellation.
func restoreStock(ctx context.Context, items []models.OrderItem) {
	products := database.DB.Collection(database.ColProducts)
	for _, item := range items {
		_, err := products.UpdateOne(ctx,
			bson.M{"_id": item.Product},
			bson.M{"$inc": bson.M{"inStock": item.Quantity}},
		)
		if err != nil {
			logrus.WithError(err).WithField("product", item.Product.Hex()).Error("failed to restore stock")
		}
	}
}

// MyOrders lists the caller's orders, newest first.
func MyOrders(c echo.Context) error {
	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(database.ColOrders).Find(ctx,
		bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch orders"})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns a single order to its owner or an admin.
func GetOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = database.DB.Collection(database.ColOrders).FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}

	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	role := c.Get(middleware.CtxRole).(string)
	if order.User != userID && role != models.RoleAdmin {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder lets the owner cancel while the order is still pending or
// confirmed. The state flip is a conditional update, and line-item stock
// is restored afterwards.
func CancelOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := database.DB.Collection(database.ColOrders)

	var order models.Order
	if err := orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}
	if order.User != userID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
	}
	if !order.CanCancel() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot cancel order in current status"})
	}

	res, err := orders.UpdateOne(ctx,
		bson.M{
			"_id":    orderID,
			"status": bson.M{"$in": []models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed}},
		},
		bson.M{"$set": bson.M{"status": models.OrderStatusCancelled}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to cancel order"})
	}
	if res.ModifiedCount == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot cancel order in current status"})
	}

	restoreStock(ctx, order.Items)

	order.Status = models.OrderStatusCancelled
	return c.JSON(http.StatusOK, order)
}

// ListOrders returns every order (admin view).
func ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(database.ColOrders).Find(ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch orders"})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus is the admin override on the order lifecycle.
func UpdateOrderStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
	}

	var req struct {
		Status         models.OrderStatus `json:"status"`
		TrackingNumber string             `json:"trackingNumber"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	switch req.Status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"status": req.Status}
	if req.TrackingNumber != "" {
		update["trackingNumber"] = req.TrackingNumber
	}
	if req.Status == models.OrderStatusDelivered {
		update["deliveryDate"] = time.Now()
	}

	var order models.Order
	err = database.DB.Collection(database.ColOrders).FindOneAndUpdate(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update order"})
	}
	return c.JSON(http.StatusOK, order)
}

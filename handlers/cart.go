package handlers

import (
	"context"
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

func AddToCart(c echo.Context) error {
	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)

	var req struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Quantity must be at least 1"})
	}

	productID, err := primitive.ObjectIDFromHex(req.Product)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	collection := database.DB.Collection(database.ColCarts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{
			"items": bson.M{
				"product":  productID,
				"quantity": req.Quantity,
			},
		},
		"$set": bson.M{
			"updatedAt": time.Now(),
		},
	}

	result := collection.FindOneAndUpdate(
		ctx,
		bson.M{"user": userID},
		update,
		options.FindOneAndUpdate().SetUpsert(true),
	)

	if result.Err() != nil && result.Err() != mongo.ErrNoDocuments {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to add item to cart"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item added to cart"})
}

// GetCart retrieves the user's cart
func GetCart(c echo.Context) error {
	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	collection := database.DB.Collection(database.ColCarts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cart models.Cart
	err := collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Cart not found"})
	}

	return c.JSON(http.StatusOK, cart)
}

// RemoveFromCart removes an item from the cart
func RemoveFromCart(c echo.Context) error {
	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	collection := database.DB.Collection(database.ColCarts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product": productID},
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"user": userID}, update)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to remove item"})
	}

	if result.ModifiedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found in cart"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// UpdateCartItemQuantity updates the quantity of an item in the cart
func UpdateCartItemQuantity(c echo.Context) error {
	var req struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Quantity must be at least 1"})
	}

	userID := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	productID, err := primitive.ObjectIDFromHex(req.Product)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	collection := database.DB.Collection(database.ColCarts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": req.Quantity,
			"updatedAt":              time.Now(),
		},
	}

	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product": productID},
		},
	}

	result, err := collection.UpdateOne(
		ctx,
		bson.M{"user": userID},
		update,
		options.Update().SetArrayFilters(arrayFilters),
	)

	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update quantity"})
	}

	if result.ModifiedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found in cart"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Quantity updated successfully"})
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/herbtrade/herbtrade-backend-go/handlers"
	customMiddleware "github.com/herbtrade/herbtrade-backend-go/middleware"
	"github.com/herbtrade/herbtrade-backend-go/models"
)

func SetupRoutes(e *echo.Echo) {
	e.Use(customMiddleware.Metrics)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public routes
	auth := e.Group("/auth")
	auth.POST("/register", handlers.Register)
	auth.POST("/login", handlers.Login)
	auth.POST("/forgot-password", handlers.ForgotPassword)
	auth.POST("/reset-password", handlers.ResetPassword)

	e.GET("/products", handlers.GetProducts)
	e.GET("/products/:id", handlers.GetProduct)

	// Authenticated routes (any principal)
	authed := e.Group("", customMiddleware.Authenticate)
	authed.GET("/auth/profile", handlers.GetProfile)
	authed.PATCH("/auth/profile", handlers.UpdateProfile)
	authed.PATCH("/auth/update-password", handlers.UpdatePassword)

	authed.GET("/cart", handlers.GetCart)
	authed.POST("/cart", handlers.AddToCart)
	authed.PUT("/cart/quantity", handlers.UpdateCartItemQuantity)
	authed.DELETE("/cart/:productId", handlers.RemoveFromCart)

	authed.POST("/orders", handlers.CreateOrder)
	authed.GET("/orders/my-orders", handlers.MyOrders)
	authed.GET("/orders/:id", handlers.GetOrder)
	authed.PATCH("/orders/:id/cancel", handlers.CancelOrder)

	// Product management for sellers and admins
	catalog := e.Group("/products", customMiddleware.Authenticate,
		customMiddleware.RequireRoles(models.RoleSeller, models.RoleAdmin))
	catalog.POST("", handlers.CreateProduct)
	catalog.PUT("/:id", handlers.UpdateProduct)
	catalog.DELETE("/:id", handlers.DeleteProduct)

	// Admin surface, including delivery assignment
	admin := e.Group("/admin", customMiddleware.Authenticate,
		customMiddleware.RequireRoles(models.RoleAdmin))
	admin.POST("/add-employee", handlers.AddEmployee)
	admin.POST("/add-delivery", handlers.AddDeliveryAgent)
	admin.GET("/employees", handlers.ListEmployees)
	admin.GET("/delivery-agents", handlers.ListDeliveryAgents)
	admin.PATCH("/employees/:id/deactivate", handlers.DeactivateEmployee)
	admin.GET("/stats", handlers.Stats)
	admin.GET("/orders", handlers.ListOrders)
	admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus)
	admin.GET("/orders/:id/nearest-deliveries", handlers.NearestDeliveries)
	admin.POST("/orders/:id/auto-assign-delivery", handlers.AutoAssignDelivery)
	admin.POST("/orders/:id/assign-delivery", handlers.AssignDelivery)

	// Delivery agent surface
	delivery := e.Group("/delivery", customMiddleware.Authenticate,
		customMiddleware.RequireRoles(models.RoleDelivery))
	delivery.GET("/orders", handlers.AssignedOrders)
	delivery.GET("/orders/available", handlers.AvailableOrders)
	delivery.POST("/orders/:id/claim", handlers.ClaimOrder)
	delivery.PUT("/orders/:id/status", handlers.UpdateDeliveryStatus)
	delivery.PUT("/location", handlers.UpdateLocation)
	delivery.PUT("/availability", handlers.ToggleAvailability)
	delivery.GET("/profile", handlers.DeliveryProfile)
	delivery.PUT("/profile", handlers.UpdateDeliveryProfile)
}

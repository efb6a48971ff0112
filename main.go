package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/herbtrade/herbtrade-backend-go/config"
	"github.com/herbtrade/herbtrade-backend-go/database"
	"github.com/herbtrade/herbtrade-backend-go/handlers"
	"github.com/herbtrade/herbtrade-backend-go/routes"
	"github.com/herbtrade/herbtrade-backend-go/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Connect to MongoDB
	if err := database.ConnectDB(cfg.MongoURI, cfg.DBName); err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to create indexes")
	}

	handlers.InitMailer(utils.NewEmailService(cfg))

	// Setup routes
	routes.SetupRoutes(e)

	logrus.WithField("port", cfg.Port).Info("server starting")
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

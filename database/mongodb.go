package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used throughout the handlers.
const (
	ColUsers          = "users"
	ColSellers        = "sellers"
	ColProducts       = "products"
	ColCarts          = "carts"
	ColOrders         = "orders"
	ColPasswordResets = "password_resets"
)

var DB *mongo.Database

func ConnectDB(mongoURI, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return err
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return err
	}

	DB = client.Database(dbName)
	logrus.WithField("db", dbName).Info("connected to MongoDB")
	return nil
}

// EnsureIndexes creates the indexes the application relies on: unique
// emails per principal collection, a 2dsphere index on delivery-agent
// locations and a TTL index that expires password-reset tickets.
func EnsureIndexes(ctx context.Context) error {
	_, err := DB.Collection(ColUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = DB.Collection(ColSellers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "currentLocation", Value: "2dsphere"}},
		},
	})
	if err != nil {
		return err
	}

	_, err = DB.Collection(ColPasswordResets).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

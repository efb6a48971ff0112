package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herbtrade/herbtrade-backend-go/database"
	"github.com/herbtrade/herbtrade-backend-go/models"
	"github.com/herbtrade/herbtrade-backend-go/utils"
)

// Context keys set by Authenticate.
const (
	CtxPrincipalID = "principalID"
	CtxRole        = "role"
	CtxCollection  = "collection"
	CtxPrincipal   = "principal"
)

// Authenticate extracts the bearer token, verifies it and resolves the
// principal from the collection named in the claims. The resolved record
// (minus its password hash) is attached to the request context. A token
// whose principal has been deactivated or deleted is rejected the same way
// as a bad token.
func Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No token, authorization denied"})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authorization header format"})
		}

		claims, err := utils.ValidateJWT(tokenParts[1])
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		id, err := primitive.ObjectIDFromHex(claims.ID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		noPassword := options.FindOne().SetProjection(bson.M{"password": 0})
		filter := bson.M{"_id": id, "isActive": true}

		var role string
		var principal interface{}
		if claims.Collection == database.ColSellers {
			var seller models.Seller
			err = database.DB.Collection(database.ColSellers).FindOne(c.Request().Context(), filter, noPassword).Decode(&seller)
			role, principal = seller.Role, seller
		} else {
			var user models.User
			err = database.DB.Collection(database.ColUsers).FindOne(c.Request().Context(), filter, noPassword).Decode(&user)
			role, principal = user.Role, user
		}
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token is not valid"})
		}

		c.Set(CtxPrincipalID, id)
		c.Set(CtxRole, role)
		c.Set(CtxCollection, claims.Collection)
		c.Set(CtxPrincipal, principal)
		return next(c)
	}
}

// RequireRoles gates a route group to the given roles. It replaces the
// per-handler role checks the admin and delivery surfaces would otherwise
// repeat.
func RequireRoles(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
			}
			for _, r := range allowed {
				if r == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
		}
	}
}

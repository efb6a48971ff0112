package handlers

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/herbtrade/herbtrade-backend-go/config"
	"github.com/herbtrade/herbtrade-backend-go/database"
	"github.com/herbtrade/herbtrade-backend-go/middleware"
	"github.com/herbtrade/herbtrade-backend-go/models"
	"github.com/herbtrade/herbtrade-backend-go/utils"
)

var mailer *utils.EmailService

// InitMailer wires the shared email service used by auth and admin flows.
func InitMailer(m *utils.EmailService) {
	mailer = m
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// emailTaken checks both principal collections. Email uniqueness is
// enforced across users and sellers so a login attempt can never resolve
// to two different accounts.
func emailTaken(ctx context.Context, email string) (bool, error) {
	for _, col := range []string{database.ColUsers, database.ColSellers} {
		err := database.DB.Collection(col).FindOne(ctx, bson.M{"email": email}).Err()
		if err == nil {
			return true, nil
		}
		if err != mongo.ErrNoDocuments {
			return false, err
		}
	}
	return false, nil
}

// Register creates a customer account.
func Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	taken, err := emailTaken(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}
	if taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already exists"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process password"})
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if _, err := database.DB.Collection(database.ColUsers).InsertOne(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "User registered", "user": user})
}

// Login authenticates against the users collection first, then sellers.
// The issued token records which collection the principal came from.
func Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection(database.ColUsers).FindOne(ctx, bson.M{"email": req.Email, "isActive": true}).Decode(&user)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		}
		token, err := utils.GenerateJWT(user.ID.Hex(), user.Role, database.ColUsers, utils.SessionTokenTTL)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
		}
		user.Password = ""
		return c.JSON(http.StatusOK, map[string]interface{}{"message": "Login successful", "token": token, "user": user})
	}
	if err != mongo.ErrNoDocuments {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log in"})
	}

	var seller models.Seller
	err = database.DB.Collection(database.ColSellers).FindOne(ctx, bson.M{"email": req.Email, "isActive": true}).Decode(&seller)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}
	if bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	now := time.Now()
	_, err = database.DB.Collection(database.ColSellers).UpdateOne(ctx,
		bson.M{"_id": seller.ID},
		bson.M{"$set": bson.M{"lastLogin": now, "isFirstLogin": false}},
	)
	if err != nil {
		logrus.WithError(err).Warn("failed to record staff login time")
	}

	token, err := utils.GenerateJWT(seller.ID.Hex(), seller.Role, database.ColSellers, utils.SessionTokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	seller.Password = ""
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Login successful", "token": token, "user": seller})
}

// GetProfile returns the authenticated principal.
func GetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, c.Get(middleware.CtxPrincipal))
}

// UpdateProfile updates the caller's own name, phone and picture.
func UpdateProfile(c echo.Context) error {
	var req struct {
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		ProfilePic string `json:"profilePic"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	id := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	col := c.Get(middleware.CtxCollection).(string)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{}
	if req.Name != "" {
		update["name"] = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.ProfilePic != "" {
		update["profilePic"] = req.ProfilePic
	}
	if len(update) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nothing to update"})
	}

	_, err := database.DB.Collection(col).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated"})
}

// UpdatePassword changes the caller's password after verifying the current
// one.
func UpdatePassword(c echo.Context) error {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "All fields are required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	id := c.Get(middleware.CtxPrincipalID).(primitive.ObjectID)
	col := c.Get(middleware.CtxCollection).(string)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Re-read with the hash; the context principal was loaded without it.
	var record struct {
		Password string `bson:"password"`
	}
	err := database.DB.Collection(col).FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	if bcrypt.CompareHashAndPassword([]byte(record.Password), []byte(req.CurrentPassword)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process password"})
	}
	_, err = database.DB.Collection(col).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": string(hash)}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update password"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}

// ForgotPassword issues a short-lived reset ticket and mails its link.
// Mail delivery is best-effort; the response does not depend on it.
func ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := ""
	if err := database.DB.Collection(database.ColUsers).FindOne(ctx, bson.M{"email": req.Email}).Err(); err == nil {
		collection = database.ColUsers
	} else if err := database.DB.Collection(database.ColSellers).FindOne(ctx, bson.M{"email": req.Email}).Err(); err == nil {
		collection = database.ColSellers
	}
	if collection == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Email does not exist"})
	}

	ticket := models.PasswordResetTicket{
		Token:      uuid.NewString(),
		Email:      req.Email,
		Collection: collection,
		ExpiresAt:  time.Now().Add(utils.ResetTokenTTL),
	}
	if _, err := database.DB.Collection(database.ColPasswordResets).InsertOne(ctx, ticket); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create reset token"})
	}

	mailer.SendPasswordReset(req.Email, config.Get().FrontendURL, ticket.Token)
	return c.JSON(http.StatusOK, map[string]string{"message": "A reset link has been sent to your email."})
}

// ResetPassword consumes a reset ticket and sets the new password.
func ResetPassword(c echo.Context) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// TTL deletion runs on mongo's own schedule, so the expiry is checked
	// here as well.
	var ticket models.PasswordResetTicket
	err := database.DB.Collection(database.ColPasswordResets).FindOneAndDelete(ctx, bson.M{"token": req.Token}).Decode(&ticket)
	if err != nil || ticket.ExpiresAt.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired token"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process password"})
	}

	res, err := database.DB.Collection(ticket.Collection).UpdateOne(ctx,
		bson.M{"email": ticket.Email},
		bson.M{"$set": bson.M{"password": string(hash)}},
	)
	if err != nil || res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password has been reset"})
}

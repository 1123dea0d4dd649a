package service

import (
	"errors"
	"log"
	"time"

	"porthound/database"
	"porthound/models"
	"porthound/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

// Login authenticates user and returns JWT token
func (s *UserService) Login(username, password string) (string, *models.User, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionUsers)

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		log.Printf("[Login] User not found: %s", username)
		return "", nil, errors.New("invalid username or password")
	}

	if !utils.CheckPassword(password, user.Password) {
		log.Printf("[Login] Password check failed for user: %s", username)
		return "", nil, errors.New("invalid username or password")
	}

	if user.Status != 1 {
		return "", nil, errors.New("user is disabled")
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Username, user.Role)
	if err != nil {
		return "", nil, errors.New("failed to generate token")
	}

	_, _ = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"last_login": time.Now()},
	})

	return token, &user, nil
}

// GetUserByID retrieves user by ID
func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	collection := database.GetCollection(models.CollectionUsers)

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		return nil, errors.New("user not found")
	}

	return &user, nil
}

// ChangePassword changes user password
func (s *UserService) ChangePassword(userID, oldPassword, newPassword string) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user ID")
	}

	collection := database.GetCollection(models.CollectionUsers)

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		return errors.New("user not found")
	}

	if !utils.CheckPassword(oldPassword, user.Password) {
		return errors.New("old password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return errors.New("failed to hash password")
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{
			"password":   hashedPassword,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return errors.New("failed to update password")
	}

	return nil
}

// InitAdmin creates default admin user if not exists
func (s *UserService) InitAdmin() error {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionUsers)

	var admin models.User
	err := collection.FindOne(ctx, bson.M{"username": "admin"}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		hashedPassword, hashErr := utils.HashPassword("admin123")
		if hashErr != nil {
			return hashErr
		}

		adminUser := &models.User{
			ID:        primitive.NewObjectID(),
			Username:  "admin",
			Password:  hashedPassword,
			Email:     "admin@localhost",
			Role:      "admin",
			Status:    1,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if _, err := collection.InsertOne(ctx, adminUser); err != nil {
			return errors.New("failed to create admin user")
		}
		log.Printf("[InitAdmin] Admin user created with default password, change it after first login")
	}

	return nil
}

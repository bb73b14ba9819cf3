package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/accident-recon-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database
type UserDatabase interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindActive(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, u models.User) error
	Update(ctx context.Context, u models.User) (models.User, error)
}

type userDatabase struct {
	records records[models.User]
}

// NewUserDatabase initializes a new instance of user database with the provided store
func NewUserDatabase(store Store) UserDatabase {
	return &userDatabase{
		records: newRecords[models.User](store, userName, "user"),
	}
}

func (u *userDatabase) FindByID(ctx context.Context, id string) (models.User, error) {
	return u.records.get(ctx, id)
}

// FindByEmail is case-insensitive; emails are stored lower-cased
func (u *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.records.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (u *userDatabase) FindActive(ctx context.Context) ([]models.User, error) {
	return u.records.find(ctx, bson.M{"isActive": true}, recentFirst())
}

func (u *userDatabase) Insert(ctx context.Context, user models.User) error {
	return u.records.insert(ctx, user.ID, user)
}

// Update writes user if its version is still current and returns the stored copy
func (u *userDatabase) Update(ctx context.Context, user models.User) (models.User, error) {
	expected := user.Version
	user.Version++
	if err := u.records.replace(ctx, user.ID, expected, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

package mongo

import (
	"context"
	"errors"

	"github.com/boddenberg/strike-crm/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.exec(ctx, usersCollection, "CreateUser", func(ctx context.Context) error {
		_, err := s.db.Collection(usersCollection).InsertOne(ctx, newUserDocument(user))
		if driver.IsDuplicateKeyError(err) {
			return &domain.ErrConflict{Message: "Email already registered"}
		}
		return err
	})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.exec(ctx, usersCollection, "GetUserByEmail", func(ctx context.Context) error {
		var doc userDocument
		err := s.db.Collection(usersCollection).FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}
		user = doc.toDomain()
		return nil
	})
	return user, err
}

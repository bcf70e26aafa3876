package mongo

import (
	"context"
	"errors"

	"github.com/boddenberg/strike-crm/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
)

// ReplaceBusinessCard removes every card of the owner, then inserts the new
// one. The two writes are not atomic; a concurrent reader may briefly see none.
func (s *Store) ReplaceBusinessCard(ctx context.Context, card *domain.BusinessCard) error {
	return s.exec(ctx, cardsCollection, "ReplaceBusinessCard", func(ctx context.Context) error {
		coll := s.db.Collection(cardsCollection)
		if _, err := coll.DeleteMany(ctx, bson.D{{Key: "user_id", Value: card.UserID}}); err != nil {
			return err
		}
		_, err := coll.InsertOne(ctx, newBusinessCardDocument(card))
		return err
	})
}

func (s *Store) GetBusinessCard(ctx context.Context, ownerID string) (*domain.BusinessCard, error) {
	var card *domain.BusinessCard
	err := s.exec(ctx, cardsCollection, "GetBusinessCard", func(ctx context.Context) error {
		var doc businessCardDocument
		err := s.db.Collection(cardsCollection).FindOne(ctx, bson.D{{Key: "user_id", Value: ownerID}}).Decode(&doc)
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}
		card = doc.toDomain()
		return nil
	})
	return card, err
}

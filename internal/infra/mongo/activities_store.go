package mongo

import (
	"context"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// newestFirst breaks created_at ties (millisecond precision) by id.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (s *Store) activities() *driver.Collection {
	return s.db.Collection(activitiesCollection)
}

func (s *Store) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	return s.exec(ctx, activitiesCollection, "CreateActivity", func(ctx context.Context) error {
		_, err := s.activities().InsertOne(ctx, newActivityDocument(activity))
		return err
	})
}

func (s *Store) ListActivitiesForLead(ctx context.Context, ownerID, leadID string, limit int) ([]domain.Activity, error) {
	filter := bson.D{
		{Key: "lead_id", Value: leadID},
		{Key: "user_id", Value: ownerID},
	}
	return s.findActivities(ctx, "ListActivitiesForLead", filter, limit)
}

func (s *Store) RecentActivities(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	return s.findActivities(ctx, "RecentActivities", bson.D{{Key: "user_id", Value: ownerID}}, limit)
}

func (s *Store) findActivities(ctx context.Context, op string, filter bson.D, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := s.exec(ctx, activitiesCollection, op, func(ctx context.Context) error {
		cur, err := s.activities().Find(ctx, filter,
			options.Find().SetSort(newestFirst).SetLimit(int64(limit)),
		)
		if err != nil {
			return err
		}
		var docs []activityDocument
		if err := cur.All(ctx, &docs); err != nil {
			return err
		}
		activities = make([]domain.Activity, 0, len(docs))
		for _, d := range docs {
			activities = append(activities, d.toDomain())
		}
		return nil
	})
	return activities, err
}

func (s *Store) CountActivitiesSince(ctx context.Context, ownerID, activityType string, since time.Time) (int64, error) {
	filter := bson.D{
		{Key: "user_id", Value: ownerID},
		{Key: "activity_type", Value: activityType},
		{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}

	var n int64
	err := s.exec(ctx, activitiesCollection, "CountActivitiesSince", func(ctx context.Context) error {
		var err error
		n, err = s.activities().CountDocuments(ctx, filter)
		return err
	})
	return n, err
}

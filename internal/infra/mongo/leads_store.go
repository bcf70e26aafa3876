package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (s *Store) leads() *driver.Collection {
	return s.db.Collection(leadsCollection)
}

func (s *Store) CreateLead(ctx context.Context, lead *domain.Lead) error {
	return s.exec(ctx, leadsCollection, "CreateLead", func(ctx context.Context) error {
		_, err := s.leads().InsertOne(ctx, newLeadDocument(lead))
		return err
	})
}

func (s *Store) ListLeads(ctx context.Context, ownerID string, limit int) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := s.exec(ctx, leadsCollection, "ListLeads", func(ctx context.Context) error {
		cur, err := s.leads().Find(ctx,
			bson.D{{Key: "user_id", Value: ownerID}},
			options.Find().SetLimit(int64(limit)),
		)
		if err != nil {
			return err
		}
		var docs []leadDocument
		if err := cur.All(ctx, &docs); err != nil {
			return err
		}
		leads = make([]domain.Lead, 0, len(docs))
		for _, d := range docs {
			leads = append(leads, d.toDomain())
		}
		return nil
	})
	return leads, err
}

func (s *Store) GetLead(ctx context.Context, ownerID, leadID string) (*domain.Lead, error) {
	var lead *domain.Lead
	err := s.exec(ctx, leadsCollection, "GetLead", func(ctx context.Context) error {
		var doc leadDocument
		err := s.leads().FindOne(ctx, ownedBy(ownerID, leadID)).Decode(&doc)
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}
		l := doc.toDomain()
		lead = &l
		return nil
	})
	return lead, err
}

func (s *Store) ReplaceLead(ctx context.Context, ownerID, leadID string, in *domain.LeadInput) (*domain.Lead, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: in.Name},
		{Key: "company", Value: in.Company},
		{Key: "phone", Value: in.Phone},
		{Key: "email", Value: in.Email},
		{Key: "address", Value: in.Address},
		{Key: "stage", Value: in.Stage},
		{Key: "priority", Value: in.Priority},
		{Key: "notes", Value: in.Notes},
	}}}

	var lead *domain.Lead
	err := s.exec(ctx, leadsCollection, "ReplaceLead", func(ctx context.Context) error {
		var doc leadDocument
		err := s.leads().FindOneAndUpdate(ctx, ownedBy(ownerID, leadID), update,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}
		l := doc.toDomain()
		lead = &l
		return nil
	})
	return lead, err
}

func (s *Store) SetLeadStage(ctx context.Context, ownerID, leadID, stage string, at time.Time) (bool, error) {
	return s.updateLead(ctx, "SetLeadStage", ownerID, leadID, bson.D{
		{Key: "stage", Value: stage},
		{Key: "last_interaction", Value: at},
	})
}

func (s *Store) TouchLead(ctx context.Context, ownerID, leadID string, at time.Time) (bool, error) {
	return s.updateLead(ctx, "TouchLead", ownerID, leadID, bson.D{
		{Key: "last_interaction", Value: at},
	})
}

func (s *Store) updateLead(ctx context.Context, op, ownerID, leadID string, set bson.D) (bool, error) {
	var matched bool
	err := s.exec(ctx, leadsCollection, op, func(ctx context.Context) error {
		res, err := s.leads().UpdateOne(ctx, ownedBy(ownerID, leadID), bson.D{{Key: "$set", Value: set}})
		if err != nil {
			return err
		}
		matched = res.MatchedCount > 0
		return nil
	})
	return matched, err
}

func (s *Store) DeleteLead(ctx context.Context, ownerID, leadID string) (bool, error) {
	var deleted bool
	err := s.exec(ctx, leadsCollection, "DeleteLead", func(ctx context.Context) error {
		res, err := s.leads().DeleteOne(ctx, ownedBy(ownerID, leadID))
		if err != nil {
			return err
		}
		deleted = res.DeletedCount > 0
		return nil
	})
	return deleted, err
}

// CountLeadsByStage groups the owner's leads by stage in a single aggregation.
func (s *Store) CountLeadsByStage(ctx context.Context, ownerID string) (map[string]int64, error) {
	pipeline := driver.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$stage"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	counts := make(map[string]int64)
	err := s.exec(ctx, leadsCollection, "CountLeadsByStage", func(ctx context.Context) error {
		cur, err := s.leads().Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		var rows []struct {
			Stage string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.All(ctx, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			counts[r.Stage] = r.Count
		}
		return nil
	})
	return counts, err
}

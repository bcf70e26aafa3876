package mongo

import (
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
)

// Documents mirror the stored shape. Optional fields are stored as null.

type userDocument struct {
	ID             string    `bson:"_id"`
	Email          string    `bson:"email"`
	Name           string    `bson:"name"`
	Company        *string   `bson:"company"`
	HashedPassword string    `bson:"hashed_password"`
	CreatedAt      time.Time `bson:"created_at"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Company:        u.Company,
		HashedPassword: u.PasswordHash,
		CreatedAt:      u.CreatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		Company:      d.Company,
		PasswordHash: d.HashedPassword,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type leadDocument struct {
	ID              string     `bson:"_id"`
	Name            string     `bson:"name"`
	Company         *string    `bson:"company"`
	Phone           *string    `bson:"phone"`
	Email           *string    `bson:"email"`
	Address         *string    `bson:"address"`
	Stage           string     `bson:"stage"`
	Priority        string     `bson:"priority"`
	Notes           *string    `bson:"notes"`
	UserID          string     `bson:"user_id"`
	CreatedAt       time.Time  `bson:"created_at"`
	LastInteraction *time.Time `bson:"last_interaction"`
}

func newLeadDocument(l *domain.Lead) leadDocument {
	return leadDocument{
		ID:              l.ID,
		Name:            l.Name,
		Company:         l.Company,
		Phone:           l.Phone,
		Email:           l.Email,
		Address:         l.Address,
		Stage:           l.Stage,
		Priority:        l.Priority,
		Notes:           l.Notes,
		UserID:          l.UserID,
		CreatedAt:       l.CreatedAt,
		LastInteraction: l.LastInteraction,
	}
}

func (d leadDocument) toDomain() domain.Lead {
	l := domain.Lead{
		ID:        d.ID,
		Name:      d.Name,
		Company:   d.Company,
		Phone:     d.Phone,
		Email:     d.Email,
		Address:   d.Address,
		Stage:     d.Stage,
		Priority:  d.Priority,
		Notes:     d.Notes,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.LastInteraction != nil {
		t := d.LastInteraction.UTC()
		l.LastInteraction = &t
	}
	return l
}

type activityDocument struct {
	ID           string    `bson:"_id"`
	LeadID       string    `bson:"lead_id"`
	ActivityType string    `bson:"activity_type"`
	Content      string    `bson:"content"`
	Outcome      *string   `bson:"outcome"`
	Duration     *int      `bson:"duration"`
	UserID       string    `bson:"user_id"`
	CreatedAt    time.Time `bson:"created_at"`
}

func newActivityDocument(a *domain.Activity) activityDocument {
	return activityDocument{
		ID:           a.ID,
		LeadID:       a.LeadID,
		ActivityType: a.ActivityType,
		Content:      a.Content,
		Outcome:      a.Outcome,
		Duration:     a.Duration,
		UserID:       a.UserID,
		CreatedAt:    a.CreatedAt,
	}
}

func (d activityDocument) toDomain() domain.Activity {
	return domain.Activity{
		ID:           d.ID,
		LeadID:       d.LeadID,
		ActivityType: d.ActivityType,
		Content:      d.Content,
		Outcome:      d.Outcome,
		Duration:     d.Duration,
		UserID:       d.UserID,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type businessCardDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Title     string    `bson:"title"`
	Company   string    `bson:"company"`
	Phone     string    `bson:"phone"`
	Email     string    `bson:"email"`
	Website   *string   `bson:"website"`
	Template  string    `bson:"template"`
	QRCode    *string   `bson:"qr_code"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func newBusinessCardDocument(c *domain.BusinessCard) businessCardDocument {
	return businessCardDocument{
		ID:        c.ID,
		Name:      c.Name,
		Title:     c.Title,
		Company:   c.Company,
		Phone:     c.Phone,
		Email:     c.Email,
		Website:   c.Website,
		Template:  c.Template,
		QRCode:    c.QRCode,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
	}
}

func (d businessCardDocument) toDomain() *domain.BusinessCard {
	return &domain.BusinessCard{
		ID:        d.ID,
		Name:      d.Name,
		Title:     d.Title,
		Company:   d.Company,
		Phone:     d.Phone,
		Email:     d.Email,
		Website:   d.Website,
		Template:  d.Template,
		QRCode:    d.QRCode,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

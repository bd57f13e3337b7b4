package services

import (
	"context"

	"contactbook/models"
)

type ContactInput struct {
	Name  string
	Email string
	Phone string
}

// ContactUpdate carries replacement values; nil means "not provided", never
// "clear the field".
type ContactUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

func (u ContactUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}

// ContactStore is the owner-scoped contact contract shared by both backends.
// Every lookup and mutation matches (id, owner) jointly: a contact id alone
// never resolves across owners, and an ownership mismatch is reported
// identically to absence.
type ContactStore interface {
	List(ctx context.Context, owner string) ([]models.Contact, error)
	Get(ctx context.Context, id, owner string) (*models.Contact, error)
	Create(ctx context.Context, owner string, in ContactInput) (*models.Contact, error)
	Update(ctx context.Context, id, owner string, in ContactUpdate) (*models.Contact, error)
	SetFavorite(ctx context.Context, id, owner string, favorite bool) (*models.Contact, error)
	// Delete returns the removed record for confirmation.
	Delete(ctx context.Context, id, owner string) (*models.Contact, error)
}

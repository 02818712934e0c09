package repo

import (
	"context"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/database"
)

// IContactRepository contact repository interface
type IContactRepository interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
	ListByOwner(ctx context.Context, ownerHouseholdId string) ([]model.Contact, error)
	ListByContactIds(ctx context.Context, ownerHouseholdId string, contactIds []string) ([]model.Contact, error)
	ListWatcherHouseholdIds(ctx context.Context, householdId string) ([]string, error)
}

type ContactRepo struct {
	database.IDatabase
}

func NewContactRepo(db database.IDatabase) IContactRepository {
	return &ContactRepo{
		IDatabase: db,
	}
}

// CreateContact creates a new contact
func (r *ContactRepo) CreateContact(ctx context.Context, contact *model.Contact) error {
	return r.Database().WithContext(ctx).Table(contact.TableName()).Create(contact).Error
}

// ListByOwner lists all contacts owned by a household
func (r *ContactRepo) ListByOwner(ctx context.Context, ownerHouseholdId string) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.Database().WithContext(ctx).
		Table(model.Contact{}.TableName()).
		Where("owner_household_id = ?", ownerHouseholdId).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// ListByContactIds lists a household's contacts by contact ids
func (r *ContactRepo) ListByContactIds(ctx context.Context, ownerHouseholdId string, contactIds []string) ([]model.Contact, error) {
	if len(contactIds) == 0 {
		return nil, nil
	}
	var contacts []model.Contact
	err := r.Database().WithContext(ctx).
		Table(model.Contact{}.TableName()).
		Where("owner_household_id = ? AND contact_id IN ?", ownerHouseholdId, contactIds).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// ListWatcherHouseholdIds resolves the distinct set of households holding the
// given household as a linked contact. DISTINCT collapses duplicate contact
// rows pointing at the same household, so each watcher is notified once.
func (r *ContactRepo) ListWatcherHouseholdIds(ctx context.Context, householdId string) ([]string, error) {
	var watcherIds []string
	err := r.Database().WithContext(ctx).
		Table(model.Contact{}.TableName()).
		Distinct("owner_household_id").
		Where("linked_household_id = ?", householdId).
		Pluck("owner_household_id", &watcherIds).Error
	if err != nil {
		return nil, err
	}
	return watcherIds, nil
}

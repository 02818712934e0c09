package repo

import (
	"context"
	"errors"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/database"
	"gorm.io/gorm"
)

// ICircleRepository circle repository interface
type ICircleRepository interface {
	CreateCircle(ctx context.Context, circle *model.Circle, members []model.CircleMember) error
	GetByCircleId(ctx context.Context, circleId string) (*model.Circle, error)
	ListByOwner(ctx context.Context, ownerHouseholdId string) ([]model.Circle, error)
	ListContactIds(ctx context.Context, circleId string) ([]string, error)
	AddMember(ctx context.Context, member *model.CircleMember) error
}

type CircleRepo struct {
	database.IDatabase
}

func NewCircleRepo(db database.IDatabase) ICircleRepository {
	return &CircleRepo{
		IDatabase: db,
	}
}

// CreateCircle creates a circle and its member rows in one transaction
func (r *CircleRepo) CreateCircle(ctx context.Context, circle *model.Circle, members []model.CircleMember) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(circle.TableName()).Create(circle).Error; err != nil {
			return err
		}
		if len(members) > 0 {
			if err := tx.Table(model.CircleMember{}.TableName()).Create(&members).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByCircleId retrieves a circle by circle_id
func (r *CircleRepo) GetByCircleId(ctx context.Context, circleId string) (*model.Circle, error) {
	var circle model.Circle
	err := r.Database().WithContext(ctx).
		Table(circle.TableName()).
		Where("circle_id = ?", circleId).
		First(&circle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &circle, nil
}

// ListByOwner lists all circles owned by a household
func (r *CircleRepo) ListByOwner(ctx context.Context, ownerHouseholdId string) ([]model.Circle, error) {
	var circles []model.Circle
	err := r.Database().WithContext(ctx).
		Table(model.Circle{}.TableName()).
		Where("owner_household_id = ?", ownerHouseholdId).
		Find(&circles).Error
	if err != nil {
		return nil, err
	}
	return circles, nil
}

// ListContactIds lists the contact ids belonging to a circle
func (r *CircleRepo) ListContactIds(ctx context.Context, circleId string) ([]string, error) {
	var contactIds []string
	err := r.Database().WithContext(ctx).
		Table(model.CircleMember{}.TableName()).
		Where("circle_id = ?", circleId).
		Pluck("contact_id", &contactIds).Error
	if err != nil {
		return nil, err
	}
	return contactIds, nil
}

// AddMember adds a contact to a circle
func (r *CircleRepo) AddMember(ctx context.Context, member *model.CircleMember) error {
	return r.Database().WithContext(ctx).Table(member.TableName()).Create(member).Error
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/database"
	"gorm.io/gorm"
)

// IHouseholdRepository household repository interface
type IHouseholdRepository interface {
	CreateHousehold(ctx context.Context, household *model.Household) error
	GetByHouseholdId(ctx context.Context, householdId string) (*model.Household, error)
	UpdateStatus(ctx context.Context, householdId, state, note, window string, updatedAt time.Time) error
	CreateMember(ctx context.Context, member *model.HouseholdMember) error
	GetMemberByPhone(ctx context.Context, phone string) (*model.HouseholdMember, error)
	ListMembers(ctx context.Context, householdId string) ([]model.HouseholdMember, error)
}

type HouseholdRepo struct {
	database.IDatabase
}

func NewHouseholdRepo(db database.IDatabase) IHouseholdRepository {
	return &HouseholdRepo{
		IDatabase: db,
	}
}

// CreateHousehold creates a new household
func (r *HouseholdRepo) CreateHousehold(ctx context.Context, household *model.Household) error {
	return r.Database().WithContext(ctx).Table(household.TableName()).Create(household).Error
}

// GetByHouseholdId retrieves a household by household_id
func (r *HouseholdRepo) GetByHouseholdId(ctx context.Context, householdId string) (*model.Household, error) {
	var household model.Household
	err := r.Database().WithContext(ctx).
		Table(household.TableName()).
		Where("household_id = ?", householdId).
		First(&household).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &household, nil
}

// UpdateStatus writes all status columns in a single atomic update.
func (r *HouseholdRepo) UpdateStatus(ctx context.Context, householdId, state, note, window string, updatedAt time.Time) error {
	return r.Database().WithContext(ctx).
		Table(model.Household{}.TableName()).
		Where("household_id = ?", householdId).
		Updates(map[string]any{
			"status_state":      state,
			"status_note":       note,
			"status_window":     window,
			"status_updated_at": updatedAt,
		}).Error
}

// CreateMember creates a new household member
func (r *HouseholdRepo) CreateMember(ctx context.Context, member *model.HouseholdMember) error {
	return r.Database().WithContext(ctx).Table(member.TableName()).Create(member).Error
}

// GetMemberByPhone retrieves a member by phone number
func (r *HouseholdRepo) GetMemberByPhone(ctx context.Context, phone string) (*model.HouseholdMember, error) {
	var member model.HouseholdMember
	err := r.Database().WithContext(ctx).
		Table(member.TableName()).
		Where("phone = ?", phone).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a household
func (r *HouseholdRepo) ListMembers(ctx context.Context, householdId string) ([]model.HouseholdMember, error) {
	var members []model.HouseholdMember
	err := r.Database().WithContext(ctx).
		Table(model.HouseholdMember{}.TableName()).
		Where("household_id = ?", householdId).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

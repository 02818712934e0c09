package repo

import (
	"context"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/database"
	"gorm.io/gorm/clause"
)

// IPushSubscriptionRepository push subscription repository interface
type IPushSubscriptionRepository interface {
	Save(ctx context.Context, sub *model.PushSubscription) error
	ListByHousehold(ctx context.Context, householdId string) ([]model.PushSubscription, error)
	DeleteByToken(ctx context.Context, token string) error
}

type PushSubscriptionRepo struct {
	database.IDatabase
}

func NewPushSubscriptionRepo(db database.IDatabase) IPushSubscriptionRepository {
	return &PushSubscriptionRepo{
		IDatabase: db,
	}
}

// Save upserts a subscription by provider token
func (r *PushSubscriptionRepo) Save(ctx context.Context, sub *model.PushSubscription) error {
	return r.Database().WithContext(ctx).
		Table(sub.TableName()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"household_id", "member_id", "payload"}),
		}).
		Create(sub).Error
}

// ListByHousehold lists all subscriptions of a household
func (r *PushSubscriptionRepo) ListByHousehold(ctx context.Context, householdId string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := r.Database().WithContext(ctx).
		Table(model.PushSubscription{}.TableName()).
		Where("household_id = ?", householdId).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteByToken removes a subscription the provider reported expired
func (r *PushSubscriptionRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.Database().WithContext(ctx).
		Table(model.PushSubscription{}.TableName()).
		Where("token = ?", token).
		Delete(&model.PushSubscription{}).Error
}

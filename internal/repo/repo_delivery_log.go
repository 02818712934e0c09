package repo

import (
	"context"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/database"
)

// IDeliveryLogRepository delivery log repository interface
type IDeliveryLogRepository interface {
	Create(ctx context.Context, log *model.DeliveryLog) error
	ListByInviteId(ctx context.Context, inviteId string) ([]model.DeliveryLog, error)
}

type DeliveryLogRepo struct {
	database.IDatabase
}

func NewDeliveryLogRepo(db database.IDatabase) IDeliveryLogRepository {
	return &DeliveryLogRepo{
		IDatabase: db,
	}
}

func (r *DeliveryLogRepo) Create(ctx context.Context, log *model.DeliveryLog) error {
	return r.Database().WithContext(ctx).
		Table(log.TableName()).
		Create(log).Error
}

// ListByInviteId lists delivery attempts for an invite, newest first
func (r *DeliveryLogRepo) ListByInviteId(ctx context.Context, inviteId string) ([]model.DeliveryLog, error) {
	var logs []model.DeliveryLog
	err := r.Database().WithContext(ctx).
		Table(model.DeliveryLog{}.TableName()).
		Where("invite_id = ?", inviteId).
		Order("create_time DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

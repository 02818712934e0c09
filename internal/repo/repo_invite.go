package repo

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/database"
	"gorm.io/gorm"
)

// IInviteRepository invite repository interface
type IInviteRepository interface {
	CreateInvite(ctx context.Context, invite *model.Invite, recipients []model.InviteRecipient) error
	GetByInviteId(ctx context.Context, inviteId string) (*model.Invite, error)
	UpdateInviteStatus(ctx context.Context, inviteId, status string) error
	ListRecipients(ctx context.Context, inviteId string) ([]model.InviteRecipient, error)
	GetRecipient(ctx context.Context, inviteId, householdId string) (*model.InviteRecipient, error)
	UpdateRecipientResponse(ctx context.Context, inviteId, householdId, response string, respondedAt time.Time) (int64, error)
	ListByFromHousehold(ctx context.Context, householdId string) ([]model.Invite, error)
	ListForRecipient(ctx context.Context, householdId string) ([]model.Invite, error)
}

type InviteRepo struct {
	database.IDatabase
}

func NewInviteRepo(db database.IDatabase) IInviteRepository {
	return &InviteRepo{
		IDatabase: db,
	}
}

// CreateInvite creates the invite and its recipient rows in one transaction
func (r *InviteRepo) CreateInvite(ctx context.Context, invite *model.Invite, recipients []model.InviteRecipient) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(invite.TableName()).Create(invite).Error; err != nil {
			return err
		}
		if len(recipients) > 0 {
			if err := tx.Table(model.InviteRecipient{}.TableName()).Create(&recipients).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByInviteId retrieves an invite by invite_id
func (r *InviteRepo) GetByInviteId(ctx context.Context, inviteId string) (*model.Invite, error) {
	var invite model.Invite
	err := r.Database().WithContext(ctx).
		Table(invite.TableName()).
		Where("invite_id = ?", inviteId).
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

// UpdateInviteStatus updates the invite lifecycle status
func (r *InviteRepo) UpdateInviteStatus(ctx context.Context, inviteId, status string) error {
	return r.Database().WithContext(ctx).
		Table(model.Invite{}.TableName()).
		Where("invite_id = ?", inviteId).
		Update("status", status).Error
}

// ListRecipients lists all recipient rows of an invite
func (r *InviteRepo) ListRecipients(ctx context.Context, inviteId string) ([]model.InviteRecipient, error) {
	var recipients []model.InviteRecipient
	err := r.Database().WithContext(ctx).
		Table(model.InviteRecipient{}.TableName()).
		Where("invite_id = ?", inviteId).
		Find(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

// GetRecipient retrieves one recipient row
func (r *InviteRepo) GetRecipient(ctx context.Context, inviteId, householdId string) (*model.InviteRecipient, error) {
	var recipient model.InviteRecipient
	err := r.Database().WithContext(ctx).
		Table(recipient.TableName()).
		Where("invite_id = ? AND household_id = ?", inviteId, householdId).
		First(&recipient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipient, nil
}

// UpdateRecipientResponse records a recipient's response. The pending guard
// makes the mutation single-shot: a second response affects zero rows.
func (r *InviteRepo) UpdateRecipientResponse(ctx context.Context, inviteId, householdId, response string, respondedAt time.Time) (int64, error) {
	result := r.Database().WithContext(ctx).
		Table(model.InviteRecipient{}.TableName()).
		Where("invite_id = ? AND household_id = ? AND response = ?", inviteId, householdId, model.ResponsePending).
		Updates(map[string]any{
			"response":     response,
			"responded_at": respondedAt,
		})
	return result.RowsAffected, result.Error
}

// ListByFromHousehold lists invites created by a household
func (r *InviteRepo) ListByFromHousehold(ctx context.Context, householdId string) ([]model.Invite, error) {
	var invites []model.Invite
	err := r.Database().WithContext(ctx).
		Table(model.Invite{}.TableName()).
		Where("from_household_id = ?", householdId).
		Order("create_time DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// ListForRecipient lists invites addressed to a household
func (r *InviteRepo) ListForRecipient(ctx context.Context, householdId string) ([]model.Invite, error) {
	var invites []model.Invite
	err := r.Database().WithContext(ctx).
		Table(model.Invite{}.TableName()).
		Joins("JOIN t_invite_recipient ON t_invite_recipient.invite_id = t_invite.invite_id").
		Where("t_invite_recipient.household_id = ?", householdId).
		Order("t_invite.create_time DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/repo"
)

// PushService owns push subscription registration.
type PushService struct {
	pushSubRepo repo.IPushSubscriptionRepository
}

func NewPushService(pushSubRepo repo.IPushSubscriptionRepository) *PushService {
	return &PushService{
		pushSubRepo: pushSubRepo,
	}
}

// Save registers or refreshes a member's push subscription. Upsert by token:
// a device re-registering under a new household moves its subscription.
func (s *PushService) Save(ctx context.Context, householdId, memberId string, req *model.SavePushSubscriptionReq) error {
	if req.Token == "" {
		return errors.New("token is required")
	}
	sub := &model.PushSubscription{
		HouseholdId: householdId,
		MemberId:    memberId,
		Token:       req.Token,
		Payload:     req.Payload,
	}
	if err := s.pushSubRepo.Save(ctx, sub); err != nil {
		return fmt.Errorf("save push subscription: %w", err)
	}
	return nil
}

// Delete removes a subscription, typically on client-side unsubscribe.
func (s *PushService) Delete(ctx context.Context, token string) error {
	return s.pushSubRepo.DeleteByToken(ctx, token)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/pkg/queue"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/pkg/id"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gatherly/gatherly/pkg/safe"
)

var (
	ErrInviteNotFound        = errors.New("invite not found")
	ErrNotARecipient         = errors.New("household is not a recipient of this invite")
	ErrInviteAlreadyAnswered = errors.New("invite already answered")
)

// InviteService owns the invite lifecycle: creation with first-contact
// notification, recipient responses, and tracked redelivery.
type InviteService struct {
	inviteRepo      repo.IInviteRepository
	contactRepo     repo.IContactRepository
	circleRepo      repo.ICircleRepository
	householdRepo   repo.IHouseholdRepository
	deliveryLogRepo repo.IDeliveryLogRepository
	notify          *NotifyService
	delivery        *DeliveryService
	queue           *queue.TaskQueue
}

func NewInviteService(
	inviteRepo repo.IInviteRepository,
	contactRepo repo.IContactRepository,
	circleRepo repo.ICircleRepository,
	householdRepo repo.IHouseholdRepository,
	deliveryLogRepo repo.IDeliveryLogRepository,
	notify *NotifyService,
	delivery *DeliveryService,
	taskQueue *queue.TaskQueue,
) *InviteService {
	return &InviteService{
		inviteRepo:      inviteRepo,
		contactRepo:     contactRepo,
		circleRepo:      circleRepo,
		householdRepo:   householdRepo,
		deliveryLogRepo: deliveryLogRepo,
		notify:          notify,
		delivery:        delivery,
		queue:           taskQueue,
	}
}

// CreateInvite creates the invite and its recipient rows, then dispatches
// first-contact notifications in the background. A recipient row exists iff
// the contact resolved to a linked household; phone-only contacts are reached
// by SMS and tracked through the delivery log alone. Creation succeeds even
// when every notification fails.
func (s *InviteService) CreateInvite(ctx context.Context, fromHouseholdId string, req *model.CreateInviteReq) (*model.InviteDetail, error) {
	contacts, err := s.resolveTargets(ctx, fromHouseholdId, req)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, errors.New("invite needs at least one recipient")
	}

	from, err := s.householdRepo.GetByHouseholdId(ctx, fromHouseholdId)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, errors.New("household not found")
	}

	invite := &model.Invite{
		InviteId:        id.GetUUIDWithoutDashes(),
		FromHouseholdId: fromHouseholdId,
		ActivityType:    req.ActivityType,
		ActivityName:    req.ActivityName,
		Location:        req.Location,
		ProposedDate:    req.ProposedDate,
		ProposedTime:    req.ProposedTime,
		Message:         req.Message,
		Status:          model.InviteStatusPending,
	}

	var recipients []model.InviteRecipient
	seen := make(map[string]struct{})
	for _, contact := range contacts {
		hid := contact.LinkedHouseholdId
		if hid == "" || hid == fromHouseholdId {
			continue
		}
		if _, ok := seen[hid]; ok {
			continue
		}
		seen[hid] = struct{}{}
		recipients = append(recipients, model.InviteRecipient{
			InviteId:    invite.InviteId,
			HouseholdId: hid,
			Response:    model.ResponsePending,
		})
	}

	if err := s.inviteRepo.CreateInvite(ctx, invite, recipients); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	// notification delivery is decoupled from the success of the write
	notifyCtx := context.WithoutCancel(ctx)
	safe.Go(func() {
		s.notify.NotifyNewInvite(notifyCtx, invite, from.Name, contacts)
	})

	return &model.InviteDetail{Invite: *invite, Recipients: recipients}, nil
}

// resolveTargets expands the circle, merges explicit contact ids and
// de-duplicates, all scoped to the requesting household's own contacts.
func (s *InviteService) resolveTargets(ctx context.Context, fromHouseholdId string, req *model.CreateInviteReq) ([]model.Contact, error) {
	contactIds := append([]string{}, req.ContactIds...)
	if req.CircleId != "" {
		circle, err := s.circleRepo.GetByCircleId(ctx, req.CircleId)
		if err != nil {
			return nil, err
		}
		if circle == nil || circle.OwnerHouseholdId != fromHouseholdId {
			return nil, errors.New("circle not found")
		}
		circleContactIds, err := s.circleRepo.ListContactIds(ctx, req.CircleId)
		if err != nil {
			return nil, err
		}
		contactIds = append(contactIds, circleContactIds...)
	}

	seen := make(map[string]struct{}, len(contactIds))
	unique := contactIds[:0]
	for _, cid := range contactIds {
		if _, ok := seen[cid]; ok {
			continue
		}
		seen[cid] = struct{}{}
		unique = append(unique, cid)
	}
	if len(unique) == 0 {
		return nil, nil
	}
	return s.contactRepo.ListByContactIds(ctx, fromHouseholdId, unique)
}

// Respond records a recipient household's answer. The row mutates exactly
// once; a second answer is rejected.
func (s *InviteService) Respond(ctx context.Context, inviteId, householdId, response string) error {
	if response != model.ResponseAccepted && response != model.ResponseDeclined {
		return fmt.Errorf("invalid response: %s", response)
	}

	invite, err := s.inviteRepo.GetByInviteId(ctx, inviteId)
	if err != nil {
		return err
	}
	if invite == nil {
		return ErrInviteNotFound
	}

	recipient, err := s.inviteRepo.GetRecipient(ctx, inviteId, householdId)
	if err != nil {
		return err
	}
	if recipient == nil {
		return ErrNotARecipient
	}

	affected, err := s.inviteRepo.UpdateRecipientResponse(ctx, inviteId, householdId, response, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInviteAlreadyAnswered
	}

	// first acceptance moves the invite itself out of pending
	if response == model.ResponseAccepted && invite.Status == model.InviteStatusPending {
		if err := s.inviteRepo.UpdateInviteStatus(ctx, inviteId, model.InviteStatusConfirmed); err != nil {
			log.Errorw("confirm invite failed", "inviteId", inviteId, "error", err)
		}
	}

	responding, err := s.householdRepo.GetByHouseholdId(ctx, householdId)
	if err != nil || responding == nil {
		log.Errorw("load responding household failed", "householdId", householdId, "error", err)
		responding = &model.Household{HouseholdId: householdId}
	}

	notifyCtx := context.WithoutCancel(ctx)
	safe.Go(func() {
		s.notify.NotifyInviteResponse(notifyCtx, invite, responding, response)
	})
	return nil
}

// Redeliver runs the tracked delivery path for an existing invite, either
// inline or through the background queue when delay is requested.
func (s *InviteService) Redeliver(ctx context.Context, inviteId string, prefs map[string]string, delay time.Duration) (*model.DeliveryOutcome, error) {
	if delay > 0 && s.queue != nil {
		err := s.queue.EnqueueDeliverInvite(ctx, &queue.DeliverInvitePayload{InviteId: inviteId, Prefs: prefs}, delay)
		if err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.deliverNow(ctx, inviteId, prefs)
}

// HandleDeliverTask is the queue handler for invite:deliver tasks.
func (s *InviteService) HandleDeliverTask(ctx context.Context, payload *queue.DeliverInvitePayload) error {
	_, err := s.deliverNow(ctx, payload.InviteId, payload.Prefs)
	return err
}

func (s *InviteService) deliverNow(ctx context.Context, inviteId string, prefs map[string]string) (*model.DeliveryOutcome, error) {
	invite, err := s.inviteRepo.GetByInviteId(ctx, inviteId)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}

	rows, err := s.inviteRepo.ListRecipients(ctx, inviteId)
	if err != nil {
		return nil, err
	}
	householdIds := make([]string, 0, len(rows))
	for _, row := range rows {
		householdIds = append(householdIds, row.HouseholdId)
	}

	recipients, err := s.delivery.ResolveRecipients(ctx, s.householdRepo, householdIds)
	if err != nil {
		return nil, err
	}
	return s.delivery.DeliverInvite(ctx, invite, recipients, prefs), nil
}

// GetInvite loads an invite with its recipient rows.
func (s *InviteService) GetInvite(ctx context.Context, inviteId string) (*model.InviteDetail, error) {
	invite, err := s.inviteRepo.GetByInviteId(ctx, inviteId)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	recipients, err := s.inviteRepo.ListRecipients(ctx, inviteId)
	if err != nil {
		return nil, err
	}
	return &model.InviteDetail{Invite: *invite, Recipients: recipients}, nil
}

// ListSent lists invites created by a household.
func (s *InviteService) ListSent(ctx context.Context, householdId string) ([]model.Invite, error) {
	return s.inviteRepo.ListByFromHousehold(ctx, householdId)
}

// ListReceived lists invites a household is a recipient of.
func (s *InviteService) ListReceived(ctx context.Context, householdId string) ([]model.Invite, error) {
	return s.inviteRepo.ListForRecipient(ctx, householdId)
}

// DeliveryHistory returns the append-only delivery log of an invite.
func (s *InviteService) DeliveryHistory(ctx context.Context, inviteId string) ([]model.DeliveryLog, error) {
	return s.deliveryLogRepo.ListByInviteId(ctx, inviteId)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/pkg/log"
)

// DeliveryService selects a channel per recipient, attempts delivery,
// and classifies every recipient into exactly one of sent, failed or
// pending. One recipient's failure never affects another's outcome.
type DeliveryService struct {
	push            notify.PushSender
	sms             notify.SmsSender
	pushSubRepo     repo.IPushSubscriptionRepository
	deliveryLogRepo repo.IDeliveryLogRepository
}

func NewDeliveryService(
	push notify.PushSender,
	sms notify.SmsSender,
	pushSubRepo repo.IPushSubscriptionRepository,
	deliveryLogRepo repo.IDeliveryLogRepository,
) *DeliveryService {
	return &DeliveryService{
		push:            push,
		sms:             sms,
		pushSubRepo:     pushSubRepo,
		deliveryLogRepo: deliveryLogRepo,
	}
}

// DeliverInvite attempts delivery of invite to every recipient and returns
// the structured outcome. Channel preference defaults to in-app. The outcome
// is appended to the delivery log once per call; a log-write failure is
// logged and does not fail the delivery.
func (s *DeliveryService) DeliverInvite(ctx context.Context, invite *model.Invite, recipients []model.Recipient, prefs map[string]string) *model.DeliveryOutcome {
	outcome := &model.DeliveryOutcome{
		InviteId: invite.InviteId,
		Sent:     []model.SentEntry{},
		Failed:   []model.FailedEntry{},
		Pending:  []model.PendingEntry{},
	}

	body := FormatInviteMessage(invite)
	for _, recipient := range recipients {
		s.deliverOne(ctx, invite, recipient, prefs[recipient.HouseholdId], body, outcome)
	}

	s.appendLog(ctx, outcome)
	deliveryOutcomeObserve(outcome)
	return outcome
}

// deliverOne classifies a single recipient. Panics inside a provider call
// are recovered here and recorded as a failure for this recipient only.
func (s *DeliveryService) deliverOne(ctx context.Context, invite *model.Invite, recipient model.Recipient, pref, body string, outcome *model.DeliveryOutcome) {
	// the channel whose provider call is in flight, for the audit record
	// when that call panics
	var attempting string
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("delivery panic", "inviteId", invite.InviteId, "householdId", recipient.HouseholdId, "channel", attempting, "panic", r)
			outcome.Failed = append(outcome.Failed, model.FailedEntry{
				HouseholdId: recipient.HouseholdId,
				Channel:     attempting,
				Error:       fmt.Sprintf("%v", r),
			})
		}
	}()

	if pref == "" {
		pref = model.PrefInApp
	}

	if pref == model.PrefSms {
		if recipient.Phone == "" {
			outcome.Pending = append(outcome.Pending, model.PendingEntry{
				HouseholdId: recipient.HouseholdId,
				Reason:      model.ReasonNoDeliveryMethod,
			})
			return
		}
		attempting = model.ChannelSms
		s.sendSms(recipient, body, outcome)
		return
	}

	if recipient.PushToken != "" {
		attempting = model.ChannelPush
		result := s.push.SendPush(recipient.PushToken, pushTitle(invite), body, map[string]string{"inviteId": invite.InviteId})
		switch {
		case result.Success:
			outcome.Sent = append(outcome.Sent, model.SentEntry{
				HouseholdId: recipient.HouseholdId,
				Channel:     model.ChannelPush,
				SentAt:      time.Now(),
			})
		case result.Expired:
			s.clearExpiredSubscription(ctx, recipient.PushToken)
			if recipient.Phone != "" {
				attempting = model.ChannelSms
				s.sendSms(recipient, body, outcome)
			} else {
				outcome.Failed = append(outcome.Failed, model.FailedEntry{
					HouseholdId: recipient.HouseholdId,
					Channel:     model.ChannelPush,
					Error:       model.ReasonExpiredNoPhone,
				})
			}
		default:
			outcome.Failed = append(outcome.Failed, model.FailedEntry{
				HouseholdId: recipient.HouseholdId,
				Channel:     model.ChannelPush,
				Error:       result.Error,
			})
		}
		return
	}

	if recipient.Phone != "" {
		attempting = model.ChannelSms
		s.sendSms(recipient, body, outcome)
		return
	}

	outcome.Pending = append(outcome.Pending, model.PendingEntry{
		HouseholdId: recipient.HouseholdId,
		Reason:      model.ReasonNoDeliveryMethod,
	})
}

func (s *DeliveryService) sendSms(recipient model.Recipient, body string, outcome *model.DeliveryOutcome) {
	result := s.sms.SendSms(recipient.Phone, body)
	if result.Success {
		outcome.Sent = append(outcome.Sent, model.SentEntry{
			HouseholdId: recipient.HouseholdId,
			Channel:     model.ChannelSms,
			MessageId:   result.MessageId,
			SentAt:      time.Now(),
		})
		return
	}
	outcome.Failed = append(outcome.Failed, model.FailedEntry{
		HouseholdId: recipient.HouseholdId,
		Channel:     model.ChannelSms,
		Error:       result.Error,
	})
}

// clearExpiredSubscription drops a subscription the provider reported dead.
// Best-effort: a repo error here must not change the delivery outcome.
func (s *DeliveryService) clearExpiredSubscription(ctx context.Context, token string) {
	if err := s.pushSubRepo.DeleteByToken(ctx, token); err != nil {
		log.Errorw("clear expired push subscription failed", "error", err)
	}
}

func (s *DeliveryService) appendLog(ctx context.Context, outcome *model.DeliveryOutcome) {
	raw, err := sonic.MarshalString(outcome)
	if err != nil {
		log.Errorw("marshal delivery outcome failed", "inviteId", outcome.InviteId, "error", err)
		return
	}
	record := &model.DeliveryLog{
		InviteId: outcome.InviteId,
		Outcome:  raw,
	}
	if err := s.deliveryLogRepo.Create(ctx, record); err != nil {
		log.Errorw("persist delivery log failed", "inviteId", outcome.InviteId, "error", err)
	}
}

// ResolveRecipients loads the current reachability of each recipient
// household: its members' phone (first member with one wins) and one push
// subscription token when any member registered one.
func (s *DeliveryService) ResolveRecipients(ctx context.Context, householdRepo repo.IHouseholdRepository, householdIds []string) ([]model.Recipient, error) {
	recipients := make([]model.Recipient, 0, len(householdIds))
	for _, hid := range householdIds {
		recipient := model.Recipient{HouseholdId: hid}

		members, err := householdRepo.ListMembers(ctx, hid)
		if err != nil {
			return nil, fmt.Errorf("list members of %s: %w", hid, err)
		}
		for _, m := range members {
			if m.Phone != "" {
				recipient.Phone = m.Phone
				break
			}
		}

		subs, err := s.pushSubRepo.ListByHousehold(ctx, hid)
		if err != nil {
			return nil, fmt.Errorf("list push subscriptions of %s: %w", hid, err)
		}
		if len(subs) > 0 {
			recipient.PushToken = subs[0].Token
		}

		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// FormatInviteMessage derives the outgoing message body from invite fields.
// Pure: the same invite fields always yield the same message.
func FormatInviteMessage(invite *model.Invite) string {
	var parts []string
	if invite.ActivityName != "" && invite.ActivityName != model.ActivityNamePlaceholder {
		parts = append(parts, invite.ActivityName)
	}
	if invite.ProposedDate != "" {
		parts = append(parts, "on "+invite.ProposedDate)
	}
	if invite.ProposedTime != "" {
		parts = append(parts, "at "+invite.ProposedTime)
	}
	if len(parts) == 0 {
		return "Wants to hang out soon!"
	}
	return strings.Join(parts, " ")
}

func pushTitle(invite *model.Invite) string {
	if invite.ActivityType != "" {
		return "New invite: " + invite.ActivityType
	}
	return "New invite"
}

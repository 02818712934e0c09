package service

import (
	"context"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gatherly/gatherly/pkg/ws"
)

// NotifyService is the creation-time notification path: a real-time event
// plus an opportunistic push for app-linked recipients, a direct SMS with an
// invite link for phone-only contacts. No outcome report, no channel
// preference; DeliveryService is the tracked redelivery path.
type NotifyService struct {
	hub         ws.Hub
	push        notify.PushSender
	sms         notify.SmsSender
	pushSubRepo repo.IPushSubscriptionRepository
	baseURL     string
}

func NewNotifyService(hub ws.Hub, push notify.PushSender, sms notify.SmsSender, pushSubRepo repo.IPushSubscriptionRepository, baseURL string) *NotifyService {
	return &NotifyService{
		hub:         hub,
		push:        push,
		sms:         sms,
		pushSubRepo: pushSubRepo,
		baseURL:     baseURL,
	}
}

// NotifyNewInvite dispatches first-contact notifications for a freshly
// created invite. Best-effort per contact: a provider failure is logged and
// never surfaces to the caller.
func (s *NotifyService) NotifyNewInvite(ctx context.Context, invite *model.Invite, fromName string, recipientContacts []model.Contact) {
	event := model.InviteNewEvent{
		InviteId:        invite.InviteId,
		FromHouseholdId: invite.FromHouseholdId,
		FromName:        fromName,
		ActivityName:    invite.ActivityName,
		ProposedDate:    invite.ProposedDate,
		ProposedTime:    invite.ProposedTime,
		Location:        invite.Location,
		Message:         invite.Message,
	}
	body := FormatInviteMessage(invite)

	for _, contact := range recipientContacts {
		if contact.LinkedHouseholdId != "" {
			s.hub.Publish(contact.LinkedHouseholdId, ws.EventInviteNew, event)
			s.opportunisticPush(ctx, contact.LinkedHouseholdId, fromName+" invited you", body, invite.InviteId)
			continue
		}
		if contact.Phone != "" {
			smsBody := fromName + " invited you: " + body + " " + s.inviteLink(invite.InviteId)
			if result := s.sms.SendSms(contact.Phone, smsBody); !result.Success {
				log.Errorw("invite sms failed", "inviteId", invite.InviteId, "contactId", contact.ContactId, "error", result.Error)
			}
		}
	}
}

// NotifyInviteResponse publishes invite:response to the inviting household
// and attempts a push to it.
func (s *NotifyService) NotifyInviteResponse(ctx context.Context, invite *model.Invite, responding *model.Household, response string) {
	s.hub.Publish(invite.FromHouseholdId, ws.EventInviteResponse, model.InviteResponseEvent{
		InviteId:              invite.InviteId,
		RespondingHouseholdId: responding.HouseholdId,
		RespondingName:        responding.Name,
		Response:              response,
	})
	s.opportunisticPush(ctx, invite.FromHouseholdId, "Invite "+response, responding.Name+" "+response+" your invite", invite.InviteId)
}

// opportunisticPush pushes to a household's subscriptions when it has any.
// No subscription is not a failure; it is simply skipped.
func (s *NotifyService) opportunisticPush(ctx context.Context, householdId, title, body, inviteId string) {
	subs, err := s.pushSubRepo.ListByHousehold(ctx, householdId)
	if err != nil {
		log.Errorw("list push subscriptions failed", "householdId", householdId, "error", err)
		return
	}
	for _, sub := range subs {
		if result := s.push.SendPush(sub.Token, title, body, map[string]string{"inviteId": inviteId}); !result.Success && !result.Expired {
			log.Warnw("opportunistic push failed", "householdId", householdId, "error", result.Error)
		}
	}
}

func (s *NotifyService) inviteLink(inviteId string) string {
	return s.baseURL + "/i/" + inviteId
}

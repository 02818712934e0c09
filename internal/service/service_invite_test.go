package service

import (
	"context"
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInviteRepo struct {
	invites    map[string]*model.Invite
	recipients map[string][]model.InviteRecipient
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{
		invites:    make(map[string]*model.Invite),
		recipients: make(map[string][]model.InviteRecipient),
	}
}

func (f *fakeInviteRepo) CreateInvite(ctx context.Context, invite *model.Invite, recipients []model.InviteRecipient) error {
	f.invites[invite.InviteId] = invite
	f.recipients[invite.InviteId] = append([]model.InviteRecipient{}, recipients...)
	return nil
}

func (f *fakeInviteRepo) GetByInviteId(ctx context.Context, inviteId string) (*model.Invite, error) {
	invite, ok := f.invites[inviteId]
	if !ok {
		return nil, nil
	}
	copied := *invite
	return &copied, nil
}

func (f *fakeInviteRepo) UpdateInviteStatus(ctx context.Context, inviteId, status string) error {
	if invite, ok := f.invites[inviteId]; ok {
		invite.Status = status
	}
	return nil
}

func (f *fakeInviteRepo) ListRecipients(ctx context.Context, inviteId string) ([]model.InviteRecipient, error) {
	return append([]model.InviteRecipient{}, f.recipients[inviteId]...), nil
}

func (f *fakeInviteRepo) GetRecipient(ctx context.Context, inviteId, householdId string) (*model.InviteRecipient, error) {
	for _, r := range f.recipients[inviteId] {
		if r.HouseholdId == householdId {
			copied := r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeInviteRepo) UpdateRecipientResponse(ctx context.Context, inviteId, householdId, response string, respondedAt time.Time) (int64, error) {
	rows := f.recipients[inviteId]
	for i := range rows {
		if rows[i].HouseholdId == householdId && rows[i].Response == model.ResponsePending {
			rows[i].Response = response
			rows[i].RespondedAt = &respondedAt
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeInviteRepo) ListByFromHousehold(ctx context.Context, householdId string) ([]model.Invite, error) {
	var out []model.Invite
	for _, invite := range f.invites {
		if invite.FromHouseholdId == householdId {
			out = append(out, *invite)
		}
	}
	return out, nil
}

func (f *fakeInviteRepo) ListForRecipient(ctx context.Context, householdId string) ([]model.Invite, error) {
	var out []model.Invite
	for inviteId, rows := range f.recipients {
		for _, r := range rows {
			if r.HouseholdId == householdId {
				out = append(out, *f.invites[inviteId])
				break
			}
		}
	}
	return out, nil
}

type fakeCircleRepo struct {
	circles map[string]*model.Circle
	members map[string][]string
}

func (f *fakeCircleRepo) CreateCircle(ctx context.Context, circle *model.Circle, members []model.CircleMember) error {
	if f.circles == nil {
		f.circles = make(map[string]*model.Circle)
		f.members = make(map[string][]string)
	}
	f.circles[circle.CircleId] = circle
	for _, m := range members {
		f.members[circle.CircleId] = append(f.members[circle.CircleId], m.ContactId)
	}
	return nil
}

func (f *fakeCircleRepo) GetByCircleId(ctx context.Context, circleId string) (*model.Circle, error) {
	circle, ok := f.circles[circleId]
	if !ok {
		return nil, nil
	}
	return circle, nil
}

func (f *fakeCircleRepo) ListByOwner(ctx context.Context, ownerHouseholdId string) ([]model.Circle, error) {
	var out []model.Circle
	for _, c := range f.circles {
		if c.OwnerHouseholdId == ownerHouseholdId {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCircleRepo) ListContactIds(ctx context.Context, circleId string) ([]string, error) {
	return f.members[circleId], nil
}

func (f *fakeCircleRepo) AddMember(ctx context.Context, member *model.CircleMember) error {
	f.members[member.CircleId] = append(f.members[member.CircleId], member.ContactId)
	return nil
}

type inviteFixture struct {
	svc        *InviteService
	inviteRepo *fakeInviteRepo
	contacts   *fakeContactRepo
	households *fakeHouseholdRepo
	hub        *fakeHub
	sms        *fakeSmsSender
	logRepo    *fakeDeliveryLogRepo
}

func newInviteFixture() *inviteFixture {
	inviteRepo := newFakeInviteRepo()
	contacts := &fakeContactRepo{contacts: []model.Contact{
		{ContactId: "c-linked", OwnerHouseholdId: "h0", DisplayName: "The Kims", LinkedHouseholdId: "h2"},
		{ContactId: "c-linked-dup", OwnerHouseholdId: "h0", DisplayName: "Kims again", LinkedHouseholdId: "h2"},
		{ContactId: "c-phone", OwnerHouseholdId: "h0", DisplayName: "Grandma", Phone: "+15550009"},
	}}
	households := &fakeHouseholdRepo{
		households: map[string]*model.Household{
			"h0": {HouseholdId: "h0", Name: "The Parks"},
			"h2": {HouseholdId: "h2", Name: "The Kims"},
		},
		members: map[string][]model.HouseholdMember{
			"h2": {{MemberId: "m2", HouseholdId: "h2", Phone: "+15550002"}},
		},
	}
	circleRepo := &fakeCircleRepo{}
	hub := &fakeHub{}
	push := &fakePushSender{}
	sms := &fakeSmsSender{}
	subRepo := &fakePushSubRepo{}
	logRepo := &fakeDeliveryLogRepo{}

	notifySvc := NewNotifyService(hub, push, sms, subRepo, "https://gatherly.app")
	deliverySvc := NewDeliveryService(push, sms, subRepo, logRepo)
	svc := NewInviteService(inviteRepo, contacts, circleRepo, households, logRepo, notifySvc, deliverySvc, nil)
	return &inviteFixture{
		svc:        svc,
		inviteRepo: inviteRepo,
		contacts:   contacts,
		households: households,
		hub:        hub,
		sms:        sms,
		logRepo:    logRepo,
	}
}

func TestCreateInviteOnlyLinkedContactsGetRecipientRows(t *testing.T) {
	fx := newInviteFixture()

	detail, err := fx.svc.CreateInvite(context.Background(), "h0", &model.CreateInviteReq{
		ActivityName: "Picnic",
		ProposedDate: "2025-06-01",
		ContactIds:   []string{"c-linked", "c-linked-dup", "c-phone"},
	})
	require.NoError(t, err)

	// one row for h2 despite two contact rows; none for the phone-only contact
	require.Len(t, detail.Recipients, 1)
	assert.Equal(t, "h2", detail.Recipients[0].HouseholdId)
	assert.Equal(t, model.ResponsePending, detail.Recipients[0].Response)
	assert.Equal(t, model.InviteStatusPending, detail.Invite.Status)
}

func TestCreateInviteRejectsEmptyTargetList(t *testing.T) {
	fx := newInviteFixture()

	_, err := fx.svc.CreateInvite(context.Background(), "h0", &model.CreateInviteReq{ActivityName: "Picnic"})
	require.Error(t, err)
}

func TestCreateInviteExpandsCircle(t *testing.T) {
	fx := newInviteFixture()
	circleRepo := fx.svc.circleRepo.(*fakeCircleRepo)
	require.NoError(t, circleRepo.CreateCircle(context.Background(), &model.Circle{
		CircleId:         "circle1",
		OwnerHouseholdId: "h0",
		Name:             "close friends",
	}, []model.CircleMember{{CircleId: "circle1", ContactId: "c-linked"}}))

	detail, err := fx.svc.CreateInvite(context.Background(), "h0", &model.CreateInviteReq{
		ActivityName: "Picnic",
		CircleId:     "circle1",
	})
	require.NoError(t, err)
	require.Len(t, detail.Recipients, 1)
	assert.Equal(t, "h2", detail.Recipients[0].HouseholdId)
}

func TestRespondMutatesExactlyOnce(t *testing.T) {
	fx := newInviteFixture()
	detail, err := fx.svc.CreateInvite(context.Background(), "h0", &model.CreateInviteReq{
		ActivityName: "Picnic",
		ContactIds:   []string{"c-linked"},
	})
	require.NoError(t, err)
	inviteId := detail.Invite.InviteId

	require.NoError(t, fx.svc.Respond(context.Background(), inviteId, "h2", model.ResponseAccepted))

	err = fx.svc.Respond(context.Background(), inviteId, "h2", model.ResponseDeclined)
	assert.ErrorIs(t, err, ErrInviteAlreadyAnswered)

	recipient, err := fx.inviteRepo.GetRecipient(context.Background(), inviteId, "h2")
	require.NoError(t, err)
	assert.Equal(t, model.ResponseAccepted, recipient.Response)
	require.NotNil(t, recipient.RespondedAt)

	invite, err := fx.inviteRepo.GetByInviteId(context.Background(), inviteId)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusConfirmed, invite.Status)
}

func TestRespondRejectsNonRecipient(t *testing.T) {
	fx := newInviteFixture()
	detail, err := fx.svc.CreateInvite(context.Background(), "h0", &model.CreateInviteReq{
		ActivityName: "Picnic",
		ContactIds:   []string{"c-linked"},
	})
	require.NoError(t, err)

	err = fx.svc.Respond(context.Background(), detail.Invite.InviteId, "h9", model.ResponseAccepted)
	assert.ErrorIs(t, err, ErrNotARecipient)
}

func TestRespondRejectsUnknownResponse(t *testing.T) {
	fx := newInviteFixture()
	err := fx.svc.Respond(context.Background(), "inv1", "h2", "maybe")
	require.Error(t, err)
}

func TestRedeliverClassifiesCurrentRecipients(t *testing.T) {
	fx := newInviteFixture()
	detail, err := fx.svc.CreateInvite(context.Background(), "h0", &model.CreateInviteReq{
		ActivityName: "Picnic",
		ProposedDate: "2025-06-01",
		ProposedTime: "3pm",
		ContactIds:   []string{"c-linked"},
	})
	require.NoError(t, err)

	outcome, err := fx.svc.Redeliver(context.Background(), detail.Invite.InviteId, nil, 0)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	// h2 has no push subscription but a member phone: SMS
	require.Len(t, outcome.Sent, 1)
	assert.Equal(t, "h2", outcome.Sent[0].HouseholdId)
	assert.Equal(t, model.ChannelSms, outcome.Sent[0].Channel)

	logs, err := fx.svc.DeliveryHistory(context.Background(), detail.Invite.InviteId)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestRedeliverUnknownInvite(t *testing.T) {
	fx := newInviteFixture()
	_, err := fx.svc.Redeliver(context.Background(), "missing", nil, 0)
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

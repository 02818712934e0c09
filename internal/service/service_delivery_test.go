package service

import (
	"context"
	"testing"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePushSender struct {
	results map[string]notify.PushResult
	calls   []string
}

func (f *fakePushSender) SendPush(token, title, body string, data map[string]string) notify.PushResult {
	f.calls = append(f.calls, token)
	if r, ok := f.results[token]; ok {
		return r
	}
	return notify.PushResult{Success: true}
}

type fakeSmsSender struct {
	results map[string]notify.SmsResult
	bodies  map[string]string
	panicOn string
	calls   []string
}

func (f *fakeSmsSender) SendSms(phone, body string) notify.SmsResult {
	if phone == f.panicOn && f.panicOn != "" {
		panic("sms provider exploded")
	}
	f.calls = append(f.calls, phone)
	if f.bodies == nil {
		f.bodies = make(map[string]string)
	}
	f.bodies[phone] = body
	if r, ok := f.results[phone]; ok {
		return r
	}
	return notify.SmsResult{Success: true, MessageId: "SM" + phone}
}

type fakePushSubRepo struct {
	subs    map[string][]model.PushSubscription
	deleted []string
	listErr error
}

func (f *fakePushSubRepo) Save(ctx context.Context, sub *model.PushSubscription) error {
	if f.subs == nil {
		f.subs = make(map[string][]model.PushSubscription)
	}
	f.subs[sub.HouseholdId] = append(f.subs[sub.HouseholdId], *sub)
	return nil
}

func (f *fakePushSubRepo) ListByHousehold(ctx context.Context, householdId string) ([]model.PushSubscription, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.subs[householdId], nil
}

func (f *fakePushSubRepo) DeleteByToken(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeDeliveryLogRepo struct {
	records []model.DeliveryLog
}

func (f *fakeDeliveryLogRepo) Create(ctx context.Context, log *model.DeliveryLog) error {
	f.records = append(f.records, *log)
	return nil
}

func (f *fakeDeliveryLogRepo) ListByInviteId(ctx context.Context, inviteId string) ([]model.DeliveryLog, error) {
	var out []model.DeliveryLog
	for _, r := range f.records {
		if r.InviteId == inviteId {
			out = append(out, r)
		}
	}
	return out, nil
}

func newDeliveryFixture(push *fakePushSender, sms *fakeSmsSender) (*DeliveryService, *fakePushSubRepo, *fakeDeliveryLogRepo) {
	if push == nil {
		push = &fakePushSender{}
	}
	if sms == nil {
		sms = &fakeSmsSender{}
	}
	subRepo := &fakePushSubRepo{}
	logRepo := &fakeDeliveryLogRepo{}
	return NewDeliveryService(push, sms, subRepo, logRepo), subRepo, logRepo
}

func testInvite() *model.Invite {
	return &model.Invite{
		InviteId:        "inv1",
		FromHouseholdId: "h0",
		ActivityName:    "Picnic",
		ProposedDate:    "2025-06-01",
		ProposedTime:    "3pm",
		Status:          model.InviteStatusPending,
	}
}

func TestDeliverInvitePushSuccess(t *testing.T) {
	svc, _, _ := newDeliveryFixture(nil, nil)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", PushToken: "tok1"},
	}, nil)

	require.Len(t, outcome.Sent, 1)
	assert.Equal(t, "h1", outcome.Sent[0].HouseholdId)
	assert.Equal(t, model.ChannelPush, outcome.Sent[0].Channel)
	assert.Empty(t, outcome.Failed)
	assert.Empty(t, outcome.Pending)
}

func TestDeliverInviteExpiredFallsBackToSms(t *testing.T) {
	push := &fakePushSender{results: map[string]notify.PushResult{
		"tok1": {Expired: true},
	}}
	sms := &fakeSmsSender{}
	svc, subRepo, _ := newDeliveryFixture(push, sms)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", Phone: "+15550001", PushToken: "tok1"},
	}, nil)

	require.Len(t, outcome.Sent, 1)
	assert.Equal(t, model.ChannelSms, outcome.Sent[0].Channel)
	assert.NotEmpty(t, outcome.Sent[0].MessageId)
	assert.Empty(t, outcome.Failed)
	assert.Equal(t, []string{"tok1"}, subRepo.deleted)
}

func TestDeliverInviteExpiredNoPhone(t *testing.T) {
	push := &fakePushSender{results: map[string]notify.PushResult{
		"tok1": {Expired: true},
	}}
	svc, _, _ := newDeliveryFixture(push, nil)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", PushToken: "tok1"},
	}, nil)

	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, model.ChannelPush, outcome.Failed[0].Channel)
	assert.Equal(t, model.ReasonExpiredNoPhone, outcome.Failed[0].Error)
	assert.Empty(t, outcome.Sent)
}

func TestDeliverInvitePushErrorRecordedAsFailure(t *testing.T) {
	push := &fakePushSender{results: map[string]notify.PushResult{
		"tok1": {Error: "rate limited"},
	}}
	svc, _, _ := newDeliveryFixture(push, nil)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", Phone: "+15550001", PushToken: "tok1"},
	}, nil)

	// a generic push failure does not fall back to SMS
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, model.ChannelPush, outcome.Failed[0].Channel)
	assert.Equal(t, "rate limited", outcome.Failed[0].Error)
	assert.Empty(t, outcome.Sent)
}

func TestDeliverInviteSmsPreferenceSkipsPush(t *testing.T) {
	push := &fakePushSender{}
	sms := &fakeSmsSender{}
	svc, _, _ := newDeliveryFixture(push, sms)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", Phone: "+15550001", PushToken: "tok1"},
	}, map[string]string{"h1": model.PrefSms})

	require.Len(t, outcome.Sent, 1)
	assert.Equal(t, model.ChannelSms, outcome.Sent[0].Channel)
	assert.Empty(t, push.calls)
}

func TestDeliverInviteNoSubscriptionUsesSms(t *testing.T) {
	sms := &fakeSmsSender{}
	svc, _, _ := newDeliveryFixture(nil, sms)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", Phone: "+15550001"},
	}, nil)

	require.Len(t, outcome.Sent, 1)
	assert.Equal(t, model.ChannelSms, outcome.Sent[0].Channel)
	assert.Equal(t, []string{"+15550001"}, sms.calls)
}

func TestDeliverInviteUnreachableIsPending(t *testing.T) {
	svc, _, _ := newDeliveryFixture(nil, nil)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1"},
	}, nil)

	require.Len(t, outcome.Pending, 1)
	assert.Equal(t, model.ReasonNoDeliveryMethod, outcome.Pending[0].Reason)
	assert.Empty(t, outcome.Sent)
	assert.Empty(t, outcome.Failed)
}

func TestDeliverInvitePartitionsEveryRecipient(t *testing.T) {
	push := &fakePushSender{results: map[string]notify.PushResult{
		"tokExpired": {Expired: true},
		"tokBroken":  {Error: "boom"},
	}}
	sms := &fakeSmsSender{}
	svc, _, _ := newDeliveryFixture(push, sms)

	recipients := []model.Recipient{
		{HouseholdId: "h1", PushToken: "tokOk"},
		{HouseholdId: "h2", Phone: "+15550002", PushToken: "tokExpired"},
		{HouseholdId: "h3", PushToken: "tokBroken"},
		{HouseholdId: "h4", Phone: "+15550004"},
		{HouseholdId: "h5"},
	}
	outcome := svc.DeliverInvite(context.Background(), testInvite(), recipients, nil)

	assert.Equal(t, len(recipients), len(outcome.Sent)+len(outcome.Failed)+len(outcome.Pending))

	seen := make(map[string]int)
	for _, e := range outcome.Sent {
		seen[e.HouseholdId]++
	}
	for _, e := range outcome.Failed {
		seen[e.HouseholdId]++
	}
	for _, e := range outcome.Pending {
		seen[e.HouseholdId]++
	}
	for _, r := range recipients {
		assert.Equal(t, 1, seen[r.HouseholdId], "household %s must appear exactly once", r.HouseholdId)
	}
}

func TestDeliverInvitePanicIsolatedToOneRecipient(t *testing.T) {
	sms := &fakeSmsSender{panicOn: "+15550001"}
	svc, _, _ := newDeliveryFixture(nil, sms)

	outcome := svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", Phone: "+15550001"},
		{HouseholdId: "h2", Phone: "+15550002"},
		{HouseholdId: "h3"},
	}, nil)

	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, "h1", outcome.Failed[0].HouseholdId)
	// the audit record names the channel whose provider call blew up,
	// not the recipient's preference label
	assert.Equal(t, model.ChannelSms, outcome.Failed[0].Channel)
	assert.Contains(t, outcome.Failed[0].Error, "sms provider exploded")
	require.Len(t, outcome.Sent, 1)
	assert.Equal(t, "h2", outcome.Sent[0].HouseholdId)
	require.Len(t, outcome.Pending, 1)
	assert.Equal(t, "h3", outcome.Pending[0].HouseholdId)
}

func TestDeliverInviteWritesOneLogRecord(t *testing.T) {
	svc, _, logRepo := newDeliveryFixture(nil, nil)

	invite := testInvite()
	svc.DeliverInvite(context.Background(), invite, []model.Recipient{
		{HouseholdId: "h1", PushToken: "tok1"},
		{HouseholdId: "h2"},
	}, nil)

	require.Len(t, logRepo.records, 1)
	assert.Equal(t, invite.InviteId, logRepo.records[0].InviteId)
	assert.Contains(t, logRepo.records[0].Outcome, `"h1"`)
	assert.Contains(t, logRepo.records[0].Outcome, model.ReasonNoDeliveryMethod)
}

func TestDeliverInviteSmsBodyIsFormattedMessage(t *testing.T) {
	sms := &fakeSmsSender{}
	svc, _, _ := newDeliveryFixture(nil, sms)

	svc.DeliverInvite(context.Background(), testInvite(), []model.Recipient{
		{HouseholdId: "h1", Phone: "+15550001"},
	}, nil)

	assert.Equal(t, "Picnic on 2025-06-01 at 3pm", sms.bodies["+15550001"])
}

func TestFormatInviteMessage(t *testing.T) {
	tests := []struct {
		name   string
		invite model.Invite
		want   string
	}{
		{
			name:   "full plan",
			invite: model.Invite{ActivityName: "Picnic", ProposedDate: "2025-06-01", ProposedTime: "3pm"},
			want:   "Picnic on 2025-06-01 at 3pm",
		},
		{
			name:   "no plan at all",
			invite: model.Invite{},
			want:   "Wants to hang out soon!",
		},
		{
			name:   "placeholder name is dropped",
			invite: model.Invite{ActivityName: model.ActivityNamePlaceholder},
			want:   "Wants to hang out soon!",
		},
		{
			name:   "name only",
			invite: model.Invite{ActivityName: "Movie night"},
			want:   "Movie night",
		},
		{
			name:   "date and time without name",
			invite: model.Invite{ProposedDate: "2025-06-01", ProposedTime: "3pm"},
			want:   "on 2025-06-01 at 3pm",
		},
		{
			name:   "name and time",
			invite: model.Invite{ActivityName: "Picnic", ProposedTime: "3pm"},
			want:   "Picnic at 3pm",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInviteMessage(&tt.invite))
		})
	}
}

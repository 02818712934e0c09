package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/ws"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	HouseholdId string
	Event       string
	Detail      any
}

type fakeHub struct {
	mu        sync.Mutex
	published []publishCall
}

func (f *fakeHub) Register(conn ws.Conn)            {}
func (f *fakeHub) Unregister(conn ws.Conn)          {}
func (f *fakeHub) Join(householdId, connId string)  {}
func (f *fakeHub) Leave(householdId, connId string) {}

func (f *fakeHub) Publish(householdId, event string, detail any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishCall{HouseholdId: householdId, Event: event, Detail: detail})
}

func (f *fakeHub) Count() int                         { return 0 }
func (f *fakeHub) JoinedCount(householdId string) int { return 0 }

func (f *fakeHub) calls() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishCall{}, f.published...)
}

// fakeContactRepo mirrors the production query: watchers are the distinct
// owners of contact rows linking to the household.
type fakeContactRepo struct {
	contacts   []model.Contact
	watcherErr error
}

func (f *fakeContactRepo) CreateContact(ctx context.Context, contact *model.Contact) error {
	f.contacts = append(f.contacts, *contact)
	return nil
}

func (f *fakeContactRepo) ListByOwner(ctx context.Context, ownerHouseholdId string) ([]model.Contact, error) {
	var out []model.Contact
	for _, c := range f.contacts {
		if c.OwnerHouseholdId == ownerHouseholdId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) ListByContactIds(ctx context.Context, ownerHouseholdId string, contactIds []string) ([]model.Contact, error) {
	var out []model.Contact
	for _, c := range f.contacts {
		if c.OwnerHouseholdId != ownerHouseholdId {
			continue
		}
		for _, cid := range contactIds {
			if c.ContactId == cid {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeContactRepo) ListWatcherHouseholdIds(ctx context.Context, householdId string) ([]string, error) {
	if f.watcherErr != nil {
		return nil, f.watcherErr
	}
	seen := make(map[string]struct{})
	var out []string
	for _, c := range f.contacts {
		if c.LinkedHouseholdId != householdId {
			continue
		}
		if _, ok := seen[c.OwnerHouseholdId]; ok {
			continue
		}
		seen[c.OwnerHouseholdId] = struct{}{}
		out = append(out, c.OwnerHouseholdId)
	}
	return out, nil
}

type statusUpdate struct {
	State, Note, Window string
	UpdatedAt           time.Time
}

type fakeHouseholdRepo struct {
	households map[string]*model.Household
	members    map[string][]model.HouseholdMember
	updates    []statusUpdate
}

func (f *fakeHouseholdRepo) CreateHousehold(ctx context.Context, household *model.Household) error {
	if f.households == nil {
		f.households = make(map[string]*model.Household)
	}
	f.households[household.HouseholdId] = household
	return nil
}

func (f *fakeHouseholdRepo) GetByHouseholdId(ctx context.Context, householdId string) (*model.Household, error) {
	h, ok := f.households[householdId]
	if !ok {
		return nil, nil
	}
	copied := *h
	return &copied, nil
}

func (f *fakeHouseholdRepo) UpdateStatus(ctx context.Context, householdId, state, note, window string, updatedAt time.Time) error {
	f.updates = append(f.updates, statusUpdate{State: state, Note: note, Window: window, UpdatedAt: updatedAt})
	if h, ok := f.households[householdId]; ok {
		h.StatusState = state
		h.StatusNote = note
		h.StatusWindow = window
		h.StatusUpdatedAt = updatedAt
	}
	return nil
}

func (f *fakeHouseholdRepo) CreateMember(ctx context.Context, member *model.HouseholdMember) error {
	if f.members == nil {
		f.members = make(map[string][]model.HouseholdMember)
	}
	f.members[member.HouseholdId] = append(f.members[member.HouseholdId], *member)
	return nil
}

func (f *fakeHouseholdRepo) GetMemberByPhone(ctx context.Context, phone string) (*model.HouseholdMember, error) {
	for _, members := range f.members {
		for _, m := range members {
			if m.Phone == phone {
				copied := m
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeHouseholdRepo) ListMembers(ctx context.Context, householdId string) ([]model.HouseholdMember, error) {
	return f.members[householdId], nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if s, ok := value.(string); ok {
		f.values[key] = s
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeCache) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCache) GetClient() *redis.Client { return nil }

func newStatusFixture(contacts *fakeContactRepo) (*StatusService, *fakeHub, *fakeHouseholdRepo) {
	hub := &fakeHub{}
	households := &fakeHouseholdRepo{
		households: map[string]*model.Household{
			"h1": {HouseholdId: "h1", Name: "The Parks"},
		},
	}
	svc := NewStatusService(households, contacts, &fakePushSubRepo{}, hub, &fakePushSender{}, &fakeCache{})
	return svc, hub, households
}

func TestBroadcastStatusUpdateDeduplicatesWatchers(t *testing.T) {
	contacts := &fakeContactRepo{contacts: []model.Contact{
		{ContactId: "c1", OwnerHouseholdId: "w1", LinkedHouseholdId: "h1"},
		{ContactId: "c2", OwnerHouseholdId: "w1", LinkedHouseholdId: "h1"}, // duplicate import
		{ContactId: "c3", OwnerHouseholdId: "w2", LinkedHouseholdId: "h1"},
		{ContactId: "c4", OwnerHouseholdId: "w3", LinkedHouseholdId: "other"},
	}}
	svc, hub, _ := newStatusFixture(contacts)

	_, err := svc.UpdateStatus(context.Background(), "h1", &model.UpdateStatusReq{State: model.StatusOpen, Note: "park after 4"})
	require.NoError(t, err)

	calls := hub.calls()
	require.Len(t, calls, 2)
	notified := map[string]int{}
	for _, call := range calls {
		assert.Equal(t, ws.EventStatusUpdate, call.Event)
		notified[call.HouseholdId]++

		event, ok := call.Detail.(model.StatusUpdateEvent)
		require.True(t, ok)
		assert.Equal(t, "h1", event.HouseholdId)
		assert.Equal(t, "The Parks", event.Name)
		assert.Equal(t, model.StatusOpen, event.Status.State)
		assert.Equal(t, "park after 4", event.Status.Note)
	}
	assert.Equal(t, 1, notified["w1"])
	assert.Equal(t, 1, notified["w2"])
}

func TestBroadcastStatusUpdateZeroWatchers(t *testing.T) {
	svc, hub, _ := newStatusFixture(&fakeContactRepo{})

	household := &model.Household{HouseholdId: "h1", Name: "The Parks"}
	err := svc.BroadcastStatusUpdate(context.Background(), household, model.StatusPayload{State: model.StatusBusy})
	require.NoError(t, err)
	assert.Empty(t, hub.calls())
}

func TestBroadcastStatusUpdateWatcherQueryErrorIsHard(t *testing.T) {
	contacts := &fakeContactRepo{watcherErr: errors.New("db gone")}
	svc, hub, _ := newStatusFixture(contacts)

	household := &model.Household{HouseholdId: "h1"}
	err := svc.BroadcastStatusUpdate(context.Background(), household, model.StatusPayload{State: model.StatusBusy})
	require.Error(t, err)
	assert.Empty(t, hub.calls())
}

func TestUpdateStatusWritesAllFieldsTogether(t *testing.T) {
	svc, _, households := newStatusFixture(&fakeContactRepo{})

	payload, err := svc.UpdateStatus(context.Background(), "h1", &model.UpdateStatusReq{
		State:      model.StatusAvailable,
		Note:       "grilling",
		TimeWindow: "until 8",
	})
	require.NoError(t, err)
	require.Len(t, households.updates, 1)
	assert.Equal(t, model.StatusAvailable, households.updates[0].State)
	assert.Equal(t, "grilling", households.updates[0].Note)
	assert.Equal(t, "until 8", households.updates[0].Window)
	assert.Equal(t, households.updates[0].UpdatedAt, payload.UpdatedAt)
}

func TestUpdateStatusRejectsUnknownState(t *testing.T) {
	svc, hub, households := newStatusFixture(&fakeContactRepo{})

	_, err := svc.UpdateStatus(context.Background(), "h1", &model.UpdateStatusReq{State: "sleeping"})
	require.Error(t, err)
	assert.Empty(t, households.updates)
	assert.Empty(t, hub.calls())
}

func TestGetStatusFallsBackToDatabase(t *testing.T) {
	svc, _, households := newStatusFixture(&fakeContactRepo{})
	households.households["h1"].StatusState = model.StatusBusy
	households.households["h1"].StatusNote = "homework"

	payload, err := svc.GetStatus(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBusy, payload.State)
	assert.Equal(t, "homework", payload.Note)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/pkg/cache"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gatherly/gatherly/pkg/safe"
	"github.com/gatherly/gatherly/pkg/ws"
	"github.com/redis/go-redis/v9"
)

const (
	statusCacheKeyPrefix = "gatherly:status:"
	statusCacheTTL       = 24 * time.Hour
)

// StatusService owns household status writes and the watcher broadcast that
// follows them.
type StatusService struct {
	householdRepo repo.IHouseholdRepository
	contactRepo   repo.IContactRepository
	pushSubRepo   repo.IPushSubscriptionRepository
	hub           ws.Hub
	push          notify.PushSender
	cache         cache.ICache
}

func NewStatusService(
	householdRepo repo.IHouseholdRepository,
	contactRepo repo.IContactRepository,
	pushSubRepo repo.IPushSubscriptionRepository,
	hub ws.Hub,
	push notify.PushSender,
	cache cache.ICache,
) *StatusService {
	return &StatusService{
		householdRepo: householdRepo,
		contactRepo:   contactRepo,
		pushSubRepo:   pushSubRepo,
		hub:           hub,
		push:          push,
		cache:         cache,
	}
}

// UpdateStatus writes all status fields atomically, refreshes the status
// cache and broadcasts to watchers. Broadcast failure fails the whole
// operation; the write itself is not rolled back.
func (s *StatusService) UpdateStatus(ctx context.Context, householdId string, req *model.UpdateStatusReq) (*model.StatusPayload, error) {
	if !model.ValidStatusState(req.State) {
		return nil, fmt.Errorf("invalid status state: %s", req.State)
	}

	household, err := s.householdRepo.GetByHouseholdId(ctx, householdId)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, errors.New("household not found")
	}

	now := time.Now()
	if err := s.householdRepo.UpdateStatus(ctx, householdId, req.State, req.Note, req.TimeWindow, now); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	payload := model.StatusPayload{
		State:      req.State,
		Note:       req.Note,
		TimeWindow: req.TimeWindow,
		UpdatedAt:  now,
	}
	s.cacheStatus(ctx, householdId, payload)

	household.StatusState = payload.State
	household.StatusNote = payload.Note
	household.StatusWindow = payload.TimeWindow
	household.StatusUpdatedAt = payload.UpdatedAt
	if err := s.BroadcastStatusUpdate(ctx, household, payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// BroadcastStatusUpdate resolves the watcher set and publishes status:update
// to each watcher's channel, with an opportunistic push per watcher. Watcher
// resolution failure is a hard failure of the operation; per-watcher delivery
// is independent and best-effort. A household with zero watchers broadcasts
// nothing and succeeds.
func (s *StatusService) BroadcastStatusUpdate(ctx context.Context, household *model.Household, status model.StatusPayload) error {
	watcherIds, err := s.contactRepo.ListWatcherHouseholdIds(ctx, household.HouseholdId)
	if err != nil {
		return fmt.Errorf("resolve watchers of %s: %w", household.HouseholdId, err)
	}

	event := model.StatusUpdateEvent{
		HouseholdId: household.HouseholdId,
		Name:        household.Name,
		Status:      status,
	}

	statusBroadcasts.Inc()
	for _, watcherId := range watcherIds {
		s.hub.Publish(watcherId, ws.EventStatusUpdate, event)
		statusWatchersNotified.Inc()

		watcherId := watcherId
		safe.Go(func() {
			s.pushStatus(context.WithoutCancel(ctx), watcherId, household.Name, status)
		})
	}
	return nil
}

// GetStatus reads a household's current status, preferring the cache.
func (s *StatusService) GetStatus(ctx context.Context, householdId string) (*model.StatusPayload, error) {
	raw, err := s.cache.Get(ctx, statusCacheKeyPrefix+householdId).Result()
	if err == nil {
		var payload model.StatusPayload
		if err := sonic.UnmarshalString(raw, &payload); err == nil {
			return &payload, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warnw("status cache read failed", "householdId", householdId, "error", err)
	}

	household, err := s.householdRepo.GetByHouseholdId(ctx, householdId)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, errors.New("household not found")
	}

	payload := model.StatusPayload{
		State:      household.StatusState,
		Note:       household.StatusNote,
		TimeWindow: household.StatusWindow,
		UpdatedAt:  household.StatusUpdatedAt,
	}
	s.cacheStatus(ctx, householdId, payload)
	return &payload, nil
}

func (s *StatusService) cacheStatus(ctx context.Context, householdId string, payload model.StatusPayload) {
	raw, err := sonic.MarshalString(payload)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statusCacheKeyPrefix+householdId, raw, statusCacheTTL).Err(); err != nil {
		log.Warnw("status cache write failed", "householdId", householdId, "error", err)
	}
}

// pushStatus is opportunistic: no subscription and no push only mean the
// watcher misses the update until it next polls.
func (s *StatusService) pushStatus(ctx context.Context, watcherId, name string, status model.StatusPayload) {
	subs, err := s.pushSubRepo.ListByHousehold(ctx, watcherId)
	if err != nil {
		log.Warnw("list push subscriptions failed", "householdId", watcherId, "error", err)
		return
	}
	body := name + " is now " + status.State
	if status.Note != "" {
		body += ": " + status.Note
	}
	for _, sub := range subs {
		if result := s.push.SendPush(sub.Token, "Status update", body, map[string]string{"householdId": watcherId}); !result.Success && !result.Expired {
			log.Warnw("status push failed", "householdId", watcherId, "error", result.Error)
		}
	}
}

package updates

import (
	"sync"
	"time"
)

// Update is a single event published to a team's subscribers.
type Update struct {
	TeamID    string                 `json:"team_id"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"` // UTC
}

// Hub fans team events out to subscribed users. Poll drains a user's
// pending updates; each update is delivered to a subscriber at most once.
type Hub interface {
	Subscribe(userID, teamID string)
	Unsubscribe(userID, teamID string)
	Publish(teamID, updateType string, data map[string]interface{})
	Poll(userID string) []Update
}

const maxPendingUpdates = 256

type subscriber struct {
	teams   map[string]struct{}
	pending []Update
}

// InProcessHub is a Hub for a single-process deployment. A broker-backed
// implementation can replace it without touching callers.
type InProcessHub struct {
	mu   sync.Mutex
	subs map[string]*subscriber // keyed by user ID
}

func NewInProcessHub() *InProcessHub {
	return &InProcessHub{subs: make(map[string]*subscriber)}
}

func (h *InProcessHub) Subscribe(userID, teamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[userID]
	if !ok {
		sub = &subscriber{teams: make(map[string]struct{})}
		h.subs[userID] = sub
	}
	sub.teams[teamID] = struct{}{}
}

func (h *InProcessHub) Unsubscribe(userID, teamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[userID]
	if !ok {
		return
	}
	delete(sub.teams, teamID)
	if len(sub.teams) == 0 && len(sub.pending) == 0 {
		delete(h.subs, userID)
	}
}

func (h *InProcessHub) Publish(teamID, updateType string, data map[string]interface{}) {
	upd := Update{
		TeamID:    teamID,
		Type:      updateType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if _, ok := sub.teams[teamID]; !ok {
			continue
		}
		sub.pending = append(sub.pending, upd)
		if len(sub.pending) > maxPendingUpdates {
			sub.pending = sub.pending[len(sub.pending)-maxPendingUpdates:]
		}
	}
}

func (h *InProcessHub) Poll(userID string) []Update {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[userID]
	if !ok || len(sub.pending) == 0 {
		return nil
	}
	out := sub.pending
	sub.pending = nil
	return out
}

package updates

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessHub(t *testing.T) {
	t.Run("delivers to subscribers only", func(t *testing.T) {
		hub := NewInProcessHub()
		hub.Subscribe("alice", "TEAM_1")
		hub.Subscribe("bob", "TEAM_2")

		hub.Publish("TEAM_1", "project_created", map[string]interface{}{"project_id": "PROJ_1"})

		updates := hub.Poll("alice")
		require.Len(t, updates, 1)
		assert.Equal(t, "TEAM_1", updates[0].TeamID)
		assert.Equal(t, "project_created", updates[0].Type)
		assert.Empty(t, hub.Poll("bob"))
	})

	t.Run("poll consumes", func(t *testing.T) {
		hub := NewInProcessHub()
		hub.Subscribe("alice", "TEAM_1")
		hub.Publish("TEAM_1", "member_joined", nil)

		require.Len(t, hub.Poll("alice"), 1)
		assert.Empty(t, hub.Poll("alice"))
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		hub := NewInProcessHub()
		hub.Subscribe("alice", "TEAM_1")
		hub.Unsubscribe("alice", "TEAM_1")
		hub.Publish("TEAM_1", "member_joined", nil)

		assert.Empty(t, hub.Poll("alice"))
	})

	t.Run("multiple teams per user", func(t *testing.T) {
		hub := NewInProcessHub()
		hub.Subscribe("alice", "TEAM_1")
		hub.Subscribe("alice", "TEAM_2")

		hub.Publish("TEAM_1", "a", nil)
		hub.Publish("TEAM_2", "b", nil)

		assert.Len(t, hub.Poll("alice"), 2)
	})

	t.Run("pending buffer is bounded", func(t *testing.T) {
		hub := NewInProcessHub()
		hub.Subscribe("alice", "TEAM_1")
		for i := 0; i < maxPendingUpdates+10; i++ {
			hub.Publish("TEAM_1", fmt.Sprintf("evt-%d", i), nil)
		}

		updates := hub.Poll("alice")
		require.Len(t, updates, maxPendingUpdates)
		assert.Equal(t, fmt.Sprintf("evt-%d", 10), updates[0].Type)
	})

	t.Run("concurrent publish and poll", func(t *testing.T) {
		hub := NewInProcessHub()
		hub.Subscribe("alice", "TEAM_1")

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					hub.Publish("TEAM_1", "evt", nil)
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					hub.Poll("alice")
				}
			}()
		}
		wg.Wait()
	})
}

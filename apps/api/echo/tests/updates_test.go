package tests

import (
	"net/http"
	"testing"

	"github.com/plangrid/matcast/core/updates"
)

func Test_updatesApi_pollAfterTeamEvents(t *testing.T) {
	ta := setup(t)
	owner := ta.createUser(t, "Owner", "owner", "owner@test.cd", nil)
	watcher := ta.createUser(t, "Watcher", "watcher", "watcher@test.cd", nil)
	ownerToken := getToken(t, owner)
	watcherToken := getToken(t, watcher)

	// a project with a team publishes a project_created event
	req, rec := newAuthRequest(http.MethodPost, "/v1/updates/subscribe/TEAM_x", watcherToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("subscribe: code = %v; body %s", rec.Code, rec.Body.String())
	}

	ta.createProject(t, owner.Username, "Looped Line", "TEAM_x")

	req, rec = newAuthRequest(http.MethodGet, "/v1/updates/poll", watcherToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("poll: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var events []updates.Update
	decodeBody(t, rec, &events)
	if len(events) == 0 {
		t.Fatal("expected team events")
	}
	if events[0].TeamID != "TEAM_x" {
		t.Errorf("team_id = %q; want %q", events[0].TeamID, "TEAM_x")
	}

	// polling consumes the events
	req, rec = newAuthRequest(http.MethodGet, "/v1/updates/poll", watcherToken)
	ta.app.ServeHTTP(rec, req)
	decodeBody(t, rec, &events)
	if len(events) != 0 {
		t.Errorf("second poll returned %d events; want 0", len(events))
	}

	// unsubscribed users see nothing
	req, rec = newAuthRequest(http.MethodGet, "/v1/updates/poll", ownerToken)
	ta.app.ServeHTTP(rec, req)
	decodeBody(t, rec, &events)
	if len(events) != 0 {
		t.Errorf("owner poll returned %d events; want 0", len(events))
	}

	// unsubscribe stops delivery
	req, rec = newAuthRequest(http.MethodDelete, "/v1/updates/subscribe/TEAM_x", watcherToken)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unsubscribe: code = %v", rec.Code)
	}
	ta.createProject(t, owner.Username, "Another Line", "TEAM_x")

	req, rec = newAuthRequest(http.MethodGet, "/v1/updates/poll", watcherToken)
	ta.app.ServeHTTP(rec, req)
	decodeBody(t, rec, &events)
	if len(events) != 0 {
		t.Errorf("post-unsubscribe poll returned %d events; want 0", len(events))
	}
}

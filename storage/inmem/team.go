package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/plangrid/matcast/core/team"
)

type teamRepository struct {
	db *teamTable
}

var _ team.Repository = (*teamRepository)(nil) // interface compliance check

func NewTeamRepository(db *DB) team.Repository {
	return &teamRepository{db: db.team}
}

func (repo *teamRepository) CreateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.teams[t.ID] = &t
	return t, nil
}

func (repo *teamRepository) QueryTeamsByMember(ctx context.Context, username string) ([]team.Team, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var teams []team.Team
	for _, t := range repo.db.teams {
		if t.HasMember(username) {
			teams = append(teams, *t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].CreatedAt.After(teams[j].CreatedAt) })
	return teams, nil
}

func (repo *teamRepository) GetTeamByID(ctx context.Context, id string) (team.Team, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teams[id]; ok {
		return *t, nil
	}
	return team.Team{}, team.ErrNotFound
}

func (repo *teamRepository) UpdateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teams[t.ID]; !ok {
		return team.Team{}, team.ErrNotFound
	}
	repo.db.teams[t.ID] = &t
	return t, nil
}

func (repo *teamRepository) AddTeamMember(ctx context.Context, teamID string, m team.Member) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.teams[teamID]
	if !ok {
		return team.ErrNotFound
	}
	t.Members = append(t.Members, m)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *teamRepository) RemoveTeamMember(ctx context.Context, teamID, username string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.teams[teamID]
	if !ok {
		return team.ErrNotFound
	}
	members := t.Members[:0]
	for _, m := range t.Members {
		if m.Username != username {
			members = append(members, m)
		}
	}
	t.Members = members
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *teamRepository) DeleteTeam(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teams[id]; !ok {
		return team.ErrNotFound
	}
	delete(repo.db.teams, id)
	return nil
}

func (repo *teamRepository) CreateInvitation(ctx context.Context, inv team.Invitation) (team.Invitation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.invitations[inv.Token] = &inv
	return inv, nil
}

func (repo *teamRepository) GetInvitationByToken(ctx context.Context, token string) (team.Invitation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inv, ok := repo.db.invitations[token]; ok {
		return *inv, nil
	}
	return team.Invitation{}, team.ErrInvitationNotFound
}

func (repo *teamRepository) UpdateInvitation(ctx context.Context, inv team.Invitation) (team.Invitation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.invitations[inv.Token]; !ok {
		return team.Invitation{}, team.ErrInvitationNotFound
	}
	repo.db.invitations[inv.Token] = &inv
	return inv, nil
}

func (repo *teamRepository) CreateNotification(ctx context.Context, n team.Notification) (team.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *teamRepository) QueryNotificationsByUser(ctx context.Context, username string, limit int) ([]team.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var notifs []team.Notification
	for _, n := range repo.db.notifications {
		if n.Username == username {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (repo *teamRepository) MarkNotificationRead(ctx context.Context, id, username string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok || n.Username != username {
		return team.ErrNotificationNotFound
	}
	n.Read = true
	n.ReadAt = time.Now().UTC()
	return nil
}

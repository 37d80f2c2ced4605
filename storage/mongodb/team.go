package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core/team"
)

type teamRepository struct {
	teams         *mongo.Collection
	invitations   *mongo.Collection
	notifications *mongo.Collection
}

var _ team.Repository = (*teamRepository)(nil) // interface compliance check

func NewTeamRepository(db *DB) team.Repository {
	return &teamRepository{
		teams:         db.db.Collection(colTeams),
		invitations:   db.db.Collection(colTeamInvitations),
		notifications: db.db.Collection(colNotifications),
	}
}

func (repo *teamRepository) CreateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	if _, err := repo.teams.InsertOne(ctx, t); err != nil {
		return team.Team{}, err
	}
	return t, nil
}

func (repo *teamRepository) QueryTeamsByMember(ctx context.Context, username string) ([]team.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.teams.Find(ctx, bson.M{"members.username": username}, opts)
	if err != nil {
		return nil, err
	}
	var teams []team.Team
	if err = cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (repo *teamRepository) GetTeamByID(ctx context.Context, id string) (team.Team, error) {
	var t team.Team
	if err := repo.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}
	return t, nil
}

func (repo *teamRepository) UpdateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	res, err := repo.teams.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return team.Team{}, err
	}
	if res.MatchedCount == 0 {
		return team.Team{}, team.ErrNotFound
	}
	return t, nil
}

func (repo *teamRepository) AddTeamMember(ctx context.Context, teamID string, m team.Member) error {
	res, err := repo.teams.UpdateOne(ctx, bson.M{"_id": teamID}, bson.M{
		"$push": bson.M{"members": m},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return team.ErrNotFound
	}
	return nil
}

func (repo *teamRepository) RemoveTeamMember(ctx context.Context, teamID, username string) error {
	res, err := repo.teams.UpdateOne(ctx, bson.M{"_id": teamID}, bson.M{
		"$pull": bson.M{"members": bson.M{"username": username}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return team.ErrNotFound
	}
	return nil
}

func (repo *teamRepository) DeleteTeam(ctx context.Context, id string) error {
	res, err := repo.teams.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return team.ErrNotFound
	}
	return nil
}

func (repo *teamRepository) CreateInvitation(ctx context.Context, inv team.Invitation) (team.Invitation, error) {
	if _, err := repo.invitations.InsertOne(ctx, inv); err != nil {
		return team.Invitation{}, err
	}
	return inv, nil
}

func (repo *teamRepository) GetInvitationByToken(ctx context.Context, token string) (team.Invitation, error) {
	var inv team.Invitation
	if err := repo.invitations.FindOne(ctx, bson.M{"_id": token}).Decode(&inv); err != nil {
		if err == mongo.ErrNoDocuments {
			return team.Invitation{}, team.ErrInvitationNotFound
		}
		return team.Invitation{}, err
	}
	return inv, nil
}

func (repo *teamRepository) UpdateInvitation(ctx context.Context, inv team.Invitation) (team.Invitation, error) {
	res, err := repo.invitations.ReplaceOne(ctx, bson.M{"_id": inv.Token}, inv)
	if err != nil {
		return team.Invitation{}, err
	}
	if res.MatchedCount == 0 {
		return team.Invitation{}, team.ErrInvitationNotFound
	}
	return inv, nil
}

func (repo *teamRepository) CreateNotification(ctx context.Context, n team.Notification) (team.Notification, error) {
	if _, err := repo.notifications.InsertOne(ctx, n); err != nil {
		return team.Notification{}, err
	}
	return n, nil
}

func (repo *teamRepository) QueryNotificationsByUser(ctx context.Context, username string, limit int) ([]team.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := repo.notifications.Find(ctx, bson.M{"user_id": username}, opts)
	if err != nil {
		return nil, err
	}
	var notifs []team.Notification
	if err = cur.All(ctx, &notifs); err != nil {
		return nil, err
	}
	return notifs, nil
}

func (repo *teamRepository) MarkNotificationRead(ctx context.Context, id, username string) error {
	res, err := repo.notifications.UpdateOne(
		ctx,
		bson.M{"_id": id, "user_id": username},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return team.ErrNotificationNotFound
	}
	return nil
}

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core/project"
)

type projectRepository struct {
	col *mongo.Collection
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{col: db.db.Collection(colProjects)}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	if _, err := repo.col.InsertOne(ctx, prj); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return project.Project{}, project.ErrProjectExists
		}
		return project.Project{}, err
	}
	return prj, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	var prj project.Project
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&prj); err != nil {
		if err == mongo.ErrNoDocuments {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return prj, nil
}

func (repo *projectRepository) QueryAccessibleProjects(ctx context.Context, username string, teamIDs []string) ([]project.Project, error) {
	if teamIDs == nil {
		teamIDs = []string{}
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"created_by": username},
		bson.M{"team_id": bson.M{"$in": teamIDs}},
	}}
	return repo.query(ctx, filter)
}

func (repo *projectRepository) QueryProjectsByCreators(ctx context.Context, usernames []string) ([]project.Project, error) {
	return repo.query(ctx, bson.M{"created_by": bson.M{"$in": usernames}})
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": prj.ID}, prj)
	if err != nil {
		return project.Project{}, err
	}
	if res.MatchedCount == 0 {
		return project.Project{}, project.ErrNotFound
	}
	return prj, nil
}

func (repo *projectRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := repo.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (repo *projectRepository) query(ctx context.Context, filter bson.M) ([]project.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var prjs []project.Project
	if err = cur.All(ctx, &prjs); err != nil {
		return nil, err
	}
	return prjs, nil
}

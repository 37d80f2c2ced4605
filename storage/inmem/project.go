package inmem

import (
	"context"
	"sort"

	"github.com/plangrid/matcast/core/project"
)

type projectRepository struct {
	db *projectTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db.project}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prj.ID]; ok {
		return project.Project{}, project.ErrProjectExists
	}
	repo.db.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prj, ok := repo.db.table[id]; ok {
		return *prj, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) QueryAccessibleProjects(ctx context.Context, username string, teamIDs []string) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teamSet := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		teamSet[id] = struct{}{}
	}

	var prjs []project.Project
	for _, prj := range repo.db.table {
		_, inTeam := teamSet[prj.TeamID]
		if prj.CreatedBy == username || (prj.TeamID != "" && inTeam) {
			prjs = append(prjs, *prj)
		}
	}
	sortProjectsNewestFirst(prjs)
	return prjs, nil
}

func (repo *projectRepository) QueryProjectsByCreators(ctx context.Context, usernames []string) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	creators := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		creators[u] = struct{}{}
	}

	var prjs []project.Project
	for _, prj := range repo.db.table {
		if _, ok := creators[prj.CreatedBy]; ok {
			prjs = append(prjs, *prj)
		}
	}
	sortProjectsNewestFirst(prjs)
	return prjs, nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prj.ID]; !ok {
		return project.Project{}, project.ErrNotFound
	}
	repo.db.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) DeleteProject(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return project.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func sortProjectsNewestFirst(prjs []project.Project) {
	sort.Slice(prjs, func(i, j int) bool {
		return prjs[i].CreatedAt.After(prjs[j].CreatedAt)
	})
}

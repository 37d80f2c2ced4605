package project

import (
	"context"
	"errors"
	"time"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/team"
	"github.com/plangrid/matcast/core/updates"
)

var (
	// errors
	ErrNotFound      = errors.New("project not found")
	ErrProjectExists = errors.New("a project with this ID already exists")
)

type (
	Repository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		GetProjectByID(ctx context.Context, id string) (Project, error)
		QueryAccessibleProjects(ctx context.Context, username string, teamIDs []string) ([]Project, error)
		QueryProjectsByCreators(ctx context.Context, usernames []string) ([]Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)
		DeleteProject(ctx context.Context, id string) error
	}

	// TeamDirectory is the slice of the team service projects care about.
	TeamDirectory interface {
		TeamIDsForUser(ctx context.Context, username string) ([]string, error)
		EnsureTeamForProject(ctx context.Context, teamID, projectID, projectName, owner string) (team.Team, bool, error)
		DeleteProjectTeam(ctx context.Context, teamID, projectID string) error
		Get(ctx context.Context, id, username string) (team.Team, error)
	}

	Service struct {
		repo  Repository
		teams TeamDirectory
		hub   updates.Hub
		log   core.Logger
	}
)

func NewService(repo Repository, teams TeamDirectory, hub updates.Hub, logger core.Logger) *Service {
	return &Service{repo: repo, teams: teams, hub: hub, log: logger}
}

// Create inserts a new project for username. If the project declares a
// team, the team is created (or relinked) and its members are notified.
func (svc *Service) Create(ctx context.Context, np NewProject, username string) (Project, error) {
	now := time.Now().UTC()
	prj := Project{
		ID:             np.ProjectID,
		Name:           np.Name,
		Location:       np.Location,
		State:          np.State,
		City:           np.City,
		Status:         np.Status,
		TowerType:      np.TowerType,
		SubstationType: np.SubstationType,
		Cost:           np.Cost,
		StartDate:      np.StartDate,
		EndDate:        np.EndDate,
		SizeKM:         np.SizeKM,
		Description:    np.Description,
		TeamID:         np.TeamID,
		CreatedBy:      username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if prj.ID == "" {
		prj.ID = core.NewID("PROJ")
	}
	if prj.Status == "" {
		prj.Status = StatusPlanned
	}

	prj, err := svc.repo.CreateProject(ctx, prj)
	if err != nil {
		return Project{}, err
	}

	if prj.TeamID != "" {
		_, created, err := svc.teams.EnsureTeamForProject(ctx, prj.TeamID, prj.ID, prj.Name, username)
		if err != nil {
			svc.log.Error("ensuring project team", "project", prj.ID, "team", prj.TeamID, "err", err)
		} else {
			updType := "project_assigned"
			if created {
				updType = "project_created"
			}
			svc.hub.Publish(prj.TeamID, updType, map[string]interface{}{
				"project_id":   prj.ID,
				"project_name": prj.Name,
				"created_by":   username,
				"status":       prj.Status,
			})
		}
	}
	return prj, nil
}

// QueryForUser returns the user's accessible projects: their own plus
// those assigned to teams they belong to.
func (svc *Service) QueryForUser(ctx context.Context, username string) ([]Project, error) {
	teamIDs, err := svc.teams.TeamIDsForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAccessibleProjects(ctx, username, teamIDs)
}

// QueryForTeam returns projects created by members of the given team;
// username must be a member.
func (svc *Service) QueryForTeam(ctx context.Context, teamID, username string) ([]Project, error) {
	t, err := svc.teams.Get(ctx, teamID, username)
	if err != nil {
		return nil, err
	}
	creators := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		creators = append(creators, m.Username)
	}
	return svc.repo.QueryProjectsByCreators(ctx, creators)
}

// Get returns the project only if username can access it.
func (svc *Service) Get(ctx context.Context, id, username string) (Project, error) {
	prj, err := svc.repo.GetProjectByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	ok, err := svc.canAccess(ctx, prj, username)
	if err != nil {
		return Project{}, err
	}
	if !ok {
		return Project{}, ErrNotFound
	}
	return prj, nil
}

// GetDetails returns the project with its team members attached.
func (svc *Service) GetDetails(ctx context.Context, id, username string) (Details, error) {
	prj, err := svc.Get(ctx, id, username)
	if err != nil {
		return Details{}, err
	}

	det := Details{
		Project:     prj,
		TeamMembers: []team.Member{},
		TeamInfo:    TeamInfo{TeamID: prj.TeamID, HasTeam: prj.TeamID != ""},
	}
	if prj.TeamID != "" {
		t, err := svc.teams.Get(ctx, prj.TeamID, username)
		if err == nil {
			det.TeamMembers = t.Members
			det.TeamInfo.MemberCount = len(t.Members)
		} else if err != team.ErrNotFound {
			return Details{}, err
		}
	}
	return det, nil
}

func (svc *Service) Update(ctx context.Context, id, username string, up UpdateProject) (Project, error) {
	prj, err := svc.Get(ctx, id, username)
	if err != nil {
		return Project{}, err
	}

	if up.Name != "" {
		prj.Name = up.Name
	}
	if up.Status != "" {
		prj.Status = up.Status
	}
	if up.Location != nil {
		prj.Location = *up.Location
	}
	if up.State != nil {
		prj.State = *up.State
	}
	if up.City != nil {
		prj.City = *up.City
	}
	if up.TowerType != nil {
		prj.TowerType = *up.TowerType
	}
	if up.SubstationType != nil {
		prj.SubstationType = *up.SubstationType
	}
	if up.Cost != nil {
		prj.Cost = *up.Cost
	}
	if up.StartDate != nil {
		prj.StartDate = *up.StartDate
	}
	if up.EndDate != nil {
		prj.EndDate = *up.EndDate
	}
	if up.SizeKM != nil {
		prj.SizeKM = *up.SizeKM
	}
	if up.Description != nil {
		prj.Description = *up.Description
	}
	prj.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProject(ctx, prj)
}

// Delete removes the project; its auto-created team, if any, goes with it.
// Only the creator may delete.
func (svc *Service) Delete(ctx context.Context, id, username string) error {
	prj, err := svc.repo.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}
	if prj.CreatedBy != username {
		return ErrNotFound
	}

	if err = svc.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	if prj.TeamID != "" {
		if err = svc.teams.DeleteProjectTeam(ctx, prj.TeamID, id); err != nil {
			svc.log.Error("deleting project team", "project", id, "team", prj.TeamID, "err", err)
		}
	}
	return nil
}

// VisibleProjectIDs returns the IDs of every project username can access.
// It is the access scope consumed by forecasts, orders and the dashboard.
func (svc *Service) VisibleProjectIDs(ctx context.Context, username string) ([]string, error) {
	prjs, err := svc.QueryForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(prjs))
	for _, prj := range prjs {
		ids = append(ids, prj.ID)
	}
	return ids, nil
}

// CountsForUser summarizes the user's accessible projects for the
// dashboard. "This month" means created during the current UTC month.
func (svc *Service) CountsForUser(ctx context.Context, username string) (Counts, error) {
	prjs, err := svc.QueryForUser(ctx, username)
	if err != nil {
		return Counts{}, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var counts Counts
	counts.Total = len(prjs)
	for _, prj := range prjs {
		if prj.Status == StatusInProgress {
			counts.Active++
		}
		if !prj.CreatedAt.Before(monthStart) {
			counts.ThisMonth++
		}
	}
	return counts, nil
}

func (svc *Service) canAccess(ctx context.Context, prj Project, username string) (bool, error) {
	if prj.CreatedBy == username {
		return true, nil
	}
	if prj.TeamID == "" {
		return false, nil
	}
	teamIDs, err := svc.teams.TeamIDsForUser(ctx, username)
	if err != nil {
		return false, err
	}
	for _, id := range teamIDs {
		if id == prj.TeamID {
			return true, nil
		}
	}
	return false, nil
}

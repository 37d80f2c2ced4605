package project

import (
	"time"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/team"
)

// Statuses
const (
	StatusPlanned    = "PLANNED"
	StatusInProgress = "IN PROGRESS"
	StatusCompleted  = "COMPLETED"
)

type Project struct {
	ID             string    `json:"project_id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Location       string    `json:"location" bson:"location"`
	State          string    `json:"state" bson:"state"`
	City           string    `json:"city" bson:"city"`
	Status         string    `json:"status" bson:"status"`
	TowerType      string    `json:"tower_type" bson:"tower_type"`
	SubstationType string    `json:"substation_type" bson:"substation_type"`
	Cost           float64   `json:"cost" bson:"cost"`
	StartDate      string    `json:"start_date" bson:"start_date"`
	EndDate        string    `json:"end_date" bson:"end_date"`
	SizeKM         float64   `json:"project_size_km" bson:"project_size_km"`
	Description    string    `json:"description" bson:"description"`
	TeamID         string    `json:"team_id,omitempty" bson:"team_id,omitempty"`
	CreatedBy      string    `json:"created_by" bson:"created_by"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// Details is a project plus its team context, as served to the UI.
type Details struct {
	Project
	TeamMembers []team.Member `json:"team_members"`
	TeamInfo    TeamInfo      `json:"team_info"`
}

type TeamInfo struct {
	TeamID      string `json:"team_id,omitempty"`
	HasTeam     bool   `json:"has_team"`
	MemberCount int    `json:"member_count"`
}

// Counts summarizes a user's accessible projects for the dashboard.
type Counts struct {
	Total     int
	Active    int
	ThisMonth int
}

type NewProject struct {
	ProjectID      string  `json:"project_id" validate:"omitempty,alphanum_"`
	Name           string  `json:"name" validate:"required"`
	Location       string  `json:"location"`
	State          string  `json:"state"`
	City           string  `json:"city"`
	Status         string  `json:"status" validate:"omitempty,oneof=PLANNED 'IN PROGRESS' COMPLETED"`
	TowerType      string  `json:"tower_type"`
	SubstationType string  `json:"substation_type"`
	Cost           float64 `json:"cost" validate:"omitempty,gte=0"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	SizeKM         float64 `json:"project_size_km" validate:"omitempty,gte=0"`
	Description    string  `json:"description"`
	TeamID         string  `json:"team_id"`
}

func (np *NewProject) Validate() error {
	np.Name = core.CleanString(np.Name)
	if np.Status == "" {
		np.Status = StatusPlanned
	}
	return core.Validate.Struct(np)
}

type UpdateProject struct {
	Name           string   `json:"name" validate:"omitempty"`
	Location       *string  `json:"location"`
	State          *string  `json:"state"`
	City           *string  `json:"city"`
	Status         string   `json:"status" validate:"omitempty,oneof=PLANNED 'IN PROGRESS' COMPLETED"`
	TowerType      *string  `json:"tower_type"`
	SubstationType *string  `json:"substation_type"`
	Cost           *float64 `json:"cost" validate:"omitempty,gte=0"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	SizeKM         *float64 `json:"project_size_km" validate:"omitempty,gte=0"`
	Description    *string  `json:"description"`
}

func (up *UpdateProject) Validate() error {
	up.Name = core.CleanString(up.Name)
	return core.Validate.Struct(up)
}

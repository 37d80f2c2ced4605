package team

import (
	"time"

	"github.com/plangrid/matcast/core"
)

// Member roles within a team. Unrelated to app-wide user roles.
const (
	MemberRoleOwner  = "owner"
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

// Invitation statuses
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

type Member struct {
	Username string    `json:"username" bson:"username"`
	Role     string    `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"` // UTC
}

type Settings struct {
	AllowMemberInvites         bool `json:"allow_member_invites" bson:"allow_member_invites"`
	RequireApprovalForProjects bool `json:"require_approval_for_projects" bson:"require_approval_for_projects"`
}

type Team struct {
	ID          string    `json:"team_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	ProjectID   string    `json:"project_id,omitempty" bson:"project_id,omitempty"`
	ProjectName string    `json:"project_name,omitempty" bson:"project_name,omitempty"`
	CreatedBy   string    `json:"created_by" bson:"created_by"`
	Members     []Member  `json:"members" bson:"members"`
	Settings    Settings  `json:"settings" bson:"settings"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// HasMember reports whether username belongs to the team.
func (t *Team) HasMember(username string) bool {
	return t.member(username) != nil
}

// MemberHasRole reports whether username belongs to the team with one of
// the given roles.
func (t *Team) MemberHasRole(username string, roles ...string) bool {
	m := t.member(username)
	if m == nil {
		return false
	}
	for _, role := range roles {
		if m.Role == role {
			return true
		}
	}
	return false
}

func (t *Team) member(username string) *Member {
	for i := range t.Members {
		if t.Members[i].Username == username {
			return &t.Members[i]
		}
	}
	return nil
}

type Invitation struct {
	Token      string    `json:"invitation_token" bson:"_id"`
	TeamID     string    `json:"team_id" bson:"team_id"`
	TeamName   string    `json:"team_name" bson:"team_name"`
	Email      string    `json:"email" bson:"email"`
	Role       string    `json:"role" bson:"role"`
	InvitedBy  string    `json:"invited_by" bson:"invited_by"`
	Status     string    `json:"status" bson:"status"`
	UserExists bool      `json:"user_exists" bson:"user_exists"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"` // UTC
	AcceptedAt time.Time `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
}

// Expired reports whether the invitation is older than ttl.
func (inv *Invitation) Expired(ttl time.Duration) bool {
	return time.Now().UTC().After(inv.CreatedAt.Add(ttl))
}

type Notification struct {
	ID        string                 `json:"id" bson:"_id"`
	Username  string                 `json:"user_id" bson:"user_id"`
	Type      string                 `json:"type" bson:"type"`
	Message   string                 `json:"message" bson:"message"`
	Data      map[string]interface{} `json:"data" bson:"data"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"` // UTC
	ReadAt    time.Time              `json:"read_at,omitempty" bson:"read_at,omitempty"`
}

type NewTeam struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nt *NewTeam) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	return core.Validate.Struct(nt)
}

type NewInvitation struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=owner admin member"`
}

func (ni *NewInvitation) Validate() error {
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	if ni.Role == "" {
		ni.Role = MemberRoleMember
	}
	return core.Validate.Struct(ni)
}

package team

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/updates"
)

var (
	// errors
	ErrNotFound             = errors.New("team not found")
	ErrInvitationNotFound   = errors.New("invalid or expired invitation")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrCannotRemoveOwner    = errors.New("cannot remove team owner")
)

const notificationQueryLimit = 50

type (
	Repository interface {
		CreateTeam(ctx context.Context, t Team) (Team, error)
		QueryTeamsByMember(ctx context.Context, username string) ([]Team, error)
		GetTeamByID(ctx context.Context, id string) (Team, error)
		UpdateTeam(ctx context.Context, t Team) (Team, error)
		AddTeamMember(ctx context.Context, teamID string, m Member) error
		RemoveTeamMember(ctx context.Context, teamID, username string) error
		DeleteTeam(ctx context.Context, id string) error

		CreateInvitation(ctx context.Context, inv Invitation) (Invitation, error)
		GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
		UpdateInvitation(ctx context.Context, inv Invitation) (Invitation, error)

		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotificationsByUser(ctx context.Context, username string, limit int) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id, username string) error
	}

	// UserDirectory is the slice of the user service teams care about.
	UserDirectory interface {
		EmailExists(ctx context.Context, email string) (bool, error)
	}

	Service struct {
		repo  Repository
		users UserDirectory
		mail  core.EmailService
		hub   updates.Hub
		log   core.Logger
		conf  *core.Config
	}
)

func NewService(repo Repository, users UserDirectory, mailSvc core.EmailService, hub updates.Hub, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, users: users, mail: mailSvc, hub: hub, log: logger, conf: conf}
}

func (svc *Service) Create(ctx context.Context, nt NewTeam, owner string) (Team, error) {
	now := time.Now().UTC()
	t := Team{
		ID:          core.NewID("TEAM"),
		Name:        nt.Name,
		Description: nt.Description,
		CreatedBy:   owner,
		Members: []Member{
			{Username: owner, Role: MemberRoleOwner, JoinedAt: now},
		},
		Settings:  Settings{AllowMemberInvites: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
	t, err := svc.repo.CreateTeam(ctx, t)
	if err != nil {
		return Team{}, err
	}

	svc.notify(ctx, owner, "team_created", fmt.Sprintf("Team %q created successfully", t.Name), nil)
	return t, nil
}

// QueryForUser returns the teams username belongs to.
func (svc *Service) QueryForUser(ctx context.Context, username string) ([]Team, error) {
	return svc.repo.QueryTeamsByMember(ctx, username)
}

// Get returns the team only if username is one of its members.
func (svc *Service) Get(ctx context.Context, id, username string) (Team, error) {
	t, err := svc.repo.GetTeamByID(ctx, id)
	if err != nil {
		return Team{}, err
	}
	if !t.HasMember(username) {
		return Team{}, ErrNotFound
	}
	return t, nil
}

// Delete removes the team; only the owner may delete. Remaining members
// are notified first.
func (svc *Service) Delete(ctx context.Context, id, username string) error {
	t, err := svc.repo.GetTeamByID(ctx, id)
	if err != nil {
		return err
	}
	if !t.MemberHasRole(username, MemberRoleOwner) {
		return ErrPermissionDenied
	}

	for _, m := range t.Members {
		if m.Username != username {
			svc.notify(ctx, m.Username, "team_deleted",
				fmt.Sprintf("Team %q has been deleted by the owner", t.Name), nil)
		}
	}
	return svc.repo.DeleteTeam(ctx, id)
}

// Members returns the team's member list; username must itself be a member.
func (svc *Service) Members(ctx context.Context, id, username string) ([]Member, error) {
	t, err := svc.Get(ctx, id, username)
	if err != nil {
		return nil, err
	}
	return t.Members, nil
}

// RemoveMember removes member from the team. Requires owner or admin role;
// the owner itself cannot be removed.
func (svc *Service) RemoveMember(ctx context.Context, id, username, member string) error {
	t, err := svc.repo.GetTeamByID(ctx, id)
	if err != nil {
		return err
	}
	if !t.MemberHasRole(username, MemberRoleOwner, MemberRoleAdmin) {
		return ErrPermissionDenied
	}
	if t.MemberHasRole(member, MemberRoleOwner) {
		return ErrCannotRemoveOwner
	}

	if err = svc.repo.RemoveTeamMember(ctx, id, member); err != nil {
		return err
	}
	svc.notify(ctx, member, "team_removed", fmt.Sprintf("You were removed from team %q", t.Name), nil)
	return nil
}

// Invite creates a pending invitation and emails the invitee a link.
// Requires owner or admin role on the team.
func (svc *Service) Invite(ctx context.Context, id, username string, ni NewInvitation) (Invitation, error) {
	t, err := svc.repo.GetTeamByID(ctx, id)
	if err != nil {
		return Invitation{}, err
	}
	if !t.MemberHasRole(username, MemberRoleOwner, MemberRoleAdmin) {
		return Invitation{}, ErrPermissionDenied
	}

	userExists, err := svc.users.EmailExists(ctx, ni.Email)
	if err != nil {
		return Invitation{}, err
	}

	inv := Invitation{
		Token:      core.NewID("INVITE"),
		TeamID:     t.ID,
		TeamName:   t.Name,
		Email:      ni.Email,
		Role:       ni.Role,
		InvitedBy:  username,
		Status:     InvitationPending,
		UserExists: userExists,
		CreatedAt:  time.Now().UTC(),
	}
	inv, err = svc.repo.CreateInvitation(ctx, inv)
	if err != nil {
		return Invitation{}, err
	}

	svc.sendInvitationEmail(inv)
	return inv, nil
}

func (svc *Service) sendInvitationEmail(inv Invitation) {
	baseURL := strings.TrimRight(svc.conf.FrontendBaseURL, "/")

	var url, subject string
	if inv.UserExists {
		url = fmt.Sprintf("%s/team-invitation?token=%s", baseURL, inv.Token)
		subject = fmt.Sprintf("Team Invitation - %s", inv.TeamName)
	} else {
		url = fmt.Sprintf("%s/register?invite=%s", baseURL, inv.Token)
		subject = fmt.Sprintf("Join %s Team - %s", inv.TeamName, svc.conf.AppName)
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: inv.Email}},
		Subject: subject,
		TextContent: fmt.Sprintf(
			"Hello,\n\n"+
				"%s has invited you to join the %q team on %s as a %s.\n"+
				"To accept the invitation, please open the following link:\n\n%s\n\n"+
				"This invitation expires after %s.\n",
			inv.InvitedBy, inv.TeamName, svc.conf.AppName, inv.Role, url,
			svc.conf.InvitationExpirationDelta,
		),
	})
}

// GetInvitation returns a pending, unexpired invitation by token.
func (svc *Service) GetInvitation(ctx context.Context, token string) (Invitation, error) {
	inv, err := svc.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return Invitation{}, err
	}
	if inv.Status != InvitationPending || inv.Expired(svc.conf.InvitationExpirationDelta) {
		return Invitation{}, ErrInvitationNotFound
	}
	return inv, nil
}

// AcceptInvitation adds username to the invited team and marks the
// invitation accepted. Existing members are notified.
func (svc *Service) AcceptInvitation(ctx context.Context, token, username string) error {
	inv, err := svc.GetInvitation(ctx, token)
	if err != nil {
		return err
	}

	t, err := svc.repo.GetTeamByID(ctx, inv.TeamID)
	if err != nil {
		return err
	}
	if !t.HasMember(username) {
		err = svc.repo.AddTeamMember(ctx, inv.TeamID, Member{
			Username: username,
			Role:     inv.Role,
			JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	inv.Status = InvitationAccepted
	inv.AcceptedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateInvitation(ctx, inv); err != nil {
		return err
	}

	svc.notify(ctx, username, "team_joined", fmt.Sprintf("You joined team %q", inv.TeamName), nil)
	for _, m := range t.Members {
		if m.Username != username {
			svc.notify(ctx, m.Username, "team_member_joined",
				fmt.Sprintf("%s joined team %q", username, inv.TeamName), nil)
		}
	}
	svc.hub.Publish(inv.TeamID, "member_joined", map[string]interface{}{
		"username": username,
		"role":     inv.Role,
	})
	return nil
}

// Notifications returns the user's most recent notifications, newest first.
func (svc *Service) Notifications(ctx context.Context, username string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(ctx, username, notificationQueryLimit)
}

func (svc *Service) MarkNotificationRead(ctx context.Context, id, username string) error {
	return svc.repo.MarkNotificationRead(ctx, id, username)
}

// Notify records a notification for username. Failures are logged, never
// propagated.
func (svc *Service) Notify(ctx context.Context, username, typ, message string, data map[string]interface{}) {
	svc.notify(ctx, username, typ, message, data)
}

func (svc *Service) notify(ctx context.Context, username, typ, message string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	n := Notification{
		ID:        core.NewID("NOTIF"),
		Username:  username,
		Type:      typ,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := svc.repo.CreateNotification(ctx, n); err != nil {
		svc.log.Error("creating notification", "user", username, "type", typ, "err", err)
	}
}

// TeamIDsForUser returns the IDs of all teams username belongs to. Used by
// project access scoping.
func (svc *Service) TeamIDsForUser(ctx context.Context, username string) ([]string, error) {
	teams, err := svc.repo.QueryTeamsByMember(ctx, username)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// EnsureTeamForProject creates teamID with owner as sole member if it does
// not exist yet, and links it to the project either way. Reports whether
// the team was created.
func (svc *Service) EnsureTeamForProject(ctx context.Context, teamID, projectID, projectName, owner string) (Team, bool, error) {
	now := time.Now().UTC()

	t, err := svc.repo.GetTeamByID(ctx, teamID)
	switch err {
	case nil:
		t.ProjectID = projectID
		t.ProjectName = projectName
		t.UpdatedAt = now
		t, err = svc.repo.UpdateTeam(ctx, t)
		return t, false, err

	case ErrNotFound:
		t = Team{
			ID:          teamID,
			Name:        projectName + "-Team",
			Description: fmt.Sprintf("Team for %s project", projectName),
			ProjectID:   projectID,
			ProjectName: projectName,
			CreatedBy:   owner,
			Members: []Member{
				{Username: owner, Role: MemberRoleOwner, JoinedAt: now},
			},
			Settings:  Settings{AllowMemberInvites: true},
			CreatedAt: now,
			UpdatedAt: now,
		}
		t, err = svc.repo.CreateTeam(ctx, t)
		return t, err == nil, err

	default:
		return Team{}, false, err
	}
}

// DeleteProjectTeam deletes teamID if it is linked to projectID. Used when
// the owning project is deleted.
func (svc *Service) DeleteProjectTeam(ctx context.Context, teamID, projectID string) error {
	t, err := svc.repo.GetTeamByID(ctx, teamID)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	if t.ProjectID != projectID {
		return nil
	}
	return svc.repo.DeleteTeam(ctx, teamID)
}

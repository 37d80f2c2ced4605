package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core/project"
	"github.com/plangrid/matcast/core/team"
)

type teamApi struct {
	svc      *team.Service
	projects *project.Service
}

func registerTeamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *team.Service, projects *project.Service) {
	api := teamApi{svc: svc, projects: projects}

	// invitation lookup is public so the signup page can show
	// team context before the invitee has an account
	g.GET("/invitations/:token", api.retrieveInvitation)

	tg := g.Group("/teams", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.DELETE("/:id", api.destroy)
	tg.GET("/:id/members", api.members)
	tg.DELETE("/:id/members/:username", api.removeMember)
	tg.POST("/:id/invitations", api.invite)
	tg.GET("/:id/projects", api.teamProjects)

	ig := g.Group("/invitations", jwt)
	ig.POST("/:token/accept", api.acceptInvitation)

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.notifications)
	ng.POST("/:id/read", api.markNotificationRead)
}

func (api *teamApi) create(ctx echo.Context) error {
	var data team.NewTeam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeam")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tm, err := api.svc.Create(ctx.Request().Context(), data, claims.Username)
	if err != nil {
		return errors.Wrap(err, "creating team")
	}
	return ctx.JSON(http.StatusCreated, tm)
}

func (api *teamApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	teams, err := api.svc.QueryForUser(ctx.Request().Context(), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying teams")
	}
	if teams == nil {
		teams = []team.Team{}
	}
	return ctx.JSON(http.StatusOK, teams)
}

func (api *teamApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tm, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), claims.Username)
	if err != nil {
		return errors.Wrap(err, "finding team")
	}
	return ctx.JSON(http.StatusOK, tm)
}

func (api *teamApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Username); err != nil {
		return errors.Wrap(err, "deleting team")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teamApi) members(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	members, err := api.svc.Members(ctx.Request().Context(), ctx.Param("id"), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying team members")
	}
	if members == nil {
		members = []team.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *teamApi) removeMember(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	err = api.svc.RemoveMember(ctx.Request().Context(), ctx.Param("id"), claims.Username, ctx.Param("username"))
	if err != nil {
		return errors.Wrap(err, "removing team member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teamApi) invite(ctx echo.Context) error {
	var data team.NewInvitation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvitation")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	inv, err := api.svc.Invite(ctx.Request().Context(), ctx.Param("id"), claims.Username, data)
	if err != nil {
		return errors.Wrap(err, "creating invitation")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *teamApi) retrieveInvitation(ctx echo.Context) error {
	inv, err := api.svc.GetInvitation(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return errors.Wrap(err, "finding invitation")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *teamApi) acceptInvitation(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.AcceptInvitation(ctx.Request().Context(), ctx.Param("token"), claims.Username); err != nil {
		return errors.Wrap(err, "accepting invitation")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Invitation accepted."})
}

func (api *teamApi) teamProjects(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	projects, err := api.projects.QueryForTeam(ctx.Request().Context(), ctx.Param("id"), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying team projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *teamApi) notifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	notifs, err := api.svc.Notifications(ctx.Request().Context(), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []team.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *teamApi) markNotificationRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.MarkNotificationRead(ctx.Request().Context(), ctx.Param("id"), claims.Username); err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

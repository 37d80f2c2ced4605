package order

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/project"
	"github.com/plangrid/matcast/core/updates"
)

var (
	// errors
	ErrNotFound = errors.New("order not found")
)

type (
	Repository interface {
		CreateOrder(ctx context.Context, o Order) (Order, error)
		GetOrderByID(ctx context.Context, id string) (Order, error)
		QueryOrdersByProjects(ctx context.Context, projectIDs []string) ([]Order, error)
		UpdateOrder(ctx context.Context, o Order) (Order, error)
		DeleteOrder(ctx context.Context, id string) error
	}

	// ProjectDirectory is the slice of the project service orders care about.
	ProjectDirectory interface {
		VisibleProjectIDs(ctx context.Context, username string) ([]string, error)
		Get(ctx context.Context, id, username string) (project.Project, error)
	}

	Service struct {
		repo     Repository
		projects ProjectDirectory
		hub      updates.Hub
	}
)

func NewService(repo Repository, projects ProjectDirectory, hub updates.Hub) *Service {
	return &Service{repo: repo, projects: projects, hub: hub}
}

// Create prices and stores a new pending order; the project's team is
// notified when it has one.
func (svc *Service) Create(ctx context.Context, no NewOrder, username string) (Order, error) {
	prj, err := svc.projects.Get(ctx, no.ProjectID, username)
	if err != nil {
		return Order{}, err
	}

	unitPrice := UnitPrice(no.Material, no.Dealer)
	now := time.Now().UTC()
	o := Order{
		ID:               core.NewID("ORD"),
		ProjectID:        prj.ID,
		Material:         no.Material,
		Dealer:           no.Dealer,
		Quantity:         no.Quantity,
		UnitPrice:        round2(unitPrice),
		TotalPrice:       round2(no.Quantity * unitPrice),
		ExpectedDelivery: no.ExpectedDelivery,
		Status:           StatusPending,
		CreatedBy:        username,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	o, err = svc.repo.CreateOrder(ctx, o)
	if err != nil {
		return Order{}, err
	}

	if prj.TeamID != "" {
		svc.hub.Publish(prj.TeamID, "order_created", map[string]interface{}{
			"order_id":     o.ID,
			"project_id":   prj.ID,
			"project_name": prj.Name,
			"material":     o.Material,
			"quantity":     o.Quantity,
			"created_by":   username,
		})
	}
	return o, nil
}

// QueryForUser returns orders on the user's accessible projects, newest
// first.
func (svc *Service) QueryForUser(ctx context.Context, username string) ([]Order, error) {
	ids, err := svc.projects.VisibleProjectIDs(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return svc.repo.QueryOrdersByProjects(ctx, ids)
}

// UpdateStatus changes the order's status; only the creator may update.
func (svc *Service) UpdateStatus(ctx context.Context, id, username string, uo UpdateOrder) (Order, error) {
	o, err := svc.repo.GetOrderByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.CreatedBy != username {
		return Order{}, ErrNotFound
	}

	oldStatus := o.Status
	o.Status = uo.Status
	o.UpdatedBy = username
	o.UpdatedAt = time.Now().UTC()
	o, err = svc.repo.UpdateOrder(ctx, o)
	if err != nil {
		return Order{}, err
	}

	if prj, err := svc.projects.Get(ctx, o.ProjectID, username); err == nil && prj.TeamID != "" {
		svc.hub.Publish(prj.TeamID, "order_status_changed", map[string]interface{}{
			"order_id":     o.ID,
			"project_id":   prj.ID,
			"project_name": prj.Name,
			"old_status":   oldStatus,
			"new_status":   o.Status,
			"updated_by":   username,
		})
	}
	return o, nil
}

// Delete removes the order; only the creator may delete.
func (svc *Service) Delete(ctx context.Context, id, username string) error {
	o, err := svc.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if o.CreatedBy != username {
		return ErrNotFound
	}
	return svc.repo.DeleteOrder(ctx, id)
}

// CountsForUser summarizes the user's accessible orders for the dashboard.
func (svc *Service) CountsForUser(ctx context.Context, username string) (Counts, error) {
	orders, err := svc.QueryForUser(ctx, username)
	if err != nil {
		return Counts{}, err
	}

	var counts Counts
	counts.Total = len(orders)
	for _, o := range orders {
		if o.Status == StatusPending {
			counts.Pending++
		}
	}
	return counts, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package inmem provides map-backed repositories for tests and DEV runs
// without a database.
package inmem

import (
	"sync"

	"github.com/plangrid/matcast/core/forecast"
	"github.com/plangrid/matcast/core/inventory"
	"github.com/plangrid/matcast/core/order"
	"github.com/plangrid/matcast/core/project"
	"github.com/plangrid/matcast/core/team"
	"github.com/plangrid/matcast/core/user"
)

type (
	DB struct {
		user      *userTable
		project   *projectTable
		team      *teamTable
		forecast  *forecastTable
		order     *orderTable
		inventory *inventoryTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	projectTable struct {
		sync.RWMutex
		table map[string]*project.Project
	}

	teamTable struct {
		sync.RWMutex
		teams         map[string]*team.Team
		invitations   map[string]*team.Invitation
		notifications map[string]*team.Notification
	}

	forecastTable struct {
		sync.RWMutex
		table map[string]*forecast.Document
	}

	orderTable struct {
		sync.RWMutex
		table map[string]*order.Order
	}

	inventoryTable struct {
		sync.RWMutex
		table map[string]*inventory.Item
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		project: &projectTable{table: make(map[string]*project.Project)},
		team: &teamTable{
			teams:         make(map[string]*team.Team),
			invitations:   make(map[string]*team.Invitation),
			notifications: make(map[string]*team.Notification),
		},
		forecast:  &forecastTable{table: make(map[string]*forecast.Document)},
		order:     &orderTable{table: make(map[string]*order.Order)},
		inventory: &inventoryTable{table: make(map[string]*inventory.Item)},
	}
	return db, nil
}

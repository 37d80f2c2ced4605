package tests

import (
	"net/http"
	"testing"

	"github.com/plangrid/matcast/core/inventory"
	"github.com/plangrid/matcast/core/user"
)

func Test_inventoryApi(t *testing.T) {
	ta := setup(t)
	member := ta.createUser(t, "Jane", "jane", "jane@test.cd", nil)
	admin := ta.createUser(t, "Root", "root", "root@test.cd", user.AdminRoles)
	memberToken := getToken(t, member)
	adminToken := getToken(t, admin)

	t.Run("initialize is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/inventory/initialize", memberToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("initialize seeds the catalog once", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/inventory/initialize", adminToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var res struct {
			Count  int  `json:"count"`
			Seeded bool `json:"seeded"`
		}
		decodeBody(t, rec, &res)
		if !res.Seeded || res.Count != 12 {
			t.Errorf("seeded = %v, count = %d; want true, 12", res.Seeded, res.Count)
		}

		// second run is a no-op
		req, rec = newAuthRequest(http.MethodPost, "/v1/inventory/initialize", adminToken)
		ta.app.ServeHTTP(rec, req)
		decodeBody(t, rec, &res)
		if res.Seeded {
			t.Error("second initialize should not reseed")
		}
	})

	t.Run("query", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/inventory", memberToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var items []inventory.Item
		decodeBody(t, rec, &items)
		if len(items) != 12 {
			t.Errorf("got %d items; want 12", len(items))
		}
	})

	t.Run("update stock levels", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/inventory/steel_tons", memberToken,
			[]byte(`{"quantity":72.5}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var item inventory.Item
		decodeBody(t, rec, &item)
		if item.Quantity != 72.5 {
			t.Errorf("quantity = %v; want 72.5", item.Quantity)
		}
		if item.UpdatedBy != "jane" {
			t.Errorf("updated_by = %q; want %q", item.UpdatedBy, "jane")
		}
	})

	t.Run("duplicate material code", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/inventory", memberToken,
			[]byte(`{"material_code":"steel_tons","name":"Steel Again"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("materials listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/inventory/materials", memberToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var materials []inventory.Material
		decodeBody(t, rec, &materials)
		if len(materials) != 12 {
			t.Errorf("got %d materials; want 12", len(materials))
		}
	})

	t.Run("warehouses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/inventory/warehouses", memberToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var warehouses []string
		decodeBody(t, rec, &warehouses)
		if len(warehouses) != 1 || warehouses[0] != "Main Warehouse" {
			t.Errorf("warehouses = %v; want [Main Warehouse]", warehouses)
		}
	})

	t.Run("delete is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/inventory/oil_tons", memberToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("member: code = %v; want %v", rec.Code, http.StatusForbidden)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/inventory/oil_tons", adminToken)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("admin: code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

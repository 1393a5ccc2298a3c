package integration

import (
	"net/http"
	"testing"

	"caixa/internal/models"
)

func TestProfileFlow(t *testing.T) {
	t.Run("first_access_creates_default_schema", func(t *testing.T) {
		app := setupApp(t)
		token := app.loginUser(t, "user@test.com")

		rec := app.request("GET", "/api/v1/profile", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		result := parseJSON(t, rec)
		profile := result["profile"].(map[string]interface{})
		for _, field := range []string{"income_categories", "expense_categories", "investment_categories"} {
			list, ok := profile[field].([]interface{})
			if !ok || len(list) == 0 {
				t.Errorf("expected %s seeded with defaults, got %v", field, profile[field])
			}
		}
	})

	t.Run("add_category", func(t *testing.T) {
		app := setupApp(t)
		token := app.loginUser(t, "user@test.com")

		rec := app.request("POST", "/api/v1/categories", `{"kind":"expense","name":"Gym"}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		result := parseJSON(t, rec)
		profile := result["profile"].(map[string]interface{})
		list := profile["expense_categories"].([]interface{})
		if list[len(list)-1] != "Gym" {
			t.Errorf("expected Gym appended, got %v", list)
		}
	})

	t.Run("remove_category_keeps_history", func(t *testing.T) {
		app := setupApp(t)
		token := app.loginUser(t, "user@test.com")
		app.upsertEntry(t, token, "2026-01", "Leisure", models.KindExpense, "300")

		rec := app.request("DELETE", "/api/v1/categories", `{"kind":"expense","name":"Leisure"}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		profile := result["profile"].(map[string]interface{})
		for _, name := range profile["expense_categories"].([]interface{}) {
			if name == "Leisure" {
				t.Errorf("expected Leisure removed from schema, got %v", profile["expense_categories"])
			}
		}

		// Historical record survives and still feeds the dashboards.
		rec = app.request("GET", "/api/v1/dashboard/breakdown?year=2026&kind=expense", "", token)
		result = parseJSON(t, rec)
		breakdown := result["breakdown"].([]interface{})
		if len(breakdown) != 1 || breakdown[0].(map[string]interface{})["category"] != "Leisure" {
			t.Errorf("expected orphaned Leisure still ranked, got %v", breakdown)
		}
	})

	t.Run("unknown_kind_rejected", func(t *testing.T) {
		app := setupApp(t)
		token := app.loginUser(t, "user@test.com")

		rec := app.request("POST", "/api/v1/categories", `{"kind":"loan","name":"X"}`, token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

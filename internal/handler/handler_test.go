package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/config"
	"github.com/IAmMasterCraft/expense-tracker/internal/database"
	"github.com/IAmMasterCraft/expense-tracker/internal/router"
	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.New(db)
	session := syncer.NewSession(time.Hour)
	client := syncer.NewSheetsClient("http://127.0.0.1:0", time.Second)
	rec := syncer.NewReconciler(st, client, session)
	sched := syncer.NewScheduler(st, rec, session, time.Hour)

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Snapshot: config.SnapshotConfig{Dir: filepath.Join(t.TempDir(), "snapshots")},
		Security: config.SecurityConfig{EncryptionKey: "test-key"},
	}
	return router.SetupRouter(cfg, st, rec, session, sched, zerolog.Nop())
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: unmarshal response %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, resp
}

func respData(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}

func TestExpenseLifecycle(t *testing.T) {
	r := newTestRouter(t)

	status, resp := doJSON(t, r, "POST", "/api/expenses",
		`{"month":3,"name":"Groceries","amount":"45.50","category":"Food"}`)
	if status != http.StatusOK {
		t.Fatalf("create status = %d, resp %v", status, resp)
	}
	expense := respData(t, resp)["expense"].(map[string]interface{})
	id := int(expense["id"].(float64))
	if id == 0 {
		t.Fatal("created expense has no id")
	}
	if expense["updated_at"].(string) == "" {
		t.Error("created expense missing updated_at")
	}

	status, resp = doJSON(t, r, "PUT", fmt.Sprintf("/api/expenses/%d", id),
		`{"amount":"50.00","completed":true}`)
	if status != http.StatusOK {
		t.Fatalf("update status = %d, resp %v", status, resp)
	}
	updated := respData(t, resp)["expense"].(map[string]interface{})
	if got := updated["amount"].(string); got != "50" {
		t.Errorf("amount after update = %q, want 50", got)
	}
	if updated["completed"] != true {
		t.Error("completed flag not applied")
	}

	status, resp = doJSON(t, r, "DELETE", fmt.Sprintf("/api/expenses/%d", id), "")
	if status != http.StatusOK {
		t.Fatalf("delete status = %d, resp %v", status, resp)
	}

	// gone from the live listing
	_, resp = doJSON(t, r, "GET", "/api/expenses?month=3", "")
	if count := respData(t, resp)["count"].(float64); count != 0 {
		t.Errorf("live listing count = %v after delete, want 0", count)
	}

	// still visible as a tombstone
	_, resp = doJSON(t, r, "GET", "/api/expenses?include_deleted=true", "")
	items := respData(t, resp)["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("tombstone listing has %d items, want 1", len(items))
	}
	tomb := items[0].(map[string]interface{})
	if tomb["deleted_at"].(string) == "" {
		t.Error("tombstone row has empty deleted_at")
	}
}

func TestExpenseValidation(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad month", `{"month":13,"name":"x","amount":"1","category":"Food"}`},
		{"negative amount", `{"month":1,"name":"x","amount":"-5","category":"Food"}`},
		{"unparseable amount", `{"month":1,"name":"x","amount":"abc","category":"Food"}`},
		{"blank name", `{"month":1,"name":"   ","amount":"1","category":"Food"}`},
		{"unknown category", `{"month":1,"name":"x","amount":"1","category":"Lottery"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := doJSON(t, r, "POST", "/api/expenses", tc.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (resp %v)", status, resp)
			}
			if code := resp["code"].(float64); code != 40001 {
				t.Errorf("code = %v, want 40001", code)
			}
		})
	}
}

func TestIncomeEndpoints(t *testing.T) {
	r := newTestRouter(t)

	status, resp := doJSON(t, r, "PUT", "/api/incomes/7", `{"amount":"3200.00"}`)
	if status != http.StatusOK {
		t.Fatalf("set income status = %d, resp %v", status, resp)
	}

	_, resp = doJSON(t, r, "GET", "/api/incomes/7", "")
	income := respData(t, resp)["income"].(map[string]interface{})
	if got := income["amount"].(string); got != "3200" {
		t.Errorf("stored income = %q, want 3200", got)
	}

	// unset months read back as zero, not as an error
	status, resp = doJSON(t, r, "GET", "/api/incomes/2", "")
	if status != http.StatusOK {
		t.Fatalf("get unset income status = %d", status)
	}
	income = respData(t, resp)["income"].(map[string]interface{})
	if got := income["amount"].(string); got != "0" {
		t.Errorf("unset income = %q, want 0", got)
	}

	status, _ = doJSON(t, r, "PUT", "/api/incomes/13", `{"amount":"1"}`)
	if status != http.StatusBadRequest {
		t.Errorf("month 13 accepted, status = %d", status)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	_, resp := doJSON(t, r, "GET", "/api/settings", "")
	data := respData(t, resp)
	if data["auto_sync"] != false {
		t.Error("auto_sync should default to false")
	}
	if data["expenses_sheet"] != "Expenses" || data["income_sheet"] != "Income" {
		t.Errorf("sheet defaults = %v / %v", data["expenses_sheet"], data["income_sheet"])
	}

	_, resp = doJSON(t, r, "PUT", "/api/settings",
		`{"spreadsheet_id":"sheet-123","auto_sync":true,"expenses_sheet":"  "}`)
	data = respData(t, resp)
	if data["spreadsheet_id"] != "sheet-123" {
		t.Errorf("spreadsheet_id = %v", data["spreadsheet_id"])
	}
	if data["auto_sync"] != true {
		t.Error("auto_sync not enabled")
	}
	// a blank sheet name falls back to the default
	if data["expenses_sheet"] != "Expenses" {
		t.Errorf("blank sheet name stored as %v", data["expenses_sheet"])
	}
}

func TestMonthSummary(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, "PUT", "/api/incomes/4", `{"amount":"1000"}`)
	doJSON(t, r, "POST", "/api/expenses", `{"month":4,"name":"Rent","amount":"600","category":"Utility"}`)
	doJSON(t, r, "POST", "/api/expenses", `{"month":4,"name":"Cinema","amount":"25","category":"Entertainment"}`)
	doJSON(t, r, "POST", "/api/expenses", `{"month":5,"name":"Other month","amount":"999","category":"Food"}`)

	_, resp := doJSON(t, r, "GET", "/api/summary/month?month=4", "")
	data := respData(t, resp)
	if got := data["expense"].(string); got != "625" {
		t.Errorf("month expense = %q, want 625", got)
	}
	if got := data["balance"].(string); got != "375" {
		t.Errorf("month balance = %q, want 375", got)
	}

	byCategory := data["by_category"].([]interface{})
	var utility map[string]interface{}
	for _, entry := range byCategory {
		m := entry.(map[string]interface{})
		if m["category"] == "Utility" {
			utility = m
		}
	}
	if utility == nil {
		t.Fatal("Utility missing from category breakdown")
	}
	if got := utility["amount"].(string); got != "600" {
		t.Errorf("Utility amount = %q, want 600", got)
	}
}

func TestSyncStatus(t *testing.T) {
	r := newTestRouter(t)

	_, resp := doJSON(t, r, "GET", "/api/sync/status", "")
	data := respData(t, resp)
	if data["authorized"] != false {
		t.Error("fresh session should not be authorized")
	}
	if data["online"] != true {
		t.Error("fresh session should assume online")
	}
	if data["pending"].(float64) != 0 {
		t.Errorf("pending = %v, want 0", data["pending"])
	}
}

func TestExportExpensesCSV(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, "POST", "/api/expenses", `{"month":1,"name":"Coffee","amount":"4.20","category":"Food"}`)

	req := httptest.NewRequest("GET", "/api/export/expenses.csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "\xEF\xBB\xBF") {
		t.Error("CSV export missing UTF-8 BOM")
	}
	if !strings.Contains(body, "id,month,name,amount") {
		t.Error("CSV export missing header row")
	}
	if !strings.Contains(body, "Coffee") {
		t.Error("CSV export missing expense row")
	}
}

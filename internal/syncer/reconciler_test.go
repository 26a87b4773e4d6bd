package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/config"
	"github.com/IAmMasterCraft/expense-tracker/internal/database"
	"github.com/IAmMasterCraft/expense-tracker/internal/store"

	"github.com/shopspring/decimal"
)

// fakeSheets is an in-memory stand-in for the spreadsheet values API.
type fakeSheets struct {
	mu       sync.Mutex
	ranges   map[string][][]string
	puts     map[string]int
	failPuts bool
	lastAuth string
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{
		ranges: make(map[string][][]string),
		puts:   make(map[string]int),
	}
}

func (f *fakeSheets) setRange(rng string, rows [][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges[rng] = rows
}

func (f *fakeSheets) rows(rng string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ranges[rng]
}

func (f *fakeSheets) putCount(rng string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[rng]
}

func (f *fakeSheets) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.lastAuth = r.Header.Get("Authorization")
		i := strings.Index(r.URL.Path, "/values/")
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		rng := r.URL.Path[i+len("/values/"):]

		switch r.Method {
		case http.MethodPut:
			if f.failPuts {
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"message": "The caller does not have permission"},
				})
				return
			}
			var payload struct {
				Values [][]string `json:"values"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.ranges[rng] = payload.Values
			f.puts[rng]++
			_ = json.NewEncoder(w).Encode(map[string]string{"updatedRange": rng})
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"range":  rng,
				"values": f.ranges[rng],
			})
		default:
			http.NotFound(w, r)
		}
	})
}

type syncEnv struct {
	store   *store.Store
	session *Session
	rec     *Reconciler
	fake    *fakeSheets
}

func newSyncEnv(t *testing.T) *syncEnv {
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
	if err := st.SetSetting(store.SettingSpreadsheetID, "sheet-123"); err != nil {
		t.Fatalf("configure spreadsheet: %v", err)
	}

	fake := newFakeSheets()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	session := NewSession(time.Hour)
	session.SetToken("test-token", time.Now().Add(time.Hour))

	client := NewSheetsClient(srv.URL, 5*time.Second)
	return &syncEnv{
		store:   st,
		session: session,
		rec:     NewReconciler(st, client, session),
		fake:    fake,
	}
}

func mustAddExpense(t *testing.T, st *store.Store, month int, name string) uint {
	t.Helper()
	e, err := st.AddExpense(store.ExpenseInput{
		Month:    month,
		Name:     name,
		Amount:   decimal.NewFromFloat(4.50),
		Category: "Food",
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	return e.ID
}

func TestPush_WritesSnapshotAndDrainsQueue(t *testing.T) {
	env := newSyncEnv(t)
	if err := env.store.SetBoolSetting(store.SettingAutoSync, true); err != nil {
		t.Fatal(err)
	}

	mustAddExpense(t, env.store, 6, "Coffee")
	deletedID := mustAddExpense(t, env.store, 6, "Cancelled gym")
	if _, err := env.store.SoftDeleteExpense(deletedID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.store.SetIncome(6, decimal.NewFromInt(2000)); err != nil {
		t.Fatal(err)
	}
	if n, _ := env.store.PendingCount(); n == 0 {
		t.Fatal("expected pending changes before push")
	}

	if err := env.rec.Push(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}

	expenseRows := env.fake.rows("Expenses!A1")
	if len(expenseRows) != 3 {
		t.Fatalf("expense rows = %d, want header + 2 (tombstones included)", len(expenseRows))
	}
	tombstoned := false
	for _, row := range expenseRows[1:] {
		if row[8] != "" {
			tombstoned = true
		}
	}
	if !tombstoned {
		t.Error("push snapshot must include tombstoned expenses")
	}

	incomeRows := env.fake.rows("Income!A1")
	if len(incomeRows) != 13 {
		t.Fatalf("income rows = %d, want header + 12 months", len(incomeRows))
	}

	if env.fake.lastAuth != "Bearer test-token" {
		t.Errorf("authorization = %q", env.fake.lastAuth)
	}
	if n, _ := env.store.PendingCount(); n != 0 {
		t.Errorf("queue not drained after successful push: %d", n)
	}
}

func TestPush_Idempotent(t *testing.T) {
	env := newSyncEnv(t)
	mustAddExpense(t, env.store, 1, "Rent")

	if err := env.rec.Push(context.Background()); err != nil {
		t.Fatalf("first push: %v", err)
	}
	first := env.fake.rows("Expenses!A1")

	if err := env.rec.Push(context.Background()); err != nil {
		t.Fatalf("second push: %v", err)
	}
	second := env.fake.rows("Expenses!A1")

	if !reflect.DeepEqual(first, second) {
		t.Error("pushing an unchanged snapshot twice must leave identical remote content")
	}
}

func TestPush_FailureLeavesQueueIntact(t *testing.T) {
	env := newSyncEnv(t)
	if err := env.store.SetBoolSetting(store.SettingAutoSync, true); err != nil {
		t.Fatal(err)
	}
	mustAddExpense(t, env.store, 6, "Coffee")
	before, _ := env.store.PendingCount()

	env.fake.failPuts = true
	err := env.rec.Push(context.Background())
	if !errors.Is(err, ErrPushFailed) {
		t.Fatalf("error = %v, want ErrPushFailed", err)
	}
	if !strings.Contains(err.Error(), "does not have permission") {
		t.Errorf("push error should carry the remote message, got %v", err)
	}

	after, _ := env.store.PendingCount()
	if after != before {
		t.Errorf("pending = %d after failed push, want %d", after, before)
	}
}

func TestPush_RequiresConfigurationAndCredential(t *testing.T) {
	env := newSyncEnv(t)

	env.session.ClearToken()
	if err := env.rec.Push(context.Background()); !errors.Is(err, ErrPushFailed) {
		t.Errorf("push without credential: error = %v, want ErrPushFailed", err)
	}

	env.session.SetToken("tok", time.Now().Add(time.Hour))
	if err := env.store.SetSetting(store.SettingSpreadsheetID, ""); err != nil {
		t.Fatal(err)
	}
	if err := env.rec.Push(context.Background()); !errors.Is(err, ErrPushFailed) {
		t.Errorf("push without spreadsheet id: error = %v, want ErrPushFailed", err)
	}
}

func TestPull_MergesLastWriteWins(t *testing.T) {
	env := newSyncEnv(t)

	// local record newer than the remote candidate with the same id
	localID := mustAddExpense(t, env.store, 1, "Rent")
	local, _ := env.store.GetExpense(localID)

	// keep a local-only record around across pulls
	keepID := mustAddExpense(t, env.store, 2, "Local only")

	env.fake.setRange("Expenses", [][]string{
		{"id", "month", "name", "amount", "category", "completed", "created_at", "updated_at", "deleted_at"},
		// older than local: must lose
		{"9999", "1", "Stale Rent", "900", "Utility", "FALSE", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z", ""},
		// unseen id: must insert
		{"7777", "3", "Insurance", "55.20", "Services", "TRUE", "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", ""},
	})
	// point the stale row at the real local id
	rows := env.fake.rows("Expenses")
	rows[1][0] = strconv.FormatUint(uint64(local.ID), 10)
	env.fake.setRange("Expenses", rows)

	env.fake.setRange("Income", [][]string{
		{"month", "amount", "updated_at"},
		{"3", "1500", "9999-01-01T00:00:00.000Z"},
	})

	result, err := env.rec.Pull(context.Background())
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if result.ExpensesApplied != 1 {
		t.Errorf("expenses applied = %d, want 1", result.ExpensesApplied)
	}
	if result.IncomesApplied != 1 {
		t.Errorf("incomes applied = %d, want 1", result.IncomesApplied)
	}

	// local newer record untouched
	got, _ := env.store.GetExpense(localID)
	if got.Name != "Rent" || got.UpdatedAt != local.UpdatedAt {
		t.Errorf("newer local record was overwritten: %+v", got)
	}

	// remote-only record inserted
	if _, err := env.store.GetExpense(7777); err != nil {
		t.Errorf("remote-only record not inserted: %v", err)
	}

	// repeated pulls never delete a local-only record
	if _, err := env.rec.Pull(context.Background()); err != nil {
		t.Fatalf("second pull: %v", err)
	}
	if _, err := env.store.GetExpense(keepID); err != nil {
		t.Errorf("local-only record lost after pull: %v", err)
	}

	income, err := env.store.GetIncome(3)
	if err != nil {
		t.Fatalf("income after pull: %v", err)
	}
	if !income.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("income amount = %s, want 1500", income.Amount)
	}
}

func TestPull_FailsFastOnMissingIdentityColumn(t *testing.T) {
	env := newSyncEnv(t)

	env.fake.setRange("Expenses", [][]string{
		{"month", "name", "amount"}, // no id column
		{"1", "Rent", "900"},
	})
	env.fake.setRange("Income", [][]string{
		{"month", "amount", "updated_at"},
		{"3", "1500", "2024-01-01T00:00:00Z"},
	})

	_, err := env.rec.Pull(context.Background())
	if !errors.Is(err, ErrPullFailed) {
		t.Fatalf("error = %v, want ErrPullFailed", err)
	}

	// fail-fast: nothing merged, not even the valid income table
	if _, err := env.store.GetIncome(3); !errors.Is(err, store.ErrNotFound) {
		t.Error("malformed source must not produce a partial merge")
	}
}

package syncer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
)

// Reconciler moves the local tables to and from the backup spreadsheet.
// Push overwrites the remote wholesale; pull merges the remote into the
// local store record by record. A single-flight guard keeps a manual
// attempt and a scheduled one from interleaving two full-table writes.
type Reconciler struct {
	store   *store.Store
	client  *SheetsClient
	session *Session
	running atomic.Bool
}

func NewReconciler(st *store.Store, client *SheetsClient, session *Session) *Reconciler {
	return &Reconciler{store: st, client: client, session: session}
}

// PullResult reports how many candidates actually changed the store.
type PullResult struct {
	ExpensesApplied int `json:"expenses_applied"`
	IncomesApplied  int `json:"incomes_applied"`
}

type targets struct {
	spreadsheetID string
	expensesSheet string
	incomeSheet   string
}

func (r *Reconciler) targets() (*targets, error) {
	id, err := r.store.GetSetting(store.SettingSpreadsheetID, "")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("spreadsheet id not configured")
	}
	expenses, err := r.store.GetSetting(store.SettingExpensesSheet, store.DefaultExpensesSheet)
	if err != nil {
		return nil, err
	}
	income, err := r.store.GetSetting(store.SettingIncomeSheet, store.DefaultIncomeSheet)
	if err != nil {
		return nil, err
	}
	return &targets{spreadsheetID: id, expensesSheet: expenses, incomeSheet: income}, nil
}

func pushErr(err error) error {
	return fmt.Errorf("%w: %v", ErrPushFailed, err)
}

func pullErr(err error) error {
	return fmt.Errorf("%w: %v", ErrPullFailed, err)
}

// Push writes the entire current snapshot — every expense including
// tombstones, and the full 12-month income table — as one full-table
// overwrite per range. No incremental diffing: the overwrite is
// idempotent, so a retry after a partial failure is always safe. The
// pending queue is drained only after both writes succeed.
func (r *Reconciler) Push(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrSyncBusy
	}
	defer r.running.Store(false)

	t, err := r.targets()
	if err != nil {
		return pushErr(err)
	}
	if !r.session.Valid() {
		return pushErr(fmt.Errorf("no valid backup credential"))
	}

	expenses, err := r.store.ListExpenses(true)
	if err != nil {
		return pushErr(err)
	}
	incomes, err := r.store.ListIncomes()
	if err != nil {
		return pushErr(err)
	}

	token := r.session.Token()
	if err := r.client.Update(ctx, token, t.spreadsheetID, t.expensesSheet+"!A1", ExpenseRows(expenses)); err != nil {
		return pushErr(err)
	}
	if err := r.client.Update(ctx, token, t.spreadsheetID, t.incomeSheet+"!A1", IncomeRows(incomes)); err != nil {
		return pushErr(err)
	}

	if err := r.store.DrainPending(); err != nil {
		return err
	}

	logger.Info().
		Int("expenses", len(expenses)).
		Int("incomes", len(incomes)).
		Str("spreadsheet", t.spreadsheetID).
		Msg("push complete")
	return nil
}

// Pull fetches both remote tables, parses them fully before touching
// the store, then merges candidate by candidate with last-write-wins.
// Local records absent from the remote are never deleted.
func (r *Reconciler) Pull(ctx context.Context) (*PullResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrSyncBusy
	}
	defer r.running.Store(false)

	t, err := r.targets()
	if err != nil {
		return nil, pullErr(err)
	}
	if !r.session.Valid() {
		return nil, pullErr(fmt.Errorf("no valid backup credential"))
	}

	token := r.session.Token()
	expenseRows, err := r.client.Read(ctx, token, t.spreadsheetID, t.expensesSheet)
	if err != nil {
		return nil, pullErr(err)
	}
	incomeRows, err := r.client.Read(ctx, token, t.spreadsheetID, t.incomeSheet)
	if err != nil {
		return nil, pullErr(err)
	}

	// parse everything up front: a malformed source fails the whole
	// pull before any local write
	expenseCandidates, err := ParseExpenseRows(expenseRows)
	if err != nil {
		return nil, pullErr(err)
	}
	incomeCandidates, err := ParseIncomeRows(incomeRows)
	if err != nil {
		return nil, pullErr(err)
	}

	result := &PullResult{}
	for _, candidate := range expenseCandidates {
		applied, err := r.store.MergeExpense(candidate)
		if err != nil {
			return result, err
		}
		if applied {
			result.ExpensesApplied++
		}
	}
	for _, candidate := range incomeCandidates {
		applied, err := r.store.MergeIncome(candidate)
		if err != nil {
			return result, err
		}
		if applied {
			result.IncomesApplied++
		}
	}

	logger.Info().
		Int("expenses_applied", result.ExpensesApplied).
		Int("incomes_applied", result.IncomesApplied).
		Str("spreadsheet", t.spreadsheetID).
		Msg("pull complete")
	return result, nil
}

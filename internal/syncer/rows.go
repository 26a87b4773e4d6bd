package syncer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/shopspring/decimal"
)

// Header rows written on push and required (in part) on pull. Pull maps
// columns by name, so the remote may reorder or extend them.
var (
	expenseHeader = []string{"id", "month", "name", "amount", "category", "completed", "created_at", "updated_at", "deleted_at"}
	incomeHeader  = []string{"month", "amount", "updated_at"}
)

// ExpenseRows renders header plus one row per expense, tombstones
// included; the backup must eventually see deletions.
func ExpenseRows(expenses []models.Expense) [][]string {
	rows := make([][]string, 0, len(expenses)+1)
	rows = append(rows, expenseHeader)
	for i := range expenses {
		e := &expenses[i]
		completed := "FALSE"
		if e.Completed {
			completed = "TRUE"
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			strconv.Itoa(e.Month),
			e.Name,
			e.Amount.String(),
			e.Category,
			completed,
			e.CreatedAt,
			e.UpdatedAt,
			e.DeletedAt,
		})
	}
	return rows
}

// IncomeRows renders the entire 12-month income table. Months without a
// record render amount 0 with an empty updated_at; pull skips such
// padding rows so they never overwrite real data.
func IncomeRows(incomes []models.Income) [][]string {
	byMonth := make(map[int]*models.Income, len(incomes))
	for i := range incomes {
		byMonth[incomes[i].Month] = &incomes[i]
	}

	rows := make([][]string, 0, 13)
	rows = append(rows, incomeHeader)
	for month := 1; month <= 12; month++ {
		amount, updatedAt := "0", ""
		if inc, ok := byMonth[month]; ok {
			amount = inc.Amount.String()
			updatedAt = inc.UpdatedAt
		}
		rows = append(rows, []string{strconv.Itoa(month), amount, updatedAt})
	}
	return rows
}

// headerIndex maps lowercased column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseCompleted(s string) bool {
	return strings.EqualFold(s, "true") || s == "1"
}

// ParseExpenseRows turns a fetched expenses range into merge
// candidates. A header missing an identity column fails the whole pull;
// individual rows missing identity values are skipped, and missing
// optional columns take defaults (category falls to the catch-all at
// merge time, completed to false, amount to zero).
func ParseExpenseRows(rows [][]string) ([]models.Expense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("expenses table has no header row")
	}
	idx := headerIndex(rows[0])
	for _, required := range []string{"id", "month", "name"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("expenses header missing %q column", required)
		}
	}

	candidates := make([]models.Expense, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		id, err := strconv.ParseUint(cell(row, idx, "id"), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		month, err := strconv.Atoi(cell(row, idx, "month"))
		if err != nil || util.ValidateMonth(month) != nil {
			continue
		}
		name := cell(row, idx, "name")
		if name == "" {
			continue
		}

		amount, err := decimal.NewFromString(cell(row, idx, "amount"))
		if err != nil || amount.IsNegative() {
			amount = decimal.Zero
		}
		updatedAt := cell(row, idx, "updated_at")
		createdAt := cell(row, idx, "created_at")
		if createdAt == "" {
			createdAt = updatedAt
		}

		candidates = append(candidates, models.Expense{
			ID:        uint(id),
			Month:     month,
			Name:      name,
			Amount:    amount,
			Category:  cell(row, idx, "category"),
			Completed: parseCompleted(cell(row, idx, "completed")),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
			DeletedAt: cell(row, idx, "deleted_at"),
		})
	}
	return candidates, nil
}

// ParseIncomeRows turns a fetched income range into merge candidates.
// Only the month column is required; rows with an empty updated_at are
// padding and are dropped.
func ParseIncomeRows(rows [][]string) ([]models.Income, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("income table has no header row")
	}
	idx := headerIndex(rows[0])
	if _, ok := idx["month"]; !ok {
		return nil, fmt.Errorf("income header missing %q column", "month")
	}

	candidates := make([]models.Income, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		month, err := strconv.Atoi(cell(row, idx, "month"))
		if err != nil || util.ValidateMonth(month) != nil {
			continue
		}
		updatedAt := cell(row, idx, "updated_at")
		if updatedAt == "" {
			continue
		}
		amount, err := decimal.NewFromString(cell(row, idx, "amount"))
		if err != nil {
			amount = decimal.Zero
		}
		candidates = append(candidates, models.Income{
			Month:     month,
			Amount:    amount,
			UpdatedAt: updatedAt,
		})
	}
	return candidates, nil
}

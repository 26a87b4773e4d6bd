package handler

import (
	"net/http"
	"strconv"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SummaryHandler serves the month and year analysis views. Tombstoned
// expenses are excluded from analytics even though pushes carry them.
type SummaryHandler struct {
	Store *store.Store
}

func NewSummaryHandler(st *store.Store) *SummaryHandler {
	return &SummaryHandler{Store: st}
}

type categorySummary struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

func summarizeByCategory(expenses []models.Expense) []categorySummary {
	byCategory := make(map[string]*categorySummary, len(models.Categories))
	ordered := make([]categorySummary, 0, len(models.Categories))
	for _, name := range models.Categories {
		byCategory[name] = &categorySummary{Category: name, Amount: decimal.Zero}
	}

	for i := range expenses {
		e := &expenses[i]
		entry, ok := byCategory[e.Category]
		if !ok {
			// pre-normalization rows fold into the catch-all
			entry = byCategory[models.CategoryCatchAll]
		}
		entry.Amount = entry.Amount.Add(e.Amount)
		entry.Count++
	}

	for _, name := range models.Categories {
		ordered = append(ordered, *byCategory[name])
	}
	return ordered
}

// MonthSummary reports income, spend and balance for one month.
func (h *SummaryHandler) MonthSummary(c *gin.Context) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid month")
		return
	}

	expenses, err := h.Store.ExpensesByMonth(month)
	if err != nil {
		storeError(c, err)
		return
	}

	income := decimal.Zero
	if row, err := h.Store.GetIncome(month); err == nil {
		income = row.Amount
	}

	spent := decimal.Zero
	for i := range expenses {
		spent = spent.Add(expenses[i].Amount)
	}

	util.Success(c, util.Response{
		"month":       month,
		"income":      income,
		"expense":     spent,
		"balance":     income.Sub(spent),
		"by_category": summarizeByCategory(expenses),
	})
}

// YearSummary reports whole-year totals and the category breakdown.
func (h *SummaryHandler) YearSummary(c *gin.Context) {
	expenses, err := h.Store.ListExpenses(false)
	if err != nil {
		storeError(c, err)
		return
	}
	incomes, err := h.Store.ListIncomes()
	if err != nil {
		storeError(c, err)
		return
	}

	incomeTotal := decimal.Zero
	for i := range incomes {
		incomeTotal = incomeTotal.Add(incomes[i].Amount)
	}
	expenseTotal := decimal.Zero
	for i := range expenses {
		expenseTotal = expenseTotal.Add(expenses[i].Amount)
	}

	util.Success(c, util.Response{
		"income":      incomeTotal,
		"expense":     expenseTotal,
		"balance":     incomeTotal.Sub(expenseTotal),
		"by_category": summarizeByCategory(expenses),
	})
}

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

// ExpenseHandler serves the expense endpoints. Deletion through the API
// is always a soft delete; hard deletion is not exposed.
type ExpenseHandler struct {
	Store *store.Store
}

func NewExpenseHandler(st *store.Store) *ExpenseHandler {
	return &ExpenseHandler{Store: st}
}

// Amounts travel as strings so the client controls the decimal text
// exactly, the same shape the sheet rows use.
type createExpenseReq struct {
	Month     int    `json:"month" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Category  string `json:"category" binding:"required"`
	Completed bool   `json:"completed"`
}

type updateExpenseReq struct {
	Month     *int    `json:"month"`
	Name      *string `json:"name"`
	Amount    *string `json:"amount"`
	Category  *string `json:"category"`
	Completed *bool   `json:"completed"`
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// CreateExpense stores a new expense for one month.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req createExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	expense, err := h.Store.AddExpense(store.ExpenseInput{
		Month:     req.Month,
		Name:      req.Name,
		Amount:    amount,
		Category:  req.Category,
		Completed: req.Completed,
	})
	if err != nil {
		storeError(c, err)
		return
	}

	util.Success(c, util.Response{"expense": expense})
}

// UpdateExpense applies a partial edit.
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	patch := store.ExpensePatch{
		Month:     req.Month,
		Name:      req.Name,
		Category:  req.Category,
		Completed: req.Completed,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
			return
		}
		patch.Amount = &amount
	}

	expense, err := h.Store.UpdateExpense(id, patch)
	if err != nil {
		storeError(c, err)
		return
	}

	util.Success(c, util.Response{"expense": expense})
}

// DeleteExpense tombstones an expense. The record stays in storage and
// in every push snapshot so the backup observes the deletion.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	expense, err := h.Store.SoftDeleteExpense(id)
	if err != nil {
		storeError(c, err)
		return
	}

	util.Success(c, util.Response{"expense": expense})
}

// ListExpenses lists either one month (live records, newest first) or,
// without a month filter, everything — optionally with tombstones.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	var (
		expenses []models.Expense
		err      error
	)
	if monthStr := c.Query("month"); monthStr != "" {
		month, convErr := strconv.Atoi(monthStr)
		if convErr != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid month")
			return
		}
		expenses, err = h.Store.ExpensesByMonth(month)
	} else {
		includeDeleted := c.Query("include_deleted") == "true"
		expenses, err = h.Store.ListExpenses(includeDeleted)
	}
	if err != nil {
		storeError(c, err)
		return
	}

	total := decimal.Zero
	for i := range expenses {
		if !expenses[i].Deleted() {
			total = total.Add(expenses[i].Amount)
		}
	}

	util.Success(c, util.Response{
		"items": expenses,
		"count": len(expenses),
		"total": total,
	})
}

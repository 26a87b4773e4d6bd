package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IncomeHandler serves the monthly income endpoints.
type IncomeHandler struct {
	Store *store.Store
}

func NewIncomeHandler(st *store.Store) *IncomeHandler {
	return &IncomeHandler{Store: st}
}

type setIncomeReq struct {
	Amount string `json:"amount" binding:"required"`
}

func parseMonth(c *gin.Context) (int, bool) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid month")
		return 0, false
	}
	return month, true
}

// SetIncome upserts the income for one month.
func (h *IncomeHandler) SetIncome(c *gin.Context) {
	month, ok := parseMonth(c)
	if !ok {
		return
	}

	var req setIncomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	income, err := h.Store.SetIncome(month, amount)
	if err != nil {
		storeError(c, err)
		return
	}

	util.Success(c, util.Response{"income": income})
}

// GetIncome returns the income for one month; months never written
// report zero rather than absence, matching the UI's expectation.
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	month, ok := parseMonth(c)
	if !ok {
		return
	}

	income, err := h.Store.GetIncome(month)
	if errors.Is(err, store.ErrNotFound) {
		util.Success(c, util.Response{
			"income": gin.H{"month": month, "amount": decimal.Zero, "updated_at": ""},
		})
		return
	}
	if err != nil {
		storeError(c, err)
		return
	}

	util.Success(c, util.Response{"income": income})
}

// ListIncomes returns every stored income row ordered by month.
func (h *IncomeHandler) ListIncomes(c *gin.Context) {
	incomes, err := h.Store.ListIncomes()
	if err != nil {
		storeError(c, err)
		return
	}

	total := decimal.Zero
	for i := range incomes {
		total = total.Add(incomes[i].Amount)
	}

	util.Success(c, util.Response{
		"items": incomes,
		"total": total,
	})
}

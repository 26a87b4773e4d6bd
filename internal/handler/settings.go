package handler

import (
	"net/http"
	"strings"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the sync preferences. The spreadsheet id and
// sheet names drive the reconciler targets; auto_sync gates the pending
// queue.
type SettingsHandler struct {
	Store *store.Store
}

func NewSettingsHandler(st *store.Store) *SettingsHandler {
	return &SettingsHandler{Store: st}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	spreadsheetID, err := h.Store.GetSetting(store.SettingSpreadsheetID, "")
	if err != nil {
		storeError(c, err)
		return
	}
	expensesSheet, err := h.Store.GetSetting(store.SettingExpensesSheet, store.DefaultExpensesSheet)
	if err != nil {
		storeError(c, err)
		return
	}
	incomeSheet, err := h.Store.GetSetting(store.SettingIncomeSheet, store.DefaultIncomeSheet)
	if err != nil {
		storeError(c, err)
		return
	}
	autoSync, err := h.Store.GetBoolSetting(store.SettingAutoSync, false)
	if err != nil {
		storeError(c, err)
		return
	}

	util.Success(c, util.Response{
		"spreadsheet_id": spreadsheetID,
		"expenses_sheet": expensesSheet,
		"income_sheet":   incomeSheet,
		"auto_sync":      autoSync,
	})
}

type updateSettingsReq struct {
	SpreadsheetID *string `json:"spreadsheet_id"`
	ExpensesSheet *string `json:"expenses_sheet"`
	IncomeSheet   *string `json:"income_sheet"`
	AutoSync      *bool   `json:"auto_sync"`
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if req.SpreadsheetID != nil {
		if err := h.Store.SetSetting(store.SettingSpreadsheetID, strings.TrimSpace(*req.SpreadsheetID)); err != nil {
			storeError(c, err)
			return
		}
	}
	if req.ExpensesSheet != nil {
		name := strings.TrimSpace(*req.ExpensesSheet)
		if name == "" {
			name = store.DefaultExpensesSheet
		}
		if err := h.Store.SetSetting(store.SettingExpensesSheet, name); err != nil {
			storeError(c, err)
			return
		}
	}
	if req.IncomeSheet != nil {
		name := strings.TrimSpace(*req.IncomeSheet)
		if name == "" {
			name = store.DefaultIncomeSheet
		}
		if err := h.Store.SetSetting(store.SettingIncomeSheet, name); err != nil {
			storeError(c, err)
			return
		}
	}
	if req.AutoSync != nil {
		if err := h.Store.SetBoolSetting(store.SettingAutoSync, *req.AutoSync); err != nil {
			storeError(c, err)
			return
		}
	}

	h.GetSettings(c)
}

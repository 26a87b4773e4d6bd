package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/syncer"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ImportExportHandler moves records in and out as CSV and XLSX. The
// file columns are the same ones the reconciler pushes, so an exported
// file can be imported back or pasted straight into the backup sheet.
type ImportExportHandler struct {
	Store *store.Store
}

func NewImportExportHandler(st *store.Store) *ImportExportHandler {
	return &ImportExportHandler{Store: st}
}

func writeCSV(c *gin.Context, filename string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()
	for _, row := range rows {
		writer.Write(row)
	}
}

// ExportExpensesCSV streams all expenses, tombstones included, so an
// import elsewhere replays deletions too.
func (h *ImportExportHandler) ExportExpensesCSV(c *gin.Context) {
	expenses, err := h.Store.ListExpenses(true)
	if err != nil {
		storeError(c, err)
		return
	}
	name := fmt.Sprintf("expenses_%s.csv", time.Now().Format("20060102"))
	writeCSV(c, name, syncer.ExpenseRows(expenses))
}

// ExportIncomeCSV streams the 12-month income table.
func (h *ImportExportHandler) ExportIncomeCSV(c *gin.Context) {
	incomes, err := h.Store.ListIncomes()
	if err != nil {
		storeError(c, err)
		return
	}
	name := fmt.Sprintf("income_%s.csv", time.Now().Format("20060102"))
	writeCSV(c, name, syncer.IncomeRows(incomes))
}

// ExportXLSX writes both tables into one workbook, a sheet each.
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	expenses, err := h.Store.ListExpenses(true)
	if err != nil {
		storeError(c, err)
		return
	}
	incomes, err := h.Store.ListIncomes()
	if err != nil {
		storeError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

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

	index, err := f.NewSheet(expensesSheet)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(incomeSheet); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.DeleteSheet("Sheet1")

	for i, row := range syncer.ExpenseRows(expenses) {
		addr, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow(expensesSheet, addr, &row)
	}
	for i, row := range syncer.IncomeRows(incomes) {
		addr, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow(incomeSheet, addr, &row)
	}
	f.SetColWidth(expensesSheet, "C", "C", 24)
	f.SetColWidth(expensesSheet, "G", "I", 26)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		fmt.Sprintf("expense_tracker_%s.xlsx", time.Now().Format("20060102"))))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}

func readCSVRows(c *gin.Context) ([][]string, bool) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file is required")
		return nil, false
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "malformed CSV")
		return nil, false
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		// strip a UTF-8 BOM from our own exports
		rows[0][0] = trimBOM(rows[0][0])
	}
	return rows, true
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}

// ImportExpensesCSV merges an uploaded expenses file with the same
// last-write-wins rule used on pull. One pending entry covers the whole
// import when anything was applied.
func (h *ImportExportHandler) ImportExpensesCSV(c *gin.Context) {
	rows, ok := readCSVRows(c)
	if !ok {
		return
	}
	candidates, err := syncer.ParseExpenseRows(rows)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	applied := 0
	for _, candidate := range candidates {
		done, err := h.Store.MergeExpense(candidate)
		if err != nil {
			storeError(c, err)
			return
		}
		if done {
			applied++
		}
	}
	if applied > 0 {
		if err := h.Store.NoteImport(); err != nil {
			storeError(c, err)
			return
		}
	}
	util.Success(c, util.Response{"parsed": len(candidates), "applied": applied})
}

// ImportIncomeCSV merges an uploaded income file.
func (h *ImportExportHandler) ImportIncomeCSV(c *gin.Context) {
	rows, ok := readCSVRows(c)
	if !ok {
		return
	}
	candidates, err := syncer.ParseIncomeRows(rows)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	applied := 0
	for _, candidate := range candidates {
		done, err := h.Store.MergeIncome(candidate)
		if err != nil {
			storeError(c, err)
			return
		}
		if done {
			applied++
		}
	}
	if applied > 0 {
		if err := h.Store.NoteImport(); err != nil {
			storeError(c, err)
			return
		}
	}
	util.Success(c, util.Response{"parsed": len(candidates), "applied": applied})
}

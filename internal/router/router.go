package router

import (
	"net/http"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/config"
	"github.com/IAmMasterCraft/expense-tracker/internal/handler"
	"github.com/IAmMasterCraft/expense-tracker/internal/middleware"
	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/syncer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRouter wires the HTTP surface over the store and sync machinery.
func SetupRouter(cfg *config.Config, st *store.Store, rec *syncer.Reconciler, session *syncer.Session, sched *syncer.Scheduler, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	// the browser frontend runs on its own origin during development
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	expenseHandler := handler.NewExpenseHandler(st)
	api.POST("/expenses", expenseHandler.CreateExpense)
	api.GET("/expenses", expenseHandler.ListExpenses)
	api.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	api.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	incomeHandler := handler.NewIncomeHandler(st)
	api.GET("/incomes", incomeHandler.ListIncomes)
	api.GET("/incomes/:month", incomeHandler.GetIncome)
	api.PUT("/incomes/:month", incomeHandler.SetIncome)

	settingsHandler := handler.NewSettingsHandler(st)
	api.GET("/settings", settingsHandler.GetSettings)
	api.PUT("/settings", settingsHandler.UpdateSettings)

	summaryHandler := handler.NewSummaryHandler(st)
	api.GET("/summary/month", summaryHandler.MonthSummary)
	api.GET("/summary/year", summaryHandler.YearSummary)

	syncHandler := handler.NewSyncHandler(st, rec, session, sched)
	api.GET("/sync/status", syncHandler.Status)
	api.POST("/sync/token", syncHandler.SetToken)
	api.DELETE("/sync/token", syncHandler.ClearToken)
	api.POST("/sync/push", syncHandler.Push)
	api.POST("/sync/pull", syncHandler.Pull)
	api.POST("/sync/connectivity", syncHandler.Connectivity)

	importExportHandler := handler.NewImportExportHandler(st)
	api.GET("/export/expenses.csv", importExportHandler.ExportExpensesCSV)
	api.GET("/export/income.csv", importExportHandler.ExportIncomeCSV)
	api.GET("/export/xlsx", importExportHandler.ExportXLSX)
	api.POST("/import/expenses", importExportHandler.ImportExpensesCSV)
	api.POST("/import/income", importExportHandler.ImportIncomeCSV)

	snapshotHandler := handler.NewSnapshotHandler(st, cfg.Security.EncryptionKey, cfg.Snapshot.Dir)
	api.POST("/snapshots", snapshotHandler.CreateSnapshot)
	api.GET("/snapshots", snapshotHandler.ListSnapshots)
	api.GET("/snapshots/:name/download", snapshotHandler.DownloadSnapshot)
	api.POST("/snapshots/:name/restore", snapshotHandler.RestoreSnapshot)
	api.DELETE("/snapshots/:name", snapshotHandler.DeleteSnapshot)

	return r
}

package handler

import (
	"net/http"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/syncer"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// SyncHandler drives the reconciler from the API: credential install,
// manual push/pull, connectivity signals and a status view.
type SyncHandler struct {
	Store     *store.Store
	Rec       *syncer.Reconciler
	Session   *syncer.Session
	Scheduler *syncer.Scheduler
}

func NewSyncHandler(st *store.Store, rec *syncer.Reconciler, session *syncer.Session, sched *syncer.Scheduler) *SyncHandler {
	return &SyncHandler{Store: st, Rec: rec, Session: session, Scheduler: sched}
}

type setTokenReq struct {
	Token     string `json:"token" binding:"required"`
	ExpiresAt string `json:"expires_at"`
}

// SetToken installs a bearer credential and immediately attempts a
// flush, since a fresh credential often unblocks a backed-up queue.
func (h *SyncHandler) SetToken(c *gin.Context) {
	var req setTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "token is required")
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != "" {
		parsed, err := util.ParseStamp(req.ExpiresAt)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid expires_at")
			return
		}
		expiresAt = parsed
	}

	h.Session.SetToken(req.Token, expiresAt)
	h.Scheduler.Reconnect()
	h.Status(c)
}

// ClearToken drops the credential without touching the queue.
func (h *SyncHandler) ClearToken(c *gin.Context) {
	h.Session.ClearToken()
	h.Status(c)
}

// Push overwrites the remote snapshot with local state on demand.
func (h *SyncHandler) Push(c *gin.Context) {
	if err := h.Rec.Push(c.Request.Context()); err != nil {
		syncError(c, err)
		return
	}
	h.Status(c)
}

// Pull merges the remote snapshot into local state on demand.
func (h *SyncHandler) Pull(c *gin.Context) {
	result, err := h.Rec.Pull(c.Request.Context())
	if err != nil {
		syncError(c, err)
		return
	}
	util.Success(c, util.Response{
		"expenses_applied": result.ExpensesApplied,
		"incomes_applied":  result.IncomesApplied,
	})
}

type connectivityReq struct {
	Online *bool `json:"online" binding:"required"`
}

// Connectivity records an online/offline signal. Coming back online
// flushes the pending queue synchronously.
func (h *SyncHandler) Connectivity(c *gin.Context) {
	var req connectivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "online is required")
		return
	}

	if *req.Online {
		h.Scheduler.Reconnect()
	} else {
		h.Session.SetOnline(false)
	}
	h.Status(c)
}

// Status reports the sync loop's current view of the world.
func (h *SyncHandler) Status(c *gin.Context) {
	pending, err := h.Store.PendingCount()
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
		"pending":    pending,
		"auto_sync":  autoSync,
		"authorized": h.Session.Valid(),
		"online":     h.Session.Online(),
	})
}

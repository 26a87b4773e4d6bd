package handler

import (
	"errors"
	"net/http"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/syncer"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// storeError translates store sentinels into the response envelope.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, store.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, err.Error())
	}
}

// syncError translates reconciler errors. Failed pushes and pulls are
// user-visible warnings, not fatal conditions: local state and the
// pending queue are preserved for a later retry.
func syncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, syncer.ErrSyncBusy):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, syncer.ErrPushFailed), errors.Is(err, syncer.ErrPullFailed):
		util.Error(c, http.StatusBadGateway, util.CodeSyncErr, err.Error())
	default:
		storeError(c, err)
	}
}

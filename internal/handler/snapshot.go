package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/store"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SnapshotHandler keeps encrypted point-in-time copies of the whole
// database on local disk, independent of the remote backup. Restore
// merges with last-write-wins rather than wiping, so restoring an old
// snapshot never destroys newer local edits.
type SnapshotHandler struct {
	Store      *store.Store
	EncryptKey string
	Dir        string
}

func NewSnapshotHandler(st *store.Store, encryptKey, dir string) *SnapshotHandler {
	return &SnapshotHandler{Store: st, EncryptKey: encryptKey, Dir: dir}
}

type snapshotData struct {
	Created  time.Time        `json:"created"`
	Expenses []models.Expense `json:"expenses"`
	Incomes  []models.Income  `json:"incomes"`
}

// CreateSnapshot serializes all records, tombstones included, encrypts
// the blob and writes it under the snapshot directory.
func (h *SnapshotHandler) CreateSnapshot(c *gin.Context) {
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

	raw, err := json.Marshal(&snapshotData{
		Created:  time.Now().UTC(),
		Expenses: expenses,
		Incomes:  incomes,
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "serialize failed")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "encrypt failed")
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create snapshot directory failed")
		return
	}

	name := fmt.Sprintf("snapshot-%s-%s.bin", time.Now().Format("20060102"), uuid.New().String())
	path := filepath.Join(h.Dir, name)
	if err := os.WriteFile(path, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write snapshot failed")
		return
	}

	util.Success(c, util.Response{
		"file_name": name,
		"size":      len(enc),
	})
}

// ListSnapshots scans the snapshot directory, newest first.
func (h *SnapshotHandler) ListSnapshots(c *gin.Context) {
	entries, err := os.ReadDir(h.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			util.Success(c, util.Response{"items": []gin.H{}})
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read snapshot directory failed")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "snapshot-") || !strings.HasSuffix(entry.Name(), ".bin") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, gin.H{
			"file_name":  entry.Name(),
			"size":       info.Size(),
			"created_at": info.ModTime().UTC().Format(util.StampLayout),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i]["file_name"].(string) > items[j]["file_name"].(string)
	})

	util.Success(c, util.Response{"items": items})
}

// snapshotPath resolves a request filename inside the snapshot
// directory, refusing traversal.
func (h *SnapshotHandler) snapshotPath(name string) (string, bool) {
	base := filepath.Base(name)
	if base != name || !strings.HasPrefix(base, "snapshot-") || !strings.HasSuffix(base, ".bin") {
		return "", false
	}
	return filepath.Join(h.Dir, base), true
}

// DownloadSnapshot serves the encrypted file as-is.
func (h *SnapshotHandler) DownloadSnapshot(c *gin.Context) {
	path, ok := h.snapshotPath(c.Param("name"))
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid snapshot name")
		return
	}
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "snapshot not found")
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	c.File(path)
}

// DeleteSnapshot removes a snapshot file.
func (h *SnapshotHandler) DeleteSnapshot(c *gin.Context) {
	path, ok := h.snapshotPath(c.Param("name"))
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid snapshot name")
		return
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "snapshot not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete snapshot failed")
		return
	}
	util.Success(c, util.Response{"deleted": filepath.Base(path)})
}

// RestoreSnapshot decrypts a snapshot and merges its records into the
// live database. Records the snapshot doesn't know about are kept.
func (h *SnapshotHandler) RestoreSnapshot(c *gin.Context) {
	path, ok := h.snapshotPath(c.Param("name"))
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid snapshot name")
		return
	}

	enc, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "snapshot not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read snapshot failed")
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "decrypt snapshot failed")
		return
	}

	var data snapshotData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parse snapshot failed")
		return
	}

	applied := 0
	for _, candidate := range data.Expenses {
		done, err := h.Store.MergeExpense(candidate)
		if err != nil {
			storeError(c, err)
			return
		}
		if done {
			applied++
		}
	}
	for _, candidate := range data.Incomes {
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

	util.Success(c, util.Response{
		"expenses": len(data.Expenses),
		"incomes":  len(data.Incomes),
		"applied":  applied,
	})
}

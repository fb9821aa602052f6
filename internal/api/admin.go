package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
)

// GetSettingsHandler handles GET /api/settings
func GetSettingsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.GetSettings())
	}
}

// UpdateSettingsHandler handles PUT /api/settings. The body replaces the
// settings wholesale.
func UpdateSettingsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings models.Settings
		if err := decodeJSON(r, &settings); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.UpdateSettings(settings); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// LogsHandler handles GET /api/logs?limit=N
func LogsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, r, badRequest("invalid limit "+raw))
				return
			}
			limit = n
		}
		logs := s.GetLogs(limit)
		writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "count": len(logs)})
	}
}

// ClearLogsHandler handles DELETE /api/logs
func ClearLogsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.ClearLogs(); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// StatsHandler handles GET /api/stats
func StatsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.GetStats())
	}
}

// ListResetsHandler handles GET /api/resets?account_id=ID
func ListResetsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter *uuid.UUID
		if raw := r.URL.Query().Get("account_id"); raw != "" {
			id, err := store.ParseID(raw)
			if err != nil {
				writeError(w, r, err)
				return
			}
			filter = &id
		}
		records := s.GetResetRecords(filter)
		writeJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
	}
}

// ResetStatsHandler handles GET /api/resets/stats
func ResetStatsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.GetResetStats())
	}
}

// RecordResetHandler handles POST /api/resets
func RecordResetHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccountID       uuid.UUID `json:"account_id"`
			MasterEmail     string    `json:"master_email"`
			UsedQuotaBefore int32     `json:"used_quota_before"`
			TotalQuota      int32     `json:"total_quota"`
			AutoJoined      bool      `json:"auto_joined"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		acc, err := s.GetAccount(req.AccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rec := models.NewResetRecord(acc, req.MasterEmail, req.UsedQuotaBefore, req.TotalQuota, req.AutoJoined)
		err = s.AddResetRecord(rec)
		logOp(s, models.OpResetCredits, acc, err, fmt.Sprintf("quota reset recorded (%d%% used)", rec.UsagePercent))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// ListBackupsHandler handles GET /api/backups
func ListBackupsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backups, err := s.ListBackups()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"backups": backups, "count": len(backups)})
	}
}

// CreateBackupHandler handles POST /api/backups
func CreateBackupHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := s.CreateTimestampedBackup()
		logOp(s, models.OpBackup, models.Account{}, err, "backup created: "+filepath.Base(path))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"path": path, "name": filepath.Base(path)})
	}
}

// RestoreBackupHandler handles POST /api/backups/restore with the name of
// a listed backup.
func RestoreBackupHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		path, err := s.BackupPath(req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.RestoreFromBackup(path); err != nil {
			writeError(w, r, err)
			return
		}
		logOp(s, models.OpBackup, models.Account{}, nil, "restored backup: "+req.Name)
		writeJSON(w, http.StatusOK, map[string]string{"restored": req.Name})
	}
}

type transferFileRequest struct {
	Path  string `json:"path"`
	Merge bool   `json:"merge"`
}

// ExportHandler handles POST /api/export. The path is on the server host.
func ExportHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferFileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Path == "" {
			writeError(w, r, badRequest("path is required"))
			return
		}
		if err := s.ExportData(req.Path); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": req.Path})
	}
}

// ImportHandler handles POST /api/import
func ImportHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferFileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Path == "" {
			writeError(w, r, badRequest("path is required"))
			return
		}
		res, err := s.ImportData(req.Path, req.Merge)
		if err != nil {
			writeError(w, r, err)
			return
		}
		_ = s.AddLog(models.NewOperationLog(models.OpImport, models.OpSuccess,
			fmt.Sprintf("imported %s", filepath.Base(req.Path))).WithDetails(res))
		writeJSON(w, http.StatusOK, res)
	}
}

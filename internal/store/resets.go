package store

import (
	"slices"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/store/models"
)

// AddResetRecord appends a reset event and folds it into the account's
// aggregate in the same write.
func (s *Store) AddResetRecord(rec models.ResetRecord) error {
	return s.update(func(doc *models.Document) error {
		doc.ResetRecords = append(doc.ResetRecords, rec)
		stats, ok := doc.ResetStats[rec.AccountID]
		if !ok {
			stats = models.AccountResetStats{AccountID: rec.AccountID}
		}
		stats.AccountEmail = rec.AccountEmail
		stats.AccountNickname = rec.AccountNickname
		stats.AddReset(rec.UsedQuotaBefore, rec.ResetAt)
		doc.ResetStats[rec.AccountID] = stats
		return nil
	})
}

// GetResetRecords returns reset events newest first, optionally for one
// account.
func (s *Store) GetResetRecords(accountID *uuid.UUID) []models.ResetRecord {
	var out []models.ResetRecord
	s.view(func(doc *models.Document) {
		for _, r := range doc.ResetRecords {
			if accountID == nil || r.AccountID == accountID.String() {
				out = append(out, r)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b models.ResetRecord) int {
		return b.ResetAt.Compare(a.ResetAt)
	})
	return out
}

// GetResetStats returns the per-account aggregates.
func (s *Store) GetResetStats() map[string]models.AccountResetStats {
	out := map[string]models.AccountResetStats{}
	s.view(func(doc *models.Document) {
		for k, v := range doc.ResetStats {
			out[k] = v
		}
	})
	return out
}

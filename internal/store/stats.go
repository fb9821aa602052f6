package store

import (
	"time"

	"github.com/pysugar/surfvault/internal/store/models"
)

// Stats is a summary derived from the document.
type Stats struct {
	TotalAccounts        int             `json:"total_accounts"`
	ActiveAccounts       int             `json:"active_accounts"`
	TotalOperations      int             `json:"total_operations"`
	SuccessfulOperations int             `json:"successful_operations"`
	FailedOperations     int             `json:"failed_operations"`
	SuccessRate          float64         `json:"success_rate"`
	TotalResets          int             `json:"total_resets"`
	SuccessfulResets     int             `json:"successful_resets"`
	FailedResets         int             `json:"failed_resets"`
	ResetSuccessRate     float64         `json:"reset_success_rate"`
	LastOperation        *time.Time      `json:"last_operation,omitempty"`
	Groups               int             `json:"groups"`
	Settings             models.Settings `json:"settings"`
}

// GetStats computes totals over accounts and the operation log.
func (s *Store) GetStats() Stats {
	var st Stats
	s.view(func(doc *models.Document) {
		st.TotalAccounts = len(doc.Accounts)
		for _, a := range doc.Accounts {
			if a.Status == models.StatusActive {
				st.ActiveAccounts++
			}
		}
		st.TotalOperations = len(doc.Logs)
		for _, l := range doc.Logs {
			switch l.Status {
			case models.OpSuccess:
				st.SuccessfulOperations++
			case models.OpFailed:
				st.FailedOperations++
			}
			if l.Type == models.OpResetCredits {
				st.TotalResets++
				if l.Status == models.OpSuccess {
					st.SuccessfulResets++
				}
			}
		}
		if n := len(doc.Logs); n > 0 {
			t := doc.Logs[n-1].Timestamp
			st.LastOperation = &t
		}
		st.Groups = len(doc.Groups)
		st.Settings = doc.Settings
	})
	st.FailedResets = st.TotalResets - st.SuccessfulResets
	st.SuccessRate = percent(st.SuccessfulOperations, st.TotalOperations)
	st.ResetSuccessRate = percent(st.SuccessfulResets, st.TotalResets)
	return st
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

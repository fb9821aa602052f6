package models

import (
	"time"

	"github.com/google/uuid"
)

// ResetRecord captures a single quota reset event.
type ResetRecord struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	AccountEmail    string    `json:"account_email"`
	AccountNickname string    `json:"account_nickname,omitempty"`
	MasterEmail     string    `json:"master_email,omitempty"`
	UsedQuotaBefore int32     `json:"used_quota_before"`
	TotalQuota      int32     `json:"total_quota"`
	UsagePercent    int32     `json:"usage_percent"`
	AutoJoined      bool      `json:"auto_joined"`
	ResetAt         time.Time `json:"reset_at"`
}

// NewResetRecord builds a record and derives its usage percentage.
func NewResetRecord(account Account, masterEmail string, used, total int32, autoJoined bool) ResetRecord {
	return ResetRecord{
		ID:              uuid.NewString(),
		AccountID:       account.ID.String(),
		AccountEmail:    account.Email,
		AccountNickname: account.Nickname,
		MasterEmail:     masterEmail,
		UsedQuotaBefore: used,
		TotalQuota:      total,
		UsagePercent:    UsagePercent(used, total),
		AutoJoined:      autoJoined,
		ResetAt:         time.Now().UTC(),
	}
}

// UsagePercent is used/total*100 truncated toward zero, or 0 when total is 0.
func UsagePercent(used, total int32) int32 {
	if total <= 0 {
		return 0
	}
	return int32(float64(used) / float64(total) * 100)
}

// AccountResetStats aggregates the reset history of one account.
type AccountResetStats struct {
	AccountID       string     `json:"account_id"`
	AccountEmail    string     `json:"account_email"`
	AccountNickname string     `json:"account_nickname,omitempty"`
	ResetCount      int32      `json:"reset_count"`
	TotalUsedQuota  int64      `json:"total_used_quota"`
	LastResetAt     *time.Time `json:"last_reset_at,omitempty"`
}

// AddReset folds one reset into the aggregate.
func (s *AccountResetStats) AddReset(used int32, at time.Time) {
	s.ResetCount++
	s.TotalUsedQuota += int64(used)
	s.LastResetAt = &at
}

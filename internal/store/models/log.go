package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OperationType categorizes an operation log entry.
type OperationType string

const (
	OpLogin          OperationType = "login"
	OpRefreshToken   OperationType = "refresh_token"
	OpResetCredits   OperationType = "reset_credits"
	OpUpdateSeats    OperationType = "update_seats"
	OpGetBilling     OperationType = "get_billing"
	OpUpdatePlan     OperationType = "update_plan"
	OpGetAccountInfo OperationType = "get_account_info"
	OpGetAnalytics   OperationType = "get_analytics"
	OpAddAccount     OperationType = "add_account"
	OpDeleteAccount  OperationType = "delete_account"
	OpEditAccount    OperationType = "edit_account"
	OpBatchOperation OperationType = "batch_operation"
	OpTeamManagement OperationType = "team_management"
	OpTransfer       OperationType = "transfer_subscription"
	OpBackup         OperationType = "backup"
	OpImport         OperationType = "import"
)

// OperationStatus is the outcome of a logged operation.
type OperationStatus string

const (
	OpSuccess    OperationStatus = "success"
	OpFailed     OperationStatus = "failed"
	OpPending    OperationStatus = "pending"
	OpProcessing OperationStatus = "processing"
)

// OperationLog is an immutable record of one operation.
type OperationLog struct {
	ID           uuid.UUID       `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	AccountID    *uuid.UUID      `json:"account_id,omitempty"`
	AccountEmail string          `json:"account_email,omitempty"`
	Type         OperationType   `json:"operation_type"`
	Status       OperationStatus `json:"status"`
	Message      string          `json:"message"`
	Details      json.RawMessage `json:"details,omitempty"`
}

// NewOperationLog stamps a fresh entry with an id and the current time.
func NewOperationLog(op OperationType, status OperationStatus, message string) OperationLog {
	return OperationLog{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Type:      op,
		Status:    status,
		Message:   message,
	}
}

// WithAccount associates the entry with an account.
func (l OperationLog) WithAccount(id uuid.UUID, email string) OperationLog {
	l.AccountID = &id
	l.AccountEmail = email
	return l
}

// WithDetails attaches a structured payload. Values that fail to marshal
// are dropped.
func (l OperationLog) WithDetails(v any) OperationLog {
	if raw, err := json.Marshal(v); err == nil {
		l.Details = raw
	}
	return l
}

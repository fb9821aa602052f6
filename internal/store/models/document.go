package models

import (
	"slices"
	"time"
)

// SchemaVersion is the newest document layout this build can read.
const SchemaVersion = 1

// Document is the full persisted state of a store. Backups and exports use
// the same shape.
type Document struct {
	SchemaVersion int                          `json:"schema_version"`
	ExportTime    *time.Time                   `json:"export_time,omitempty"`
	Accounts      []Account                    `json:"accounts"`
	Groups        []string                     `json:"groups"`
	Tags          []GlobalTag                  `json:"tags"`
	Settings      Settings                     `json:"settings"`
	Logs          []OperationLog               `json:"logs"`
	ResetRecords  []ResetRecord                `json:"reset_records,omitempty"`
	ResetStats    map[string]AccountResetStats `json:"reset_stats,omitempty"`
}

// NewDocument returns an empty document with default settings.
func NewDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Accounts:      []Account{},
		Groups:        []string{},
		Tags:          []GlobalTag{},
		Settings:      DefaultSettings(),
		Logs:          []OperationLog{},
		ResetStats:    map[string]AccountResetStats{},
	}
}

// Clone deep-copies the document so a mutation can be staged and discarded.
func (d *Document) Clone() *Document {
	out := &Document{
		SchemaVersion: d.SchemaVersion,
		Groups:        slices.Clone(d.Groups),
		Tags:          slices.Clone(d.Tags),
		Settings:      d.Settings,
		Logs:          slices.Clone(d.Logs),
		ResetRecords:  slices.Clone(d.ResetRecords),
		ResetStats:    make(map[string]AccountResetStats, len(d.ResetStats)),
	}
	if d.ExportTime != nil {
		t := *d.ExportTime
		out.ExportTime = &t
	}
	out.Accounts = make([]Account, len(d.Accounts))
	for i, a := range d.Accounts {
		out.Accounts[i] = a.Clone()
	}
	for k, v := range d.ResetStats {
		out.ResetStats[k] = v
	}
	return out
}

// Normalize fills nil collections left by older or hand-written documents.
func (d *Document) Normalize() {
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	if d.Groups == nil {
		d.Groups = []string{}
	}
	if d.Tags == nil {
		d.Tags = []GlobalTag{}
	}
	if d.Logs == nil {
		d.Logs = []OperationLog{}
	}
	if d.ResetStats == nil {
		d.ResetStats = map[string]AccountResetStats{}
	}
	for i := range d.Accounts {
		if d.Accounts[i].Tags == nil {
			d.Accounts[i].Tags = []string{}
		}
		if d.Accounts[i].Status == "" {
			d.Accounts[i].Status = StatusActive
		}
	}
	if d.Settings.Sort == (SortConfig{}) {
		d.Settings.Sort = DefaultSettings().Sort
	}
}

// BackupInfo describes one snapshot file on disk.
type BackupInfo struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

package store

import (
	"fmt"
	"slices"

	"github.com/pysugar/surfvault/internal/store/models"
)

// GetSettings returns the current settings value.
func (s *Store) GetSettings() models.Settings {
	var out models.Settings
	s.view(func(doc *models.Document) {
		out = doc.Settings
	})
	return out
}

// UpdateSettings replaces the settings wholesale.
func (s *Store) UpdateSettings(settings models.Settings) error {
	if !settings.Sort.Valid() {
		return fmt.Errorf("%w: sort %q %q", ErrValidation, settings.Sort.Field, settings.Sort.Direction)
	}
	return s.update(func(doc *models.Document) error {
		doc.Settings = settings
		return nil
	})
}

// AddLog appends an entry, dropping the oldest ones beyond the cap.
func (s *Store) AddLog(entry models.OperationLog) error {
	return s.update(func(doc *models.Document) error {
		doc.Logs = append(doc.Logs, entry)
		return nil
	})
}

// GetLogs returns the most recent entries, newest first. A non-positive
// limit returns all of them.
func (s *Store) GetLogs(limit int) []models.OperationLog {
	var out []models.OperationLog
	s.view(func(doc *models.Document) {
		logs := doc.Logs
		if limit > 0 && len(logs) > limit {
			logs = logs[len(logs)-limit:]
		}
		out = slices.Clone(logs)
	})
	slices.Reverse(out)
	return out
}

// ClearLogs drops every log entry.
func (s *Store) ClearLogs() error {
	return s.update(func(doc *models.Document) error {
		doc.Logs = []models.OperationLog{}
		return nil
	})
}

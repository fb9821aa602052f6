package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pysugar/surfvault/internal/store/models"
)

const (
	backupPrefix = "backup_"
	backupSuffix = ".json"
	// backupLayout sorts lexically in creation order.
	backupLayout = "20060102_150405.000000000"
)

// snapshot encodes the current document under the read lock.
func (s *Store) snapshot() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	s.view(func(doc *models.Document) {
		data, err = encodeDocument(doc)
	})
	return data, err
}

// CreateTimestampedBackup writes the current document to a new file in the
// backups directory and returns its path.
func (s *Store) CreateTimestampedBackup() (string, error) {
	data, err := s.snapshot()
	if err != nil {
		return "", err
	}
	name := backupPrefix + time.Now().UTC().Format(backupLayout) + backupSuffix
	path := filepath.Join(s.backupDir(), name)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	if err := s.pruneBackups(); err != nil {
		log.Printf("⚠️ Failed to prune backups: %v", err)
	}
	return path, nil
}

// BackupPath resolves the name of a backup listed by ListBackups to its
// path inside the backups directory.
func (s *Store) BackupPath(name string) (string, error) {
	if name == "" || filepath.Base(name) != name ||
		!strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
		return "", fmt.Errorf("%w: invalid backup name %q", ErrValidation, name)
	}
	return filepath.Join(s.backupDir(), name), nil
}

// ListBackups returns the snapshots on disk, newest first.
func (s *Store) ListBackups() ([]models.BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.BackupInfo{}, nil
		}
		return nil, fmt.Errorf("%w: list backups: %v", ErrIO, err)
	}

	out := make([]models.BackupInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		created, err := time.Parse(backupLayout, strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix))
		if err != nil {
			created = info.ModTime().UTC()
		}
		out = append(out, models.BackupInfo{
			Path:      filepath.Join(s.backupDir(), name),
			Name:      name,
			CreatedAt: created,
			Size:      info.Size(),
		})
	}
	slices.SortFunc(out, func(a, b models.BackupInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return out, nil
}

func (s *Store) pruneBackups() error {
	if s.retention <= 0 {
		return nil
	}
	backups, err := s.ListBackups()
	if err != nil {
		return err
	}
	for _, b := range backups[min(s.retention, len(backups)):] {
		if err := os.Remove(b.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// RestoreFromBackup replaces the whole store with the snapshot at path. The
// snapshot is fully decoded and validated before anything is changed.
func (s *Store) RestoreFromBackup(path string) error {
	doc, err := readDocument(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound("backup", path)
		}
		return err
	}
	if err := s.replace(doc); err != nil {
		return err
	}
	log.Printf("♻️ Restored %d accounts from %s", len(doc.Accounts), path)
	return nil
}

// StartBackupLoop writes a timestamped backup on every tick until ctx ends.
func (s *Store) StartBackupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				path, err := s.CreateTimestampedBackup()
				if err != nil {
					log.Printf("❌ Periodic backup failed: %v", err)
					continue
				}
				log.Printf("💾 Periodic backup written to %s", path)
			}
		}
	}()
}

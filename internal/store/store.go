// Package store keeps the account collection and everything attached to it
// in one in-memory document that is written through to disk on every change.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pysugar/surfvault/internal/store/models"
)

const (
	// DataFileName is the primary document inside the data directory.
	DataFileName = "accounts.json"
	// BackupDirName holds timestamped snapshots.
	BackupDirName = "backups"

	DefaultMaxLogs = 1000
)

// Options tunes retention.
type Options struct {
	// MaxLogs caps the operation log. Zero selects DefaultMaxLogs and a
	// negative value disables the cap.
	MaxLogs int
	// BackupRetention is how many snapshots to keep. Zero keeps all.
	BackupRetention int
}

// Store is the single owner of the persisted document. Readers receive
// copies; writers stage a change on a clone, persist it, then publish it.
type Store struct {
	dir  string
	path string

	maxLogs   int
	retention int

	mu  sync.RWMutex
	doc *models.Document
}

// Open loads the document from dataDir, creating an empty one when the
// directory holds none.
func Open(dataDir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, BackupDirName), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrIO, err)
	}

	s := &Store{
		dir:       dataDir,
		path:      filepath.Join(dataDir, DataFileName),
		maxLogs:   opts.MaxLogs,
		retention: opts.BackupRetention,
	}
	if s.maxLogs == 0 {
		s.maxLogs = DefaultMaxLogs
	}

	doc, err := readDocument(s.path)
	switch {
	case err == nil:
		log.Printf("📦 Loaded %d accounts from %s", len(doc.Accounts), s.path)
	case errors.Is(err, fs.ErrNotExist):
		doc = models.NewDocument()
		if err := writeDocument(s.path, doc); err != nil {
			return nil, err
		}
		log.Printf("📦 Created empty store at %s", s.path)
	default:
		return nil, err
	}
	s.doc = doc
	return s, nil
}

// DataDir returns the directory that holds the document and its backups.
func (s *Store) DataDir() string { return s.dir }

// Path returns the primary document path.
func (s *Store) Path() string { return s.path }

func (s *Store) backupDir() string { return filepath.Join(s.dir, BackupDirName) }

// view runs fn under the read lock. fn must not retain doc.
func (s *Store) view(fn func(doc *models.Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// update stages fn on a clone of the document under the write lock. The
// clone is published only if fn succeeds and the write to disk succeeds.
func (s *Store) update(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.trimLogs(next)
	if err := writeDocument(s.path, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// replace publishes a fully validated document.
func (s *Store) replace(doc *models.Document) error {
	return s.update(func(next *models.Document) error {
		*next = *doc
		return nil
	})
}

func (s *Store) trimLogs(doc *models.Document) {
	if s.maxLogs < 0 || len(doc.Logs) <= s.maxLogs {
		return
	}
	doc.Logs = append([]models.OperationLog(nil), doc.Logs[len(doc.Logs)-s.maxLogs:]...)
}

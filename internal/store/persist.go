package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pysugar/surfvault/internal/store/models"
)

// writeFileAtomic writes data next to path and renames it into place, so a
// crash leaves either the old file or the new one.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename into %s: %v", ErrIO, path, err)
	}
	return nil
}

func encodeDocument(doc *models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return data, nil
}

func writeDocument(path string, doc *models.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// readDocument loads and validates a document without touching any store.
func readDocument(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	return decodeDocument(data)
}

func decodeDocument(data []byte) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	if doc.SchemaVersion > models.SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d is newer than supported %d",
			ErrDeserialize, doc.SchemaVersion, models.SchemaVersion)
	}
	doc.SchemaVersion = models.SchemaVersion
	doc.Normalize()
	if err := validateDocument(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validateDocument rejects documents that would break store invariants.
func validateDocument(doc *models.Document) error {
	ids := make(map[string]struct{}, len(doc.Accounts))
	for _, a := range doc.Accounts {
		if a.ID == uuid.Nil {
			return fmt.Errorf("%w: account %q has no id", ErrDeserialize, a.Email)
		}
		key := a.ID.String()
		if _, ok := ids[key]; ok {
			return fmt.Errorf("%w: duplicate account id %s", ErrDeserialize, key)
		}
		ids[key] = struct{}{}
	}
	groups := make(map[string]struct{}, len(doc.Groups))
	for _, g := range doc.Groups {
		if _, ok := groups[g]; ok {
			return fmt.Errorf("%w: duplicate group %q", ErrDeserialize, g)
		}
		groups[g] = struct{}{}
	}
	tags := make(map[string]struct{}, len(doc.Tags))
	for _, t := range doc.Tags {
		if _, ok := tags[t.Name]; ok {
			return fmt.Errorf("%w: duplicate tag %q", ErrDeserialize, t.Name)
		}
		tags[t.Name] = struct{}{}
	}
	return nil
}

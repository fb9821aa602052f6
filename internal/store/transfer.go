package store

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/pysugar/surfvault/internal/store/models"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	// Replaced is set when the import replaced the whole store.
	Replaced bool `json:"replaced"`
}

// ExportData writes the current document to path.
func (s *Store) ExportData(path string) error {
	var (
		data []byte
		err  error
	)
	s.view(func(doc *models.Document) {
		out := doc.Clone()
		now := time.Now().UTC()
		out.ExportTime = &now
		data, err = encodeDocument(out)
	})
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// ImportData reads a document from path. With merge set, accounts are
// matched by id first and then by email; matches are overwritten by the
// incoming values except for their id, everything else is appended.
// Without merge the store is replaced wholesale.
func (s *Store) ImportData(path string, merge bool) (ImportResult, error) {
	incoming, err := readDocument(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImportResult{}, notFound("import file", path)
		}
		return ImportResult{}, err
	}
	incoming.ExportTime = nil

	if !merge {
		if err := s.replace(incoming); err != nil {
			return ImportResult{}, err
		}
		return ImportResult{Added: len(incoming.Accounts), Replaced: true}, nil
	}

	var res ImportResult
	err = s.update(func(doc *models.Document) error {
		res = mergeDocument(doc, incoming)
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("merge import: %w", err)
	}
	return res, nil
}

func mergeDocument(doc, incoming *models.Document) ImportResult {
	var res ImportResult
	now := time.Now().UTC()

	for _, g := range incoming.Groups {
		if !slices.Contains(doc.Groups, g) {
			doc.Groups = append(doc.Groups, g)
		}
	}
	for _, t := range incoming.Tags {
		if findTag(doc, t.Name) < 0 {
			doc.Tags = append(doc.Tags, t)
		}
	}

	for _, in := range incoming.Accounts {
		in = in.Clone()
		i := findAccount(doc, in.ID)
		if i < 0 && in.Email != "" {
			i = findAccountByEmail(doc, in.Email)
		}
		if i >= 0 {
			// A different account may already hold the incoming email.
			if j := findAccountByEmail(doc, in.Email); j >= 0 && j != i {
				res.Skipped++
				continue
			}
			in.ID = doc.Accounts[i].ID
			in.UpdatedAt = now
			doc.Accounts[i] = in
			res.Updated++
			continue
		}
		if in.Email == "" || findAccountByEmail(doc, in.Email) >= 0 {
			res.Skipped++
			continue
		}
		in.SortOrder = nextSortOrder(doc)
		doc.Accounts = append(doc.Accounts, in)
		res.Added++
	}

	for i := range doc.Accounts {
		if g := doc.Accounts[i].Group; g != "" && !slices.Contains(doc.Groups, g) {
			doc.Groups = append(doc.Groups, g)
		}
	}
	return res
}

package store

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pysugar/surfvault/internal/store/models"
)

// GetGroups returns the group names in creation order.
func (s *Store) GetGroups() []string {
	var out []string
	s.view(func(doc *models.Document) {
		out = slices.Clone(doc.Groups)
	})
	return out
}

// AddGroup registers a new group name.
func (s *Store) AddGroup(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: group name is required", ErrValidation)
	}
	return s.update(func(doc *models.Document) error {
		if slices.Contains(doc.Groups, name) {
			return duplicate("group", name)
		}
		doc.Groups = append(doc.Groups, name)
		return nil
	})
}

// DeleteGroup removes a group and clears it from member accounts. The
// accounts themselves are kept.
func (s *Store) DeleteGroup(name string) error {
	return s.update(func(doc *models.Document) error {
		i := slices.Index(doc.Groups, name)
		if i < 0 {
			return notFound("group", name)
		}
		doc.Groups = slices.Delete(doc.Groups, i, i+1)
		now := time.Now().UTC()
		for j := range doc.Accounts {
			if doc.Accounts[j].Group == name {
				doc.Accounts[j].Group = ""
				doc.Accounts[j].UpdatedAt = now
			}
		}
		return nil
	})
}

// RenameGroup renames a group and every account reference to it.
func (s *Store) RenameGroup(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: group name is required", ErrValidation)
	}
	return s.update(func(doc *models.Document) error {
		i := slices.Index(doc.Groups, oldName)
		if i < 0 {
			return notFound("group", oldName)
		}
		if oldName == newName {
			return nil
		}
		if slices.Contains(doc.Groups, newName) {
			return duplicate("group", newName)
		}
		doc.Groups[i] = newName
		now := time.Now().UTC()
		for j := range doc.Accounts {
			if doc.Accounts[j].Group == oldName {
				doc.Accounts[j].Group = newName
				doc.Accounts[j].UpdatedAt = now
			}
		}
		return nil
	})
}

package store

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pysugar/surfvault/internal/store/models"
)

func findTag(doc *models.Document, name string) int {
	return slices.IndexFunc(doc.Tags, func(t models.GlobalTag) bool { return t.Name == name })
}

// GetTags returns all global tags.
func (s *Store) GetTags() []models.GlobalTag {
	var out []models.GlobalTag
	s.view(func(doc *models.Document) {
		out = slices.Clone(doc.Tags)
	})
	return out
}

// AddTag registers a new global tag.
func (s *Store) AddTag(tag models.GlobalTag) (models.GlobalTag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return models.GlobalTag{}, fmt.Errorf("%w: tag name is required", ErrValidation)
	}
	err := s.update(func(doc *models.Document) error {
		if findTag(doc, tag.Name) >= 0 {
			return duplicate("tag", tag.Name)
		}
		if tag.CreatedAt.IsZero() {
			tag.CreatedAt = time.Now().UTC()
		}
		doc.Tags = append(doc.Tags, tag)
		return nil
	})
	return tag, err
}

// UpdateTag renames or recolors a tag. A rename is applied to every account
// holding the old name in the same write.
func (s *Store) UpdateTag(oldName string, tag models.GlobalTag) (models.GlobalTag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return models.GlobalTag{}, fmt.Errorf("%w: tag name is required", ErrValidation)
	}
	err := s.update(func(doc *models.Document) error {
		i := findTag(doc, oldName)
		if i < 0 {
			return notFound("tag", oldName)
		}
		if tag.Name != oldName && findTag(doc, tag.Name) >= 0 {
			return duplicate("tag", tag.Name)
		}
		tag.CreatedAt = doc.Tags[i].CreatedAt
		doc.Tags[i] = tag
		if tag.Name == oldName {
			return nil
		}
		now := time.Now().UTC()
		for j := range doc.Accounts {
			acc := &doc.Accounts[j]
			k := slices.Index(acc.Tags, oldName)
			if k < 0 {
				continue
			}
			if slices.Contains(acc.Tags, tag.Name) {
				acc.Tags = slices.Delete(acc.Tags, k, k+1)
			} else {
				acc.Tags[k] = tag.Name
			}
			acc.UpdatedAt = now
		}
		return nil
	})
	return tag, err
}

// DeleteTag removes a tag from the registry and from every account.
func (s *Store) DeleteTag(name string) error {
	return s.update(func(doc *models.Document) error {
		i := findTag(doc, name)
		if i < 0 {
			return notFound("tag", name)
		}
		doc.Tags = slices.Delete(doc.Tags, i, i+1)
		now := time.Now().UTC()
		for j := range doc.Accounts {
			acc := &doc.Accounts[j]
			if k := slices.Index(acc.Tags, name); k >= 0 {
				acc.Tags = slices.Delete(acc.Tags, k, k+1)
				acc.UpdatedAt = now
			}
		}
		return nil
	})
}

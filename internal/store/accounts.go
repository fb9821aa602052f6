package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/store/models"
)

func findAccount(doc *models.Document, id uuid.UUID) int {
	return slices.IndexFunc(doc.Accounts, func(a models.Account) bool { return a.ID == id })
}

func findAccountByEmail(doc *models.Document, email string) int {
	return slices.IndexFunc(doc.Accounts, func(a models.Account) bool {
		return strings.EqualFold(a.Email, email)
	})
}

func cloneAccounts(in []models.Account) []models.Account {
	out := make([]models.Account, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// GetAccount returns a copy of one account.
func (s *Store) GetAccount(id uuid.UUID) (models.Account, error) {
	var (
		acc models.Account
		err error
	)
	s.view(func(doc *models.Document) {
		i := findAccount(doc, id)
		if i < 0 {
			err = notFound("account", id.String())
			return
		}
		acc = doc.Accounts[i].Clone()
	})
	return acc, err
}

// GetAllAccounts returns every account in storage order.
func (s *Store) GetAllAccounts() []models.Account {
	var out []models.Account
	s.view(func(doc *models.Document) {
		out = cloneAccounts(doc.Accounts)
	})
	return out
}

// GetSortedAccounts returns every account ordered by the given key.
func (s *Store) GetSortedAccounts(cfg models.SortConfig) ([]models.Account, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: sort %q %q", ErrValidation, cfg.Field, cfg.Direction)
	}
	accounts := s.GetAllAccounts()
	SortAccounts(accounts, cfg)
	return accounts, nil
}

// SortAccounts orders accounts in place. Manual order falls back to
// creation time on equal positions.
func SortAccounts(accounts []models.Account, cfg models.SortConfig) {
	compare := func(a, b models.Account) int {
		switch cfg.Field {
		case models.SortByEmail:
			return cmp.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		case models.SortByStatus:
			return cmp.Compare(a.Status, b.Status)
		case models.SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
				return c
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	slices.SortStableFunc(accounts, func(a, b models.Account) int {
		if cfg.Direction == models.SortDesc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

// AddAccount stores a new account. The id, timestamps and manual position
// are assigned here.
func (s *Store) AddAccount(acc models.Account) (models.Account, error) {
	acc.Email = strings.TrimSpace(acc.Email)
	if acc.Email == "" {
		return models.Account{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	var created models.Account
	err := s.update(func(doc *models.Document) error {
		if findAccountByEmail(doc, acc.Email) >= 0 {
			return duplicate("account", acc.Email)
		}
		if acc.Group != "" && !slices.Contains(doc.Groups, acc.Group) {
			return notFound("group", acc.Group)
		}
		now := time.Now().UTC()
		acc = acc.Clone()
		acc.ID = uuid.New()
		acc.CreatedAt = now
		acc.UpdatedAt = now
		if acc.Status == "" {
			acc.Status = models.StatusActive
		}
		acc.SortOrder = nextSortOrder(doc)
		doc.Accounts = append(doc.Accounts, acc)
		created = acc.Clone()
		return nil
	})
	return created, err
}

func nextSortOrder(doc *models.Document) int {
	next := 0
	for _, a := range doc.Accounts {
		if a.SortOrder >= next {
			next = a.SortOrder + 1
		}
	}
	return next
}

// UpdateAccount replaces an account wholesale. ID and CreatedAt are kept.
func (s *Store) UpdateAccount(acc models.Account) (models.Account, error) {
	var updated models.Account
	err := s.update(func(doc *models.Document) error {
		i := findAccount(doc, acc.ID)
		if i < 0 {
			return notFound("account", acc.ID.String())
		}
		var err error
		updated, err = commitAccount(doc, i, acc)
		return err
	})
	return updated, err
}

// ModifyAccount applies fn to the current stored account under the write
// lock, so fields fn leaves alone keep any concurrent change. ID and
// CreatedAt are kept whatever fn does.
func (s *Store) ModifyAccount(id uuid.UUID, fn func(acc *models.Account) error) (models.Account, error) {
	var updated models.Account
	err := s.update(func(doc *models.Document) error {
		i := findAccount(doc, id)
		if i < 0 {
			return notFound("account", id.String())
		}
		acc := doc.Accounts[i].Clone()
		if err := fn(&acc); err != nil {
			return err
		}
		acc.ID = id
		var err error
		updated, err = commitAccount(doc, i, acc)
		return err
	})
	return updated, err
}

func commitAccount(doc *models.Document, i int, acc models.Account) (models.Account, error) {
	acc.Email = strings.TrimSpace(acc.Email)
	if acc.Email == "" {
		return models.Account{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if j := findAccountByEmail(doc, acc.Email); j >= 0 && j != i {
		return models.Account{}, duplicate("account", acc.Email)
	}
	if acc.Group != "" && !slices.Contains(doc.Groups, acc.Group) {
		return models.Account{}, notFound("group", acc.Group)
	}
	acc = acc.Clone()
	acc.CreatedAt = doc.Accounts[i].CreatedAt
	acc.UpdatedAt = time.Now().UTC()
	doc.Accounts[i] = acc
	return acc.Clone(), nil
}

// DeleteAccount removes an account together with its reset history.
func (s *Store) DeleteAccount(id uuid.UUID) error {
	return s.update(func(doc *models.Document) error {
		i := findAccount(doc, id)
		if i < 0 {
			return notFound("account", id.String())
		}
		doc.Accounts = slices.Delete(doc.Accounts, i, i+1)
		key := id.String()
		delete(doc.ResetStats, key)
		doc.ResetRecords = slices.DeleteFunc(doc.ResetRecords, func(r models.ResetRecord) bool {
			return r.AccountID == key
		})
		return nil
	})
}

// TokenUpdate is the result of a refresh exchange written back to an account.
type TokenUpdate struct {
	Token string
	// RefreshToken replaces the stored one only when non-empty.
	RefreshToken string
	// ExpiresAt is zero when the exchange reported no lifetime.
	ExpiresAt time.Time
}

// UpdateAccountToken writes refreshed credentials back and returns the
// updated account.
func (s *Store) UpdateAccountToken(id uuid.UUID, upd TokenUpdate) (models.Account, error) {
	var updated models.Account
	err := s.update(func(doc *models.Document) error {
		i := findAccount(doc, id)
		if i < 0 {
			return notFound("account", id.String())
		}
		acc := &doc.Accounts[i]
		acc.Token = upd.Token
		acc.TokenExpiresAt = upd.ExpiresAt
		if upd.RefreshToken != "" {
			acc.RefreshToken = upd.RefreshToken
		}
		acc.UpdatedAt = time.Now().UTC()
		updated = acc.Clone()
		return nil
	})
	return updated, err
}

// SetAccountStatus changes only the lifecycle status.
func (s *Store) SetAccountStatus(id uuid.UUID, status models.AccountStatus) error {
	return s.update(func(doc *models.Document) error {
		i := findAccount(doc, id)
		if i < 0 {
			return notFound("account", id.String())
		}
		doc.Accounts[i].Status = status
		doc.Accounts[i].UpdatedAt = time.Now().UTC()
		return nil
	})
}

// UpdateAccountsOrder assigns manual positions following ids. Accounts not
// listed keep their relative order after the listed ones.
func (s *Store) UpdateAccountsOrder(ids []uuid.UUID) error {
	return s.update(func(doc *models.Document) error {
		listed := make(map[uuid.UUID]int, len(ids))
		for pos, id := range ids {
			if findAccount(doc, id) < 0 {
				return notFound("account", id.String())
			}
			if _, dup := listed[id]; dup {
				return fmt.Errorf("%w: account %s listed twice", ErrValidation, id)
			}
			listed[id] = pos
		}

		rest := make([]*models.Account, 0, len(doc.Accounts))
		for i := range doc.Accounts {
			acc := &doc.Accounts[i]
			if pos, ok := listed[acc.ID]; ok {
				acc.SortOrder = pos
				continue
			}
			rest = append(rest, acc)
		}
		slices.SortStableFunc(rest, func(a, b *models.Account) int {
			if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
				return c
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		for i, acc := range rest {
			acc.SortOrder = len(ids) + i
		}
		return nil
	})
}

// BatchResult counts per-account outcomes of a batch call.
type BatchResult struct {
	SuccessCount int `json:"success_count"`
	FailedCount  int `json:"failed_count"`
}

// BatchUpdateAccountTags adds then removes tags on each account, so a tag
// named in both lists ends up removed. Unknown ids count as failures.
func (s *Store) BatchUpdateAccountTags(ids []uuid.UUID, add, remove []string) (BatchResult, error) {
	var res BatchResult
	err := s.update(func(doc *models.Document) error {
		res = BatchResult{}
		now := time.Now().UTC()
		for _, id := range ids {
			i := findAccount(doc, id)
			if i < 0 {
				res.FailedCount++
				continue
			}
			acc := &doc.Accounts[i]
			for _, tag := range add {
				if !slices.Contains(acc.Tags, tag) {
					acc.Tags = append(acc.Tags, tag)
				}
			}
			acc.Tags = slices.DeleteFunc(acc.Tags, func(t string) bool {
				return slices.Contains(remove, t)
			})
			acc.UpdatedAt = now
			res.SuccessCount++
		}
		return nil
	})
	return res, err
}

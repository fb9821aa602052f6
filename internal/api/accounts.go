package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
)

func accountID(r *http.Request) (uuid.UUID, error) {
	return store.ParseID(chi.URLParam(r, "id"))
}

func logOp(s *store.Store, op models.OperationType, acc models.Account, err error, okMsg string) {
	entry := models.NewOperationLog(op, models.OpSuccess, okMsg)
	if err != nil {
		entry = models.NewOperationLog(op, models.OpFailed, err.Error())
	}
	if acc.ID != uuid.Nil {
		entry = entry.WithAccount(acc.ID, acc.Email)
	}
	_ = s.AddLog(entry)
}

// ListAccountsHandler handles GET /api/accounts. The sort and dir query
// parameters override the stored sort preference.
func ListAccountsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings := s.GetSettings()
		cfg := settings.Sort
		if field := r.URL.Query().Get("sort"); field != "" {
			cfg.Field = models.SortField(field)
		}
		if dir := r.URL.Query().Get("dir"); dir != "" {
			cfg.Direction = models.SortDirection(dir)
		}
		accounts, err := s.GetSortedAccounts(cfg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := newAccountViews(accounts, settings.PrivacyMode)
		writeJSON(w, http.StatusOK, map[string]any{
			"accounts": views,
			"count":    len(views),
		})
	}
}

// GetAccountHandler handles GET /api/accounts/{id}
func GetAccountHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		acc, err := s.GetAccount(id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newAccountView(acc, s.GetSettings().PrivacyMode))
	}
}

type accountRequest struct {
	Email        *string   `json:"email"`
	Nickname     *string   `json:"nickname"`
	Token        *string   `json:"token"`
	RefreshToken *string   `json:"refresh_token"`
	APIKey       *string   `json:"api_key"`
	Group        *string   `json:"group"`
	Tags         *[]string `json:"tags"`
	Status       *string   `json:"status"`
}

func (req accountRequest) apply(acc *models.Account) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&acc.Email, req.Email)
	set(&acc.Nickname, req.Nickname)
	set(&acc.Token, req.Token)
	set(&acc.RefreshToken, req.RefreshToken)
	set(&acc.APIKey, req.APIKey)
	set(&acc.Group, req.Group)
	if req.Tags != nil {
		acc.Tags = *req.Tags
	}
	if req.Status != nil {
		switch st := models.AccountStatus(*req.Status); st {
		case models.StatusActive, models.StatusDisabled:
			acc.Status = st
		default:
			return badRequest("unknown status " + *req.Status)
		}
	}
	return nil
}

// CreateAccountHandler handles POST /api/accounts
func CreateAccountHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		var acc models.Account
		if err := req.apply(&acc); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.AddAccount(acc)
		logOp(s, models.OpAddAccount, created, err, "account added: "+acc.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newAccountView(created, false))
	}
}

// UpdateAccountHandler handles PUT /api/accounts/{id}. Omitted fields keep
// their current values.
func UpdateAccountHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		acc, err := s.GetAccount(id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.ModifyAccount(id, req.apply)
		logOp(s, models.OpEditAccount, acc, err, "account updated")
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newAccountView(updated, false))
	}
}

// DeleteAccountHandler handles DELETE /api/accounts/{id}
func DeleteAccountHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		acc, err := s.GetAccount(id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		err = s.DeleteAccount(id)
		logOp(s, models.OpDeleteAccount, acc, err, "account deleted: "+acc.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReorderAccountsHandler handles PUT /api/accounts/order
func ReorderAccountsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []uuid.UUID `json:"ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.UpdateAccountsOrder(req.IDs); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// BatchTagsHandler handles POST /api/accounts/tags
func BatchTagsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs    []uuid.UUID `json:"ids"`
			Add    []string    `json:"add"`
			Remove []string    `json:"remove"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		res, err := s.BatchUpdateAccountTags(req.IDs, req.Add, req.Remove)
		entry := models.NewOperationLog(models.OpBatchOperation, models.OpSuccess, "batch tag update").WithDetails(res)
		if err != nil {
			entry = models.NewOperationLog(models.OpBatchOperation, models.OpFailed, err.Error())
		}
		_ = s.AddLog(entry)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

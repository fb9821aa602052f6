package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
)

type nameRequest struct {
	Name string `json:"name"`
}

// ListGroupsHandler handles GET /api/groups
func ListGroupsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"groups": s.GetGroups()})
	}
}

// CreateGroupHandler handles POST /api/groups
func CreateGroupHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.AddGroup(req.Name); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

// RenameGroupHandler handles PUT /api/groups/{name}
func RenameGroupHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.RenameGroup(chi.URLParam(r, "name"), req.Name); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

// DeleteGroupHandler handles DELETE /api/groups/{name}
func DeleteGroupHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.DeleteGroup(chi.URLParam(r, "name")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListTagsHandler handles GET /api/tags
func ListTagsHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tags": s.GetTags()})
	}
}

// CreateTagHandler handles POST /api/tags
func CreateTagHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tag models.GlobalTag
		if err := decodeJSON(r, &tag); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.AddTag(tag)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// UpdateTagHandler handles PUT /api/tags/{name}. Renames propagate to every
// account holding the tag.
func UpdateTagHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tag models.GlobalTag
		if err := decodeJSON(r, &tag); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.UpdateTag(chi.URLParam(r, "name"), tag)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteTagHandler handles DELETE /api/tags/{name}
func DeleteTagHandler(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.DeleteTag(chi.URLParam(r, "name")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

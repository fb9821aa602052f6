package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pysugar/surfvault/internal/discovery"
	"github.com/pysugar/surfvault/internal/upstream"
	"github.com/pysugar/surfvault/internal/workflow"
)

// RefreshAccountHandler handles POST /api/accounts/{id}/refresh
func RefreshAccountHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		acc, err := svc.RefreshToken(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newAccountView(acc, false))
	}
}

// AccountInfoHandler handles GET /api/accounts/{id}/info
func AccountInfoHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		user, err := svc.AccountInfo(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// AnalyticsHandler handles POST /api/accounts/{id}/analytics
func AnalyticsHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req struct {
			Start    time.Time `json:"start"`
			End      time.Time `json:"end"`
			TimeZone string    `json:"time_zone"`
			Team     bool      `json:"team"`
			Queries  []string  `json:"queries"`
		}
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, r, err)
				return
			}
		}
		res, err := svc.Analytics(r.Context(), id, workflow.AnalyticsParams{
			Start:    req.Start,
			End:      req.End,
			TimeZone: req.TimeZone,
			Team:     req.Team,
			Queries:  req.Queries,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// TeamMembersHandler handles GET /api/accounts/{id}/team/members
func TeamMembersHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		members, err := svc.ListMembers(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members, "count": len(members)})
	}
}

// InviteMembersHandler handles POST /api/accounts/{id}/team/members
func InviteMembersHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req struct {
			Users []upstream.Invitee `json:"users"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.InviteMembers(r.Context(), id, req.Users); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"invited": len(req.Users)})
	}
}

// RemoveMemberHandler handles DELETE /api/accounts/{id}/team/members/{apiKey}
func RemoveMemberHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.RemoveMember(r.Context(), id, chi.URLParam(r, "apiKey")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PendingInvitationsHandler handles GET /api/accounts/{id}/team/invitations
func PendingInvitationsHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		invitations, err := svc.PendingInvitations(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"invitations": invitations, "count": len(invitations)})
	}
}

// RevokeInvitationHandler handles DELETE /api/accounts/{id}/team/invitations/{approvalID}
func RevokeInvitationHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.RevokeInvitation(r.Context(), id, chi.URLParam(r, "approvalID")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MyInvitationHandler handles GET /api/accounts/{id}/invitation
func MyInvitationHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		invitation, err := svc.MyInvitation(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, invitation)
	}
}

type invitationRequest struct {
	ApprovalID string `json:"approval_id"`
}

// AnswerInvitationHandler handles POST /api/accounts/{id}/invitation/accept
// and /reject. Accept without an approval id takes the current invitation.
func AnswerInvitationHandler(svc *workflow.Service, accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req invitationRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, r, err)
				return
			}
		}
		if accept {
			err = svc.AcceptInvitation(r.Context(), id, req.ApprovalID)
		} else {
			err = svc.RejectInvitation(r.Context(), id, req.ApprovalID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// JoinRequestHandler handles POST /api/accounts/{id}/team/join-requests
func JoinRequestHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req struct {
			APIKey string `json:"api_key"`
			Action string `json:"action"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		var approve bool
		switch strings.ToLower(req.Action) {
		case "approve":
			approve = true
		case "reject":
		default:
			writeError(w, r, badRequest("action must be approve or reject"))
			return
		}
		if err := svc.ReviewJoinRequest(r.Context(), id, req.APIKey, approve); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MemberAccessHandler handles PUT /api/accounts/{id}/team/members/{apiKey}/access
func MemberAccessHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req struct {
			Disable bool `json:"disable"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.SetMemberAccess(r.Context(), id, chi.URLParam(r, "apiKey"), req.Disable); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MemberRoleHandler handles PUT (grant) and DELETE (revoke) on
// /api/accounts/{id}/team/members/{apiKey}/roles/{role}
func MemberRoleHandler(svc *workflow.Service, grant bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		err = svc.SetMemberRole(r.Context(), id, chi.URLParam(r, "apiKey"), chi.URLParam(r, "role"), grant)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TransferHandler handles POST /api/accounts/{id}/transfer. The step report
// is returned even when a step failed.
func TransferHandler(svc *workflow.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req workflow.TransferRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		req.SourceID = id
		res, err := svc.Transfer(r.Context(), req)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, res)
		case errors.Is(err, workflow.ErrTargetNotJoined):
			writeJSON(w, http.StatusAccepted, res)
		case res != nil && len(res.Completed) > 0:
			writeJSON(w, http.StatusBadGateway, res)
		default:
			writeError(w, r, err)
		}
	}
}

// LocalClientHandler handles GET /api/local, reporting the account the
// locally installed client is signed in with.
func LocalClientHandler(statePath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := statePath
		if path == "" {
			path = discovery.DefaultStatePath()
		}
		info, err := discovery.Inspect(path)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, info.Masked())
	}
}

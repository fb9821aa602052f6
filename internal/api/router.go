// Package api exposes the account repository and workflows over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pysugar/surfvault/internal/logging"
	"github.com/pysugar/surfvault/internal/workflow"
)

// Options configures the router.
type Options struct {
	// AdminKey guards every /api route when set.
	AdminKey string
	// LocalStatePath overrides the local client state store location.
	LocalStatePath string
	// AccessLog enables per-request logging.
	AccessLog bool
}

// NewRouter builds the HTTP handler of the management API.
func NewRouter(svc *workflow.Service, opts Options) http.Handler {
	s := svc.Store()

	r := chi.NewRouter()
	r.Use(logging.RequestID)
	if opts.AccessLog {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(AdminKeyAuth(opts.AdminKey))

		// Accounts
		r.Get("/accounts", ListAccountsHandler(s))
		r.Post("/accounts", CreateAccountHandler(s))
		r.Put("/accounts/order", ReorderAccountsHandler(s))
		r.Post("/accounts/tags", BatchTagsHandler(s))
		r.Get("/accounts/{id}", GetAccountHandler(s))
		r.Put("/accounts/{id}", UpdateAccountHandler(s))
		r.Delete("/accounts/{id}", DeleteAccountHandler(s))

		// Remote operations
		r.Post("/accounts/{id}/refresh", RefreshAccountHandler(svc))
		r.Get("/accounts/{id}/info", AccountInfoHandler(svc))
		r.Post("/accounts/{id}/analytics", AnalyticsHandler(svc))
		r.Get("/accounts/{id}/team/members", TeamMembersHandler(svc))
		r.Post("/accounts/{id}/team/members", InviteMembersHandler(svc))
		r.Delete("/accounts/{id}/team/members/{apiKey}", RemoveMemberHandler(svc))
		r.Put("/accounts/{id}/team/members/{apiKey}/access", MemberAccessHandler(svc))
		r.Put("/accounts/{id}/team/members/{apiKey}/roles/{role}", MemberRoleHandler(svc, true))
		r.Delete("/accounts/{id}/team/members/{apiKey}/roles/{role}", MemberRoleHandler(svc, false))
		r.Get("/accounts/{id}/team/invitations", PendingInvitationsHandler(svc))
		r.Delete("/accounts/{id}/team/invitations/{approvalID}", RevokeInvitationHandler(svc))
		r.Post("/accounts/{id}/team/join-requests", JoinRequestHandler(svc))
		r.Get("/accounts/{id}/invitation", MyInvitationHandler(svc))
		r.Post("/accounts/{id}/invitation/accept", AnswerInvitationHandler(svc, true))
		r.Post("/accounts/{id}/invitation/reject", AnswerInvitationHandler(svc, false))
		r.Post("/accounts/{id}/transfer", TransferHandler(svc))

		// Groups and tags
		r.Get("/groups", ListGroupsHandler(s))
		r.Post("/groups", CreateGroupHandler(s))
		r.Put("/groups/{name}", RenameGroupHandler(s))
		r.Delete("/groups/{name}", DeleteGroupHandler(s))
		r.Get("/tags", ListTagsHandler(s))
		r.Post("/tags", CreateTagHandler(s))
		r.Put("/tags/{name}", UpdateTagHandler(s))
		r.Delete("/tags/{name}", DeleteTagHandler(s))

		// Settings, logs and stats
		r.Get("/settings", GetSettingsHandler(s))
		r.Put("/settings", UpdateSettingsHandler(s))
		r.Get("/logs", LogsHandler(s))
		r.Delete("/logs", ClearLogsHandler(s))
		r.Get("/stats", StatsHandler(s))

		// Quota resets
		r.Get("/resets", ListResetsHandler(s))
		r.Post("/resets", RecordResetHandler(s))
		r.Get("/resets/stats", ResetStatsHandler(s))

		// Backups and transfer files
		r.Get("/backups", ListBackupsHandler(s))
		r.Post("/backups", CreateBackupHandler(s))
		r.Post("/backups/restore", RestoreBackupHandler(s))
		r.Post("/export", ExportHandler(s))
		r.Post("/import", ImportHandler(s))

		r.Get("/local", LocalClientHandler(opts.LocalStatePath))
	})
	return r
}

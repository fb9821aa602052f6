package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/pysugar/surfvault/internal/upstream"
)

// AccountInfo fetches the remote identity of an account and stores the
// API key and name it reports.
func (s *Service) AccountInfo(ctx context.Context, id uuid.UUID) (*upstream.CurrentUser, error) {
	acc, err := s.store.GetAccount(id)
	if err != nil {
		return nil, err
	}
	user, err := call(ctx, s, id, func(ctx context.Context, acc models.Account) (*upstream.CurrentUser, error) {
		return s.client.GetCurrentUser(ctx, acc.Token)
	})
	s.record(models.OpGetAccountInfo, acc, err, "account info fetched", nil)
	if err != nil {
		return nil, err
	}

	remote := user.UserInfo.User
	if (remote.APIKey != "" && remote.APIKey != acc.APIKey) || (acc.Nickname == "" && remote.Name != "") {
		_, err := s.store.ModifyAccount(id, func(latest *models.Account) error {
			if remote.APIKey != "" {
				latest.APIKey = remote.APIKey
			}
			if latest.Nickname == "" {
				latest.Nickname = remote.Name
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ListMembers lists the team of the account.
func (s *Service) ListMembers(ctx context.Context, id uuid.UUID) ([]upstream.TeamMember, error) {
	return call(ctx, s, id, func(ctx context.Context, acc models.Account) ([]upstream.TeamMember, error) {
		return s.client.GetTeamMembers(ctx, acc.Token)
	})
}

// InviteMembers pre-approves users for the account's team.
func (s *Service) InviteMembers(ctx context.Context, id uuid.UUID, invitees []upstream.Invitee) error {
	if len(invitees) == 0 {
		return fmt.Errorf("%w: no invitees given", store.ErrValidation)
	}
	for i, inv := range invitees {
		if strings.TrimSpace(inv.Email) == "" {
			return fmt.Errorf("%w: invitee %d has no email", store.ErrValidation, i)
		}
	}
	return s.teamAction(ctx, id, fmt.Sprintf("invited %d member(s)", len(invitees)), invitees,
		func(ctx context.Context, acc models.Account) error {
			return s.client.GrantPreapproval(ctx, acc.Token, invitees)
		})
}

// RemoveMember removes a member, identified by API key, from the team.
func (s *Service) RemoveMember(ctx context.Context, id uuid.UUID, memberAPIKey string) error {
	if err := required("member api key", memberAPIKey); err != nil {
		return err
	}
	return s.teamAction(ctx, id, "member removed", nil, func(ctx context.Context, acc models.Account) error {
		return s.client.RemoveUserFromTeam(ctx, acc.Token, memberAPIKey)
	})
}

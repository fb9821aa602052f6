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

// ErrNoInvitation means the account has no pending invitation to act on.
var ErrNoInvitation = fmt.Errorf("%w: no pending invitation", store.ErrNotFound)

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", store.ErrValidation, name)
	}
	return nil
}

// teamAction runs a remote call that returns nothing and logs it as team
// management.
func (s *Service) teamAction(ctx context.Context, id uuid.UUID, okMsg string, details any,
	fn func(ctx context.Context, acc models.Account) error) error {
	acc, err := s.store.GetAccount(id)
	if err != nil {
		return err
	}
	_, err = call(ctx, s, id, func(ctx context.Context, acc models.Account) (struct{}, error) {
		return struct{}{}, fn(ctx, acc)
	})
	s.record(models.OpTeamManagement, acc, err, okMsg, details)
	return err
}

// PendingInvitations lists invitations the account's team has sent.
func (s *Service) PendingInvitations(ctx context.Context, id uuid.UUID) ([]upstream.Preapproval, error) {
	return call(ctx, s, id, func(ctx context.Context, acc models.Account) ([]upstream.Preapproval, error) {
		return s.client.GetPreapprovals(ctx, acc.Token)
	})
}

// RevokeInvitation withdraws an invitation the account's team has sent.
func (s *Service) RevokeInvitation(ctx context.Context, id uuid.UUID, approvalID string) error {
	if err := required("approval id", approvalID); err != nil {
		return err
	}
	return s.teamAction(ctx, id, "invitation revoked", map[string]string{"approval_id": approvalID},
		func(ctx context.Context, acc models.Account) error {
			return s.client.RevokePreapproval(ctx, acc.Token, approvalID)
		})
}

// MyInvitation returns the invitation addressed to the account, or
// ErrNoInvitation.
func (s *Service) MyInvitation(ctx context.Context, id uuid.UUID) (*upstream.Preapproval, error) {
	p, err := call(ctx, s, id, func(ctx context.Context, acc models.Account) (*upstream.Preapproval, error) {
		return s.client.GetPreapprovalForUser(ctx, acc.Token)
	})
	if err != nil {
		return nil, err
	}
	if p == nil || p.ApprovalID == "" {
		return nil, ErrNoInvitation
	}
	return p, nil
}

// AcceptInvitation joins the team that invited the account. An empty
// approvalID accepts the account's current invitation.
func (s *Service) AcceptInvitation(ctx context.Context, id uuid.UUID, approvalID string) error {
	if approvalID == "" {
		p, err := s.MyInvitation(ctx, id)
		if err != nil {
			return err
		}
		approvalID = p.ApprovalID
	}
	return s.teamAction(ctx, id, "invitation accepted", map[string]string{"approval_id": approvalID},
		func(ctx context.Context, acc models.Account) error {
			return s.client.AcceptPreapproval(ctx, acc.Token, approvalID)
		})
}

// RejectInvitation declines an invitation addressed to the account.
func (s *Service) RejectInvitation(ctx context.Context, id uuid.UUID, approvalID string) error {
	if err := required("approval id", approvalID); err != nil {
		return err
	}
	return s.teamAction(ctx, id, "invitation rejected", map[string]string{"approval_id": approvalID},
		func(ctx context.Context, acc models.Account) error {
			return s.client.RejectPreapproval(ctx, acc.Token, approvalID)
		})
}

// ReviewJoinRequest approves or rejects a user's request to join the
// account's team.
func (s *Service) ReviewJoinRequest(ctx context.Context, id uuid.UUID, userAPIKey string, approve bool) error {
	if err := required("user api key", userAPIKey); err != nil {
		return err
	}
	status, msg := upstream.JoinRejected, "join request rejected"
	if approve {
		status, msg = upstream.JoinApproved, "join request approved"
	}
	return s.teamAction(ctx, id, msg, nil, func(ctx context.Context, acc models.Account) error {
		return s.client.UpdateUserTeamStatus(ctx, acc.Token, userAPIKey, status)
	})
}

// SetMemberAccess disables or re-enables a member's seat.
func (s *Service) SetMemberAccess(ctx context.Context, id uuid.UUID, memberAPIKey string, disable bool) error {
	if err := required("member api key", memberAPIKey); err != nil {
		return err
	}
	msg := "member access enabled"
	if disable {
		msg = "member access disabled"
	}
	return s.teamAction(ctx, id, msg, nil, func(ctx context.Context, acc models.Account) error {
		return s.client.UpdateCodeiumAccess(ctx, acc.Token, memberAPIKey, disable)
	})
}

// SetMemberRole grants or revokes role for a member.
func (s *Service) SetMemberRole(ctx context.Context, id uuid.UUID, memberAPIKey, role string, grant bool) error {
	if err := required("member api key", memberAPIKey); err != nil {
		return err
	}
	if err := required("role", role); err != nil {
		return err
	}
	if grant {
		return s.teamAction(ctx, id, "role "+role+" granted", nil, func(ctx context.Context, acc models.Account) error {
			return s.client.AddUserRole(ctx, acc.Token, memberAPIKey, role)
		})
	}
	return s.teamAction(ctx, id, "role "+role+" removed", nil, func(ctx context.Context, acc models.Account) error {
		return s.client.RemoveUserRole(ctx, acc.Token, memberAPIKey, role)
	})
}

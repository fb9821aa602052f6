package upstream

import (
	"context"
	"strings"
)

const (
	seatService = "exa.seat_management_pb.SeatManagementService"

	// RoleAdmin is the team owner role.
	RoleAdmin = "root.admin"
)

// User is the remote identity of an account.
type User struct {
	APIKey string `json:"apiKey"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	TeamID string `json:"teamId,omitempty"`
}

// CurrentUser is the reply of GetCurrentUser.
type CurrentUser struct {
	UserInfo struct {
		User User `json:"user"`
	} `json:"userInfo"`
	PlanName string `json:"planName,omitempty"`
}

// TeamMember is one member of the caller's team.
type TeamMember struct {
	APIKey string   `json:"apiKey"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles,omitempty"`
}

// Invitee is a user to pre-approve for the team.
type Invitee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Preapproval is a pending team invitation.
type Preapproval struct {
	ApprovalID string `json:"approvalId"`
	Email      string `json:"email"`
	TeamName   string `json:"teamName,omitempty"`
}

type authRequest struct {
	AuthToken string `json:"authToken"`
}

// GetCurrentUser returns the identity behind token.
func (c *Client) GetCurrentUser(ctx context.Context, token string) (*CurrentUser, error) {
	var out CurrentUser
	if err := c.Invoke(ctx, seatService, "GetCurrentUser", token, authRequest{AuthToken: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTeamMembers lists the members of the caller's team.
func (c *Client) GetTeamMembers(ctx context.Context, token string) ([]TeamMember, error) {
	var out struct {
		Users []TeamMember `json:"users"`
	}
	if err := c.Invoke(ctx, seatService, "GetTeamMembers", token, authRequest{AuthToken: token}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// FindMember returns the member with the given email, ignoring case.
func FindMember(members []TeamMember, email string) (TeamMember, bool) {
	for _, m := range members {
		if strings.EqualFold(m.Email, email) {
			return m, true
		}
	}
	return TeamMember{}, false
}

// GrantPreapproval invites users to the caller's team.
func (c *Client) GrantPreapproval(ctx context.Context, token string, users []Invitee) error {
	req := struct {
		AuthToken string    `json:"authToken"`
		Users     []Invitee `json:"users"`
	}{token, users}
	return c.Invoke(ctx, seatService, "GrantPreapproval", token, req, nil)
}

// GetPreapprovalForUser returns the pending invitation addressed to the
// caller, or nil when there is none.
func (c *Client) GetPreapprovalForUser(ctx context.Context, token string) (*Preapproval, error) {
	var out struct {
		Preapproval *Preapproval `json:"preapproval"`
	}
	if err := c.Invoke(ctx, seatService, "GetPreapprovalForUser", token, authRequest{AuthToken: token}, &out); err != nil {
		return nil, err
	}
	return out.Preapproval, nil
}

// AcceptPreapproval accepts a pending invitation.
func (c *Client) AcceptPreapproval(ctx context.Context, token, approvalID string) error {
	req := struct {
		AuthToken  string `json:"authToken"`
		ApprovalID string `json:"approvalId"`
	}{token, approvalID}
	return c.Invoke(ctx, seatService, "AcceptPreapproval", token, req, nil)
}

// UpdateCodeiumAccess enables or disables a member's seat.
func (c *Client) UpdateCodeiumAccess(ctx context.Context, token, memberAPIKey string, disable bool) error {
	req := struct {
		AuthToken     string `json:"authToken"`
		APIKey        string `json:"apiKey"`
		DisableAccess bool   `json:"disableAccess"`
	}{token, memberAPIKey, disable}
	return c.Invoke(ctx, seatService, "UpdateCodeiumAccess", token, req, nil)
}

// AddUserRole grants role to a member.
func (c *Client) AddUserRole(ctx context.Context, token, memberAPIKey, role string) error {
	req := struct {
		AuthToken string `json:"authToken"`
		APIKey    string `json:"apiKey"`
		Role      string `json:"role"`
	}{token, memberAPIKey, role}
	return c.Invoke(ctx, seatService, "AddUserRole", token, req, nil)
}

// RemoveUserFromTeam removes a member from the caller's team.
func (c *Client) RemoveUserFromTeam(ctx context.Context, token, memberAPIKey string) error {
	req := struct {
		AuthToken string `json:"authToken"`
		APIKey    string `json:"apiKey"`
	}{token, memberAPIKey}
	return c.Invoke(ctx, seatService, "RemoveUserFromTeam", token, req, nil)
}

// GetPreapprovals lists the invitations the caller's team has sent that are
// still pending.
func (c *Client) GetPreapprovals(ctx context.Context, token string) ([]Preapproval, error) {
	var out struct {
		Preapprovals []Preapproval `json:"preapprovals"`
	}
	if err := c.Invoke(ctx, seatService, "GetPreapprovals", token, authRequest{AuthToken: token}, &out); err != nil {
		return nil, err
	}
	return out.Preapprovals, nil
}

type approvalRequest struct {
	AuthToken  string `json:"authToken"`
	ApprovalID string `json:"approvalId"`
}

// RevokePreapproval withdraws an invitation sent by the caller's team.
func (c *Client) RevokePreapproval(ctx context.Context, token, approvalID string) error {
	return c.Invoke(ctx, seatService, "RevokePreapproval", token, approvalRequest{token, approvalID}, nil)
}

// RejectPreapproval declines an invitation addressed to the caller.
func (c *Client) RejectPreapproval(ctx context.Context, token, approvalID string) error {
	return c.Invoke(ctx, seatService, "RejectPreapproval", token, approvalRequest{token, approvalID}, nil)
}

// RemoveUserRole revokes role from a member.
func (c *Client) RemoveUserRole(ctx context.Context, token, memberAPIKey, role string) error {
	req := struct {
		AuthToken string `json:"authToken"`
		APIKey    string `json:"apiKey"`
		Role      string `json:"role"`
	}{token, memberAPIKey, role}
	return c.Invoke(ctx, seatService, "RemoveUserRole", token, req, nil)
}

// JoinStatus is the decision on a request to join a team.
type JoinStatus int

const (
	JoinApproved JoinStatus = 2
	JoinRejected JoinStatus = 3
)

// UpdateUserTeamStatus approves or rejects a user's request to join the
// caller's team.
func (c *Client) UpdateUserTeamStatus(ctx context.Context, token, userAPIKey string, status JoinStatus) error {
	req := struct {
		AuthToken string     `json:"authToken"`
		APIKey    string     `json:"apiKey"`
		Status    JoinStatus `json:"status"`
	}{token, userAPIKey, status}
	return c.Invoke(ctx, seatService, "UpdateUserTeamStatus", token, req, nil)
}

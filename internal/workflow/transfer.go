package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/logging"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/pysugar/surfvault/internal/upstream"
)

// Step names one stage of an ownership transfer.
type Step string

const (
	StepResolveSelf       Step = "resolve_self"
	StepDisableSelfAccess Step = "disable_self_access"
	StepInviteTarget      Step = "invite_target"
	StepAutoAccept        Step = "auto_accept"
	StepAwaitMembership   Step = "await_membership"
	StepGrantAdmin        Step = "grant_admin"
	StepRemoveSelf        Step = "remove_self"
)

// ErrTargetNotJoined means the invitation went out but the target never
// showed up in the member list.
var ErrTargetNotJoined = errors.New("invite sent, target must accept manually")

// StepError reports which transfer step failed. Earlier steps are not
// rolled back.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("transfer step %s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// TransferRequest hands a team subscription from one account to the user
// with TargetEmail.
type TransferRequest struct {
	SourceID    uuid.UUID `json:"source_id"`
	TargetEmail string    `json:"target_email"`
	TargetName  string    `json:"target_name,omitempty"`
}

// TransferResult describes how far a transfer got.
type TransferResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Completed []Step `json:"completed_steps"`
	Skipped   []Step `json:"skipped_steps,omitempty"`
	Failed    Step   `json:"failed_step,omitempty"`
}

type transferState struct {
	req        TransferRequest
	source     models.Account
	target     *models.Account
	selfAPIKey string
	member     upstream.TeamMember
}

type transferStep struct {
	name Step
	// skip reports that the step does not apply to this transfer.
	skip func(st *transferState) bool
	// bestEffort failures are logged and the transfer continues.
	bestEffort bool
	run        func(ctx context.Context, st *transferState) error
}

// steps is the transfer sequence. resolve_self, invite_target and
// grant_admin are idempotent on the remote side. disable_self_access and
// remove_self change the source account and are not retried once they
// succeeded.
func (s *Service) steps() []transferStep {
	return []transferStep{
		{name: StepResolveSelf, run: s.resolveSelf},
		{name: StepDisableSelfAccess, run: s.disableSelfAccess},
		{name: StepInviteTarget, run: s.inviteTarget},
		{
			name:       StepAutoAccept,
			skip:       func(st *transferState) bool { return st.target == nil },
			bestEffort: true,
			run:        s.autoAccept,
		},
		{name: StepAwaitMembership, run: s.awaitMembership},
		{name: StepGrantAdmin, run: s.grantAdmin},
		{name: StepRemoveSelf, run: s.removeSelf},
	}
}

// Transfer runs the ownership transfer step by step. The returned result
// is always non-nil; err is a *StepError when a step failed.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	req.TargetEmail = strings.TrimSpace(req.TargetEmail)
	result := &TransferResult{}
	if req.TargetEmail == "" {
		result.Failed = StepResolveSelf
		result.Message = "target email is required"
		return result, &StepError{Step: StepResolveSelf, Err: fmt.Errorf("%w: %s", store.ErrValidation, result.Message)}
	}
	source, err := s.store.GetAccount(req.SourceID)
	if err != nil {
		result.Failed = StepResolveSelf
		result.Message = err.Error()
		return result, &StepError{Step: StepResolveSelf, Err: err}
	}
	if strings.EqualFold(source.Email, req.TargetEmail) {
		result.Failed = StepResolveSelf
		result.Message = "source and target are the same account"
		return result, &StepError{Step: StepResolveSelf, Err: fmt.Errorf("%w: %s", store.ErrValidation, result.Message)}
	}

	st := &transferState{req: req, source: source}
	for _, acc := range s.store.GetAllAccounts() {
		if strings.EqualFold(acc.Email, req.TargetEmail) {
			target := acc
			st.target = &target
			break
		}
	}

	prefix := logging.Prefix(ctx)
	log.Printf("%s🔀 Transfer %s -> %s started", prefix, source.Email, req.TargetEmail)
	for _, step := range s.steps() {
		if step.skip != nil && step.skip(st) {
			result.Skipped = append(result.Skipped, step.name)
			continue
		}
		if err := step.run(ctx, st); err != nil {
			if step.bestEffort {
				log.Printf("%s⚠️ Transfer step %s failed, continuing: %v", prefix, step.name, err)
				result.Skipped = append(result.Skipped, step.name)
				continue
			}
			result.Failed = step.name
			result.Message = err.Error()
			log.Printf("%s❌ Transfer %s -> %s failed at %s: %v", prefix, source.Email, req.TargetEmail, step.name, err)
			s.record(models.OpTransfer, source, err, "", result)
			return result, &StepError{Step: step.name, Err: err}
		}
		result.Completed = append(result.Completed, step.name)
		log.Printf("%s✅ Transfer step %s done", prefix, step.name)
	}

	result.Success = true
	result.Message = fmt.Sprintf("subscription transferred to %s", req.TargetEmail)
	s.record(models.OpTransfer, source, nil, result.Message, result)
	return result, nil
}

func (s *Service) resolveSelf(ctx context.Context, st *transferState) error {
	user, err := call(ctx, s, st.source.ID, func(ctx context.Context, acc models.Account) (*upstream.CurrentUser, error) {
		return s.client.GetCurrentUser(ctx, acc.Token)
	})
	if err != nil {
		return err
	}
	st.selfAPIKey = user.UserInfo.User.APIKey
	if st.selfAPIKey == "" {
		return errors.New("current user has no api key")
	}
	return nil
}

func (s *Service) disableSelfAccess(ctx context.Context, st *transferState) error {
	_, err := call(ctx, s, st.source.ID, func(ctx context.Context, acc models.Account) (struct{}, error) {
		return struct{}{}, s.client.UpdateCodeiumAccess(ctx, acc.Token, st.selfAPIKey, true)
	})
	return err
}

func (s *Service) inviteTarget(ctx context.Context, st *transferState) error {
	name := st.req.TargetName
	if name == "" && st.target != nil {
		name = st.target.Nickname
	}
	if name == "" {
		name = strings.SplitN(st.req.TargetEmail, "@", 2)[0]
	}
	invitees := []upstream.Invitee{{Name: name, Email: st.req.TargetEmail}}
	_, err := call(ctx, s, st.source.ID, func(ctx context.Context, acc models.Account) (struct{}, error) {
		return struct{}{}, s.client.GrantPreapproval(ctx, acc.Token, invitees)
	})
	return err
}

func (s *Service) autoAccept(ctx context.Context, st *transferState) error {
	approval, err := call(ctx, s, st.target.ID, func(ctx context.Context, acc models.Account) (*upstream.Preapproval, error) {
		return s.client.GetPreapprovalForUser(ctx, acc.Token)
	})
	if err != nil {
		return err
	}
	if approval == nil || approval.ApprovalID == "" {
		return errors.New("no pending invitation for target")
	}
	_, err = call(ctx, s, st.target.ID, func(ctx context.Context, acc models.Account) (struct{}, error) {
		return struct{}{}, s.client.AcceptPreapproval(ctx, acc.Token, approval.ApprovalID)
	})
	return err
}

func (s *Service) awaitMembership(ctx context.Context, st *transferState) error {
	for attempt := 1; attempt <= s.opts.PollAttempts; attempt++ {
		members, err := s.ListMembers(ctx, st.source.ID)
		if err != nil {
			return err
		}
		if m, ok := upstream.FindMember(members, st.req.TargetEmail); ok && m.APIKey != "" {
			st.member = m
			return nil
		}
		if attempt < s.opts.PollAttempts {
			if err := s.sleep(ctx, s.opts.PollDelay); err != nil {
				return err
			}
		}
	}
	return ErrTargetNotJoined
}

func (s *Service) grantAdmin(ctx context.Context, st *transferState) error {
	_, err := call(ctx, s, st.source.ID, func(ctx context.Context, acc models.Account) (struct{}, error) {
		return struct{}{}, s.client.AddUserRole(ctx, acc.Token, st.member.APIKey, upstream.RoleAdmin)
	})
	return err
}

func (s *Service) removeSelf(ctx context.Context, st *transferState) error {
	_, err := call(ctx, s, st.source.ID, func(ctx context.Context, acc models.Account) (struct{}, error) {
		return struct{}{}, s.client.RemoveUserFromTeam(ctx, acc.Token, st.selfAPIKey)
	})
	return err
}

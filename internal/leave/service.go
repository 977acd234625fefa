package leave

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	Apply(ctx context.Context, caller *auth.Identity, dto ApplyDTO) (*Request, error)
	Decide(ctx context.Context, caller *auth.Identity, id int64, dto DecisionDTO) (*Request, error)
	Balance(ctx context.Context, caller *auth.Identity) ([]Balance, error)
	Mine(ctx context.Context, caller *auth.Identity) ([]*Request, error)
	Used(ctx context.Context, caller *auth.Identity, leaveType string) ([]*Request, error)
	Pending(ctx context.Context, caller *auth.Identity) ([]*Request, error)
	PendingForTeam(ctx context.Context, caller *auth.Identity) ([]*Request, error)
	OnLeaveToday(ctx context.Context, caller *auth.Identity) CountResponse
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	clock     clock.Clock
	policy    auth.ReportingLinePolicy
}

func NewService(repo Repository, publisher events.Publisher, clk clock.Clock) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
	}
}

func (s *Service) Apply(ctx context.Context, caller *auth.Identity, dto ApplyDTO) (*Request, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if _, err := s.repo.GetType(ctx, dto.LeaveType); err != nil {
		if errors.Is(err, ErrUnknownType) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to load leave type", err)
	}

	req := &Request{
		EmployeeID: empID,
		FromDate:   dto.FromDate,
		ToDate:     dto.ToDate,
		LeaveType:  dto.LeaveType,
		Reason:     strings.TrimSpace(dto.Reason),
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, ErrOverlappingLeave) {
			logger.From(ctx).Info("overlapping leave rejected",
				"employee_id", empID, "from", dto.FromDate, "to", dto.ToDate)
			return nil, err
		}
		logger.From(ctx).Error("leave apply failed", "employee_id", empID, "error", err)
		return nil, internal.NewInternalError("Leave apply failed", err)
	}
	req.Days = DayCount(req.FromDate, req.ToDate)

	requester, err := s.repo.GetRequester(ctx, empID)
	if err != nil {
		logger.From(ctx).Warn("leave applied but requester lookup failed", "leave_id", req.ID, "error", err)
		return req, nil
	}
	if requester.ManagerUserID != nil {
		s.publish(ctx, events.NewLeaveAppliedEvent(req.ID, empID, requester.Name, *requester.ManagerUserID))
	}
	return req, nil
}

// Decide approves or rejects a pending request. Checks run role, existence, ownership, then the
// conditional write, so a request decided concurrently reports AlreadyProcessed.
func (s *Service) Decide(ctx context.Context, caller *auth.Identity, id int64, dto DecisionDTO) (*Request, error) {
	if !caller.HasRole(auth.RoleManager, auth.RoleHR, auth.RoleAdmin) {
		return nil, internal.ErrForbidden
	}
	status, err := dto.Status()
	if err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLeaveNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to load leave", err)
	}

	requester, err := s.repo.GetRequester(ctx, req.EmployeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load requester", err)
	}
	if err := s.policy.CanDecide(caller, auth.Subject{EmployeeID: requester.EmployeeID, ManagerID: requester.ManagerID}); err != nil {
		logger.From(ctx).Info("leave decision refused", "leave_id", id, "error", err)
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, ErrAlreadyProcessed
	}

	decision := Decision{
		Status:       status,
		ApprovedBy:   caller.UserID,
		ApprovedRole: string(caller.Role),
		ApprovedAt:   s.clock.Now().UTC(),
	}
	ok, err := s.repo.Decide(ctx, id, decision)
	if err != nil {
		logger.From(ctx).Error("leave decision failed", "leave_id", id, "error", err)
		return nil, internal.NewInternalError("Leave decision failed", err)
	}
	if !ok {
		return nil, ErrAlreadyProcessed
	}

	req.Status = status
	req.ApprovedBy = &decision.ApprovedBy
	req.ApprovedRole = &decision.ApprovedRole
	req.ApprovedAt = &decision.ApprovedAt

	if requester.UserID != nil {
		s.publish(ctx, events.NewLeaveDecidedEvent(id, *requester.UserID, string(status)))
	}
	return req, nil
}

func (s *Service) Balance(ctx context.Context, caller *auth.Identity) ([]Balance, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load leave types", err)
	}
	requests, err := s.repo.ListByEmployee(ctx, empID, "")
	if err != nil {
		return nil, internal.NewInternalError("failed to load leaves", err)
	}
	return Balances(types, requests), nil
}

// Balances sums approved inclusive day counts per type; balance never goes below zero.
func Balances(types []Type, requests []*Request) []Balance {
	used := make(map[string]int)
	for _, r := range requests {
		if r.Status == StatusApproved {
			used[r.LeaveType] += DayCount(r.FromDate, r.ToDate)
		}
	}
	out := make([]Balance, 0, len(types))
	for _, t := range types {
		u := used[t.Code]
		out = append(out, Balance{
			LeaveType:   t.Code,
			Name:        t.Name,
			AnnualQuota: t.AnnualQuota,
			Used:        u,
			Balance:     max(t.AnnualQuota-u, 0),
		})
	}
	return out
}

func (s *Service) Mine(ctx context.Context, caller *auth.Identity) ([]*Request, error) {
	return s.listOwn(ctx, caller, "")
}

func (s *Service) Used(ctx context.Context, caller *auth.Identity, leaveType string) ([]*Request, error) {
	return s.listOwn(ctx, caller, strings.ToUpper(strings.TrimSpace(leaveType)))
}

func (s *Service) listOwn(ctx context.Context, caller *auth.Identity, leaveType string) ([]*Request, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByEmployee(ctx, empID, leaveType)
	if err != nil {
		logger.From(ctx).Error("leave list failed", "employee_id", empID, "error", err)
		return nil, internal.NewInternalError("Failed to fetch leaves", err)
	}
	return rows, nil
}

func (s *Service) Pending(ctx context.Context, caller *auth.Identity) ([]*Request, error) {
	if !caller.IsPrivileged() {
		return nil, internal.ErrForbidden
	}
	rows, err := s.repo.ListPending(ctx, nil)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch pending leaves", err)
	}
	return rows, nil
}

func (s *Service) PendingForTeam(ctx context.Context, caller *auth.Identity) ([]*Request, error) {
	scope, err := teamScope(caller)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPending(ctx, scope)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch pending leaves", err)
	}
	return rows, nil
}

// OnLeaveToday never fails on storage errors; the dashboard shows zero instead.
func (s *Service) OnLeaveToday(ctx context.Context, caller *auth.Identity) CountResponse {
	scope, err := teamScope(caller)
	if err != nil {
		return CountResponse{}
	}
	count, err := s.repo.CountOnLeave(ctx, clock.FormatDate(s.clock.Now()), scope)
	if err != nil {
		logger.From(ctx).Error("team on-leave count failed", "error", err)
		return CountResponse{}
	}
	return CountResponse{Count: count}
}

// teamScope is nil (everyone) for hr and admin, the caller's employee id for managers.
func teamScope(caller *auth.Identity) (*int64, error) {
	switch {
	case caller.IsPrivileged():
		return nil, nil
	case caller.HasRole(auth.RoleManager):
		empID, err := caller.RequireEmployee()
		if err != nil {
			return nil, err
		}
		return &empID, nil
	}
	return nil, internal.ErrForbidden
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.From(ctx).Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

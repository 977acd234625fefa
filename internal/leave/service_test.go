package leave_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLeaveService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Service Suite")
}

// MockRepository enforces the overlap rule the way the stores do.
type MockRepository struct {
	types      map[string]leave.Type
	requesters map[int64]*leave.Requester
	requests   map[int64]*leave.Request
	nextID     int64
	shouldFail bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		types:      make(map[string]leave.Type),
		requesters: make(map[int64]*leave.Requester),
		requests:   make(map[int64]*leave.Request),
	}
}

var errStore = errors.New("store unavailable")

func (m *MockRepository) GetType(_ context.Context, code string) (*leave.Type, error) {
	t, ok := m.types[code]
	if !ok {
		return nil, leave.ErrUnknownType
	}
	return &t, nil
}

func (m *MockRepository) ListTypes(_ context.Context) ([]leave.Type, error) {
	out := make([]leave.Type, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockRepository) GetRequester(_ context.Context, employeeID int64) (*leave.Requester, error) {
	r, ok := m.requesters[employeeID]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return r, nil
}

func (m *MockRepository) Create(_ context.Context, req *leave.Request) error {
	if m.shouldFail {
		return errStore
	}
	for _, existing := range m.requests {
		if existing.EmployeeID != req.EmployeeID || existing.Status == leave.StatusRejected {
			continue
		}
		if leave.Overlaps(existing.FromDate, existing.ToDate, req.FromDate, req.ToDate) {
			return leave.ErrOverlappingLeave
		}
	}
	m.nextID++
	req.ID = m.nextID
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*leave.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrLeaveNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockRepository) Decide(_ context.Context, id int64, d leave.Decision) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.Status != leave.StatusPending {
		return false, nil
	}
	r.Status = d.Status
	r.ApprovedBy = &d.ApprovedBy
	return true, nil
}

func (m *MockRepository) ListByEmployee(_ context.Context, employeeID int64, leaveType string) ([]*leave.Request, error) {
	if m.shouldFail {
		return nil, errStore
	}
	var out []*leave.Request
	for _, r := range m.requests {
		if r.EmployeeID == employeeID && (leaveType == "" || r.LeaveType == leaveType) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRepository) ListPending(_ context.Context, managerID *int64) ([]*leave.Request, error) {
	var out []*leave.Request
	for _, r := range m.requests {
		if r.Status != leave.StatusPending {
			continue
		}
		owner := m.requesters[r.EmployeeID]
		if managerID != nil && (owner.ManagerID == nil || *owner.ManagerID != *managerID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockRepository) CountOnLeave(_ context.Context, date string, managerID *int64) (int64, error) {
	if m.shouldFail {
		return 0, errStore
	}
	var n int64
	for _, r := range m.requests {
		owner := m.requesters[r.EmployeeID]
		if managerID != nil && (owner.ManagerID == nil || *owner.ManagerID != *managerID) {
			continue
		}
		if r.Status == leave.StatusApproved && r.FromDate <= date && r.ToDate >= date {
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("Leave Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		publisher *recordingPublisher
		service   *leave.Service

		manager, report, hr, otherManager, admin *auth.Identity
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		publisher = &recordingPublisher{}
		clk := clock.NewManual(time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC))
		service = leave.NewService(repo, publisher, clk)

		repo.types["CL"] = leave.Type{Code: "CL", Name: "Casual Leave", AnnualQuota: 12}
		repo.types["SL"] = leave.Type{Code: "SL", Name: "Sick Leave", AnnualQuota: 6}

		// 1 manages 2; 4 manages 5; 3 is hr without a manager.
		repo.requesters[1] = &leave.Requester{EmployeeID: 1, Name: "Mona", UserID: ptr(10)}
		repo.requesters[2] = &leave.Requester{EmployeeID: 2, Name: "Ravi", UserID: ptr(20), ManagerID: ptr(1), ManagerUserID: ptr(10)}
		repo.requesters[3] = &leave.Requester{EmployeeID: 3, Name: "Hana", UserID: ptr(30)}
		repo.requesters[4] = &leave.Requester{EmployeeID: 4, Name: "Omar", UserID: ptr(40)}
		repo.requesters[5] = &leave.Requester{EmployeeID: 5, Name: "Lia", UserID: ptr(50), ManagerID: ptr(4), ManagerUserID: ptr(40)}

		manager = &auth.Identity{UserID: 10, Role: auth.RoleManager, EmployeeID: ptr(1)}
		report = &auth.Identity{UserID: 20, Role: auth.RoleEmployee, EmployeeID: ptr(2)}
		hr = &auth.Identity{UserID: 30, Role: auth.RoleHR, EmployeeID: ptr(3)}
		otherManager = &auth.Identity{UserID: 40, Role: auth.RoleManager, EmployeeID: ptr(4)}
		admin = &auth.Identity{UserID: 99, Role: auth.RoleAdmin}
	})

	apply := func(caller *auth.Identity, from, to string) (*leave.Request, error) {
		return service.Apply(ctx, caller, leave.ApplyDTO{FromDate: from, ToDate: to, LeaveType: "cl", Reason: "family"})
	}

	Describe("Apply", func() {
		It("creates a pending request and notifies the manager", func() {
			req, err := apply(report, "2026-01-10", "2026-01-12")

			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusPending))
			Expect(req.LeaveType).To(Equal("CL"))
			Expect(req.Days).To(Equal(3))

			Expect(publisher.events).To(HaveLen(1))
			applied, ok := publisher.events[0].(*events.LeaveAppliedEvent)
			Expect(ok).To(BeTrue())
			Expect(applied.ManagerUserID).To(Equal(int64(10)))
			Expect(applied.EmployeeName).To(Equal("Ravi"))
		})

		It("rejects a request overlapping an earlier one", func() {
			// Given Jan 10-12 is already requested
			_, err := apply(report, "2026-01-10", "2026-01-12")
			Expect(err).NotTo(HaveOccurred())

			// When Jan 11-13 is requested
			_, err = apply(report, "2026-01-11", "2026-01-13")

			// Then the second request is refused
			Expect(err).To(MatchError(leave.ErrOverlappingLeave))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Message).To(Equal("Leave already applied for selected dates"))
			Expect(repo.requests).To(HaveLen(1))
		})

		It("allows a request next to a rejected one", func() {
			first, err := apply(report, "2026-01-10", "2026-01-12")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, manager, first.ID, leave.DecisionDTO{Decision: "REJECTED"})
			Expect(err).NotTo(HaveOccurred())

			_, err = apply(report, "2026-01-11", "2026-01-13")
			Expect(err).NotTo(HaveOccurred())
		})

		It("skips the notification when nobody manages the requester", func() {
			_, err := apply(hr, "2026-01-10", "2026-01-10")

			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.events).To(BeEmpty())
		})

		It("validates dates and type before touching the store", func() {
			_, err := apply(report, "2026-01-12", "2026-01-10")
			Expect(err).To(MatchError(leave.ErrInvalidDateRange))

			_, err = service.Apply(ctx, report, leave.ApplyDTO{FromDate: "2026-01-10", ToDate: "2026-01-10", LeaveType: "XX"})
			Expect(err).To(MatchError(leave.ErrUnknownType))

			Expect(repo.requests).To(BeEmpty())
		})

		It("needs an employee profile", func() {
			_, err := apply(admin, "2026-01-10", "2026-01-10")
			Expect(err).To(MatchError(auth.ErrNoEmployeeProfile))
		})

		It("surfaces store failures as internal errors", func() {
			repo.shouldFail = true
			_, err := apply(report, "2026-01-10", "2026-01-10")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("Decide", func() {
		var pending *leave.Request

		BeforeEach(func() {
			var err error
			pending, err = apply(report, "2026-01-10", "2026-01-12")
			Expect(err).NotTo(HaveOccurred())
			publisher.events = nil
		})

		It("lets the direct manager approve and notifies the requester", func() {
			req, err := service.Decide(ctx, manager, pending.ID, leave.DecisionDTO{Decision: "approved"})

			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusApproved))
			Expect(*req.ApprovedBy).To(Equal(int64(10)))
			Expect(*req.ApprovedRole).To(Equal("manager"))

			Expect(publisher.events).To(HaveLen(1))
			decided := publisher.events[0].(*events.LeaveDecidedEvent)
			Expect(decided.EmployeeUserID).To(Equal(int64(20)))
			Expect(decided.Status).To(Equal("APPROVED"))
		})

		It("refuses a second decision", func() {
			_, err := service.Decide(ctx, manager, pending.ID, leave.DecisionDTO{Decision: "APPROVED"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decide(ctx, hr, pending.ID, leave.DecisionDTO{Decision: "REJECTED"})

			Expect(err).To(MatchError(leave.ErrAlreadyProcessed))
			Expect(repo.requests[pending.ID].Status).To(Equal(leave.StatusApproved))
		})

		It("refuses employees", func() {
			_, err := service.Decide(ctx, report, pending.ID, leave.DecisionDTO{Decision: "APPROVED"})
			Expect(err).To(MatchError(internal.ErrForbidden))
		})

		It("refuses a manager outside the reporting line", func() {
			_, err := service.Decide(ctx, otherManager, pending.ID, leave.DecisionDTO{Decision: "APPROVED"})
			Expect(err).To(MatchError(auth.ErrNotReportingLine))
			Expect(repo.requests[pending.ID].Status).To(Equal(leave.StatusPending))
		})

		It("refuses deciding one's own request, even for hr", func() {
			own, err := apply(hr, "2026-02-02", "2026-02-02")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decide(ctx, hr, own.ID, leave.DecisionDTO{Decision: "APPROVED"})
			Expect(err).To(MatchError(auth.ErrSelfApproval))
		})

		It("lets hr and admin decide across teams", func() {
			_, err := service.Decide(ctx, admin, pending.ID, leave.DecisionDTO{Decision: "REJECTED"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.requests[pending.ID].Status).To(Equal(leave.StatusRejected))
		})

		It("reports unknown requests and decisions", func() {
			_, err := service.Decide(ctx, manager, 999, leave.DecisionDTO{Decision: "APPROVED"})
			Expect(err).To(MatchError(leave.ErrLeaveNotFound))

			_, err = service.Decide(ctx, manager, pending.ID, leave.DecisionDTO{Decision: "MAYBE"})
			Expect(err).To(MatchError(leave.ErrInvalidDecision))
		})
	})

	Describe("reads", func() {
		BeforeEach(func() {
			first, err := apply(report, "2026-01-10", "2026-01-12")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, manager, first.ID, leave.DecisionDTO{Decision: "APPROVED"})
			Expect(err).NotTo(HaveOccurred())

			_, err = apply(report, "2026-02-02", "2026-02-03")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Apply(ctx, &auth.Identity{UserID: 50, Role: auth.RoleEmployee, EmployeeID: ptr(5)},
				leave.ApplyDTO{FromDate: "2026-01-11", ToDate: "2026-01-11", LeaveType: "SL"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("computes the balance from approved days only", func() {
			balances, err := service.Balance(ctx, report)

			Expect(err).NotTo(HaveOccurred())
			Expect(balances).To(Equal([]leave.Balance{
				{LeaveType: "CL", Name: "Casual Leave", AnnualQuota: 12, Used: 3, Balance: 9},
				{LeaveType: "SL", Name: "Sick Leave", AnnualQuota: 6, Used: 0, Balance: 6},
			}))
		})

		It("lists used requests for one type regardless of case", func() {
			rows, err := service.Used(ctx, report, "cl")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))

			rows, err = service.Used(ctx, report, "sl")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})

		It("scopes pending lists by role", func() {
			team, err := service.PendingForTeam(ctx, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(team).To(HaveLen(1))
			Expect(team[0].EmployeeID).To(Equal(int64(2)))

			all, err := service.PendingForTeam(ctx, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			_, err = service.PendingForTeam(ctx, report)
			Expect(err).To(MatchError(internal.ErrForbidden))

			_, err = service.Pending(ctx, manager)
			Expect(err).To(MatchError(internal.ErrForbidden))

			all, err = service.Pending(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("counts the team on leave today", func() {
			Expect(service.OnLeaveToday(ctx, manager).Count).To(Equal(int64(1)))
			Expect(service.OnLeaveToday(ctx, otherManager).Count).To(Equal(int64(0)))
			Expect(service.OnLeaveToday(ctx, hr).Count).To(Equal(int64(1)))
		})

		It("fails open on the on-leave count", func() {
			repo.shouldFail = true
			Expect(service.OnLeaveToday(ctx, hr)).To(Equal(leave.CountResponse{}))
		})
	})
})

package timesheet_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/timesheet"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestTimesheetService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Timesheet Service Suite")
}

type MockRepository struct {
	entries    map[int64]*timesheet.Entry
	owners     map[int64]*timesheet.Owner
	locks      map[string]timesheet.Lock
	lockWrites int
	nextID     int64
	shouldFail bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		entries: make(map[int64]*timesheet.Entry),
		owners:  make(map[int64]*timesheet.Owner),
		locks:   make(map[string]timesheet.Lock),
	}
}

var errStore = errors.New("store unavailable")

func (m *MockRepository) Create(_ context.Context, e *timesheet.Entry) error {
	for _, existing := range m.entries {
		if existing.EmployeeID == e.EmployeeID && existing.WorkDate == e.WorkDate {
			return timesheet.ErrTimesheetExists
		}
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*timesheet.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, timesheet.ErrTimesheetNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockRepository) Decide(_ context.Context, id int64, d timesheet.Decision) (bool, error) {
	e, ok := m.entries[id]
	if !ok || e.Status != timesheet.StatusSubmitted {
		return false, nil
	}
	e.Status = d.Status
	e.ApprovedBy = &d.ApprovedBy
	return true, nil
}

func (m *MockRepository) ListByMonth(_ context.Context, employeeID int64, month string) ([]*timesheet.Entry, error) {
	var out []*timesheet.Entry
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && strings.HasPrefix(e.WorkDate, month+"-") {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) inScope(employeeID int64, managerID *int64) bool {
	if managerID == nil {
		return true
	}
	o := m.owners[employeeID]
	return o != nil && o.ManagerID != nil && *o.ManagerID == *managerID
}

func (m *MockRepository) ListSubmitted(_ context.Context, month string, managerID *int64) ([]*timesheet.Entry, error) {
	var out []*timesheet.Entry
	for _, e := range m.entries {
		if e.Status == timesheet.StatusSubmitted && strings.HasPrefix(e.WorkDate, month+"-") && m.inScope(e.EmployeeID, managerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) CountSubmitted(_ context.Context, managerID *int64) (int64, error) {
	if m.shouldFail {
		return 0, errStore
	}
	var n int64
	for _, e := range m.entries {
		if e.Status == timesheet.StatusSubmitted && m.inScope(e.EmployeeID, managerID) {
			n++
		}
	}
	return n, nil
}

func (m *MockRepository) GetOwner(_ context.Context, employeeID int64) (*timesheet.Owner, error) {
	o, ok := m.owners[employeeID]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return o, nil
}

func (m *MockRepository) Shifts(_ context.Context, _ int64, _ string) (map[string]timesheet.Shift, error) {
	return map[string]timesheet.Shift{}, nil
}

func (m *MockRepository) GetLock(_ context.Context, month string) (*timesheet.Lock, error) {
	if m.shouldFail {
		return nil, errStore
	}
	l, ok := m.locks[month]
	if !ok {
		return &timesheet.Lock{Month: month}, nil
	}
	return &l, nil
}

func (m *MockRepository) UpsertLock(_ context.Context, lock timesheet.Lock) error {
	m.lockWrites++
	m.locks[lock.Month] = lock
	return nil
}

type fakeHolidays map[string]string

func (f fakeHolidays) HolidaysInMonth(_ context.Context, month string) (map[string]string, error) {
	out := map[string]string{}
	for d, name := range f {
		if strings.HasPrefix(d, month) {
			out[d] = name
		}
	}
	return out, nil
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("Timesheet Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		publisher *countingPublisher
		service   *timesheet.Service

		manager, report, hr, otherManager, employee *auth.Identity
	)

	hours := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		publisher = &countingPublisher{}
		clk := clock.NewManual(time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC))
		service = timesheet.NewService(repo, fakeHolidays{"2026-05-01": "Labour Day"}, publisher, clk, time.UTC)

		// 1 manages 2; 4 manages 5; 3 is hr.
		repo.owners[1] = &timesheet.Owner{EmployeeID: 1, Name: "Mona", UserID: ptr(10)}
		repo.owners[2] = &timesheet.Owner{EmployeeID: 2, Name: "Ravi", UserID: ptr(20), ManagerID: ptr(1)}
		repo.owners[3] = &timesheet.Owner{EmployeeID: 3, Name: "Hana", UserID: ptr(30)}
		repo.owners[4] = &timesheet.Owner{EmployeeID: 4, Name: "Omar", UserID: ptr(40)}
		repo.owners[5] = &timesheet.Owner{EmployeeID: 5, Name: "Lia", UserID: ptr(50), ManagerID: ptr(4)}

		manager = &auth.Identity{UserID: 10, Role: auth.RoleManager, EmployeeID: ptr(1)}
		report = &auth.Identity{UserID: 20, Role: auth.RoleEmployee, EmployeeID: ptr(2)}
		hr = &auth.Identity{UserID: 30, Role: auth.RoleHR, EmployeeID: ptr(3)}
		otherManager = &auth.Identity{UserID: 40, Role: auth.RoleManager, EmployeeID: ptr(4)}
		employee = &auth.Identity{UserID: 50, Role: auth.RoleEmployee, EmployeeID: ptr(5)}
	})

	create := func(caller *auth.Identity, date, h string) (*timesheet.Entry, error) {
		return service.Create(ctx, caller, timesheet.CreateDTO{WorkDate: date, Project: "HRMS", Task: "Build", Hours: hours(h)})
	}

	Describe("Create", func() {
		It("submits an entry with hours rounded to two decimals", func() {
			entry, err := create(report, "2026-05-04", "7.456")

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Status).To(Equal(timesheet.StatusSubmitted))
			Expect(entry.Hours.String()).To(Equal("7.46"))
		})

		It("enforces hours in (0, 24]", func() {
			_, err := create(report, "2026-05-04", "0")
			Expect(err).To(MatchError(timesheet.ErrInvalidHours))

			_, err = create(report, "2026-05-04", "24.5")
			Expect(err).To(MatchError(timesheet.ErrInvalidHours))

			_, err = create(report, "2026-05-04", "24")
			Expect(err).NotTo(HaveOccurred())
		})

		It("allows one entry per day", func() {
			_, err := create(report, "2026-05-04", "8")
			Expect(err).NotTo(HaveOccurred())

			_, err = create(report, "2026-05-04", "2")
			Expect(err).To(MatchError(timesheet.ErrTimesheetExists))
		})

		It("refuses entries in a locked month", func() {
			repo.locks["2026-04"] = timesheet.Lock{Month: "2026-04", IsLocked: true, LockedBy: timesheet.LockedBySystem}

			_, err := create(report, "2026-04-30", "8")

			Expect(err).To(MatchError(timesheet.ErrMonthLocked))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(repo.entries).To(BeEmpty())
		})

		It("requires the fields and an employee profile", func() {
			_, err := service.Create(ctx, report, timesheet.CreateDTO{WorkDate: "2026-05-04", Project: "HRMS"})
			Expect(err).To(MatchError(timesheet.ErrMissingFields))

			_, err = create(&auth.Identity{UserID: 99, Role: auth.RoleAdmin}, "2026-05-04", "8")
			Expect(err).To(MatchError(auth.ErrNoEmployeeProfile))
		})
	})

	Describe("RecordClockOut", func() {
		It("files the day from worked minutes", func() {
			Expect(service.RecordClockOut(ctx, 2, "2026-05-06", "HRMS", "Build", 510)).To(Succeed())

			rows, err := service.Mine(ctx, report, "2026-05")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Hours.String()).To(Equal("8.5"))
			Expect(rows[0].Status).To(Equal(timesheet.StatusSubmitted))
		})

		It("skips a day that already has an entry or no worked time", func() {
			_, err := create(report, "2026-05-06", "8")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RecordClockOut(ctx, 2, "2026-05-06", "HRMS", "Build", 510)).To(MatchError(timesheet.ErrTimesheetExists))
			Expect(service.RecordClockOut(ctx, 2, "2026-05-07", "HRMS", "Build", 0)).To(MatchError(timesheet.ErrInvalidHours))
			Expect(repo.entries).To(HaveLen(1))
		})
	})

	Describe("Decide", func() {
		var entry *timesheet.Entry

		BeforeEach(func() {
			var err error
			entry, err = create(report, "2026-05-04", "8")
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets the direct manager approve and notifies the owner", func() {
			decided, err := service.Decide(ctx, manager, entry.ID, timesheet.StatusApproved)

			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(timesheet.StatusApproved))
			Expect(*decided.ApprovedBy).To(Equal(int64(10)))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].Payload()).To(HaveKeyWithValue("work_date", "2026-05-04"))
			Expect(publisher.events[0].Payload()).To(HaveKeyWithValue("owner_user_id", int64(20)))
		})

		It("refuses a manager of another team", func() {
			_, err := service.Decide(ctx, otherManager, entry.ID, timesheet.StatusApproved)
			Expect(err).To(MatchError(auth.ErrNotReportingLine))
			Expect(repo.entries[entry.ID].Status).To(Equal(timesheet.StatusSubmitted))
		})

		It("refuses self approval for every role", func() {
			own, err := create(hr, "2026-05-04", "8")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, hr, own.ID, timesheet.StatusApproved)
			Expect(err).To(MatchError(auth.ErrSelfApproval))

			mine, err := create(manager, "2026-05-04", "8")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, manager, mine.ID, timesheet.StatusApproved)
			Expect(err).To(MatchError(auth.ErrSelfApproval))
		})

		It("exempts hr only from the reporting line", func() {
			_, err := service.Decide(ctx, hr, entry.ID, timesheet.StatusRejected)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.entries[entry.ID].Status).To(Equal(timesheet.StatusRejected))
		})

		It("refuses employees and a second decision", func() {
			_, err := service.Decide(ctx, employee, entry.ID, timesheet.StatusApproved)
			Expect(err).To(MatchError(internal.ErrForbidden))

			_, err = service.Decide(ctx, manager, entry.ID, timesheet.StatusApproved)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, hr, entry.ID, timesheet.StatusRejected)
			Expect(err).To(MatchError(timesheet.ErrAlreadyProcessed))
		})

		It("reports unknown entries and statuses", func() {
			_, err := service.Decide(ctx, manager, 404, timesheet.StatusApproved)
			Expect(err).To(MatchError(timesheet.ErrTimesheetNotFound))

			_, err = service.Decide(ctx, manager, entry.ID, timesheet.StatusSubmitted)
			Expect(err).To(MatchError(timesheet.ErrInvalidStatus))
		})
	})

	Describe("team reads", func() {
		BeforeEach(func() {
			for i, caller := range []*auth.Identity{report, employee} {
				_, err := create(caller, fmt.Sprintf("2026-05-0%d", i+4), "8")
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := create(report, "2026-04-30", "8")
			Expect(err).NotTo(HaveOccurred())
		})

		It("scopes the approval list to the manager's reports", func() {
			rows, err := service.Approval(ctx, manager, "2026-05")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].EmployeeID).To(Equal(int64(2)))

			rows, err = service.Approval(ctx, hr, "2026-05")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))

			_, err = service.Approval(ctx, report, "2026-05")
			Expect(err).To(MatchError(internal.ErrForbidden))

			_, err = service.Approval(ctx, hr, "05-2026")
			Expect(err).To(MatchError(timesheet.ErrInvalidMonth))
		})

		It("counts pending entries and fails open", func() {
			Expect(service.PendingCount(ctx, manager).Count).To(Equal(int64(2)))
			Expect(service.PendingCount(ctx, hr).Count).To(Equal(int64(3)))
			Expect(service.PendingCount(ctx, report).Count).To(BeZero())

			repo.shouldFail = true
			Expect(service.PendingCount(ctx, hr)).To(Equal(timesheet.CountResponse{}))
		})

		It("builds the month calendar with holidays", func() {
			days, err := service.Calendar(ctx, report, "2026-05")

			Expect(err).NotTo(HaveOccurred())
			Expect(days).To(HaveLen(31))
			Expect(days[0].Type).To(Equal(timesheet.DayHoliday))
			Expect(days[3].Status).To(Equal(timesheet.StatusSubmitted))
		})

		It("exports the month as a workbook", func() {
			data, err := service.Export(ctx, report, "2026-05")

			Expect(err).NotTo(HaveOccurred())
			Expect(data).NotTo(BeEmpty())
		})

		It("reports lock status", func() {
			lock, err := service.LockStatus(ctx, "2026-05")
			Expect(err).NotTo(HaveOccurred())
			Expect(lock.IsLocked).To(BeFalse())
		})
	})
})

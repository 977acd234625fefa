package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/hrms/internal/core/datamodel"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	leavedm "github.com/frahmantamala/hrms/internal/core/datamodel/leave"
	userdm "github.com/frahmantamala/hrms/internal/core/datamodel/user"
	"github.com/frahmantamala/hrms/internal/leave"
	leavePostgres "github.com/frahmantamala/hrms/internal/leave/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestLeavePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Postgres Suite")
}

var _ = Describe("Leave PostgreSQL Repository", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		repo     leave.Repository
		boss     *employeedm.Employee
		worker   *employeedm.Employee
		outsider *employeedm.Employee
	)

	newRequest := func(emp int64, from, to string) *leave.Request {
		return &leave.Request{EmployeeID: emp, FromDate: from, ToDate: to, LeaveType: "CL", Status: leave.StatusPending}
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = datamodel.OpenTestDB()
		Expect(err).NotTo(HaveOccurred())
		repo = leavePostgres.NewLeaveRepository(db)

		bossUser := &userdm.User{Email: "boss@example.com", Name: "Boss", PasswordHash: "x", Role: "manager", TokenVersion: 1, IsActive: true}
		Expect(db.Create(bossUser).Error).To(Succeed())
		boss = &employeedm.Employee{UserID: &bossUser.ID, Name: "Boss", IsActive: true}
		Expect(db.Create(boss).Error).To(Succeed())
		worker = &employeedm.Employee{Name: "Worker", ManagerID: &boss.ID, IsActive: true}
		Expect(db.Create(worker).Error).To(Succeed())
		outsider = &employeedm.Employee{Name: "Outsider", IsActive: true}
		Expect(db.Create(outsider).Error).To(Succeed())

		Expect(db.Create(&leavedm.Type{Code: "SL", Name: "Sick Leave", AnnualQuota: 6}).Error).To(Succeed())
		Expect(db.Create(&leavedm.Type{Code: "CL", Name: "Casual Leave", AnnualQuota: 12}).Error).To(Succeed())
	})

	It("lists leave types by code", func() {
		types, err := repo.ListTypes(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(types).To(HaveLen(2))
		Expect(types[0].Code).To(Equal("CL"))

		_, err = repo.GetType(ctx, "XX")
		Expect(err).To(MatchError(leave.ErrUnknownType))
	})

	It("resolves the requester with the manager's user", func() {
		r, err := repo.GetRequester(ctx, worker.ID)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name).To(Equal("Worker"))
		Expect(*r.ManagerID).To(Equal(boss.ID))
		Expect(r.ManagerUserID).NotTo(BeNil())
		Expect(*r.ManagerUserID).To(Equal(*boss.UserID))

		r, err = repo.GetRequester(ctx, outsider.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.ManagerUserID).To(BeNil())
	})

	Describe("Create", func() {
		It("rejects Jan 11-13 after Jan 10-12", func() {
			Expect(repo.Create(ctx, newRequest(worker.ID, "2026-01-10", "2026-01-12"))).To(Succeed())

			err := repo.Create(ctx, newRequest(worker.ID, "2026-01-11", "2026-01-13"))

			Expect(err).To(MatchError(leave.ErrOverlappingLeave))
			var count int64
			Expect(db.Model(&leavedm.Request{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})

		It("ignores rejected requests and other employees", func() {
			first := newRequest(worker.ID, "2026-01-10", "2026-01-12")
			Expect(repo.Create(ctx, first)).To(Succeed())
			Expect(repo.Create(ctx, newRequest(outsider.ID, "2026-01-10", "2026-01-12"))).To(Succeed())

			ok, err := repo.Decide(ctx, first.ID, leave.Decision{Status: leave.StatusRejected, ApprovedBy: 1, ApprovedRole: "hr", ApprovedAt: time.Now()})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			Expect(repo.Create(ctx, newRequest(worker.ID, "2026-01-11", "2026-01-13"))).To(Succeed())
		})

		It("accepts adjacent ranges", func() {
			Expect(repo.Create(ctx, newRequest(worker.ID, "2026-01-10", "2026-01-12"))).To(Succeed())
			Expect(repo.Create(ctx, newRequest(worker.ID, "2026-01-13", "2026-01-13"))).To(Succeed())
		})
	})

	Describe("Decide", func() {
		It("only applies to pending requests", func() {
			req := newRequest(worker.ID, "2026-01-10", "2026-01-12")
			Expect(repo.Create(ctx, req)).To(Succeed())

			ok, err := repo.Decide(ctx, req.ID, leave.Decision{Status: leave.StatusApproved, ApprovedBy: 7, ApprovedRole: "manager", ApprovedAt: time.Now()})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = repo.Decide(ctx, req.ID, leave.Decision{Status: leave.StatusRejected, ApprovedBy: 8, ApprovedRole: "hr", ApprovedAt: time.Now()})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			stored, err := repo.GetByID(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
			Expect(*stored.ApprovedBy).To(Equal(int64(7)))
			Expect(*stored.ApprovedRole).To(Equal("manager"))
			Expect(stored.Days).To(Equal(3))
		})

		It("reports a missing request", func() {
			_, err := repo.GetByID(ctx, 404)
			Expect(err).To(MatchError(leave.ErrLeaveNotFound))
		})
	})

	Describe("team reads", func() {
		BeforeEach(func() {
			approved := newRequest(worker.ID, "2026-01-10", "2026-01-12")
			Expect(repo.Create(ctx, approved)).To(Succeed())
			_, err := repo.Decide(ctx, approved.ID, leave.Decision{Status: leave.StatusApproved, ApprovedBy: 1, ApprovedRole: "manager", ApprovedAt: time.Now()})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.Create(ctx, newRequest(worker.ID, "2026-02-02", "2026-02-02"))).To(Succeed())
			Expect(repo.Create(ctx, newRequest(outsider.ID, "2026-01-11", "2026-01-11"))).To(Succeed())
		})

		It("lists pending requests with names, scoped to a manager", func() {
			all, err := repo.ListPending(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].EmployeeName).To(Equal("Outsider"))

			team, err := repo.ListPending(ctx, &boss.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(team).To(HaveLen(1))
			Expect(team[0].EmployeeName).To(Equal("Worker"))
			Expect(team[0].FromDate).To(Equal("2026-02-02"))
		})

		It("counts approved leave covering a date", func() {
			n, err := repo.CountOnLeave(ctx, "2026-01-11", &boss.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			n, err = repo.CountOnLeave(ctx, "2026-01-13", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(0)))
		})

		It("lists an employee's requests newest first, optionally by type", func() {
			rows, err := repo.ListByEmployee(ctx, worker.ID, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].FromDate).To(Equal("2026-02-02"))

			rows, err = repo.ListByEmployee(ctx, worker.ID, "SL")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
	})
})

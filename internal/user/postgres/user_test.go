package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	userdm "github.com/frahmantamala/hrms/internal/core/datamodel/user"
	"github.com/frahmantamala/hrms/internal/user"
	userPostgres "github.com/frahmantamala/hrms/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo *userPostgres.UserRepository
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = datamodel.OpenTestDB()
		Expect(err).NotTo(HaveOccurred())
		repo = userPostgres.NewUserRepository(db)
	})

	account := func(email string) *user.Account {
		return &user.Account{Email: email, Name: "Ola", PasswordHash: "hash-1", Role: auth.RoleEmployee, Department: "Ops"}
	}

	It("creates user, employee and first history entry together", func() {
		u, err := repo.Create(ctx, account("ola@example.com"))

		Expect(err).NotTo(HaveOccurred())
		Expect(u.EmployeeID).NotTo(BeNil())

		var emp employeedm.Employee
		Expect(db.First(&emp, *u.EmployeeID).Error).To(Succeed())
		Expect(*emp.UserID).To(Equal(u.ID))
		Expect(emp.Department).To(Equal("Ops"))

		var history int64
		Expect(db.Model(&userdm.PasswordHistory{}).Where("user_id = ?", u.ID).Count(&history).Error).To(Succeed())
		Expect(history).To(Equal(int64(1)))

		loaded, err := repo.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Email).To(Equal("ola@example.com"))
		Expect(*loaded.EmployeeID).To(Equal(*u.EmployeeID))
	})

	It("reports a duplicate email and leaves no partial rows", func() {
		_, err := repo.Create(ctx, account("ola@example.com"))
		Expect(err).NotTo(HaveOccurred())

		_, err = repo.Create(ctx, account("ola@example.com"))
		Expect(err).To(MatchError(internal.ErrDuplicateEmail))

		var users, employees int64
		Expect(db.Model(&userdm.User{}).Count(&users).Error).To(Succeed())
		Expect(db.Model(&employeedm.Employee{}).Count(&employees).Error).To(Succeed())
		Expect(users).To(Equal(int64(1)))
		Expect(employees).To(Equal(int64(1)))
	})

	It("checks employee existence", func() {
		u, err := repo.Create(ctx, account("ola@example.com"))
		Expect(err).NotTo(HaveOccurred())

		ok, err := repo.EmployeeExists(ctx, *u.EmployeeID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = repo.EmployeeExists(ctx, 999)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("reports unknown users", func() {
		_, err := repo.GetByID(ctx, 5)
		Expect(err).To(MatchError(internal.ErrUserNotFound))
	})
})

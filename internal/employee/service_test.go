package employee_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEmployeeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Service Suite")
}

// MockRepository implements employee.Repository for testing
type MockRepository struct {
	employees  map[int64]*employee.Employee
	roles      map[int64]string
	profiles   map[int64]*employee.Profile
	shouldFail bool
	failError  error
	roleErr    error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		employees: make(map[int64]*employee.Employee),
		roles:     make(map[int64]string),
		profiles:  make(map[int64]*employee.Profile),
	}
}

func (m *MockRepository) Add(e *employee.Employee) {
	m.employees[e.ID] = e
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	e, ok := m.employees[id]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockRepository) GetByUserID(_ context.Context, userID int64) (*employee.Employee, error) {
	for _, e := range m.employees {
		if e.UserID != nil && *e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, internal.ErrEmployeeNotFound
}

func (m *MockRepository) List(_ context.Context) ([]*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*employee.Employee
	for _, e := range m.employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) ListByManager(_ context.Context, managerID int64) ([]*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	out := []*employee.Employee{}
	for _, e := range m.employees {
		if e.IsActive && e.ManagerID != nil && *e.ManagerID == managerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) UpdateManager(_ context.Context, id int64, managerID *int64) error {
	if m.shouldFail {
		return m.failError
	}
	m.employees[id].ManagerID = managerID
	return nil
}

func (m *MockRepository) UpdateRole(_ context.Context, id int64, role string) error {
	if m.shouldFail {
		return m.failError
	}
	if m.roleErr != nil {
		return m.roleErr
	}
	m.roles[id] = role
	return nil
}

func (m *MockRepository) GetProfile(_ context.Context, employeeID int64) (*employee.Profile, error) {
	if p, ok := m.profiles[employeeID]; ok {
		return p, nil
	}
	return &employee.Profile{EmployeeID: employeeID, Certifications: []string{}, Skills: []employee.Skill{}}, nil
}

func (m *MockRepository) SaveProfile(_ context.Context, p *employee.Profile) error {
	if m.shouldFail {
		return m.failError
	}
	m.profiles[p.EmployeeID] = p
	return nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("Employee Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		service  *employee.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		service = employee.NewService(mockRepo)

		// 1 (head) <- 2 (manager) <- 3, 4
		mockRepo.Add(&employee.Employee{ID: 1, UserID: ptr(11), Name: "Ada", IsActive: true})
		mockRepo.Add(&employee.Employee{ID: 2, UserID: ptr(12), Name: "Ben", ManagerID: ptr(1), IsActive: true})
		mockRepo.Add(&employee.Employee{ID: 3, UserID: ptr(13), Name: "Cal", ManagerID: ptr(2), IsActive: true})
		mockRepo.Add(&employee.Employee{ID: 4, Name: "Dee", ManagerID: ptr(2), IsActive: true})
		mockRepo.Add(&employee.Employee{ID: 5, Name: "Eve", IsActive: false})
	})

	Describe("SetManager", func() {
		It("assigns a manager outside the employee's subtree", func() {
			err := service.SetManager(ctx, 4, employee.SetManagerDTO{ManagerID: ptr(1)})

			Expect(err).NotTo(HaveOccurred())
			Expect(*mockRepo.employees[4].ManagerID).To(Equal(int64(1)))
		})

		It("clears the manager when none is given", func() {
			Expect(service.SetManager(ctx, 2, employee.SetManagerDTO{})).To(Succeed())
			Expect(mockRepo.employees[2].ManagerID).To(BeNil())
		})

		It("rejects making an employee their own manager", func() {
			err := service.SetManager(ctx, 2, employee.SetManagerDTO{ManagerID: ptr(2)})
			Expect(err).To(MatchError(employee.ErrSelfManager))
		})

		It("rejects a manager that reports to the employee", func() {
			// Given 3 reports to 2 who reports to 1
			// When 1 is put under 3
			err := service.SetManager(ctx, 1, employee.SetManagerDTO{ManagerID: ptr(3)})

			// Then the cycle is refused and nothing changes
			Expect(err).To(MatchError(employee.ErrManagerCycle))
			Expect(mockRepo.employees[1].ManagerID).To(BeNil())
		})

		It("rejects an inactive manager", func() {
			err := service.SetManager(ctx, 3, employee.SetManagerDTO{ManagerID: ptr(5)})
			Expect(err).To(MatchError(employee.ErrInactiveTarget))
		})

		It("reports unknown employees", func() {
			err := service.SetManager(ctx, 99, employee.SetManagerDTO{ManagerID: ptr(1)})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))

			err = service.SetManager(ctx, 3, employee.SetManagerDTO{ManagerID: ptr(99)})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})

	Describe("SetRole", func() {
		admin := &auth.Identity{UserID: 11, Role: auth.RoleAdmin}

		It("changes the role of the linked user", func() {
			err := service.SetRole(ctx, admin, 3, employee.SetRoleDTO{Role: "Manager"})

			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.roles[3]).To(Equal("manager"))
		})

		It("rejects unknown roles", func() {
			err := service.SetRole(ctx, admin, 3, employee.SetRoleDTO{Role: "owner"})
			Expect(err).To(MatchError(employee.ErrInvalidRole))
		})

		It("rejects employees without a user account", func() {
			err := service.SetRole(ctx, admin, 4, employee.SetRoleDTO{Role: "hr"})
			Expect(err).To(MatchError(employee.ErrNoLinkedUser))
		})

		It("reports a linked account that no longer exists as not found", func() {
			mockRepo.roleErr = internal.ErrUserNotFound

			err := service.SetRole(ctx, admin, 3, employee.SetRoleDTO{Role: "hr"})

			Expect(err).To(MatchError(internal.ErrUserNotFound))
			Expect(mockRepo.roles).NotTo(HaveKey(int64(3)))
		})
	})

	Describe("Team", func() {
		It("lists direct reports only", func() {
			team, err := service.Team(ctx, &auth.Identity{UserID: 12, Role: auth.RoleManager, EmployeeID: ptr(2)})

			Expect(err).NotTo(HaveOccurred())
			Expect(team).To(HaveLen(2))
		})

		It("returns an empty team for callers without an employee record", func() {
			team, err := service.Team(ctx, &auth.Identity{UserID: 99, Role: auth.RoleAdmin})

			Expect(err).NotTo(HaveOccurred())
			Expect(team).To(BeEmpty())
		})

		It("wraps repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("connection reset"))

			_, err := service.Team(ctx, &auth.Identity{UserID: 12, EmployeeID: ptr(2)})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("Profile", func() {
		caller := &auth.Identity{UserID: 13, Role: auth.RoleEmployee, EmployeeID: ptr(3)}

		It("saves normalized self-declared skills", func() {
			p, err := service.SaveProfile(ctx, caller, employee.SaveProfileDTO{
				Summary: "Backend engineer",
				Skills:  []string{" Go ", "go", "", "SQL"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.Summary).To(Equal("Backend engineer"))
			Expect(p.Certifications).To(BeEmpty())
			Expect(p.Skills).To(Equal([]employee.Skill{
				{Skill: "Go", Source: employee.SkillSourceSelf},
				{Skill: "SQL", Source: employee.SkillSourceSelf},
			}))
		})

		It("requires an employee record", func() {
			_, err := service.GetProfile(ctx, &auth.Identity{UserID: 99, Role: auth.RoleAdmin})
			Expect(err).To(MatchError(auth.ErrNoEmployeeProfile))
		})
	})
})

package holiday_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/holiday"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHolidayService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Holiday Service Suite")
}

type MockRepository struct {
	rows       map[int64]*holiday.Holiday
	nextID     int64
	shouldFail bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rows: make(map[int64]*holiday.Holiday)}
}

var errStore = errors.New("store unavailable")

func (m *MockRepository) sorted() []*holiday.Holiday {
	out := make([]*holiday.Holiday, 0, len(m.rows))
	for _, h := range m.rows {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HolidayDate < out[j].HolidayDate })
	return out
}

func (m *MockRepository) ListBetween(_ context.Context, from, to string) ([]*holiday.Holiday, error) {
	if m.shouldFail {
		return nil, errStore
	}
	var out []*holiday.Holiday
	for _, h := range m.sorted() {
		if h.HolidayDate >= from && h.HolidayDate <= to {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MockRepository) Nearest(_ context.Context, date string) (*holiday.Holiday, error) {
	if m.shouldFail {
		return nil, errStore
	}
	for _, h := range m.sorted() {
		if h.HolidayDate >= date {
			cp := *h
			return &cp, nil
		}
	}
	return nil, holiday.ErrHolidayNotFound
}

func (m *MockRepository) Create(_ context.Context, h *holiday.Holiday) error {
	if m.shouldFail {
		return errStore
	}
	for _, existing := range m.rows {
		if existing.HolidayDate == h.HolidayDate {
			return holiday.ErrHolidayExists
		}
	}
	m.nextID++
	h.ID = m.nextID
	m.rows[h.ID] = h
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return holiday.ErrHolidayNotFound
	}
	delete(m.rows, id)
	return nil
}

var _ = Describe("Holiday Service", func() {
	var (
		ctx  context.Context
		repo *MockRepository
		svc  *holiday.Service
	)

	seed := func(date, name string) {
		Expect(repo.Create(ctx, &holiday.Holiday{HolidayDate: date, Name: name})).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		svc = holiday.NewService(repo, clock.NewManual(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
		seed("2025-12-25", "Christmas")
		seed("2026-01-26", "Republic Day")
		seed("2026-03-10", "Founders Day")
		seed("2026-08-15", "Independence Day")
	})

	Describe("List", func() {
		It("defaults to the current year", func() {
			rows, err := svc.List(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0].Name).To(Equal("Republic Day"))
		})

		It("filters by the requested year", func() {
			rows, err := svc.List(ctx, "2025")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].HolidayDate).To(Equal("2025-12-25"))
		})

		It("rejects a malformed year", func() {
			_, err := svc.List(ctx, "26")
			Expect(err).To(MatchError(holiday.ErrInvalidYear))
		})

		It("wraps store failures", func() {
			repo.shouldFail = true
			_, err := svc.List(ctx, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("Nearest", func() {
		It("includes a holiday falling today", func() {
			h, err := svc.Nearest(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Name).To(Equal("Founders Day"))
			Expect(h.DateReadable).To(Equal("Tuesday, 10 March 2026"))
		})

		It("returns nil when nothing is upcoming", func() {
			svc = holiday.NewService(repo, clock.NewManual(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
			h, err := svc.Nearest(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(BeNil())
		})
	})

	Describe("Create", func() {
		It("stores a valid holiday", func() {
			h, err := svc.Create(ctx, holiday.CreateDTO{Name: " Diwali ", HolidayDate: "2026-11-08"})
			Expect(err).NotTo(HaveOccurred())
			Expect(h.ID).NotTo(BeZero())
			Expect(h.Name).To(Equal("Diwali"))
		})

		It("requires name and date", func() {
			_, err := svc.Create(ctx, holiday.CreateDTO{Name: "Diwali"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingFields))
		})

		It("rejects an invalid date", func() {
			_, err := svc.Create(ctx, holiday.CreateDTO{Name: "Bad", HolidayDate: "2026-02-30"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("refuses a second holiday on the same date", func() {
			_, err := svc.Create(ctx, holiday.CreateDTO{Name: "Again", HolidayDate: "2026-08-15"})
			Expect(err).To(MatchError(holiday.ErrHolidayExists))
		})
	})

	Describe("Delete", func() {
		It("removes an existing holiday and reports unknown ids", func() {
			Expect(svc.Delete(ctx, 1)).To(Succeed())
			Expect(svc.Delete(ctx, 1)).To(MatchError(holiday.ErrHolidayNotFound))
		})
	})

	Describe("HolidaysInMonth", func() {
		It("maps dates to names for one month", func() {
			seed("2026-08-28", "Onam")
			m, err := svc.HolidaysInMonth(ctx, "2026-08")
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(map[string]string{"2026-08-15": "Independence Day", "2026-08-28": "Onam"}))
		})

		It("rejects a malformed month", func() {
			_, err := svc.HolidaysInMonth(ctx, "August")
			Expect(err).To(HaveOccurred())
		})
	})
})

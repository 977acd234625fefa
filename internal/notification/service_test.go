package notification_test

import (
	"context"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/internal/notification"
	"github.com/frahmantamala/hrms/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notification Service", func() {
	var (
		ctx    context.Context
		repo   *MockRepository
		pusher *recordingPusher
		d      *notification.Dispatcher
		svc    *notification.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		pusher = &recordingPusher{}
		d = notification.NewDispatcher(notification.DispatcherConfig{}, repo, pusher, logger.Discard())
		svc = notification.NewService(repo, d)
	})

	AfterEach(func() {
		d.Shutdown()
	})

	send := func(userID int64, msg string) *notification.Notification {
		n, err := svc.Send(ctx, notification.SendDTO{UserID: userID, Message: msg})
		Expect(err).NotTo(HaveOccurred())
		return n
	}

	It("lists at most 20 unread notifications, newest first", func() {
		for i := 0; i < 25; i++ {
			send(1, "hello")
		}
		send(2, "someone else")

		rows, err := svc.Unread(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(notification.UnreadLimit))
		Expect(rows[0].ID).To(BeNumerically(">", rows[19].ID))
		Expect(svc.UnreadCount(ctx, 1)).To(Equal(int64(25)))
	})

	It("fails open on the unread count", func() {
		send(1, "hello")
		repo.shouldFail = true
		Expect(svc.UnreadCount(ctx, 1)).To(BeZero())
	})

	It("marks only the caller's own notification read", func() {
		mine := send(1, "mine")
		theirs := send(2, "theirs")

		Expect(svc.MarkRead(ctx, 1, mine.ID)).To(Succeed())
		Expect(svc.MarkRead(ctx, 1, theirs.ID)).To(MatchError(notification.ErrNotificationNotFound))
		Expect(svc.UnreadCount(ctx, 1)).To(BeZero())
		Expect(svc.UnreadCount(ctx, 2)).To(Equal(int64(1)))
	})

	It("marks everything read for one user", func() {
		send(1, "a")
		send(1, "b")
		send(2, "c")

		n, err := svc.MarkAllRead(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))
		Expect(svc.UnreadCount(ctx, 2)).To(Equal(int64(1)))
	})

	It("validates direct messages and defaults the type", func() {
		n := send(4, "  maintenance tonight  ")
		Expect(n.Type).To(Equal(notification.TypeSystem))
		Expect(n.Message).To(Equal("maintenance tonight"))
		Expect(pusher.For(4)).To(HaveLen(1))

		_, err := svc.Send(ctx, notification.SendDTO{UserID: 4})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeMissingFields))
	})
})

var _ = Describe("Event subscriptions", func() {
	var (
		ctx   context.Context
		bus   *events.EventBus
		queue *recordingQueue
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(logger.Discard())
		queue = &recordingQueue{}
		notification.RegisterEventHandlers(bus, queue)
	})

	last := func() notification.Job {
		jobs := queue.Jobs()
		Expect(jobs).NotTo(BeEmpty())
		return jobs[len(jobs)-1]
	}

	It("confirms clock-in and clock-out to the employee", func() {
		Expect(bus.PublishSync(ctx, events.NewClockedInEvent(7, 70, "2026-01-12"))).To(Succeed())
		Expect(last()).To(Equal(notification.Job{UserID: 7, Type: notification.TypeAttendance, Message: "Clock-in successful"}))

		Expect(bus.PublishSync(ctx, events.NewClockedOutEvent(7, 70, "2026-01-12"))).To(Succeed())
		Expect(last().Message).To(Equal("Clock-out successful"))
	})

	It("tells the manager about a new leave request", func() {
		Expect(bus.PublishSync(ctx, events.NewLeaveAppliedEvent(1, 70, "Asha", 3))).To(Succeed())
		Expect(last()).To(Equal(notification.Job{UserID: 3, Type: notification.TypeLeave, Message: "Asha applied for leave"}))
	})

	It("tells the employee about a leave decision", func() {
		Expect(bus.PublishSync(ctx, events.NewLeaveDecidedEvent(1, 7, "APPROVED"))).To(Succeed())
		Expect(last().Message).To(Equal("Your leave has been approved"))

		Expect(bus.PublishSync(ctx, events.NewLeaveDecidedEvent(2, 7, "REJECTED"))).To(Succeed())
		Expect(last().Message).To(Equal("Your leave has been rejected"))
	})

	It("tells the owner about a timesheet decision", func() {
		Expect(bus.PublishSync(ctx, events.NewTimesheetDecidedEvent(9, 7, "2026-01-12", "Rejected"))).To(Succeed())
		Expect(last()).To(Equal(notification.Job{
			UserID:  7,
			Type:    notification.TypeTimesheet,
			Message: "Your timesheet for 2026-01-12 was Rejected",
		}))
	})

	It("relays direct messages with their kind", func() {
		Expect(bus.PublishSync(ctx, events.NewDirectMessageEvent(7, "", "Payroll closes Friday"))).To(Succeed())
		Expect(last().Type).To(Equal(notification.TypeSystem))
	})

	It("skips events without a recipient", func() {
		Expect(bus.PublishSync(ctx, events.NewLeaveAppliedEvent(1, 70, "Asha", 0))).To(Succeed())
		Expect(queue.Jobs()).To(BeEmpty())
	})
})

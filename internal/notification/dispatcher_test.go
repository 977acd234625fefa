package notification_test

import (
	"context"
	"encoding/json"

	"github.com/frahmantamala/hrms/internal/notification"
	"github.com/frahmantamala/hrms/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dispatcher", func() {
	var (
		repo   *MockRepository
		pusher *recordingPusher
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		pusher = &recordingPusher{}
	})

	It("persists then pushes queued jobs", func() {
		d := notification.NewDispatcher(notification.DispatcherConfig{MaxWorkers: 2, JobQueueSize: 8}, repo, pusher, logger.Discard())

		Expect(d.Enqueue(notification.Job{UserID: 5, Type: notification.TypeLeave, Message: "Your leave has been approved"})).To(BeTrue())
		Expect(d.Enqueue(notification.Job{UserID: 6, Type: notification.TypeAttendance, Message: "Clock-in successful"})).To(BeTrue())
		d.Shutdown()

		Expect(repo.Count()).To(Equal(2))
		frames := pusher.For(5)
		Expect(frames).To(HaveLen(1))

		var frame struct {
			Event string                 `json:"event"`
			Data  map[string]interface{} `json:"data"`
		}
		Expect(json.Unmarshal(frames[0], &frame)).To(Succeed())
		Expect(frame.Event).To(Equal("notification"))
		Expect(frame.Data["message"]).To(Equal("Your leave has been approved"))
		Expect(frame.Data["is_read"]).To(BeFalse())
	})

	It("drops jobs instead of blocking when the queue is full", func() {
		// Given a single worker stuck on its first job
		repo.gate = make(chan struct{})
		d := notification.NewDispatcher(notification.DispatcherConfig{MaxWorkers: 1, JobQueueSize: 1}, repo, pusher, logger.Discard())

		Expect(d.Enqueue(notification.Job{UserID: 1, Type: notification.TypeSystem, Message: "first"})).To(BeTrue())
		Eventually(repo.Started).Should(Equal(1))

		// When far more jobs arrive than the pool can hold
		accepted := 1
		for i := 0; i < 10; i++ {
			if d.Enqueue(notification.Job{UserID: 1, Type: notification.TypeSystem, Message: "more"}) {
				accepted++
			}
		}

		// Then the overflow is dropped and everything accepted is still delivered
		Expect(accepted).To(BeNumerically("<=", 3))
		close(repo.gate)
		d.Shutdown()
		Expect(repo.Count()).To(Equal(accepted))
	})

	It("refuses jobs after shutdown", func() {
		d := notification.NewDispatcher(notification.DispatcherConfig{}, repo, pusher, logger.Discard())
		d.Shutdown()
		Expect(d.Enqueue(notification.Job{UserID: 1, Message: "late"})).To(BeFalse())
	})

	It("keeps the stored row when the push fails", func() {
		pusher.err = context.DeadlineExceeded
		d := notification.NewDispatcher(notification.DispatcherConfig{}, repo, pusher, logger.Discard())
		defer d.Shutdown()

		n, err := d.Deliver(context.Background(), notification.Job{UserID: 3, Type: notification.TypeSystem, Message: "hello"})
		Expect(err).NotTo(HaveOccurred())
		Expect(n.ID).NotTo(BeZero())
		Expect(repo.Count()).To(Equal(1))
	})

	It("reports a store failure from Deliver", func() {
		repo.shouldFail = true
		d := notification.NewDispatcher(notification.DispatcherConfig{}, repo, pusher, logger.Discard())
		defer d.Shutdown()

		_, err := d.Deliver(context.Background(), notification.Job{UserID: 3, Message: "hello"})
		Expect(err).To(HaveOccurred())
		Expect(pusher.For(3)).To(BeEmpty())
	})
})

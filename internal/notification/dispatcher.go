package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job is one notification waiting to be stored and pushed.
type Job struct {
	UserID  int64
	Type    string
	Message string
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing notification", "worker_id", w.ID, "user_id", job.UserID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers   int
	JobQueueSize int
	// JobTimeout bounds one persist+push.
	JobTimeout time.Duration
}

// Dispatcher runs notification delivery off the request path on a bounded worker pool.
type Dispatcher struct {
	repo    Repository
	pusher  Pusher
	logger  *slog.Logger
	timeout time.Duration

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	closed     atomic.Bool
}

func NewDispatcher(config DispatcherConfig, repo Repository, pusher Pusher, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 256
	}
	timeout := config.JobTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if pusher == nil {
		pusher = NopPusher{}
	}

	d := &Dispatcher{
		repo:       repo,
		pusher:     pusher,
		logger:     logger,
		timeout:    timeout,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					d.process(job)
					return
				}
			case <-d.ctx.Done():
				d.process(job)
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("notification dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks. A full queue or a stopped dispatcher drops the job.
func (d *Dispatcher) Enqueue(job Job) bool {
	if d.closed.Load() {
		d.logger.Warn("notification dropped, dispatcher stopped", "user_id", job.UserID, "type", job.Type)
		return false
	}
	select {
	case d.jobQueue <- job:
		return true
	default:
		d.logger.Warn("notification queue full, dropping job",
			"user_id", job.UserID,
			"type", job.Type,
			"queue_capacity", cap(d.jobQueue))
		return false
	}
}

// Deliver stores the notification and pushes it. A push failure is logged, the stored row stands.
func (d *Dispatcher) Deliver(ctx context.Context, job Job) (*Notification, error) {
	n := &Notification{UserID: job.UserID, Type: job.Type, Message: job.Message}
	if err := d.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	frame, err := EncodeFrame(n)
	if err != nil {
		return n, err
	}
	if err := d.pusher.Push(ctx, n.UserID, frame); err != nil {
		d.logger.Warn("notification push failed", "notification_id", n.ID, "user_id", n.UserID, "error", err)
	}
	return n, nil
}

func (d *Dispatcher) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if _, err := d.Deliver(ctx, job); err != nil {
		d.logger.Error("notification delivery failed", "user_id", job.UserID, "type", job.Type, "error", err)
	}
}

// Shutdown stops the workers and delivers whatever is still queued.
func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down notification dispatcher")
	d.closed.Store(true)
	d.cancel()
	d.wg.Wait()
	for {
		select {
		case job := <-d.jobQueue:
			d.process(job)
		default:
			d.logger.Info("notification dispatcher shutdown complete")
			return
		}
	}
}

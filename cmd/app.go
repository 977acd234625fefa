package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/attendance"
	attendanceMongo "github.com/frahmantamala/hrms/internal/attendance/mongo"
	attendancePostgres "github.com/frahmantamala/hrms/internal/attendance/postgres"
	"github.com/frahmantamala/hrms/internal/auth"
	authMongo "github.com/frahmantamala/hrms/internal/auth/mongo"
	authPostgres "github.com/frahmantamala/hrms/internal/auth/postgres"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/dashboard"
	dashboardMongo "github.com/frahmantamala/hrms/internal/dashboard/mongo"
	dashboardPostgres "github.com/frahmantamala/hrms/internal/dashboard/postgres"
	"github.com/frahmantamala/hrms/internal/document"
	documentMongo "github.com/frahmantamala/hrms/internal/document/mongo"
	documentPostgres "github.com/frahmantamala/hrms/internal/document/postgres"
	"github.com/frahmantamala/hrms/internal/employee"
	employeeMongo "github.com/frahmantamala/hrms/internal/employee/mongo"
	employeePostgres "github.com/frahmantamala/hrms/internal/employee/postgres"
	"github.com/frahmantamala/hrms/internal/holiday"
	holidayMongo "github.com/frahmantamala/hrms/internal/holiday/mongo"
	holidayPostgres "github.com/frahmantamala/hrms/internal/holiday/postgres"
	"github.com/frahmantamala/hrms/internal/leave"
	leaveMongo "github.com/frahmantamala/hrms/internal/leave/mongo"
	leavePostgres "github.com/frahmantamala/hrms/internal/leave/postgres"
	"github.com/frahmantamala/hrms/internal/mailer"
	"github.com/frahmantamala/hrms/internal/notification"
	notificationMongo "github.com/frahmantamala/hrms/internal/notification/mongo"
	notificationPostgres "github.com/frahmantamala/hrms/internal/notification/postgres"
	"github.com/frahmantamala/hrms/internal/presence"
	"github.com/frahmantamala/hrms/internal/timesheet"
	timesheetMongo "github.com/frahmantamala/hrms/internal/timesheet/mongo"
	timesheetPostgres "github.com/frahmantamala/hrms/internal/timesheet/postgres"
	"github.com/frahmantamala/hrms/internal/transport/rest"
	"github.com/frahmantamala/hrms/internal/user"
	userMongo "github.com/frahmantamala/hrms/internal/user/mongo"
	userPostgres "github.com/frahmantamala/hrms/internal/user/postgres"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

// Storage holds whichever backend database.driver selected.
type Storage struct {
	Driver string
	Gorm   *gorm.DB
	SQLX   *sqlx.DB
	Mongo  *mongo.Client
	MongoD *mongo.Database
}

func openStorage(ctx context.Context, cfg *internal.Config, lg *slog.Logger) (*Storage, error) {
	st := &Storage{Driver: cfg.Database.Driver}

	if cfg.Database.Driver == internal.DriverMongo {
		client, db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		st.Mongo, st.MongoD = client, db
		return st, nil
	}

	db, err := datamodel.Open(cfg.Database, lg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	st.Gorm = db
	st.SQLX = sqlx.NewDb(sqlDB, datamodel.SQLDriverName(cfg.Database.Driver))
	return st, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if s.Mongo != nil {
		return s.Mongo.Ping(ctx, nil)
	}
	return s.SQLX.PingContext(ctx)
}

func (s *Storage) Close(ctx context.Context) error {
	if s.Mongo != nil {
		return s.Mongo.Disconnect(ctx)
	}
	return s.SQLX.Close()
}

type Repositories struct {
	Credentials   auth.CredentialStore
	Users         user.Repository
	Employees     employee.Repository
	Attendance    attendance.Repository
	Leaves        leave.Repository
	Timesheets    timesheet.Repository
	Notifications notification.Repository
	Holidays      holiday.Repository
	Documents     document.Repository
	Dashboard     dashboard.Repository
}

func newRepositories(st *Storage) Repositories {
	if st.MongoD != nil {
		db := st.MongoD
		return Repositories{
			Credentials:   authMongo.NewCredentialStore(db),
			Users:         userMongo.NewUserRepository(db),
			Employees:     employeeMongo.NewEmployeeRepository(db),
			Attendance:    attendanceMongo.NewAttendanceRepository(db),
			Leaves:        leaveMongo.NewLeaveRepository(db),
			Timesheets:    timesheetMongo.NewTimesheetRepository(db),
			Notifications: notificationMongo.NewNotificationRepository(db),
			Holidays:      holidayMongo.NewHolidayRepository(db),
			Documents:     documentMongo.NewDocumentRepository(db),
			Dashboard:     dashboardMongo.NewDashboardRepository(db),
		}
	}
	db := st.Gorm
	return Repositories{
		Credentials:   authPostgres.NewCredentialStore(db),
		Users:         userPostgres.NewUserRepository(db),
		Employees:     employeePostgres.NewEmployeeRepository(db),
		Attendance:    attendancePostgres.NewAttendanceRepository(db),
		Leaves:        leavePostgres.NewLeaveRepository(db),
		Timesheets:    timesheetPostgres.NewTimesheetRepository(db),
		Notifications: notificationPostgres.NewNotificationRepository(db),
		Holidays:      holidayPostgres.NewHolidayRepository(db),
		Documents:     documentPostgres.NewDocumentRepository(db),
		Dashboard:     dashboardPostgres.NewDashboardRepository(st.SQLX),
	}
}

type presenceStore interface {
	auth.PresenceTracker
	presence.Reader
}

// App is the fully wired process: storage, event bus, background delivery and every service.
type App struct {
	Config   *internal.Config
	Logger   *slog.Logger
	Clock    clock.Clock
	Location *time.Location
	Storage  *Storage
	Redis    *redis.Client
	Bus      *events.EventBus
	Repos    Repositories

	Hub        *notification.Hub
	Dispatcher *notification.Dispatcher
	Fanout     *notification.RedisPusher

	Auth          *auth.Service
	Users         *user.Service
	Employees     *employee.Service
	Attendance    *attendance.Service
	Leaves        *leave.Service
	Timesheets    *timesheet.Service
	Locker        *timesheet.Locker
	Notifications *notification.Service
	Holidays      *holiday.Service
	Documents     *document.Service
	Dashboard     *dashboard.Service
}

func newApp(ctx context.Context, cfg *internal.Config, lg *slog.Logger) (*App, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: lg, Location: loc, Clock: clock.NewSystem(loc)}

	if a.Storage, err = openStorage(ctx, cfg, lg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.Repos = newRepositories(a.Storage)

	if cfg.Redis.Enabled {
		if a.Redis, err = presence.NewRedisClient(ctx, cfg.Redis); err != nil {
			_ = a.Storage.Close(ctx)
			return nil, err
		}
	}

	var tracker presenceStore = presence.NewMemory(cfg.Security.PresenceTTL, a.Clock)
	if a.Redis != nil {
		tracker = presence.NewRedis(a.Redis, cfg.Security.PresenceTTL)
	}

	a.Bus = events.NewEventBus(lg)

	a.Hub = notification.NewHub(lg)
	var pusher notification.Pusher = a.Hub
	if cfg.Notification.Fanout == "redis" && a.Redis != nil {
		a.Fanout = notification.NewRedisPusher(a.Redis, cfg.Notification.Channel, a.Hub, lg)
		pusher = a.Fanout
	}
	a.Dispatcher = notification.NewDispatcher(notification.DispatcherConfig{
		MaxWorkers:   cfg.Notification.Workers,
		JobQueueSize: cfg.Notification.QueueSize,
	}, a.Repos.Notifications, pusher, lg)
	notification.RegisterEventHandlers(a.Bus, a.Dispatcher)
	mailer.RegisterEventHandlers(a.Bus, mailer.New(cfg.Mail, lg))

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration, a.Clock)
	a.Auth = auth.NewService(a.Repos.Credentials, tokens, a.Bus, tracker, a.Clock, auth.ServiceConfig{
		BCryptCost:    cfg.Security.BCryptCost,
		ResetTokenTTL: cfg.Security.ResetTokenTTL,
		ResetURLBase:  cfg.App.BaseURL,
	})
	a.Users = user.NewService(a.Repos.Users, cfg.Security.BCryptCost)
	a.Employees = employee.NewService(a.Repos.Employees)
	a.Holidays = holiday.NewService(a.Repos.Holidays, a.Clock)
	a.Timesheets = timesheet.NewService(a.Repos.Timesheets, a.Holidays, a.Bus, a.Clock, loc)
	a.Locker = timesheet.NewLocker(a.Repos.Timesheets, a.Bus, a.Clock, lg)
	a.Attendance = attendance.NewService(a.Repos.Attendance, a.Timesheets, a.Bus, a.Clock)
	a.Leaves = leave.NewService(a.Repos.Leaves, a.Bus, a.Clock)
	a.Notifications = notification.NewService(a.Repos.Notifications, a.Dispatcher)
	a.Dashboard = dashboard.NewService(a.Repos.Dashboard, tracker, a.Clock)

	storage, err := document.NewLocalStorage(cfg.Documents.Dir)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Documents = document.NewService(a.Repos.Documents, storage, cfg.Documents.MaxSize, a.Clock)

	return a, nil
}

// RunFanout relays frames published by other instances until ctx ends. It is a no-op without redis fan-out.
func (a *App) RunFanout(ctx context.Context) {
	if a.Fanout == nil {
		return
	}
	go func() {
		if err := a.Fanout.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error("notification fan-out stopped", "error", err)
		}
	}()
}

func (a *App) HealthChecks() map[string]rest.PingFunc {
	checks := map[string]rest.PingFunc{a.Storage.Driver: a.Storage.Ping}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Close drains in-flight events and notifications before releasing connections.
func (a *App) Close(ctx context.Context) {
	a.Bus.Wait()
	a.Dispatcher.Shutdown()
	a.Hub.Close()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis close error", "error", err)
		}
	}
	if err := a.Storage.Close(ctx); err != nil {
		a.Logger.Error("database close error", "error", err)
	}
}

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/timesheet"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs outside the HTTP server",
	Long:  `Run the timesheet lock scheduler on its own, or lock a month by hand.`,
}

var schedulerWorkerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the timesheet lock scheduler",
	Long:  `Run the daily lock check on scheduler.lock_cron until interrupted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startScheduler()
	},
}

var lockMonthCmd = &cobra.Command{
	Use:   "lock-month",
	Short: "Lock a month's timesheets now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return lockMonth()
	},
}

var (
	lockCron    string
	lockMonthID string
)

func startScheduler() error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, lg)
	if err != nil {
		return err
	}
	app.RunFanout(ctx)

	scheduler, err := timesheet.NewScheduler(app.Locker, getStringFlag(lockCron, cfg.Scheduler.LockCron), app.Location, lg)
	if err != nil {
		app.Close(context.Background())
		return err
	}
	scheduler.Start()
	lg.Info("scheduler worker is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	lg.Info("received signal, shutting down scheduler worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	app.Close(shutdownCtx)
	lg.Info("scheduler worker stopped")
	return nil
}

func lockMonth() error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	ctx := context.Background()

	app, err := newApp(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	month := getStringFlag(lockMonthID, app.Clock.Now().Format(clock.MonthLayout))
	locked, err := app.Locker.Lock(ctx, month, timesheet.LockedByManual)
	if err != nil {
		return err
	}
	if locked {
		fmt.Printf("locked %s\n", month)
	} else {
		fmt.Printf("%s was already locked\n", month)
	}
	return nil
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	schedulerWorkerCmd.Flags().StringVar(&lockCron, "cron", "", "Lock schedule (overrides scheduler.lock_cron)")
	lockMonthCmd.Flags().StringVar(&lockMonthID, "month", "", "Month to lock as YYYY-MM (defaults to the current month)")

	workerCmd.AddCommand(schedulerWorkerCmd)
	workerCmd.AddCommand(lockMonthCmd)
}

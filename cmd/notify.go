package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hrms/internal/notification"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a notification to one user",
	Long: `Persist a notification for a user and push it to their open sockets. Sockets on other
instances are only reached with notification.fanout=redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendNotification()
	},
}

var (
	notifyUserID  int64
	notifyMessage string
	notifyType    string
)

func sendNotification() error {
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

	n, err := app.Notifications.Send(ctx, notification.SendDTO{
		UserID:  notifyUserID,
		Type:    notifyType,
		Message: notifyMessage,
	})
	if err != nil {
		return err
	}
	fmt.Printf("notification %d sent to user %d\n", n.ID, notifyUserID)
	return nil
}

func init() {
	notifyCmd.Flags().Int64Var(&notifyUserID, "user", 0, "Recipient user id")
	notifyCmd.Flags().StringVar(&notifyMessage, "message", "", "Notification text")
	notifyCmd.Flags().StringVar(&notifyType, "type", notification.TypeSystem, "attendance, leave, timesheet or system")
	_ = notifyCmd.MarkFlagRequired("user")
	_ = notifyCmd.MarkFlagRequired("message")
}

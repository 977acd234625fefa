package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/frahmantamala/hrms/internal"
)

const (
	TypeAttendance = "attendance"
	TypeLeave      = "leave"
	TypeTimesheet  = "timesheet"
	TypeSystem     = "system"
)

// UnreadLimit caps the inbox list.
const UnreadLimit = 20

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListUnread returns the newest unread notifications first.
	ListUnread(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	// MarkRead returns ErrNotificationNotFound when id does not belong to userID.
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// Pusher delivers an encoded frame to every live connection of a user.
type Pusher interface {
	Push(ctx context.Context, userID int64, payload []byte) error
}

// NopPusher drops every frame. Used where no socket can be reached, such as the notify command.
type NopPusher struct{}

func (NopPusher) Push(context.Context, int64, []byte) error { return nil }

const FrameEvent = "notification"

type Frame struct {
	Event string        `json:"event"`
	Data  *Notification `json:"data"`
}

func EncodeFrame(n *Notification) ([]byte, error) {
	return json.Marshal(Frame{Event: FrameEvent, Data: n})
}

var ErrNotificationNotFound = internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)

package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/frahmantamala/hrms/internal/core/events"
)

func PasswordResetMessage(name, email, resetURL string) Message {
	if name == "" {
		name = email
	}
	return Message{
		To:      email,
		Subject: "Reset your HRMS password",
		Text: fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password. The link works once and expires soon.\n\n%s\n\n"+
			"If you did not ask for this, ignore this email.\n", name, resetURL),
		HTML: fmt.Sprintf(`<p>Hello %s,</p><p>Use the link below to reset your password. The link works once and expires soon.</p>`+
			`<p><a href="%s">Reset password</a></p><p>If you did not ask for this, ignore this email.</p>`,
			html.EscapeString(name), html.EscapeString(resetURL)),
	}
}

// RegisterEventHandlers mails reset links. Failures are returned to the bus, which logs them.
func RegisterEventHandlers(bus *events.EventBus, sender Sender) {
	bus.Subscribe(events.EventTypePasswordResetRequested, func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.PasswordResetRequestedEvent)
		if !ok {
			return nil
		}
		return sender.Send(ctx, PasswordResetMessage(ev.Name, ev.Email, ev.ResetURL))
	})
}

package notification

import (
	"context"
	"fmt"

	"github.com/callboard-app/callboard/internal/event_bus"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/callboard-app/callboard/pkg/timezone"
	log "github.com/sirupsen/logrus"
)

// EmailSender delivers a single message. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	Send(ctx context.Context, to string, toName string, subject string, htmlBody string, textBody string) error
}

// EventReminder carries everything needed to email one attendee about an
// upcoming event. The wall-clock fields are pre-rendered in the recipient's
// timezone by the caller.
type EventReminder struct {
	RecipientName  string
	RecipientEmail string
	Preferences    Preferences
	EventTitle     string
	EventType      string
	Location       string
	StartDate      string
	StartTime      string
	EndTime        string
	CallDate       string
	CallTime       string
}

// Notifier composes and sends member-facing emails, honoring each
// recipient's per-group preferences. Delivery failures are logged and never
// propagated; a broken mailbox must not fail the operation that triggered
// the notification.
type Notifier struct {
	sender    EmailSender
	prefsRepo Repository
	groupRepo group.Repository
}

func NewNotifier(sender EmailSender, prefsRepo Repository, groupRepo group.Repository) *Notifier {
	return &Notifier{sender: sender, prefsRepo: prefsRepo, groupRepo: groupRepo}
}

// SendEventReminder emails one attendee about an upcoming event. It is a
// no-op when the recipient has turned show reminders off.
func (n *Notifier) SendEventReminder(ctx context.Context, msg EventReminder) {
	if !msg.Preferences.ShowReminders.Email {
		log.Debugf("Skipping reminder for %s: show reminders disabled", msg.RecipientEmail)
		return
	}

	subject := fmt.Sprintf("Reminder: %s on %s", msg.EventTitle, msg.StartDate)
	when := fmt.Sprintf("%s from %s to %s", msg.StartDate, msg.StartTime, msg.EndTime)
	callLine := ""
	if msg.CallTime != "" {
		callLine = fmt.Sprintf("Call time: %s %s\n", msg.CallDate, msg.CallTime)
	}
	text := fmt.Sprintf("Hi %s,\n\nUpcoming %s: %s\nWhen: %s\n%sWhere: %s\n",
		msg.RecipientName, msg.EventType, msg.EventTitle, when, callLine, msg.Location)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Upcoming %s: <strong>%s</strong><br>When: %s<br>%sWhere: %s</p>",
		msg.RecipientName, msg.EventType, msg.EventTitle, when, htmlCallLine(msg), msg.Location)

	if err := n.sender.Send(ctx, msg.RecipientEmail, msg.RecipientName, subject, html, text); err != nil {
		log.Errorf("Failed to send event reminder to %s: %v", msg.RecipientEmail, err)
	}
}

func htmlCallLine(msg EventReminder) string {
	if msg.CallTime == "" {
		return ""
	}
	return fmt.Sprintf("Call time: %s %s<br>", msg.CallDate, msg.CallTime)
}

// SendAvailabilityRequestOpened emails every group member except the
// creator, asking them to fill in the new availability poll.
func (n *Notifier) SendAvailabilityRequestOpened(ctx context.Context, payload event_bus.AvailabilityRequestOpened) error {
	members, err := n.groupRepo.ListMembers(ctx, payload.GroupId)
	if err != nil {
		return fmt.Errorf("listing members for availability notification: %w", err)
	}

	subject := fmt.Sprintf("Availability requested: %s", payload.Title)
	text := fmt.Sprintf("A new availability poll \"%s\" is open for %s to %s. Please submit your availability.",
		payload.Title, payload.DateRangeStart, payload.DateRangeEnd)
	html := fmt.Sprintf("<p>A new availability poll <strong>%s</strong> is open for %s to %s.</p><p>Please submit your availability.</p>",
		payload.Title, payload.DateRangeStart, payload.DateRangeEnd)

	for _, member := range members {
		if member.UserId == payload.CreatedById {
			continue
		}
		prefs, err := n.prefsRepo.GetPreferences(ctx, member.UserId, payload.GroupId)
		if err != nil {
			log.Errorf("Failed to load preferences for user %d: %v", member.UserId, err)
			continue
		}
		if !prefs.AvailabilityRequests.Email {
			continue
		}
		if err := n.sender.Send(ctx, member.Email, member.DisplayName, subject, html, text); err != nil {
			log.Errorf("Failed to send availability notification to %s: %v", member.Email, err)
		}
	}
	return nil
}

// SendEventScheduled emails every group member about a newly scheduled
// event, with times rendered in each member's own timezone.
func (n *Notifier) SendEventScheduled(ctx context.Context, payload event_bus.EventScheduled) error {
	members, err := n.groupRepo.ListMembers(ctx, payload.GroupId)
	if err != nil {
		return fmt.Errorf("listing members for event notification: %w", err)
	}

	subject := fmt.Sprintf("New %s scheduled: %s", payload.EventType, payload.Title)

	for _, member := range members {
		prefs, err := n.prefsRepo.GetPreferences(ctx, member.UserId, payload.GroupId)
		if err != nil {
			log.Errorf("Failed to load preferences for user %d: %v", member.UserId, err)
			continue
		}
		if !prefs.EventNotifications.Email {
			continue
		}

		start, err := timezone.UTCToLocalParts(payload.StartTime, member.Timezone)
		if err != nil {
			log.Errorf("Failed to render event time for user %d in zone %q: %v", member.UserId, member.Timezone, err)
			continue
		}
		end, err := timezone.UTCToLocalParts(payload.EndTime, member.Timezone)
		if err != nil {
			log.Errorf("Failed to render event time for user %d in zone %q: %v", member.UserId, member.Timezone, err)
			continue
		}

		when := fmt.Sprintf("%s from %s to %s", start.Date, start.Time, end.Time)
		text := fmt.Sprintf("A new %s \"%s\" was scheduled.\nWhen: %s\nWhere: %s\n",
			payload.EventType, payload.Title, when, payload.Location)
		html := fmt.Sprintf("<p>A new %s <strong>%s</strong> was scheduled.<br>When: %s<br>Where: %s</p>",
			payload.EventType, payload.Title, when, payload.Location)

		if err := n.sender.Send(ctx, member.Email, member.DisplayName, subject, html, text); err != nil {
			log.Errorf("Failed to send event notification to %s: %v", member.Email, err)
		}
	}
	return nil
}

package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/callboard-app/callboard/internal/utils"
	"github.com/callboard-app/callboard/pkg/event"
	"github.com/callboard-app/callboard/pkg/notification"
	"github.com/callboard-app/callboard/pkg/timezone"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers a single reminder. It decides itself whether the
// recipient wants reminders at all; it never returns delivery errors.
type Notifier interface {
	SendEventReminder(ctx context.Context, msg notification.EventReminder)
}

// Scheduler periodically sends reminder emails for events whose effective
// start (call time when set) falls inside the lookahead window. Replicas
// coordinate through a transaction-scoped advisory lock, so running several
// instances sends each reminder exactly once.
type Scheduler struct {
	store    Store
	notifier Notifier
	clock    utils.Clock
	interval time.Duration
	window   time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewScheduler(store Store, notifier Notifier, clock utils.Clock, interval time.Duration, window time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		notifier: notifier,
		clock:    clock,
		interval: interval,
		window:   window,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called. The first tick fires
// immediately so a freshly started replica catches up without waiting a
// full interval.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if err := s.Tick(ctx); err != nil {
			log.Errorf("Reminder tick failed: %v", err)
		}
		for {
			select {
			case <-ticker.C:
				if err := s.Tick(ctx); err != nil {
					log.Errorf("Reminder tick failed: %v", err)
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// Tick runs one reminder pass. Everything happens in a single transaction:
// acquiring the job lock, reading due events, and writing the reminded
// markers. A store error rolls the whole pass back; the untouched events are
// picked up on the next tick.
func (s *Scheduler) Tick(ctx context.Context) error {
	return s.store.WithTransaction(ctx, func(tx Store) error {
		acquired, err := tx.TryAcquireJobLock(ctx)
		if err != nil {
			return err
		}
		if !acquired {
			log.Debug("Reminder job lock held by another replica, skipping tick")
			return nil
		}

		now := s.clock.Now().UTC()
		due, err := tx.FindDueEvents(ctx, now, now.Add(s.window))
		if err != nil {
			return err
		}

		for _, e := range due {
			attendees, err := tx.FindConfirmedAttendees(ctx, e.Id)
			if err != nil {
				return err
			}
			for _, attendee := range attendees {
				msg, err := s.buildReminder(e, attendee)
				if err != nil {
					log.Errorf("Skipping reminder for user %d on event %s: %v", attendee.UserId, e.Uid, err)
					continue
				}
				s.notifier.SendEventReminder(ctx, msg)
			}
			// Marked even with zero attendees or skipped recipients so the
			// event does not re-fire every tick.
			if err := tx.MarkReminded(ctx, e.Id, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Scheduler) buildReminder(e event.Event, attendee Attendee) (notification.EventReminder, error) {
	start, err := timezone.UTCToLocalParts(e.StartTime, attendee.Timezone)
	if err != nil {
		return notification.EventReminder{}, fmt.Errorf("rendering start time in %q: %w", attendee.Timezone, err)
	}
	end, err := timezone.UTCToLocalParts(e.EndTime, attendee.Timezone)
	if err != nil {
		return notification.EventReminder{}, fmt.Errorf("rendering end time in %q: %w", attendee.Timezone, err)
	}

	msg := notification.EventReminder{
		RecipientName:  attendee.DisplayName,
		RecipientEmail: attendee.Email,
		Preferences:    attendee.Preferences,
		EventTitle:     e.Title,
		EventType:      string(e.Type),
		Location:       e.Location,
		StartDate:      start.Date,
		StartTime:      start.Time,
		EndTime:        end.Time,
	}
	if e.CallTime != nil {
		call, err := timezone.UTCToLocalParts(*e.CallTime, attendee.Timezone)
		if err != nil {
			return notification.EventReminder{}, fmt.Errorf("rendering call time in %q: %w", attendee.Timezone, err)
		}
		msg.CallDate = call.Date
		msg.CallTime = call.Time
	}
	return msg, nil
}

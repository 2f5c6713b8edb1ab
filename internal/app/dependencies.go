package app

import (
	"github.com/callboard-app/callboard/internal/config"
	"github.com/callboard-app/callboard/internal/event_bus"
	"github.com/callboard-app/callboard/internal/utils"
	"github.com/callboard-app/callboard/pkg/availability"
	"github.com/callboard-app/callboard/pkg/event"
	"github.com/callboard-app/callboard/pkg/group"
	"github.com/callboard-app/callboard/pkg/notification"
	"github.com/callboard-app/callboard/pkg/reminder"
	"github.com/callboard-app/callboard/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	GroupRepo    group.Repository
	GroupService group.Service
	GroupHandler *group.Handler

	AvailabilityRepo    availability.Repository
	AvailabilityService availability.Service
	AvailabilityHandler *availability.Handler

	EventRepo    event.Repository
	EventService event.Service
	EventHandler *event.Handler

	NotificationRepo    notification.Repository
	EmailSender         notification.EmailSender
	Notifier            *notification.Notifier
	NotificationService notification.Service
	NotificationHandler *notification.Handler

	ReminderStore     reminder.Store
	ReminderScheduler *reminder.Scheduler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.GroupRepo = group.NewRepository(db)
	deps.GroupService = group.NewService(deps.GroupRepo)
	deps.GroupHandler = group.NewHandler(deps.GroupService)

	deps.AvailabilityRepo = availability.NewRepository(db)
	deps.AvailabilityService = availability.NewService(deps.AvailabilityRepo, deps.GroupRepo, deps.EventBus)
	deps.AvailabilityHandler = availability.NewHandler(deps.AvailabilityService)

	deps.EventRepo = event.NewRepository(db)
	deps.EventService = event.NewService(deps.EventRepo, deps.GroupRepo, deps.EventBus)
	deps.EventHandler = event.NewHandler(deps.EventService)

	deps.NotificationRepo = notification.NewRepository(db)
	deps.EmailSender = notification.NewSMTPSender(cfg.Smtp)
	deps.Notifier = notification.NewNotifier(deps.EmailSender, deps.NotificationRepo, deps.GroupRepo)
	deps.NotificationService = notification.NewService(deps.NotificationRepo, deps.GroupRepo)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)
	notification.RegisterSubscriptions(deps.EventBus, deps.Notifier)

	deps.ReminderStore = reminder.NewStore(db)
	deps.ReminderScheduler = reminder.NewScheduler(
		deps.ReminderStore,
		deps.Notifier,
		deps.Clock,
		cfg.Scheduler.Interval(),
		cfg.Scheduler.Window(),
	)

	return deps
}

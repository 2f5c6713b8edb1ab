package notification

import (
	"github.com/callboard-app/callboard/internal/event_bus"
)

// RegisterSubscriptions wires the notifier to the domain events it fans out.
// Handlers run synchronously during publish; the notifier itself swallows
// per-recipient failures, so only audience lookup errors surface here.
func RegisterSubscriptions(bus *event_bus.EventBus, notifier *Notifier) {
	event_bus.SubscribeTyped(bus, event_bus.AvailabilityRequestOpenedType,
		func(e event_bus.EventT[event_bus.AvailabilityRequestOpened]) error {
			return notifier.SendAvailabilityRequestOpened(e.Context(), e.Data)
		})
	event_bus.SubscribeTyped(bus, event_bus.EventScheduledType,
		func(e event_bus.EventT[event_bus.EventScheduled]) error {
			return notifier.SendEventScheduled(e.Context(), e.Data)
		})
}

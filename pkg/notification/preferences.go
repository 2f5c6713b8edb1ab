package notification

import "encoding/json"

const (
	ChannelAvailabilityRequests = "availabilityRequests"
	ChannelEventNotifications   = "eventNotifications"
	ChannelShowReminders        = "showReminders"
)

// ChannelSettings holds the delivery toggles for a single notification
// category. Only email exists today; new transports get new fields here.
type ChannelSettings struct {
	Email bool `json:"email"`
}

// Preferences is a user's per-group notification configuration. Categories
// absent from the stored document fall back to enabled, so a user created
// before a category existed still receives it. Unknown keys written by a
// newer server version survive a read-modify-write cycle untouched.
type Preferences struct {
	AvailabilityRequests ChannelSettings
	EventNotifications   ChannelSettings
	ShowReminders        ChannelSettings

	extra map[string]json.RawMessage
}

func DefaultPreferences() Preferences {
	return Preferences{
		AvailabilityRequests: ChannelSettings{Email: true},
		EventNotifications:   ChannelSettings{Email: true},
		ShowReminders:        ChannelSettings{Email: true},
	}
}

func (p *Preferences) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = DefaultPreferences()
	for key, value := range raw {
		var target *ChannelSettings
		switch key {
		case ChannelAvailabilityRequests:
			target = &p.AvailabilityRequests
		case ChannelEventNotifications:
			target = &p.EventNotifications
		case ChannelShowReminders:
			target = &p.ShowReminders
		default:
			if p.extra == nil {
				p.extra = make(map[string]json.RawMessage)
			}
			p.extra[key] = value
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			return err
		}
	}
	return nil
}

func (p Preferences) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, 3+len(p.extra))
	doc[ChannelAvailabilityRequests] = p.AvailabilityRequests
	doc[ChannelEventNotifications] = p.EventNotifications
	doc[ChannelShowReminders] = p.ShowReminders
	for key, value := range p.extra {
		doc[key] = value
	}
	return json.Marshal(doc)
}

package user

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Email       string
	// Timezone is the IANA zone all of the user's event times are rendered
	// in, e.g. "Europe/Warsaw". Empty means times are shown as UTC.
	Timezone string
}

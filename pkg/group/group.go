package group

type Group struct {
	Id   int
	Uid  string
	Name string
}

// Member is a user's membership in a group, joined with the profile fields
// the scheduling core needs (display name for heatmaps, email and timezone
// for notifications).
type Member struct {
	UserId      int
	DisplayName string
	Email       string
	Timezone    string
	Role        string
}

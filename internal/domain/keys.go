package domain

// Key names one collection document in the store's flat namespace.
type Key string

// Collection keys. Each holds a single JSON document: an object for the
// current user and auth user, a list for everything else.
const (
	KeyUserData       Key = "crimsonCollabUserData"
	KeyProfiles       Key = "crimsonCollabProfiles"
	KeyTrips          Key = "crimsonCollabTrips"
	KeyGroups         Key = "crimsonCollabGroups"
	KeyMessages       Key = "crimsonCollabMessages"
	KeyGroupMessages  Key = "crimsonCollabGroupMessages"
	KeyInvites        Key = "crimsonCollabInvites"
	KeyCalendarEvents Key = "crimsonCollabCalendarEvents"
	KeySyncQueue      Key = "crimsonCollabSyncQueue"
	KeySyncLedger     Key = "crimsonCollabSyncLedger"
	KeyAuthUser       Key = "crimsonCollabAuthUser"
)

// SharedSnapshot is every collection at once, used for diagnostics and export.
type SharedSnapshot struct {
	UserData       UserProfile     `json:"user_data"`
	Profiles       []UserProfile   `json:"profiles"`
	Trips          []Trip          `json:"trips"`
	Groups         []Group         `json:"groups"`
	Messages       []Message       `json:"messages"`
	GroupMessages  []Message       `json:"group_messages"`
	Invites        []Invite        `json:"invites"`
	CalendarEvents []CalendarEvent `json:"calendar_events"`
	SyncQueue      []SyncOperation `json:"sync_queue"`
}

package constants

// Directory store collection names.
const (
	CollectionUsers         = "users"
	CollectionClubs         = "clubs"
	CollectionMemberships   = "memberships"
	CollectionEvents        = "events"
	CollectionAttendance    = "attendance"
	CollectionAnnouncements = "announcements"
)

// Membership statuses.
const (
	MembershipActive  = "active"
	MembershipRemoved = "removed"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

package constants

// XPAction tags every XP award written to the transaction log.
type XPAction string

const (
	ActionJoinClub         XPAction = "JOIN_CLUB"
	ActionAttendEvent      XPAction = "ATTEND_EVENT"
	ActionCreateEvent      XPAction = "CREATE_EVENT"
	ActionPostAnnouncement XPAction = "POST_ANNOUNCEMENT"
	ActionDailyLogin       XPAction = "DAILY_LOGIN"
	ActionCompleteProfile  XPAction = "COMPLETE_PROFILE"
	ActionInviteFriend     XPAction = "INVITE_FRIEND"
	ActionClubLeadership   XPAction = "CLUB_LEADERSHIP"
)

// XPValues maps actions to their fixed award amounts. Unknown actions
// resolve to 0 and still produce a zero-amount transaction.
var XPValues = map[XPAction]int{
	ActionJoinClub:         50,
	ActionAttendEvent:      100,
	ActionCreateEvent:      75,
	ActionPostAnnouncement: 50,
	ActionDailyLogin:       10,
	ActionCompleteProfile:  100,
	ActionInviteFriend:     150,
	ActionClubLeadership:   200,
}

// XPPerLevel is the fixed XP span of a level: level = floor(xp/100) + 1.
const XPPerLevel = 100

// BadgeTier is one of the four fixed XP-threshold achievement levels.
type BadgeTier string

const (
	BadgeBeginner  BadgeTier = "beginner"
	BadgeActive    BadgeTier = "active"
	BadgeSuperstar BadgeTier = "superstar"
	BadgeLegend    BadgeTier = "legend"
)

// BadgeThresholds holds the minimum XP for each tier.
var BadgeThresholds = map[BadgeTier]int{
	BadgeBeginner:  0,
	BadgeActive:    500,
	BadgeSuperstar: 2000,
	BadgeLegend:    5000,
}

// BadgeOrder lists tiers from highest to lowest threshold. Badge evaluation
// walks this slice and awards at most one new tier per pass.
var BadgeOrder = []BadgeTier{BadgeLegend, BadgeSuperstar, BadgeActive, BadgeBeginner}

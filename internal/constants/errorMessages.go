package constants

const (
	MsgAlreadyMember    = "Already a member of this club"
	MsgNotMember        = "Not a member of this club"
	MsgAlreadyMarked    = "Attendance already marked"
	MsgNotFound         = "Record not found"
	MsgConflict         = "Concurrent update detected, please retry"
	MsgStoreUnavailable = "Directory store unavailable"
	MsgXPAwardFailed    = "Attendance recorded but XP award failed"
	MsgAlreadyClaimed   = "Daily bonus already claimed today"
)

const (
	APIStatusOk    = "success"
	APIStatusError = "error"
)

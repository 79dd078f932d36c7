package email

const (
	subjectPasswordReset       = "Reset your password"
	subjectFollowupReminderFmt = "Follow-up due: %s"
)

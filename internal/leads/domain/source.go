package domain

// Acquisition channels with a known scoring weight.
const (
	SourceReferral      = "Referral"
	SourceLinkedIn      = "LinkedIn"
	SourceWebsite       = "Website"
	SourceColdCall      = "Cold Call"
	SourceAdvertisement = "Advertisement"
	SourceOther         = "Other"
	// SourceImport marks leads created by CSV import. It carries no weight of its own.
	SourceImport = "Import"
)

// ImportedTag is attached to every lead created by CSV import.
const ImportedTag = "Imported"

// ActivityType classifies an entry in a lead's activity timeline.
type ActivityType string

const (
	ActivityNote     ActivityType = "note"
	ActivityCall     ActivityType = "call"
	ActivityEmail    ActivityType = "email"
	ActivityWhatsApp ActivityType = "whatsapp"
	ActivityMeeting  ActivityType = "meeting"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityNote, ActivityCall, ActivityEmail, ActivityWhatsApp, ActivityMeeting:
		return true
	}
	return false
}

// Follow-up statuses as stored. Overdue is derived at read time.
const (
	FollowupPending = "pending"
	FollowupDone    = "done"
)

// Package domain holds the lead vocabulary shared by scoring, persistence
// and the pipeline board.
package domain

// Pipeline stages of the default board. Tenants may add their own; a lead's
// status is free text that usually matches one of its tenant's stage names.
const (
	StageNew         = "New"
	StageContacted   = "Contacted"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageWon         = "Won"
	StageLost        = "Lost"
)

// DefaultStage describes a stage seeded for new tenants.
type DefaultStage struct {
	Name  string
	Color string
}

// DefaultStages is the board seeded when an organization has no stages yet.
var DefaultStages = []DefaultStage{
	{Name: StageNew, Color: "#6366f1"},
	{Name: StageContacted, Color: "#8b5cf6"},
	{Name: StageQualified, Color: "#a78bfa"},
	{Name: StageProposal, Color: "#f59e0b"},
	{Name: StageNegotiation, Color: "#f97316"},
	{Name: StageWon, Color: "#10b981"},
	{Name: StageLost, Color: "#ef4444"},
}

// IsClosed reports whether status ends the sales cycle.
func IsClosed(status string) bool {
	return status == StageWon || status == StageLost
}

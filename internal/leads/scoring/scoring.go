// Package scoring computes the additive lead quality score shown on every
// lead. It is pure: no I/O, no shared state, safe for concurrent use.
package scoring

import (
	"fmt"
	"strings"

	"crm_backend/internal/leads/domain"
)

// MaxScore is the upper bound of every score.
const MaxScore = 100

const (
	emailPoints   = 15
	phonePoints   = 15
	companyPoints = 15

	// unknownPoints applies to any source or stage outside the tables.
	unknownPoints = 5
)

var sourcePoints = map[string]int{
	domain.SourceReferral:      20,
	domain.SourceLinkedIn:      20,
	domain.SourceWebsite:       10,
	domain.SourceColdCall:      5,
	domain.SourceAdvertisement: 10,
	domain.SourceOther:         5,
}

var stagePoints = map[string]int{
	domain.StageNew:         5,
	domain.StageContacted:   10,
	domain.StageQualified:   15,
	domain.StageProposal:    25,
	domain.StageNegotiation: 30,
	domain.StageWon:         35,
	domain.StageLost:        0,
}

// Input carries the lead attributes that influence the score.
// Empty strings are absent fields.
type Input struct {
	Email   string
	Phone   string
	Company string
	Source  string
	Status  string
}

// Result is the score and the ordered trail of contributions behind it.
type Result struct {
	Score   int
	Reasons []string
}

// Calculate scores a lead. Rules are applied in a fixed order: email, phone,
// company, source, stage. Source and stage always contribute a reason.
func Calculate(in Input) Result {
	total := 0
	reasons := make([]string, 0, 5)

	if present(in.Email) {
		total += emailPoints
		reasons = append(reasons, fmt.Sprintf("Has email address (+%d)", emailPoints))
	}
	if present(in.Phone) {
		total += phonePoints
		reasons = append(reasons, fmt.Sprintf("Has phone number (+%d)", phonePoints))
	}
	if present(in.Company) {
		total += companyPoints
		reasons = append(reasons, fmt.Sprintf("Has company info (+%d)", companyPoints))
	}

	source := valueOr(in.Source, domain.SourceOther)
	points := lookup(sourcePoints, source)
	total += points
	reasons = append(reasons, fmt.Sprintf("Source: %s (+%d)", source, points))

	stage := valueOr(in.Status, domain.StageNew)
	points = lookup(stagePoints, stage)
	total += points
	reasons = append(reasons, fmt.Sprintf("Stage: %s (+%d)", stage, points))

	return Result{Score: min(total, MaxScore), Reasons: reasons}
}

// Tier buckets a score for display.
func Tier(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}

// valueOr keeps a present value verbatim; only blank values fall back.
func valueOr(value, fallback string) string {
	if present(value) {
		return value
	}
	return fallback
}

func lookup(table map[string]int, key string) int {
	if points, ok := table[key]; ok {
		return points
	}
	return unknownPoints
}

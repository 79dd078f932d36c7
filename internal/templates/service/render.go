package service

import (
	"strings"

	"crm_backend/internal/templates/repository"
)

const (
	placeholderLeadName = "{{leadName}}"
	placeholderCompany  = "{{company}}"
)

// Render substitutes the lead placeholders in subject and body. Every
// occurrence is replaced; unknown placeholders are left as written.
func Render(t repository.Template, leadName, company string) (subject, body string) {
	r := strings.NewReplacer(placeholderLeadName, leadName, placeholderCompany, company)
	return r.Replace(t.Subject), r.Replace(t.Body)
}

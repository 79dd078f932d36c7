package management

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/sanitize"
)

// ExportHeader is the first row of every lead export.
var ExportHeader = []string{"Name", "Company", "Email", "Phone", "Status", "Value", "Source", "Assigned Rep"}

const (
	importUnknown  = "Unknown"
	maxImportBytes = 5 << 20
)

// ExportFileName returns the attachment name for an export taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("leads_export_%s.csv", now.UTC().Format(time.DateOnly))
}

// ExportName names an export taken now.
func (s *Service) ExportName() string {
	return ExportFileName(s.now())
}

// ExportCSV writes the leads matching req that the actor may see.
func (s *Service) ExportCSV(ctx context.Context, actor httpkit.Identity, req transport.ListLeadsRequest, w io.Writer) error {
	leads, err := s.listAll(ctx, actor, req)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}
	for _, lead := range leads {
		if err := writer.Write(exportRow(lead)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportRow(lead repository.Lead) []string {
	return []string{
		lead.Name,
		lead.Company,
		lead.Email,
		lead.Phone,
		lead.Status,
		strconv.FormatInt(lead.ExpectedValue, 10),
		lead.Source,
		lead.AssignedRepName,
	}
}

// ImportCSV creates one lead per data row of r, in the column order
// Name,Company,Email,Phone,Status,Value,Source. The header row is skipped,
// rows with fewer than two columns are skipped, and every imported lead is
// assigned to the importer and tagged Imported.
func (s *Service) ImportCSV(ctx context.Context, actor httpkit.Identity, r io.Reader) (transport.ImportResult, error) {
	reader := csv.NewReader(io.LimitReader(r, maxImportBytes))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var result transport.ImportResult
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, apperr.Validation(fmt.Sprintf("invalid csv: %v", err))
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			result.Skipped++
			continue
		}

		if _, err := s.create(ctx, actor, importDraft(record), actor.UserID(), opImport); err != nil {
			return result, err
		}
		result.Imported++
	}

	s.log.WithContext(ctx).Info("leads imported", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func importDraft(record []string) repository.Lead {
	col := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	return repository.Lead{
		Name:          orDefault(sanitize.Line(col(0)), importUnknown),
		Company:       orDefault(sanitize.Line(col(1)), importUnknown),
		Email:         col(2),
		Phone:         col(3),
		Status:        orDefault(sanitize.Line(col(4)), domain.StageNew),
		ExpectedValue: parseValue(col(5)),
		Source:        orDefault(sanitize.Line(col(6)), domain.SourceImport),
		Tags:          []string{domain.ImportedTag},
	}
}

// parseValue accepts integers and decimals; anything else counts as zero.
func parseValue(raw string) int64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return int64(value)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

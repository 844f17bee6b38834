package incidents

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// ExportCSV renders the given incidents as a CSV document. Incidents the
// caller may not view are skipped rather than failing the export.
func (s *Service) ExportCSV(ctx context.Context, ids []string, user *domain.User) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ID", "Title", "Status", "Priority", "Category", "Reporter", "Assignee", "Urgent", "Created", "Resolved"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, id := range ids {
		incident, err := s.GetIncident(ctx, id, user)
		if err != nil {
			continue
		}

		assignee := ""
		if incident.AssigneeID != nil {
			assignee = *incident.AssigneeID
		}
		resolved := ""
		if incident.ActualResolutionDate != nil {
			resolved = incident.ActualResolutionDate.Format(time.RFC3339)
		}

		record := []string{
			incident.ID,
			incident.Title,
			titleCaser.String(strings.ToLower(strings.ReplaceAll(string(incident.Status), "_", " "))),
			incident.PriorityLabel(),
			incident.CategoryID,
			incident.ReporterID,
			assignee,
			strconv.FormatBool(incident.IsUrgent),
			incident.CreatedAt.Format(time.RFC3339),
			resolved,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// GenerateReport renders a plain-text summary of a single incident.
func (s *Service) GenerateReport(ctx context.Context, id string, user *domain.User) (string, error) {
	incident, err := s.GetIncident(ctx, id, user)
	if err != nil {
		return "", err
	}

	category, err := s.categories.GetCategoryByID(ctx, incident.CategoryID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCategoryNotFound, incident.CategoryID)
	}

	var b strings.Builder
	b.WriteString("INCIDENT REPORT\n")
	b.WriteString("===============\n\n")
	fmt.Fprintf(&b, "ID: %s\n", incident.ID)
	fmt.Fprintf(&b, "Title: %s\n", incident.Title)
	fmt.Fprintf(&b, "Status: %s\n", incident.Status.DisplayName())
	fmt.Fprintf(&b, "Priority: %s\n", incident.PriorityLabel())
	fmt.Fprintf(&b, "Category: %s\n", category.Name)
	fmt.Fprintf(&b, "Created: %s\n", incident.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Description: %s\n", incident.Description)

	if incident.LocationDetails != "" {
		fmt.Fprintf(&b, "Location: %s\n", incident.LocationDetails)
	}
	if incident.AssigneeID != nil {
		fmt.Fprintf(&b, "Assigned to: %s\n", *incident.AssigneeID)
	}

	return b.String(), nil
}

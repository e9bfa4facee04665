package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateApplication inserts a new application.
func (s *Store) CreateApplication(ctx context.Context, a *Application) error {
	if a.Name == "" {
		return fmt.Errorf("%w: application name is required", ErrInvalid)
	}
	if a.ID == "" {
		a.ID = newID()
	}

	ts := now()
	a.CreatedAt = ts
	a.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, company_id, name, description, base_url, reporting_protocol_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullableString(a.CompanyID), a.Name, a.Description, a.BaseURL,
		nullableString(a.ReportingProtocolID), ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

// GetApplication loads an application by ID.
func (s *Store) GetApplication(ctx context.Context, id string) (*Application, error) {
	return scanApplication(s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, description, base_url, reporting_protocol_id, created_at, updated_at
		FROM applications WHERE id = ?`, id))
}

// ListApplications returns all applications.
func (s *Store) ListApplications(ctx context.Context) ([]Application, error) {
	return s.queryApplications(ctx, `
		SELECT id, company_id, name, description, base_url, reporting_protocol_id, created_at, updated_at
		FROM applications ORDER BY name`)
}

// UpdateApplication modifies an existing application.
func (s *Store) UpdateApplication(ctx context.Context, a *Application) error {
	a.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET company_id = ?, name = ?, description = ?, base_url = ?, reporting_protocol_id = ?, updated_at = ?
		WHERE id = ?`,
		nullableString(a.CompanyID), a.Name, a.Description, a.BaseURL,
		nullableString(a.ReportingProtocolID), a.UpdatedAt.Format(timeFormat), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}
	return requireRow(result, "application")
}

// RemoveApplication deletes an application. Its devices and links cascade.
func (s *Store) RemoveApplication(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting application: %w", err)
	}
	return requireRow(result, "application")
}

// UpsertApplicationByOrigin imports a remote application. A previously seen
// (network, remoteID) pair resolves to the existing canonical record, which
// is updated only where incoming fields differ; an unseen pair creates a new
// record and records the origin. Returns the record and whether it was created.
func (s *Store) UpsertApplicationByOrigin(ctx context.Context, networkID, remoteID string, incoming *Application) (*Application, bool, error) {
	localID, err := s.LocalID(ctx, networkID, OriginApplication, remoteID)
	switch {
	case err == nil:
		existing, err := s.GetApplication(ctx, localID)
		if err != nil {
			return nil, false, err
		}
		if applyApplicationFields(existing, incoming) {
			if err := s.UpdateApplication(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil

	case errors.Is(err, ErrNotFound):
		created := &Application{
			CompanyID:           incoming.CompanyID,
			Name:                incoming.Name,
			Description:         incoming.Description,
			BaseURL:             incoming.BaseURL,
			ReportingProtocolID: incoming.ReportingProtocolID,
		}
		if err := s.CreateApplication(ctx, created); err != nil {
			return nil, false, err
		}
		if err := s.SetOrigin(ctx, networkID, OriginApplication, created.ID, remoteID); err != nil {
			return nil, false, err
		}
		return created, true, nil

	default:
		return nil, false, err
	}
}

// applyApplicationFields copies differing non-empty incoming fields onto the
// existing record and reports whether anything changed.
func applyApplicationFields(existing, incoming *Application) bool {
	changed := false
	if incoming.Name != "" && incoming.Name != existing.Name {
		existing.Name = incoming.Name
		changed = true
	}
	if incoming.Description != "" && incoming.Description != existing.Description {
		existing.Description = incoming.Description
		changed = true
	}
	if incoming.BaseURL != "" && incoming.BaseURL != existing.BaseURL {
		existing.BaseURL = incoming.BaseURL
		changed = true
	}
	if incoming.CompanyID != nil && (existing.CompanyID == nil || *incoming.CompanyID != *existing.CompanyID) {
		existing.CompanyID = incoming.CompanyID
		changed = true
	}
	if incoming.ReportingProtocolID != nil &&
		(existing.ReportingProtocolID == nil || *incoming.ReportingProtocolID != *existing.ReportingProtocolID) {
		existing.ReportingProtocolID = incoming.ReportingProtocolID
		changed = true
	}
	return changed
}

// UpsertApplicationLink creates or updates the application's link for one
// network type. At most one link exists per (application, network type).
func (s *Store) UpsertApplicationLink(ctx context.Context, link *ApplicationNetworkTypeLink) (*ApplicationNetworkTypeLink, error) {
	existing, err := s.GetApplicationLink(ctx, link.ApplicationID, link.NetworkTypeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	settingsJSON, err := marshalSettings(link.NetworkSettings)
	if err != nil {
		return nil, err
	}

	ts := now()
	if existing != nil {
		existing.NetworkSettings = link.NetworkSettings
		existing.Enabled = link.Enabled
		existing.UpdatedAt = ts
		_, err = s.db.ExecContext(ctx, `
			UPDATE application_network_type_links
			SET network_settings = ?, enabled = ?, updated_at = ?
			WHERE id = ?`,
			settingsJSON, boolToInt(link.Enabled), ts.Format(timeFormat), existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating application link: %w", err)
		}
		return existing, nil
	}

	link.ID = newID()
	link.CreatedAt = ts
	link.UpdatedAt = ts
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO application_network_type_links (id, application_id, network_type_id, network_settings, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID, link.ApplicationID, link.NetworkTypeID, settingsJSON,
		boolToInt(link.Enabled), ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting application link: %w", err)
	}
	return link, nil
}

// GetApplicationLink loads the link for (application, network type).
func (s *Store) GetApplicationLink(ctx context.Context, applicationID, networkTypeID string) (*ApplicationNetworkTypeLink, error) {
	return scanApplicationLink(s.db.QueryRowContext(ctx, `
		SELECT id, application_id, network_type_id, network_settings, enabled, created_at, updated_at
		FROM application_network_type_links
		WHERE application_id = ? AND network_type_id = ?`,
		applicationID, networkTypeID))
}

// ListApplicationLinksByType returns all application links for one network type.
func (s *Store) ListApplicationLinksByType(ctx context.Context, networkTypeID string) ([]ApplicationNetworkTypeLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, network_type_id, network_settings, enabled, created_at, updated_at
		FROM application_network_type_links
		WHERE network_type_id = ?`, networkTypeID)
	if err != nil {
		return nil, fmt.Errorf("querying application links: %w", err)
	}
	defer rows.Close()

	var links []ApplicationNetworkTypeLink
	for rows.Next() {
		l, err := scanApplicationLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating application links: %w", err)
	}
	return links, nil
}

// ListApplicationLinks returns all links of one application across network
// types.
func (s *Store) ListApplicationLinks(ctx context.Context, applicationID string) ([]ApplicationNetworkTypeLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, network_type_id, network_settings, enabled, created_at, updated_at
		FROM application_network_type_links
		WHERE application_id = ?`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("querying application links: %w", err)
	}
	defer rows.Close()

	var links []ApplicationNetworkTypeLink
	for rows.Next() {
		l, err := scanApplicationLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating application links: %w", err)
	}
	return links, nil
}

// RemoveApplicationLink deletes the link for (application, network type).
func (s *Store) RemoveApplicationLink(ctx context.Context, applicationID, networkTypeID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM application_network_type_links
		WHERE application_id = ? AND network_type_id = ?`,
		applicationID, networkTypeID)
	if err != nil {
		return fmt.Errorf("deleting application link: %w", err)
	}
	return requireRow(result, "application link")
}

func scanApplicationLink(scanner rowScanner) (*ApplicationNetworkTypeLink, error) {
	var l ApplicationNetworkTypeLink
	var settingsJSON, createdAt, updatedAt string
	var enabled int
	err := scanner.Scan(&l.ID, &l.ApplicationID, &l.NetworkTypeID, &settingsJSON,
		&enabled, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning application link: %w", err)
	}
	l.Enabled = enabled != 0
	if l.NetworkSettings, err = unmarshalSettings(settingsJSON); err != nil {
		return nil, err
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &l, nil
}

// queryApplications executes a query returning application rows.
func (s *Store) queryApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}
	return apps, nil
}

func scanApplication(scanner rowScanner) (*Application, error) {
	var a Application
	var companyID, reportingProtocolID sql.NullString
	var createdAt, updatedAt string
	err := scanner.Scan(&a.ID, &companyID, &a.Name, &a.Description, &a.BaseURL,
		&reportingProtocolID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	a.CompanyID = stringPtr(companyID)
	a.ReportingProtocolID = stringPtr(reportingProtocolID)
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &a, nil
}

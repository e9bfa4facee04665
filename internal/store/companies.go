package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateCompany inserts a new company.
func (s *Store) CreateCompany(ctx context.Context, c *Company) error {
	if c.Name == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalid)
	}
	if c.ID == "" {
		c.ID = newID()
	}

	ts := now()
	c.CreatedAt = ts
	c.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting company: %w", err)
	}
	return nil
}

// GetCompany loads a company by ID.
func (s *Store) GetCompany(ctx context.Context, id string) (*Company, error) {
	return scanCompany(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies WHERE id = ?`, id))
}

// GetCompanyByName loads a company by its unique name.
func (s *Store) GetCompanyByName(ctx context.Context, name string) (*Company, error) {
	return scanCompany(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies WHERE name = ?`, name))
}

// ListCompanies returns all companies.
func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating companies: %w", err)
	}
	return companies, nil
}

// UpdateCompany modifies an existing company.
func (s *Store) UpdateCompany(ctx context.Context, c *Company) error {
	c.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE companies SET name = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.UpdatedAt.Format(timeFormat), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating company: %w", err)
	}
	return requireRow(result, "company")
}

// RemoveCompany deletes a company. Its network type links cascade away.
func (s *Store) RemoveCompany(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting company: %w", err)
	}
	return requireRow(result, "company")
}

// UpsertCompanyByOrigin imports a remote organisation. If (network, remoteID)
// has been seen before, the existing record is updated with differing fields;
// otherwise a new company is created and the origin recorded. Companies are
// additionally matched by name so a vendor organisation pulled from two
// networks maps to one canonical company.
func (s *Store) UpsertCompanyByOrigin(ctx context.Context, networkID, remoteID string, incoming *Company) (*Company, bool, error) {
	localID, err := s.LocalID(ctx, networkID, OriginCompany, remoteID)
	switch {
	case err == nil:
		existing, err := s.GetCompany(ctx, localID)
		if err != nil {
			return nil, false, err
		}
		if incoming.Name != "" && incoming.Name != existing.Name {
			existing.Name = incoming.Name
			if err := s.UpdateCompany(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil

	case errors.Is(err, ErrNotFound):
		// Cross-network match by name before creating.
		if existing, nameErr := s.GetCompanyByName(ctx, incoming.Name); nameErr == nil {
			if err := s.SetOrigin(ctx, networkID, OriginCompany, existing.ID, remoteID); err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}

		created := &Company{Name: incoming.Name}
		if err := s.CreateCompany(ctx, created); err != nil {
			return nil, false, err
		}
		if err := s.SetOrigin(ctx, networkID, OriginCompany, created.ID, remoteID); err != nil {
			return nil, false, err
		}
		return created, true, nil

	default:
		return nil, false, err
	}
}

// UpsertCompanyLink creates or updates the company's link for one network
// type. At most one link exists per (company, network type).
func (s *Store) UpsertCompanyLink(ctx context.Context, link *CompanyNetworkTypeLink) (*CompanyNetworkTypeLink, error) {
	existing, err := s.GetCompanyLink(ctx, link.CompanyID, link.NetworkTypeID)
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
			UPDATE company_network_type_links
			SET network_settings = ?, enabled = ?, updated_at = ?
			WHERE id = ?`,
			settingsJSON, boolToInt(link.Enabled), ts.Format(timeFormat), existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating company link: %w", err)
		}
		return existing, nil
	}

	link.ID = newID()
	link.CreatedAt = ts
	link.UpdatedAt = ts
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO company_network_type_links (id, company_id, network_type_id, network_settings, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID, link.CompanyID, link.NetworkTypeID, settingsJSON,
		boolToInt(link.Enabled), ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting company link: %w", err)
	}
	return link, nil
}

// GetCompanyLink loads the link for (company, network type).
func (s *Store) GetCompanyLink(ctx context.Context, companyID, networkTypeID string) (*CompanyNetworkTypeLink, error) {
	var l CompanyNetworkTypeLink
	var settingsJSON, createdAt, updatedAt string
	var enabled int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, network_type_id, network_settings, enabled, created_at, updated_at
		FROM company_network_type_links
		WHERE company_id = ? AND network_type_id = ?`,
		companyID, networkTypeID,
	).Scan(&l.ID, &l.CompanyID, &l.NetworkTypeID, &settingsJSON, &enabled, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying company link: %w", err)
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

func scanCompany(scanner rowScanner) (*Company, error) {
	var c Company
	var createdAt, updatedAt string
	err := scanner.Scan(&c.ID, &c.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning company: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &c, nil
}

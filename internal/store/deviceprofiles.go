package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
)

// CreateDeviceProfile inserts a new device profile.
func (s *Store) CreateDeviceProfile(ctx context.Context, p *DeviceProfile) error {
	if p.Name == "" {
		return fmt.Errorf("%w: device profile name is required", ErrInvalid)
	}
	if p.NetworkTypeID == "" {
		return fmt.Errorf("%w: device profile network type is required", ErrInvalid)
	}
	if p.ID == "" {
		p.ID = newID()
	}

	settingsJSON, err := marshalSettings(p.NetworkSettings)
	if err != nil {
		return err
	}

	ts := now()
	p.CreatedAt = ts
	p.UpdatedAt = ts

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO device_profiles (id, company_id, network_type_id, name, description, network_settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, nullableString(p.CompanyID), p.NetworkTypeID, p.Name, p.Description,
		settingsJSON, ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting device profile: %w", err)
	}
	return nil
}

// GetDeviceProfile loads a device profile by ID.
func (s *Store) GetDeviceProfile(ctx context.Context, id string) (*DeviceProfile, error) {
	return scanDeviceProfile(s.db.QueryRowContext(ctx, `
		SELECT id, company_id, network_type_id, name, description, network_settings, created_at, updated_at
		FROM device_profiles WHERE id = ?`, id))
}

// ListDeviceProfiles returns all device profiles.
func (s *Store) ListDeviceProfiles(ctx context.Context) ([]DeviceProfile, error) {
	return s.queryDeviceProfiles(ctx, `
		SELECT id, company_id, network_type_id, name, description, network_settings, created_at, updated_at
		FROM device_profiles ORDER BY name`)
}

// ListDeviceProfilesByType returns all device profiles of one network type.
func (s *Store) ListDeviceProfilesByType(ctx context.Context, networkTypeID string) ([]DeviceProfile, error) {
	return s.queryDeviceProfiles(ctx, `
		SELECT id, company_id, network_type_id, name, description, network_settings, created_at, updated_at
		FROM device_profiles WHERE network_type_id = ? ORDER BY name`, networkTypeID)
}

// UpdateDeviceProfile modifies an existing device profile.
func (s *Store) UpdateDeviceProfile(ctx context.Context, p *DeviceProfile) error {
	settingsJSON, err := marshalSettings(p.NetworkSettings)
	if err != nil {
		return err
	}

	p.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE device_profiles
		SET company_id = ?, network_type_id = ?, name = ?, description = ?, network_settings = ?, updated_at = ?
		WHERE id = ?`,
		nullableString(p.CompanyID), p.NetworkTypeID, p.Name, p.Description,
		settingsJSON, p.UpdatedAt.Format(timeFormat), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device profile: %w", err)
	}
	return requireRow(result, "device profile")
}

// RemoveDeviceProfile deletes a device profile.
func (s *Store) RemoveDeviceProfile(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM device_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device profile: %w", err)
	}
	return requireRow(result, "device profile")
}

// UpsertDeviceProfileByOrigin imports a remote device profile, matching by
// origin. All vendor fields beyond name/description arrive in
// NetworkSettings and are stored opaquely.
func (s *Store) UpsertDeviceProfileByOrigin(ctx context.Context, networkID, remoteID string, incoming *DeviceProfile) (*DeviceProfile, bool, error) {
	localID, err := s.LocalID(ctx, networkID, OriginDeviceProfile, remoteID)
	switch {
	case err == nil:
		existing, err := s.GetDeviceProfile(ctx, localID)
		if err != nil {
			return nil, false, err
		}
		changed := false
		if incoming.Name != "" && incoming.Name != existing.Name {
			existing.Name = incoming.Name
			changed = true
		}
		if incoming.Description != "" && incoming.Description != existing.Description {
			existing.Description = incoming.Description
			changed = true
		}
		if incoming.NetworkSettings != nil && !reflect.DeepEqual(incoming.NetworkSettings, existing.NetworkSettings) {
			existing.NetworkSettings = incoming.NetworkSettings
			changed = true
		}
		if changed {
			if err := s.UpdateDeviceProfile(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil

	case errors.Is(err, ErrNotFound):
		created := &DeviceProfile{
			CompanyID:       incoming.CompanyID,
			NetworkTypeID:   incoming.NetworkTypeID,
			Name:            incoming.Name,
			Description:     incoming.Description,
			NetworkSettings: incoming.NetworkSettings,
		}
		if err := s.CreateDeviceProfile(ctx, created); err != nil {
			return nil, false, err
		}
		if err := s.SetOrigin(ctx, networkID, OriginDeviceProfile, created.ID, remoteID); err != nil {
			return nil, false, err
		}
		return created, true, nil

	default:
		return nil, false, err
	}
}

// queryDeviceProfiles executes a query returning device profile rows.
func (s *Store) queryDeviceProfiles(ctx context.Context, query string, args ...any) ([]DeviceProfile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying device profiles: %w", err)
	}
	defer rows.Close()

	var profiles []DeviceProfile
	for rows.Next() {
		p, err := scanDeviceProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device profiles: %w", err)
	}
	return profiles, nil
}

func scanDeviceProfile(scanner rowScanner) (*DeviceProfile, error) {
	var p DeviceProfile
	var companyID sql.NullString
	var settingsJSON, createdAt, updatedAt string
	err := scanner.Scan(&p.ID, &companyID, &p.NetworkTypeID, &p.Name, &p.Description,
		&settingsJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning device profile: %w", err)
	}
	p.CompanyID = stringPtr(companyID)
	if p.NetworkSettings, err = unmarshalSettings(settingsJSON); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

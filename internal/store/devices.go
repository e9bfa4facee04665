package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
)

// CreateDevice inserts a new device.
func (s *Store) CreateDevice(ctx context.Context, d *Device) error {
	if d.Name == "" {
		return fmt.Errorf("%w: device name is required", ErrInvalid)
	}
	if d.ApplicationID == "" {
		return fmt.Errorf("%w: device application is required", ErrInvalid)
	}
	if d.ID == "" {
		d.ID = newID()
	}

	ts := now()
	d.CreatedAt = ts
	d.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (id, application_id, name, description, device_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ApplicationID, d.Name, d.Description, d.DeviceModel,
		ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// GetDevice loads a device by ID.
func (s *Store) GetDevice(ctx context.Context, id string) (*Device, error) {
	return scanStoreDevice(s.db.QueryRowContext(ctx, `
		SELECT id, application_id, name, description, device_model, created_at, updated_at
		FROM devices WHERE id = ?`, id))
}

// ListDevices returns all devices.
func (s *Store) ListDevices(ctx context.Context) ([]Device, error) {
	return s.queryDevices(ctx, `
		SELECT id, application_id, name, description, device_model, created_at, updated_at
		FROM devices ORDER BY name`)
}

// ListApplicationDevices returns all devices of one application.
func (s *Store) ListApplicationDevices(ctx context.Context, applicationID string) ([]Device, error) {
	return s.queryDevices(ctx, `
		SELECT id, application_id, name, description, device_model, created_at, updated_at
		FROM devices WHERE application_id = ? ORDER BY name`, applicationID)
}

// UpdateDevice modifies an existing device.
func (s *Store) UpdateDevice(ctx context.Context, d *Device) error {
	d.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE devices
		SET application_id = ?, name = ?, description = ?, device_model = ?, updated_at = ?
		WHERE id = ?`,
		d.ApplicationID, d.Name, d.Description, d.DeviceModel,
		d.UpdatedAt.Format(timeFormat), d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}
	return requireRow(result, "device")
}

// RemoveDevice deletes a device. Its links cascade away.
func (s *Store) RemoveDevice(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRow(result, "device")
}

// UpsertDeviceByOrigin imports a remote device, matching by origin.
// ApplicationID on the incoming record must already be resolved to the
// canonical application.
func (s *Store) UpsertDeviceByOrigin(ctx context.Context, networkID, remoteID string, incoming *Device) (*Device, bool, error) {
	localID, err := s.LocalID(ctx, networkID, OriginDevice, remoteID)
	switch {
	case err == nil:
		existing, err := s.GetDevice(ctx, localID)
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
		if incoming.DeviceModel != "" && incoming.DeviceModel != existing.DeviceModel {
			existing.DeviceModel = incoming.DeviceModel
			changed = true
		}
		if incoming.ApplicationID != "" && incoming.ApplicationID != existing.ApplicationID {
			existing.ApplicationID = incoming.ApplicationID
			changed = true
		}
		if changed {
			if err := s.UpdateDevice(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil

	case errors.Is(err, ErrNotFound):
		created := &Device{
			ApplicationID: incoming.ApplicationID,
			Name:          incoming.Name,
			Description:   incoming.Description,
			DeviceModel:   incoming.DeviceModel,
		}
		if err := s.CreateDevice(ctx, created); err != nil {
			return nil, false, err
		}
		if err := s.SetOrigin(ctx, networkID, OriginDevice, created.ID, remoteID); err != nil {
			return nil, false, err
		}
		return created, true, nil

	default:
		return nil, false, err
	}
}

// UpsertDeviceLink creates or updates the device's link for one network
// type, including its per-network-type device profile reference.
func (s *Store) UpsertDeviceLink(ctx context.Context, link *DeviceNetworkTypeLink) (*DeviceNetworkTypeLink, error) {
	existing, err := s.GetDeviceLink(ctx, link.DeviceID, link.NetworkTypeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	settingsJSON, err := marshalSettings(link.NetworkSettings)
	if err != nil {
		return nil, err
	}

	ts := now()
	if existing != nil {
		if link.NetworkSettings != nil && !reflect.DeepEqual(link.NetworkSettings, existing.NetworkSettings) {
			existing.NetworkSettings = link.NetworkSettings
		}
		if link.DeviceProfileID != nil {
			existing.DeviceProfileID = link.DeviceProfileID
		}
		existing.Enabled = link.Enabled
		existing.UpdatedAt = ts

		updatedJSON, err := marshalSettings(existing.NetworkSettings)
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx, `
			UPDATE device_network_type_links
			SET device_profile_id = ?, network_settings = ?, enabled = ?, updated_at = ?
			WHERE id = ?`,
			nullableString(existing.DeviceProfileID), updatedJSON,
			boolToInt(existing.Enabled), ts.Format(timeFormat), existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating device link: %w", err)
		}
		return existing, nil
	}

	link.ID = newID()
	link.CreatedAt = ts
	link.UpdatedAt = ts
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO device_network_type_links (id, device_id, network_type_id, device_profile_id, network_settings, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		link.ID, link.DeviceID, link.NetworkTypeID, nullableString(link.DeviceProfileID),
		settingsJSON, boolToInt(link.Enabled), ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting device link: %w", err)
	}
	return link, nil
}

// GetDeviceLink loads the link for (device, network type).
func (s *Store) GetDeviceLink(ctx context.Context, deviceID, networkTypeID string) (*DeviceNetworkTypeLink, error) {
	return scanDeviceLink(s.db.QueryRowContext(ctx, `
		SELECT id, device_id, network_type_id, device_profile_id, network_settings, enabled, created_at, updated_at
		FROM device_network_type_links
		WHERE device_id = ? AND network_type_id = ?`,
		deviceID, networkTypeID))
}

// ListDeviceLinksByType returns all device links for one network type.
func (s *Store) ListDeviceLinksByType(ctx context.Context, networkTypeID string) ([]DeviceNetworkTypeLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device_id, network_type_id, device_profile_id, network_settings, enabled, created_at, updated_at
		FROM device_network_type_links
		WHERE network_type_id = ?`, networkTypeID)
	if err != nil {
		return nil, fmt.Errorf("querying device links: %w", err)
	}
	defer rows.Close()

	var links []DeviceNetworkTypeLink
	for rows.Next() {
		l, err := scanDeviceLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device links: %w", err)
	}
	return links, nil
}

// ListDeviceLinks returns all links of one device across network types.
func (s *Store) ListDeviceLinks(ctx context.Context, deviceID string) ([]DeviceNetworkTypeLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device_id, network_type_id, device_profile_id, network_settings, enabled, created_at, updated_at
		FROM device_network_type_links
		WHERE device_id = ?`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("querying device links: %w", err)
	}
	defer rows.Close()

	var links []DeviceNetworkTypeLink
	for rows.Next() {
		l, err := scanDeviceLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device links: %w", err)
	}
	return links, nil
}

// RemoveDeviceLink deletes the link for (device, network type).
func (s *Store) RemoveDeviceLink(ctx context.Context, deviceID, networkTypeID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM device_network_type_links
		WHERE device_id = ? AND network_type_id = ?`,
		deviceID, networkTypeID)
	if err != nil {
		return fmt.Errorf("deleting device link: %w", err)
	}
	return requireRow(result, "device link")
}

func scanDeviceLink(scanner rowScanner) (*DeviceNetworkTypeLink, error) {
	var l DeviceNetworkTypeLink
	var profileID sql.NullString
	var settingsJSON, createdAt, updatedAt string
	var enabled int
	err := scanner.Scan(&l.ID, &l.DeviceID, &l.NetworkTypeID, &profileID,
		&settingsJSON, &enabled, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning device link: %w", err)
	}
	l.DeviceProfileID = stringPtr(profileID)
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

// queryDevices executes a query returning device rows.
func (s *Store) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanStoreDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

func scanStoreDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var createdAt, updatedAt string
	err := scanner.Scan(&d.ID, &d.ApplicationID, &d.Name, &d.Description,
		&d.DeviceModel, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}

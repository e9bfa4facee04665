package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Reference data repositories: network types, reporting protocols, and
// network protocols are seeded by migration and treated as immutable at
// runtime, so these are read-only.

// GetNetworkType loads a network type by ID.
func (s *Store) GetNetworkType(ctx context.Context, id string) (*NetworkType, error) {
	return s.scanNetworkType(s.db.QueryRowContext(ctx,
		`SELECT id, name FROM network_types WHERE id = ?`, id))
}

// GetNetworkTypeByName loads a network type by its name (e.g. "LoRa").
func (s *Store) GetNetworkTypeByName(ctx context.Context, name string) (*NetworkType, error) {
	return s.scanNetworkType(s.db.QueryRowContext(ctx,
		`SELECT id, name FROM network_types WHERE name = ?`, name))
}

// ListNetworkTypes returns all network types.
func (s *Store) ListNetworkTypes(ctx context.Context) ([]NetworkType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM network_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying network types: %w", err)
	}
	defer rows.Close()

	var types []NetworkType
	for rows.Next() {
		var nt NetworkType
		if err := rows.Scan(&nt.ID, &nt.Name); err != nil {
			return nil, fmt.Errorf("scanning network type: %w", err)
		}
		types = append(types, nt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating network types: %w", err)
	}
	return types, nil
}

func (s *Store) scanNetworkType(row *sql.Row) (*NetworkType, error) {
	var nt NetworkType
	if err := row.Scan(&nt.ID, &nt.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning network type: %w", err)
	}
	return &nt, nil
}

// GetReportingProtocol loads a reporting protocol by ID.
func (s *Store) GetReportingProtocol(ctx context.Context, id string) (*ReportingProtocol, error) {
	return s.scanReportingProtocol(s.db.QueryRowContext(ctx,
		`SELECT id, name, handler FROM reporting_protocols WHERE id = ?`, id))
}

// GetReportingProtocolByName loads a reporting protocol by name ("POST", "MQTT").
func (s *Store) GetReportingProtocolByName(ctx context.Context, name string) (*ReportingProtocol, error) {
	return s.scanReportingProtocol(s.db.QueryRowContext(ctx,
		`SELECT id, name, handler FROM reporting_protocols WHERE name = ?`, name))
}

// ListReportingProtocols returns all reporting protocols.
func (s *Store) ListReportingProtocols(ctx context.Context) ([]ReportingProtocol, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, handler FROM reporting_protocols ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying reporting protocols: %w", err)
	}
	defer rows.Close()

	var protocols []ReportingProtocol
	for rows.Next() {
		var rp ReportingProtocol
		if err := rows.Scan(&rp.ID, &rp.Name, &rp.Handler); err != nil {
			return nil, fmt.Errorf("scanning reporting protocol: %w", err)
		}
		protocols = append(protocols, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reporting protocols: %w", err)
	}
	return protocols, nil
}

func (s *Store) scanReportingProtocol(row *sql.Row) (*ReportingProtocol, error) {
	var rp ReportingProtocol
	if err := row.Scan(&rp.ID, &rp.Name, &rp.Handler); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning reporting protocol: %w", err)
	}
	return &rp, nil
}

// GetNetworkProtocol loads a network protocol by ID.
func (s *Store) GetNetworkProtocol(ctx context.Context, id string) (*NetworkProtocol, error) {
	return scanNetworkProtocol(s.db.QueryRowContext(ctx, `
		SELECT id, name, version, network_type_id, master_protocol_id
		FROM network_protocols WHERE id = ?`, id))
}

// GetNetworkProtocolByVersion loads a network protocol by (name, version).
func (s *Store) GetNetworkProtocolByVersion(ctx context.Context, name, version string) (*NetworkProtocol, error) {
	return scanNetworkProtocol(s.db.QueryRowContext(ctx, `
		SELECT id, name, version, network_type_id, master_protocol_id
		FROM network_protocols WHERE name = ? AND version = ?`, name, version))
}

// ListNetworkProtocols returns all network protocols.
func (s *Store) ListNetworkProtocols(ctx context.Context) ([]NetworkProtocol, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version, network_type_id, master_protocol_id
		FROM network_protocols ORDER BY name, version`)
	if err != nil {
		return nil, fmt.Errorf("querying network protocols: %w", err)
	}
	defer rows.Close()

	var protocols []NetworkProtocol
	for rows.Next() {
		np, err := scanNetworkProtocol(rows)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, *np)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating network protocols: %w", err)
	}
	return protocols, nil
}

func scanNetworkProtocol(scanner rowScanner) (*NetworkProtocol, error) {
	var np NetworkProtocol
	var master sql.NullString
	if err := scanner.Scan(&np.ID, &np.Name, &np.Version, &np.NetworkTypeID, &master); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning network protocol: %w", err)
	}
	np.MasterProtocolID = stringPtr(master)
	return &np, nil
}

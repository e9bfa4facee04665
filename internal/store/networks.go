package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// CreateNetwork inserts a new network. A fresh network starts pending and
// unauthorised unless the caller has already authorised it.
func (s *Store) CreateNetwork(ctx context.Context, n *Network) error {
	if n.Name == "" {
		return fmt.Errorf("%w: network name is required", ErrInvalid)
	}
	if n.ID == "" {
		n.ID = newID()
	}
	if n.SecurityData.Status == "" {
		n.SecurityData.Status = SecurityPending
	}

	secJSON, err := json.Marshal(n.SecurityData)
	if err != nil {
		return fmt.Errorf("marshalling security data: %w", err)
	}

	ts := now()
	n.CreatedAt = ts
	n.UpdatedAt = ts

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO networks (id, name, network_protocol_id, network_type_id, base_url, security_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Name, n.NetworkProtocolID, n.NetworkTypeID, n.BaseURL,
		string(secJSON), ts.Format(timeFormat), ts.Format(timeFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting network: %w", err)
	}
	return nil
}

// GetNetwork loads a network by ID.
func (s *Store) GetNetwork(ctx context.Context, id string) (*Network, error) {
	return scanNetwork(s.db.QueryRowContext(ctx, `
		SELECT id, name, network_protocol_id, network_type_id, base_url, security_data, created_at, updated_at
		FROM networks WHERE id = ?`, id))
}

// ListNetworks returns all networks.
func (s *Store) ListNetworks(ctx context.Context) ([]Network, error) {
	return s.queryNetworks(ctx, `
		SELECT id, name, network_protocol_id, network_type_id, base_url, security_data, created_at, updated_at
		FROM networks ORDER BY name`)
}

// ListNetworksByType returns all networks of one network type.
func (s *Store) ListNetworksByType(ctx context.Context, networkTypeID string) ([]Network, error) {
	return s.queryNetworks(ctx, `
		SELECT id, name, network_protocol_id, network_type_id, base_url, security_data, created_at, updated_at
		FROM networks WHERE network_type_id = ? ORDER BY name`, networkTypeID)
}

// UpdateNetwork modifies an existing network.
func (s *Store) UpdateNetwork(ctx context.Context, n *Network) error {
	secJSON, err := json.Marshal(n.SecurityData)
	if err != nil {
		return fmt.Errorf("marshalling security data: %w", err)
	}

	n.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE networks
		SET name = ?, network_protocol_id = ?, network_type_id = ?, base_url = ?, security_data = ?, updated_at = ?
		WHERE id = ?`,
		n.Name, n.NetworkProtocolID, n.NetworkTypeID, n.BaseURL,
		string(secJSON), n.UpdatedAt.Format(timeFormat), n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating network: %w", err)
	}
	return requireRow(result, "network")
}

// UpdateNetworkSecurity persists only the security data of a network.
// Used by the session coordinator when authorisation state changes.
func (s *Store) UpdateNetworkSecurity(ctx context.Context, id string, sec SecurityData) error {
	secJSON, err := json.Marshal(sec)
	if err != nil {
		return fmt.Errorf("marshalling security data: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE networks SET security_data = ?, updated_at = ? WHERE id = ?`,
		string(secJSON), now().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("updating network security data: %w", err)
	}
	return requireRow(result, "network")
}

// RemoveNetwork deletes a network. Origins scoped to it cascade away; remote
// objects on the vendor side are deliberately left untouched.
func (s *Store) RemoveNetwork(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM networks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting network: %w", err)
	}
	return requireRow(result, "network")
}

// queryNetworks executes a query returning network rows.
func (s *Store) queryNetworks(ctx context.Context, query string, args ...any) ([]Network, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying networks: %w", err)
	}
	defer rows.Close()

	var networks []Network
	for rows.Next() {
		n, err := scanNetwork(rows)
		if err != nil {
			return nil, err
		}
		networks = append(networks, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating networks: %w", err)
	}
	return networks, nil
}

func scanNetwork(scanner rowScanner) (*Network, error) {
	var n Network
	var secJSON, createdAt, updatedAt string
	err := scanner.Scan(&n.ID, &n.Name, &n.NetworkProtocolID, &n.NetworkTypeID,
		&n.BaseURL, &secJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning network: %w", err)
	}

	if err := json.Unmarshal([]byte(secJSON), &n.SecurityData); err != nil {
		return nil, fmt.Errorf("unmarshalling security data: %w", err)
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &n, nil
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return nil
}

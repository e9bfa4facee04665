package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetOrigin records that localID on this network is the remote object
// remoteID. Called by the pull reconciler when importing, and by the push
// reconciler after the first successful push of an entity to a network.
//
// Re-recording the same pair is a no-op. Recording a different remote id for
// an already-mapped local record, or a different local record for an
// already-mapped remote id, returns ErrConflict — origin collisions are
// surfaced, never auto-resolved.
func (s *Store) SetOrigin(ctx context.Context, networkID string, kind OriginKind, localID, remoteID string) error {
	existing, err := s.originByLocal(ctx, networkID, kind, localID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.RemoteID == remoteID {
			return nil
		}
		return fmt.Errorf("%w: %s %s already mapped to remote %s on network %s",
			ErrConflict, kind, localID, existing.RemoteID, networkID)
	}

	ts := now().Format(timeFormat)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO origins (id, network_id, kind, local_id, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newID(), networkID, string(kind), localID, remoteID, ts, ts,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// The remote id is already claimed by a different local record.
			return fmt.Errorf("%w: remote %s on network %s already mapped", ErrConflict, remoteID, networkID)
		}
		return fmt.Errorf("inserting origin: %w", err)
	}
	return nil
}

// LocalID resolves the canonical record previously imported from (network,
// remoteID). Returns ErrNotFound when the remote object has never been seen.
func (s *Store) LocalID(ctx context.Context, networkID string, kind OriginKind, remoteID string) (string, error) {
	var localID string
	err := s.db.QueryRowContext(ctx, `
		SELECT local_id FROM origins
		WHERE network_id = ? AND kind = ? AND remote_id = ?`,
		networkID, string(kind), remoteID,
	).Scan(&localID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("querying origin by remote id: %w", err)
	}
	return localID, nil
}

// RemoteID resolves the remote identifier of a canonical record on the given
// network. Returns ErrNotFound when the record has never been synced there.
func (s *Store) RemoteID(ctx context.Context, networkID string, kind OriginKind, localID string) (string, error) {
	origin, err := s.originByLocal(ctx, networkID, kind, localID)
	if err != nil {
		return "", err
	}
	return origin.RemoteID, nil
}

// RemoveOrigin forgets the mapping for a local record on one network.
// Used after a remote delete succeeds so a re-push creates the object fresh.
func (s *Store) RemoveOrigin(ctx context.Context, networkID string, kind OriginKind, localID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM origins WHERE network_id = ? AND kind = ? AND local_id = ?`,
		networkID, string(kind), localID,
	)
	if err != nil {
		return fmt.Errorf("deleting origin: %w", err)
	}
	return nil
}

// originByLocal loads the origin row for a local record on one network.
func (s *Store) originByLocal(ctx context.Context, networkID string, kind OriginKind, localID string) (*Origin, error) {
	var o Origin
	var kindStr, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, network_id, kind, local_id, remote_id, created_at, updated_at
		FROM origins
		WHERE network_id = ? AND kind = ? AND local_id = ?`,
		networkID, string(kind), localID,
	).Scan(&o.ID, &o.NetworkID, &kindStr, &o.LocalID, &o.RemoteID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying origin: %w", err)
	}
	o.Kind = OriginKind(kindStr)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &o, nil
}

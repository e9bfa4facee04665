package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// pushTargets returns the networks of one type that are both enabled and
// authorized. Networks outside this set never see pushes; local CRUD does
// not wait for them.
func (m *Manager) pushTargets(ctx context.Context, networkTypeID string) ([]store.Network, error) {
	networks, err := m.store.ListNetworksByType(ctx, networkTypeID)
	if err != nil {
		return nil, err
	}
	targets := networks[:0]
	for _, n := range networks {
		if n.SyncReady() {
			targets = append(targets, n)
		}
	}
	return targets, nil
}

// pushOp mirrors one entity to one network, reporting which operation ran
// and the remote ID it touched.
type pushOp func(ctx context.Context, network *store.Network) (operation, remoteID string, err error)

// fanOut runs op against every target concurrently and collects one access
// log per network. Individual failures never abort the fan-out; they are
// reported in the log entry.
func (m *Manager) fanOut(ctx context.Context, targets []store.Network, entity string, op pushOp) []RemoteAccessLog {
	logs := make([]RemoteAccessLog, len(targets))

	var g errgroup.Group
	for i := range targets {
		g.Go(func() error {
			network := &targets[i]
			start := time.Now()
			operation, remoteID, err := op(ctx, network)
			m.metrics.RecordPush(network.ID, entity, operation, time.Since(start), err)

			entry := RemoteAccessLog{
				NetworkID:   network.ID,
				NetworkName: network.Name,
				Entity:      entity,
				Operation:   operation,
				RemoteID:    remoteID,
				Success:     err == nil,
				LoggedAt:    time.Now().UTC(),
			}
			if err != nil {
				entry.Message = err.Error()
				m.logger.Warn("push failed",
					"network_id", network.ID, "entity", entity,
					"operation", operation, "error", err)
			}
			logs[i] = entry
			return nil
		})
	}
	g.Wait()
	return logs
}

// PushApplication mirrors an application to every eligible network of each
// network type it is linked to. Returns per-network outcomes.
func (m *Manager) PushApplication(ctx context.Context, applicationID string) ([]RemoteAccessLog, error) {
	app, err := m.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	links, err := m.store.ListApplicationLinks(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	var all []RemoteAccessLog
	for i := range links {
		link := links[i]
		if !link.Enabled {
			continue
		}
		targets, err := m.pushTargets(ctx, link.NetworkTypeID)
		if err != nil {
			return nil, err
		}
		all = append(all, m.fanOut(ctx, targets, EntityApplication,
			func(ctx context.Context, network *store.Network) (string, string, error) {
				return m.pushApplicationTo(ctx, network, app, &link)
			})...)
	}
	return all, nil
}

func (m *Manager) pushApplicationTo(ctx context.Context, network *store.Network, app *store.Application, link *store.ApplicationNetworkTypeLink) (string, string, error) {
	remoteID, err := m.store.RemoteID(ctx, network.ID, store.OriginApplication, app.ID)
	switch {
	case err == nil:
		err = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			return h.UpdateApplication(cctx, network, s, remoteID, app, link)
		})
		return OpUpdate, remoteID, err

	case errors.Is(err, store.ErrNotFound):
		var createdID string
		err = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			var err error
			createdID, err = h.CreateApplication(cctx, network, s, app, link)
			return err
		})
		if err != nil {
			return OpCreate, "", err
		}
		if createdID != "" {
			if err := m.store.SetOrigin(ctx, network.ID, store.OriginApplication, app.ID, createdID); err != nil {
				return OpCreate, createdID, fmt.Errorf("recording origin: %w", err)
			}
		}
		return OpCreate, createdID, nil

	default:
		return OpCreate, "", err
	}
}

// PushApplicationDelete removes the remote counterparts of an application
// everywhere one is recorded. Callers delete the local record afterwards.
func (m *Manager) PushApplicationDelete(ctx context.Context, applicationID string) ([]RemoteAccessLog, error) {
	return m.pushDelete(ctx, store.OriginApplication, EntityApplication, applicationID,
		func(ctx context.Context, network *store.Network, h handlers.Handler, s *handlers.Session, remoteID string) error {
			return h.DeleteApplication(ctx, network, s, remoteID)
		})
}

// PushDeviceProfile mirrors a device profile to every eligible network of
// its network type.
func (m *Manager) PushDeviceProfile(ctx context.Context, profileID string) ([]RemoteAccessLog, error) {
	profile, err := m.store.GetDeviceProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	targets, err := m.pushTargets(ctx, profile.NetworkTypeID)
	if err != nil {
		return nil, err
	}
	return m.fanOut(ctx, targets, EntityDeviceProfile,
		func(ctx context.Context, network *store.Network) (string, string, error) {
			return m.pushDeviceProfileTo(ctx, network, profile)
		}), nil
}

func (m *Manager) pushDeviceProfileTo(ctx context.Context, network *store.Network, profile *store.DeviceProfile) (string, string, error) {
	remoteID, err := m.store.RemoteID(ctx, network.ID, store.OriginDeviceProfile, profile.ID)
	switch {
	case err == nil:
		err = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			return h.UpdateDeviceProfile(cctx, network, s, remoteID, profile)
		})
		return OpUpdate, remoteID, err

	case errors.Is(err, store.ErrNotFound):
		var createdID string
		err = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			var err error
			createdID, err = h.CreateDeviceProfile(cctx, network, s, profile)
			return err
		})
		if err != nil {
			return OpCreate, "", err
		}
		// An empty ID means the vendor has no profile concept; there is
		// nothing to correlate.
		if createdID != "" {
			if err := m.store.SetOrigin(ctx, network.ID, store.OriginDeviceProfile, profile.ID, createdID); err != nil {
				return OpCreate, createdID, fmt.Errorf("recording origin: %w", err)
			}
		}
		return OpCreate, createdID, nil

	default:
		return OpCreate, "", err
	}
}

// PushDeviceProfileDelete removes the remote counterparts of a device
// profile everywhere one is recorded.
func (m *Manager) PushDeviceProfileDelete(ctx context.Context, profileID string) ([]RemoteAccessLog, error) {
	return m.pushDelete(ctx, store.OriginDeviceProfile, EntityDeviceProfile, profileID,
		func(ctx context.Context, network *store.Network, h handlers.Handler, s *handlers.Session, remoteID string) error {
			return h.DeleteDeviceProfile(ctx, network, s, remoteID)
		})
}

// PushDevice mirrors a device to every eligible network of each network
// type it is linked to. A device can only land on networks that already
// carry its application.
func (m *Manager) PushDevice(ctx context.Context, deviceID string) ([]RemoteAccessLog, error) {
	dev, err := m.store.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	links, err := m.store.ListDeviceLinks(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	var all []RemoteAccessLog
	for i := range links {
		link := links[i]
		if !link.Enabled {
			continue
		}
		targets, err := m.pushTargets(ctx, link.NetworkTypeID)
		if err != nil {
			return nil, err
		}
		all = append(all, m.fanOut(ctx, targets, EntityDevice,
			func(ctx context.Context, network *store.Network) (string, string, error) {
				return m.pushDeviceTo(ctx, network, dev, &link)
			})...)
	}
	return all, nil
}

func (m *Manager) pushDeviceTo(ctx context.Context, network *store.Network, dev *store.Device, link *store.DeviceNetworkTypeLink) (string, string, error) {
	appRemoteID, err := m.store.RemoteID(ctx, network.ID, store.OriginApplication, dev.ApplicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return OpCreate, "", fmt.Errorf("application not mirrored on this network")
		}
		return OpCreate, "", err
	}

	var profileRemoteID string
	if link.DeviceProfileID != nil {
		profileRemoteID, err = m.store.RemoteID(ctx, network.ID, store.OriginDeviceProfile, *link.DeviceProfileID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return OpCreate, "", err
		}
	}

	remoteID, err := m.store.RemoteID(ctx, network.ID, store.OriginDevice, dev.ID)
	switch {
	case err == nil:
		err = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			return h.UpdateDevice(cctx, network, s, remoteID, profileRemoteID, dev, link)
		})
		return OpUpdate, remoteID, err

	case errors.Is(err, store.ErrNotFound):
		var createdID string
		err = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			var err error
			createdID, err = h.CreateDevice(cctx, network, s, appRemoteID, profileRemoteID, dev, link)
			return err
		})
		if err != nil {
			return OpCreate, "", err
		}
		if createdID != "" {
			if err := m.store.SetOrigin(ctx, network.ID, store.OriginDevice, dev.ID, createdID); err != nil {
				return OpCreate, createdID, fmt.Errorf("recording origin: %w", err)
			}
		}
		return OpCreate, createdID, nil

	default:
		return OpCreate, "", err
	}
}

// PushDeviceDelete removes the remote counterparts of a device everywhere
// one is recorded.
func (m *Manager) PushDeviceDelete(ctx context.Context, deviceID string) ([]RemoteAccessLog, error) {
	return m.pushDelete(ctx, store.OriginDevice, EntityDevice, deviceID,
		func(ctx context.Context, network *store.Network, h handlers.Handler, s *handlers.Session, remoteID string) error {
			return h.DeleteDevice(ctx, network, s, remoteID)
		})
}

// pushDelete fans a delete out to every network holding an origin for the
// local record, removing each origin as its remote delete succeeds. A
// remote that already lost the object counts as success.
func (m *Manager) pushDelete(ctx context.Context, kind store.OriginKind, entity, localID string,
	del func(ctx context.Context, network *store.Network, h handlers.Handler, s *handlers.Session, remoteID string) error,
) ([]RemoteAccessLog, error) {
	networks, err := m.store.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}

	var targets []store.Network
	remoteIDs := map[string]string{}
	for _, n := range networks {
		remoteID, err := m.store.RemoteID(ctx, n.ID, kind, localID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		targets = append(targets, n)
		remoteIDs[n.ID] = remoteID
	}

	return m.fanOut(ctx, targets, entity,
		func(ctx context.Context, network *store.Network) (string, string, error) {
			remoteID := remoteIDs[network.ID]
			err := m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
				cctx, cancel := m.callCtx(ctx)
				defer cancel()
				return del(cctx, network, h, s, remoteID)
			})
			if err != nil && !errors.Is(err, handlers.ErrNotFound) {
				return OpDelete, remoteID, err
			}
			if err := m.store.RemoveOrigin(ctx, network.ID, kind, localID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return OpDelete, remoteID, fmt.Errorf("removing origin: %w", err)
			}
			return OpDelete, remoteID, nil
		}), nil
}

// PushNetwork mirrors every linked canonical object of the network's type
// onto one network: device profiles first, then applications, then
// devices. Used when a network first becomes authorized.
func (m *Manager) PushNetwork(ctx context.Context, networkID string) ([]RemoteAccessLog, error) {
	network, err := m.store.GetNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}
	if !network.SyncReady() {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, network.Name)
	}

	var logs []RemoteAccessLog
	record := func(entity, operation, remoteID string, err error) {
		entry := RemoteAccessLog{
			NetworkID:   network.ID,
			NetworkName: network.Name,
			Entity:      entity,
			Operation:   operation,
			RemoteID:    remoteID,
			Success:     err == nil,
			LoggedAt:    time.Now().UTC(),
		}
		if err != nil {
			entry.Message = err.Error()
		}
		logs = append(logs, entry)
	}

	profiles, err := m.store.ListDeviceProfilesByType(ctx, network.NetworkTypeID)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		op, remoteID, err := m.pushDeviceProfileTo(ctx, network, &profiles[i])
		record(EntityDeviceProfile, op, remoteID, err)
	}

	appLinks, err := m.store.ListApplicationLinksByType(ctx, network.NetworkTypeID)
	if err != nil {
		return nil, err
	}
	for i := range appLinks {
		link := appLinks[i]
		if !link.Enabled {
			continue
		}
		app, err := m.store.GetApplication(ctx, link.ApplicationID)
		if err != nil {
			return nil, err
		}
		op, remoteID, err := m.pushApplicationTo(ctx, network, app, &link)
		record(EntityApplication, op, remoteID, err)
	}

	devLinks, err := m.store.ListDeviceLinksByType(ctx, network.NetworkTypeID)
	if err != nil {
		return nil, err
	}
	for i := range devLinks {
		link := devLinks[i]
		if !link.Enabled {
			continue
		}
		dev, err := m.store.GetDevice(ctx, link.DeviceID)
		if err != nil {
			return nil, err
		}
		op, remoteID, err := m.pushDeviceTo(ctx, network, dev, &link)
		record(EntityDevice, op, remoteID, err)
	}

	m.logger.Info("network push complete",
		"network_id", network.ID, "name", network.Name, "operations", len(logs))
	return logs, nil
}

// PushNetworks runs PushNetwork against every eligible network of one
// network type.
func (m *Manager) PushNetworks(ctx context.Context, networkTypeID string) ([]RemoteAccessLog, error) {
	targets, err := m.pushTargets(ctx, networkTypeID)
	if err != nil {
		return nil, err
	}

	var all []RemoteAccessLog
	for _, n := range targets {
		logs, err := m.PushNetwork(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		all = append(all, logs...)
	}
	return all, nil
}

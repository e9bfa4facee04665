package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// PullNetwork imports everything one remote network exposes: applications
// (with their owning companies), device profiles, then devices. Running it
// twice is a no-op apart from fields the remote changed in between; origin
// tracking guarantees no duplicates.
func (m *Manager) PullNetwork(ctx context.Context, networkID string) (*PullResult, error) {
	network, err := m.store.GetNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}
	if !network.SyncReady() {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, network.Name)
	}

	start := time.Now()
	result := &PullResult{NetworkID: network.ID}
	err = m.pull(ctx, network, result)
	m.metrics.RecordPull(network.ID, result, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("pulling network %s: %w", network.Name, err)
	}

	m.logger.Info("network pull complete",
		"network_id", network.ID, "name", network.Name,
		"companies", result.Companies, "applications", result.Applications,
		"device_profiles", result.DeviceProfiles, "devices", result.Devices,
		"created", result.Created, "skipped", result.Skipped,
		"failures", len(result.Failures), "duration", time.Since(start))
	return result, nil
}

// pulledApp pairs a remote application with the canonical record it
// resolved to, for the device stage.
type pulledApp struct {
	remoteID string
	localID  string
}

func (m *Manager) pull(ctx context.Context, network *store.Network, result *PullResult) error {
	// Applications and device profiles are independent; fetch them in
	// parallel. Devices wait for both, since a device references its
	// application and possibly a profile. A failed remote read marks its
	// branch in the result and the remaining branches import regardless:
	// the pull errors only when a local write fails.
	var remoteApps []handlers.RemoteApplication
	var remoteProfiles []handlers.RemoteDeviceProfile
	var appsErr, profilesErr error

	var g errgroup.Group
	g.Go(func() error {
		appsErr = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			var err error
			remoteApps, err = h.PullApplications(cctx, network, s)
			return err
		})
		return nil
	})
	g.Go(func() error {
		profilesErr = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
			cctx, cancel := m.callCtx(ctx)
			defer cancel()
			var err error
			remoteProfiles, err = h.PullDeviceProfiles(cctx, network, s)
			return err
		})
		return nil
	})
	_ = g.Wait() //nolint:errcheck // branches record their outcomes above

	if profilesErr != nil {
		m.recordPullFailure(result, network, "device_profiles", "", profilesErr)
	} else if err := m.importProfiles(ctx, network, remoteProfiles, result); err != nil {
		return err
	}

	if appsErr != nil {
		// Devices hang off applications, so this branch takes the device
		// stage down with it. The profile import above already landed.
		m.recordPullFailure(result, network, "applications", "", appsErr)
		return nil
	}

	apps, err := m.importApplications(ctx, network, remoteApps, result)
	if err != nil {
		return err
	}

	return m.importDevices(ctx, network, apps, result)
}

// recordPullFailure marks one remote read branch as failed without
// aborting the pull.
func (m *Manager) recordPullFailure(result *PullResult, network *store.Network, stage, remoteID string, err error) {
	m.logger.Warn("pull branch failed",
		"network_id", network.ID, "stage", stage, "remote_id", remoteID, "error", err)
	result.Failures = append(result.Failures, PullFailure{
		Stage:    stage,
		RemoteID: remoteID,
		Message:  err.Error(),
	})
}

func (m *Manager) importProfiles(ctx context.Context, network *store.Network, remotes []handlers.RemoteDeviceProfile, result *PullResult) error {
	for _, r := range remotes {
		incoming := r.Profile
		if incoming.NetworkTypeID == "" {
			incoming.NetworkTypeID = network.NetworkTypeID
		}
		_, created, err := m.store.UpsertDeviceProfileByOrigin(ctx, network.ID, r.RemoteID, &incoming)
		if err != nil {
			return fmt.Errorf("importing device profile %s: %w", r.RemoteID, err)
		}
		result.DeviceProfiles++
		if created {
			result.Created++
		}
	}
	return nil
}

func (m *Manager) importApplications(ctx context.Context, network *store.Network, remotes []handlers.RemoteApplication, result *PullResult) ([]pulledApp, error) {
	apps := make([]pulledApp, 0, len(remotes))
	for _, r := range remotes {
		incoming := r.Application

		// An application reporting into this system's own ingest endpoint
		// for this very network is our own push mirror coming back at us.
		// Carrying that URL over would make the network a source of its own
		// pushes, so the URL is dropped; everything else about the
		// application still imports, and an existing local report URL stays
		// untouched by the upsert.
		if incoming.BaseURL != "" && strings.Contains(incoming.BaseURL, network.ID) {
			m.logger.Warn("dropping self-referential report url",
				"network_id", network.ID, "remote_id", r.RemoteID, "base_url", incoming.BaseURL)
			incoming.BaseURL = ""
		}

		if r.CompanyRemoteID != "" && r.CompanyName != "" {
			company, created, err := m.store.UpsertCompanyByOrigin(ctx, network.ID, r.CompanyRemoteID,
				&store.Company{Name: r.CompanyName})
			if err != nil {
				return nil, fmt.Errorf("importing company %s: %w", r.CompanyName, err)
			}
			incoming.CompanyID = &company.ID
			result.Companies++
			if created {
				result.Created++
			}
		}

		// Remote applications that report somewhere deliver over HTTP POST;
		// the canonical record carries that as its reporting protocol.
		if incoming.BaseURL != "" {
			rp, err := m.store.GetReportingProtocolByName(ctx, "POST")
			if err != nil {
				return nil, fmt.Errorf("resolving POST reporting protocol: %w", err)
			}
			incoming.ReportingProtocolID = &rp.ID
		}

		app, created, err := m.store.UpsertApplicationByOrigin(ctx, network.ID, r.RemoteID, &incoming)
		if err != nil {
			return nil, fmt.Errorf("importing application %s: %w", r.RemoteID, err)
		}
		if _, err := m.store.UpsertApplicationLink(ctx, &store.ApplicationNetworkTypeLink{
			ApplicationID:   app.ID,
			NetworkTypeID:   network.NetworkTypeID,
			NetworkSettings: r.Settings,
			Enabled:         true,
		}); err != nil {
			return nil, fmt.Errorf("linking application %s: %w", app.ID, err)
		}

		result.Applications++
		if created {
			result.Created++
		}
		apps = append(apps, pulledApp{remoteID: r.RemoteID, localID: app.ID})
	}
	return apps, nil
}

func (m *Manager) importDevices(ctx context.Context, network *store.Network, apps []pulledApp, result *PullResult) error {
	// Fetch per-application device lists in parallel, then import
	// sequentially so counters and origin writes stay ordered. An
	// application whose device list cannot be read is marked failed; its
	// siblings import as usual.
	lists := make([][]handlers.RemoteDevice, len(apps))
	fetchErrs := make([]error, len(apps))

	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, app := range apps {
		g.Go(func() error {
			fetchErrs[i] = m.withSession(ctx, network, func(h handlers.Handler, s *handlers.Session) error {
				cctx, cancel := m.callCtx(ctx)
				defer cancel()
				var err error
				lists[i], err = h.PullDevices(cctx, network, s, app.remoteID)
				return err
			})
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // branches record their outcomes above

	for i, app := range apps {
		if fetchErrs[i] != nil {
			m.recordPullFailure(result, network, "devices", app.remoteID, fetchErrs[i])
			continue
		}
		for _, r := range lists[i] {
			var profileID *string
			if r.ProfileRemoteID != "" {
				localID, err := m.store.LocalID(ctx, network.ID, store.OriginDeviceProfile, r.ProfileRemoteID)
				switch {
				case err == nil:
					profileID = &localID
				case errors.Is(err, store.ErrNotFound):
					// The profile was not part of this pull and has never
					// been seen before; importing the device would leave a
					// dangling reference.
					m.logger.Warn("skipping device with unresolved profile",
						"network_id", network.ID, "remote_id", r.RemoteID,
						"profile_remote_id", r.ProfileRemoteID)
					result.Skipped++
					continue
				default:
					return fmt.Errorf("resolving device profile %s: %w", r.ProfileRemoteID, err)
				}
			}

			incoming := r.Device
			incoming.ApplicationID = app.localID
			dev, created, err := m.store.UpsertDeviceByOrigin(ctx, network.ID, r.RemoteID, &incoming)
			if err != nil {
				return fmt.Errorf("importing device %s: %w", r.RemoteID, err)
			}
			if _, err := m.store.UpsertDeviceLink(ctx, &store.DeviceNetworkTypeLink{
				DeviceID:        dev.ID,
				NetworkTypeID:   network.NetworkTypeID,
				DeviceProfileID: profileID,
				NetworkSettings: r.Settings,
				Enabled:         true,
			}); err != nil {
				return fmt.Errorf("linking device %s: %w", dev.ID, err)
			}

			result.Devices++
			if created {
				result.Created++
			}
		}
	}
	return nil
}

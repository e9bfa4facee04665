package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	stdsync "sync"
	"testing"

	_ "github.com/nerrad567/fleetwan-core/migrations"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/database"
	"github.com/nerrad567/fleetwan-core/internal/session"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// fakeHandler serves scripted pull data and records push calls.
type fakeHandler struct {
	apps     []handlers.RemoteApplication
	profiles []handlers.RemoteDeviceProfile
	devices  map[string][]handlers.RemoteDevice

	pullAppsErr    error
	pullDevicesErr map[string]error // keyed by application remote ID
	pushErr        map[string]error // keyed by network name

	mu      stdsync.Mutex // push fans out across networks concurrently
	nextID  int
	created []string
	updated []string
	deleted []string
}

func (f *fakeHandler) Login(context.Context, *store.Network) (*handlers.Session, error) {
	return &handlers.Session{Token: "fake"}, nil
}
func (f *fakeHandler) Test(context.Context, *store.Network, *handlers.Session) error { return nil }
func (f *fakeHandler) PullApplications(context.Context, *store.Network, *handlers.Session) ([]handlers.RemoteApplication, error) {
	if f.pullAppsErr != nil {
		return nil, f.pullAppsErr
	}
	return f.apps, nil
}
func (f *fakeHandler) PullDeviceProfiles(context.Context, *store.Network, *handlers.Session) ([]handlers.RemoteDeviceProfile, error) {
	return f.profiles, nil
}
func (f *fakeHandler) PullDevices(_ context.Context, _ *store.Network, _ *handlers.Session, appRemoteID string) ([]handlers.RemoteDevice, error) {
	if err := f.pullDevicesErr[appRemoteID]; err != nil {
		return nil, err
	}
	return f.devices[appRemoteID], nil
}
func (f *fakeHandler) CreateApplication(_ context.Context, n *store.Network, _ *handlers.Session, app *store.Application, _ *store.ApplicationNetworkTypeLink) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pushErr[n.Name]; err != nil {
		return "", err
	}
	f.nextID++
	f.created = append(f.created, "app:"+app.Name)
	return fmt.Sprintf("remote-app-%d", f.nextID), nil
}
func (f *fakeHandler) UpdateApplication(_ context.Context, n *store.Network, _ *handlers.Session, remoteID string, app *store.Application, _ *store.ApplicationNetworkTypeLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pushErr[n.Name]; err != nil {
		return err
	}
	f.updated = append(f.updated, "app:"+remoteID)
	return nil
}
func (f *fakeHandler) DeleteApplication(_ context.Context, _ *store.Network, _ *handlers.Session, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "app:"+remoteID)
	return nil
}
func (f *fakeHandler) CreateDeviceProfile(_ context.Context, _ *store.Network, _ *handlers.Session, profile *store.DeviceProfile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created = append(f.created, "profile:"+profile.Name)
	return fmt.Sprintf("remote-dp-%d", f.nextID), nil
}
func (f *fakeHandler) UpdateDeviceProfile(_ context.Context, _ *store.Network, _ *handlers.Session, remoteID string, _ *store.DeviceProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, "profile:"+remoteID)
	return nil
}
func (f *fakeHandler) DeleteDeviceProfile(_ context.Context, _ *store.Network, _ *handlers.Session, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "profile:"+remoteID)
	return nil
}
func (f *fakeHandler) CreateDevice(_ context.Context, _ *store.Network, _ *handlers.Session, appRemoteID, _ string, dev *store.Device, _ *store.DeviceNetworkTypeLink) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created = append(f.created, "device:"+dev.Name+"@"+appRemoteID)
	return fmt.Sprintf("remote-dev-%d", f.nextID), nil
}
func (f *fakeHandler) UpdateDevice(_ context.Context, _ *store.Network, _ *handlers.Session, remoteID, _ string, _ *store.Device, _ *store.DeviceNetworkTypeLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, "device:"+remoteID)
	return nil
}
func (f *fakeHandler) DeleteDevice(_ context.Context, _ *store.Network, _ *handlers.Session, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "device:"+remoteID)
	return nil
}

type testEnv struct {
	store   *store.Store
	manager *Manager
	handler *fakeHandler
}

func setupManager(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	st := store.New(db.DB)
	fake := &fakeHandler{devices: map[string][]handlers.RemoteDevice{}}

	registry := handlers.NewRegistry()
	registry.Register("LoRa Server", "1.0", fake)

	coord := session.NewCoordinator(st, registry)
	return &testEnv{
		store:   st,
		manager: NewManager(st, coord, WithConcurrency(4)),
		handler: fake,
	}
}

// createNetwork persists a ready-to-sync LoRa network.
func createNetwork(t *testing.T, st *store.Store, name string, ready bool) *store.Network {
	t.Helper()
	n := &store.Network{
		Name:              name,
		NetworkProtocolID: "np-loraserver-v1",
		NetworkTypeID:     "nt-lora",
		BaseURL:           "https://" + name + ".example.com/api",
		SecurityData: store.SecurityData{
			Username: "admin", Password: "secret",
			Status: store.SecurityAuthorized, Authorized: ready, Enabled: ready,
		},
	}
	if err := st.CreateNetwork(context.Background(), n); err != nil {
		t.Fatalf("failed to create network: %v", err)
	}
	return n
}

// scriptedPull loads the fake handler with one company, one application,
// one profile, and one device.
func scriptedPull(f *fakeHandler) {
	f.apps = []handlers.RemoteApplication{{
		RemoteID:        "10",
		CompanyRemoteID: "2",
		CompanyName:     "cablelabs",
		Application: store.Application{
			Name:        "BobMouseTrapLv1",
			Description: "mouse trap telemetry",
			BaseURL:     "https://report.example.com/uplinks",
		},
		Settings: store.Settings{"organizationID": "2"},
	}}
	f.profiles = []handlers.RemoteDeviceProfile{{
		RemoteID: "dp-1",
		Profile: store.DeviceProfile{
			Name:            "BobMouseTrapDeviceProfileLv1",
			NetworkSettings: store.Settings{"macVersion": "1.0.3"},
		},
	}}
	f.devices = map[string][]handlers.RemoteDevice{
		"10": {{
			RemoteID:        "0080000000000101",
			ProfileRemoteID: "dp-1",
			Device:          store.Device{Name: "BobMouseTrapDeviceLv1"},
			Settings:        store.Settings{"devEUI": "0080000000000101"},
		}},
	}
}

func TestPullNetwork(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "LocalLoraOS1_0", true)
	scriptedPull(env.handler)

	result, err := env.manager.PullNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("PullNetwork() error = %v", err)
	}
	if result.Companies != 1 || result.Applications != 1 || result.DeviceProfiles != 1 || result.Devices != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Created != 4 {
		t.Errorf("Created = %d, want 4 on first pull", result.Created)
	}

	company, err := env.store.GetCompanyByName(ctx, "cablelabs")
	if err != nil {
		t.Fatalf("company was not imported: %v", err)
	}

	apps, err := env.store.ListApplications(ctx)
	if err != nil || len(apps) != 1 {
		t.Fatalf("applications = %d (%v), want 1", len(apps), err)
	}
	app := apps[0]
	if app.CompanyID == nil || *app.CompanyID != company.ID {
		t.Error("application not attached to the imported company")
	}
	if app.ReportingProtocolID == nil {
		t.Error("application with a reporting URL did not resolve the POST protocol")
	}

	link, err := env.store.GetApplicationLink(ctx, app.ID, "nt-lora")
	if err != nil {
		t.Fatalf("application link missing: %v", err)
	}
	if link.NetworkSettings["organizationID"] != "2" {
		t.Errorf("link settings = %v", link.NetworkSettings)
	}

	devices, err := env.store.ListApplicationDevices(ctx, app.ID)
	if err != nil || len(devices) != 1 {
		t.Fatalf("devices = %d (%v), want 1", len(devices), err)
	}
	devLink, err := env.store.GetDeviceLink(ctx, devices[0].ID, "nt-lora")
	if err != nil {
		t.Fatalf("device link missing: %v", err)
	}
	if devLink.DeviceProfileID == nil {
		t.Error("device link did not resolve the pulled profile")
	}
}

func TestPullNetworkIdempotent(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "LocalLoraOS1_0", true)
	scriptedPull(env.handler)

	if _, err := env.manager.PullNetwork(ctx, network.ID); err != nil {
		t.Fatalf("first PullNetwork() error = %v", err)
	}
	second, err := env.manager.PullNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("second PullNetwork() error = %v", err)
	}
	if second.Created != 0 {
		t.Errorf("second pull Created = %d, want 0", second.Created)
	}

	apps, _ := env.store.ListApplications(ctx)
	companies, _ := env.store.ListCompanies(ctx)
	profiles, _ := env.store.ListDeviceProfiles(ctx)
	if len(apps) != 1 || len(companies) != 1 || len(profiles) != 1 {
		t.Errorf("duplicates after second pull: apps=%d companies=%d profiles=%d",
			len(apps), len(companies), len(profiles))
	}
}

func TestPullDropsSelfReferentialReportURL(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "LocalLoraOS1_0", true)

	// The application already exists locally with its own report URL; the
	// remote mirror comes back renamed and reporting into our own ingest
	// endpoint for this network.
	local := &store.Application{Name: "old-name", BaseURL: "https://local.example/report"}
	if err := env.store.CreateApplication(ctx, local); err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	if err := env.store.SetOrigin(ctx, network.ID, store.OriginApplication, local.ID, "66"); err != nil {
		t.Fatalf("SetOrigin() error = %v", err)
	}

	env.handler.apps = []handlers.RemoteApplication{{
		RemoteID: "66",
		Application: store.Application{
			Name:    "renamed-mirror",
			BaseURL: "https://fleet.example.com/api/v1/ingest/66/" + network.ID,
		},
	}}
	env.handler.devices = map[string][]handlers.RemoteDevice{
		"66": {{
			RemoteID: "00aa",
			Device:   store.Device{Name: "trap-1"},
		}},
	}

	result, err := env.manager.PullNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("PullNetwork() error = %v", err)
	}
	if result.Applications != 1 || result.Skipped != 0 || result.Devices != 1 {
		t.Errorf("result = %+v, want the application and its device imported", result)
	}

	app, err := env.store.GetApplication(ctx, local.ID)
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if app.Name != "renamed-mirror" {
		t.Errorf("Name = %q, want the remote rename applied", app.Name)
	}
	if app.BaseURL != "https://local.example/report" {
		t.Errorf("BaseURL = %q, want the local report URL untouched", app.BaseURL)
	}
}

func TestPullPersistsSiblingsWhenDeviceListFails(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "LocalLoraOS1_0", true)

	env.handler.apps = []handlers.RemoteApplication{
		{RemoteID: "10", Application: store.Application{Name: "app-a"}},
		{RemoteID: "11", Application: store.Application{Name: "app-b"}},
	}
	env.handler.devices = map[string][]handlers.RemoteDevice{
		"10": {{RemoteID: "aa01", Device: store.Device{Name: "sensor-a"}}},
		"11": {{RemoteID: "bb01", Device: store.Device{Name: "sensor-b"}}},
	}
	env.handler.pullDevicesErr = map[string]error{
		"10": fmt.Errorf("%w: list devices: status 502", handlers.ErrRemote),
	}

	result, err := env.manager.PullNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("PullNetwork() error = %v", err)
	}
	if result.Applications != 2 || result.Devices != 1 {
		t.Errorf("result = %+v, want both apps and the healthy app's device", result)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("failures = %+v, want one", result.Failures)
	}
	failure := result.Failures[0]
	if failure.Stage != "devices" || failure.RemoteID != "10" || failure.Message == "" {
		t.Errorf("failure = %+v", failure)
	}

	apps, err := env.store.ListApplications(ctx)
	if err != nil {
		t.Fatalf("ListApplications() error = %v", err)
	}
	for _, app := range apps {
		devices, err := env.store.ListApplicationDevices(ctx, app.ID)
		if err != nil {
			t.Fatalf("ListApplicationDevices() error = %v", err)
		}
		switch app.Name {
		case "app-a":
			if len(devices) != 0 {
				t.Errorf("app-a devices = %d, want 0", len(devices))
			}
		case "app-b":
			if len(devices) != 1 {
				t.Errorf("app-b devices = %d, want 1", len(devices))
			}
		}
	}
}

func TestPullContinuesWhenApplicationListFails(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "LocalLoraOS1_0", true)
	scriptedPull(env.handler)
	env.handler.pullAppsErr = fmt.Errorf("%w: list applications: status 502", handlers.ErrRemote)

	result, err := env.manager.PullNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("PullNetwork() error = %v", err)
	}
	if result.DeviceProfiles != 1 {
		t.Errorf("DeviceProfiles = %d, want the profile import to land", result.DeviceProfiles)
	}
	if result.Applications != 0 || result.Devices != 0 {
		t.Errorf("result = %+v, want no applications or devices", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].Stage != "applications" {
		t.Errorf("failures = %+v, want one applications-stage entry", result.Failures)
	}
}

func TestPullSkipsDeviceWithUnresolvedProfile(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "LocalLoraOS1_0", true)

	env.handler.apps = []handlers.RemoteApplication{{
		RemoteID:    "10",
		Application: store.Application{Name: "app"},
	}}
	env.handler.devices = map[string][]handlers.RemoteDevice{
		"10": {{
			RemoteID:        "aa",
			ProfileRemoteID: "dp-missing",
			Device:          store.Device{Name: "orphan"},
		}},
	}

	result, err := env.manager.PullNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("PullNetwork() error = %v", err)
	}
	if result.Devices != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want the orphan device skipped", result)
	}
}

func TestPullNetworkNotReady(t *testing.T) {
	env := setupManager(t)
	network := createNetwork(t, env.store, "disabled-net", false)

	if _, err := env.manager.PullNetwork(context.Background(), network.ID); !errors.Is(err, ErrNotReady) {
		t.Errorf("PullNetwork() error = %v, want ErrNotReady", err)
	}
}

func TestPushApplicationCreateThenUpdate(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "target-net", true)

	app := &store.Application{Name: "pumphouse"}
	if err := env.store.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	if _, err := env.store.UpsertApplicationLink(ctx, &store.ApplicationNetworkTypeLink{
		ApplicationID: app.ID,
		NetworkTypeID: "nt-lora",
		Enabled:       true,
	}); err != nil {
		t.Fatalf("UpsertApplicationLink() error = %v", err)
	}

	logs, err := env.manager.PushApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("PushApplication() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d entries, want 1", len(logs))
	}
	if !logs[0].Success || logs[0].Operation != OpCreate {
		t.Errorf("first push log = %+v", logs[0])
	}

	remoteID, err := env.store.RemoteID(ctx, network.ID, store.OriginApplication, app.ID)
	if err != nil {
		t.Fatalf("origin not recorded after push: %v", err)
	}

	logs, err = env.manager.PushApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("second PushApplication() error = %v", err)
	}
	if logs[0].Operation != OpUpdate || logs[0].RemoteID != remoteID {
		t.Errorf("second push log = %+v, want update of %s", logs[0], remoteID)
	}
	if len(env.handler.created) != 1 || len(env.handler.updated) != 1 {
		t.Errorf("handler calls: created=%v updated=%v", env.handler.created, env.handler.updated)
	}
}

func TestPushSkipsUnreadyNetworks(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	createNetwork(t, env.store, "ready-net", true)
	createNetwork(t, env.store, "pending-net", false)

	app := &store.Application{Name: "selective"}
	env.store.CreateApplication(ctx, app)
	env.store.UpsertApplicationLink(ctx, &store.ApplicationNetworkTypeLink{
		ApplicationID: app.ID, NetworkTypeID: "nt-lora", Enabled: true,
	})

	logs, err := env.manager.PushApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("PushApplication() error = %v", err)
	}
	if len(logs) != 1 || logs[0].NetworkName != "ready-net" {
		t.Errorf("logs = %+v, want only the ready network", logs)
	}
}

func TestPushReportsPerNetworkFailure(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	createNetwork(t, env.store, "alpha", true)
	beta := createNetwork(t, env.store, "beta", true)
	createNetwork(t, env.store, "gamma", true)

	env.handler.pushErr = map[string]error{
		"beta": fmt.Errorf("%w: create application: status 502", handlers.ErrRemote),
	}

	app := &store.Application{Name: "pumphouse"}
	if err := env.store.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	if _, err := env.store.UpsertApplicationLink(ctx, &store.ApplicationNetworkTypeLink{
		ApplicationID: app.ID, NetworkTypeID: "nt-lora", Enabled: true,
	}); err != nil {
		t.Fatalf("UpsertApplicationLink() error = %v", err)
	}

	logs, err := env.manager.PushApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("PushApplication() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("logs = %d entries, want one per ready network", len(logs))
	}
	var failed, succeeded int
	for _, entry := range logs {
		if entry.Success {
			succeeded++
			continue
		}
		failed++
		if entry.NetworkName != "beta" || entry.Message == "" {
			t.Errorf("failed entry = %+v, want beta with a message", entry)
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("failed=%d succeeded=%d, want 1 and 2", failed, succeeded)
	}
	if _, err := env.store.RemoteID(ctx, beta.ID, store.OriginApplication, app.ID); !errors.Is(err, store.ErrNotFound) {
		t.Error("failed push recorded an origin for beta")
	}
}

func TestPushDeviceRequiresMirroredApplication(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	createNetwork(t, env.store, "target-net", true)

	app := &store.Application{Name: "unmirrored"}
	env.store.CreateApplication(ctx, app)
	dev := &store.Device{ApplicationID: app.ID, Name: "sensor"}
	env.store.CreateDevice(ctx, dev)
	env.store.UpsertDeviceLink(ctx, &store.DeviceNetworkTypeLink{
		DeviceID: dev.ID, NetworkTypeID: "nt-lora", Enabled: true,
	})

	logs, err := env.manager.PushDevice(ctx, dev.ID)
	if err != nil {
		t.Fatalf("PushDevice() error = %v", err)
	}
	if len(logs) != 1 || logs[0].Success {
		t.Fatalf("logs = %+v, want a failed entry", logs)
	}
	if logs[0].Message == "" {
		t.Error("failure entry carries no message")
	}
}

func TestPushApplicationDelete(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "target-net", true)

	app := &store.Application{Name: "doomed"}
	env.store.CreateApplication(ctx, app)
	env.store.UpsertApplicationLink(ctx, &store.ApplicationNetworkTypeLink{
		ApplicationID: app.ID, NetworkTypeID: "nt-lora", Enabled: true,
	})
	if _, err := env.manager.PushApplication(ctx, app.ID); err != nil {
		t.Fatalf("PushApplication() error = %v", err)
	}

	logs, err := env.manager.PushApplicationDelete(ctx, app.ID)
	if err != nil {
		t.Fatalf("PushApplicationDelete() error = %v", err)
	}
	if len(logs) != 1 || !logs[0].Success || logs[0].Operation != OpDelete {
		t.Errorf("logs = %+v", logs)
	}
	if len(env.handler.deleted) != 1 {
		t.Errorf("handler deletes = %v", env.handler.deleted)
	}
	if _, err := env.store.RemoteID(ctx, network.ID, store.OriginApplication, app.ID); !errors.Is(err, store.ErrNotFound) {
		t.Error("origin not removed after delete push")
	}
}

func TestPushNetworkMirrorsEverything(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()
	network := createNetwork(t, env.store, "fresh-net", true)

	profile := &store.DeviceProfile{NetworkTypeID: "nt-lora", Name: "class-a"}
	env.store.CreateDeviceProfile(ctx, profile)

	app := &store.Application{Name: "estate"}
	env.store.CreateApplication(ctx, app)
	env.store.UpsertApplicationLink(ctx, &store.ApplicationNetworkTypeLink{
		ApplicationID: app.ID, NetworkTypeID: "nt-lora", Enabled: true,
	})

	dev := &store.Device{ApplicationID: app.ID, Name: "meter-1"}
	env.store.CreateDevice(ctx, dev)
	env.store.UpsertDeviceLink(ctx, &store.DeviceNetworkTypeLink{
		DeviceID: dev.ID, NetworkTypeID: "nt-lora",
		DeviceProfileID: &profile.ID, Enabled: true,
	})

	logs, err := env.manager.PushNetwork(ctx, network.ID)
	if err != nil {
		t.Fatalf("PushNetwork() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("logs = %d entries, want profile+application+device", len(logs))
	}
	for _, entry := range logs {
		if !entry.Success {
			t.Errorf("entry failed: %+v", entry)
		}
	}
	if len(env.handler.created) != 3 {
		t.Errorf("handler creates = %v", env.handler.created)
	}
}

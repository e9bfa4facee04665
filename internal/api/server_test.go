package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "github.com/nerrad567/fleetwan-core/migrations"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/auth"
	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/database"
	"github.com/nerrad567/fleetwan-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetwan-core/internal/session"
	"github.com/nerrad567/fleetwan-core/internal/store"
	"github.com/nerrad567/fleetwan-core/internal/sync"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// stubHandler satisfies the vendor handler interface with canned responses.
// API tests only exercise login/test and empty pulls; push behaviour is
// covered by the sync package's own tests.
type stubHandler struct{}

func (stubHandler) Login(context.Context, *store.Network) (*handlers.Session, error) {
	return &handlers.Session{Token: "stub"}, nil
}
func (stubHandler) Test(context.Context, *store.Network, *handlers.Session) error { return nil }
func (stubHandler) PullApplications(context.Context, *store.Network, *handlers.Session) ([]handlers.RemoteApplication, error) {
	return nil, nil
}
func (stubHandler) PullDeviceProfiles(context.Context, *store.Network, *handlers.Session) ([]handlers.RemoteDeviceProfile, error) {
	return nil, nil
}
func (stubHandler) PullDevices(context.Context, *store.Network, *handlers.Session, string) ([]handlers.RemoteDevice, error) {
	return nil, nil
}
func (stubHandler) CreateApplication(context.Context, *store.Network, *handlers.Session, *store.Application, *store.ApplicationNetworkTypeLink) (string, error) {
	return "remote-app-1", nil
}
func (stubHandler) UpdateApplication(context.Context, *store.Network, *handlers.Session, string, *store.Application, *store.ApplicationNetworkTypeLink) error {
	return nil
}
func (stubHandler) DeleteApplication(context.Context, *store.Network, *handlers.Session, string) error {
	return nil
}
func (stubHandler) CreateDeviceProfile(context.Context, *store.Network, *handlers.Session, *store.DeviceProfile) (string, error) {
	return "remote-dp-1", nil
}
func (stubHandler) UpdateDeviceProfile(context.Context, *store.Network, *handlers.Session, string, *store.DeviceProfile) error {
	return nil
}
func (stubHandler) DeleteDeviceProfile(context.Context, *store.Network, *handlers.Session, string) error {
	return nil
}
func (stubHandler) CreateDevice(context.Context, *store.Network, *handlers.Session, string, string, *store.Device, *store.DeviceNetworkTypeLink) (string, error) {
	return "remote-dev-1", nil
}
func (stubHandler) UpdateDevice(context.Context, *store.Network, *handlers.Session, string, string, *store.Device, *store.DeviceNetworkTypeLink) error {
	return nil
}
func (stubHandler) DeleteDevice(context.Context, *store.Network, *handlers.Session, string) error {
	return nil
}

type apiTestEnv struct {
	server *Server
	ts     *httptest.Server
	store  *store.Store
}

func setupAPI(t *testing.T) *apiTestEnv {
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

	registry := handlers.NewRegistry()
	registry.Register("LoRa Server", "1.0", stubHandler{})
	sessions := session.NewCoordinator(st, registry)

	server, err := New(Deps{
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{Secret: testJWTSecret, AccessTokenTTL: 60},
		},
		Logger:   logging.Default(),
		Store:    st,
		Sessions: sessions,
		Sync:     sync.NewManager(st, sessions),
		Audit:    audit.NewSQLiteRepository(db.DB),
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	server.hub = NewHub(server.wsCfg, server.logger)

	ts := httptest.NewServer(server.buildRouter())
	t.Cleanup(ts.Close)

	return &apiTestEnv{server: server, ts: ts, store: st}
}

// createUser persists an account and returns its access token via the login
// endpoint.
func (env *apiTestEnv) createUser(t *testing.T, username, password, role string) string {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := env.store.CreateUser(context.Background(), &store.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	resp := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	return body.AccessToken
}

// request issues an HTTP request against the test server, JSON-encoding the
// body when non-nil.
func (env *apiTestEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, env.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodGet, "/api/v1/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupAPI(t)
	env.createUser(t, "alice", "correct-horse", "user")

	resp := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodGet, "/api/v1/networks", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	resp = env.request(t, http.MethodGet, "/api/v1/networks", "not-a-token", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	env := setupAPI(t)
	token := env.createUser(t, "alice", "correct-horse", "user")

	resp := env.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	user := decodeBody[store.User](t, resp)
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
	if user.PasswordHash != "" {
		t.Error("password hash must not be serialised")
	}
}

// seedNetwork persists an authorised, enabled LoRa network directly.
func seedNetwork(t *testing.T, st *store.Store) *store.Network {
	t.Helper()

	network := &store.Network{
		Name:              "lab",
		NetworkProtocolID: "np-loraserver-v1",
		NetworkTypeID:     "nt-lora",
		BaseURL:           "https://lns.example.com/api",
		SecurityData: store.SecurityData{
			Username:   "admin",
			Password:   "vendor-secret",
			Status:     store.SecurityAuthorized,
			Authorized: true,
			Enabled:    true,
		},
	}
	if err := st.CreateNetwork(context.Background(), network); err != nil {
		t.Fatalf("CreateNetwork() error = %v", err)
	}
	return network
}

func TestNetworkRedactionByRole(t *testing.T) {
	env := setupAPI(t)
	network := seedNetwork(t, env.store)

	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")
	userToken := env.createUser(t, "bob", "ordinary-pw", "user")

	path := "/api/v1/networks/" + network.ID

	resp := env.request(t, http.MethodGet, path, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", resp.StatusCode)
	}
	adminView := decodeBody[store.Network](t, resp)
	if adminView.SecurityData.Password != "vendor-secret" {
		t.Error("admin should see credentials in full")
	}

	resp = env.request(t, http.MethodGet, path, userToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("user status = %d, want 200", resp.StatusCode)
	}
	userView := decodeBody[store.Network](t, resp)
	if userView.SecurityData.Password != "" || userView.SecurityData.Username != "" {
		t.Error("non-admin must not see credentials")
	}
	if !userView.SecurityData.Authorized {
		t.Error("authorisation state should survive redaction")
	}
}

func TestNetworkMutationsRequireAdmin(t *testing.T) {
	env := setupAPI(t)
	network := seedNetwork(t, env.store)
	userToken := env.createUser(t, "bob", "ordinary-pw", "user")

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/networks"},
		{http.MethodPut, "/api/v1/networks/" + network.ID},
		{http.MethodDelete, "/api/v1/networks/" + network.ID},
		{http.MethodPost, "/api/v1/networks/" + network.ID + "/pull"},
		{http.MethodPost, "/api/v1/networks/" + network.ID + "/push"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := env.request(t, tt.method, tt.path, userToken, map[string]string{})
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusForbidden {
				t.Errorf("status = %d, want 403", resp.StatusCode)
			}
		})
	}
}

func TestPullNetwork(t *testing.T) {
	env := setupAPI(t)
	network := seedNetwork(t, env.store)
	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")

	resp := env.request(t, http.MethodPost, "/api/v1/networks/"+network.ID+"/pull", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	result := decodeBody[sync.PullResult](t, resp)
	if result.NetworkID != network.ID {
		t.Errorf("NetworkID = %q, want %q", result.NetworkID, network.ID)
	}
}

func TestPullNetworkNotReady(t *testing.T) {
	env := setupAPI(t)
	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")

	network := &store.Network{
		Name:              "cold",
		NetworkProtocolID: "np-loraserver-v1",
		NetworkTypeID:     "nt-lora",
		BaseURL:           "https://lns.example.com/api",
	}
	if err := env.store.CreateNetwork(context.Background(), network); err != nil {
		t.Fatalf("CreateNetwork() error = %v", err)
	}

	resp := env.request(t, http.MethodPost, "/api/v1/networks/"+network.ID+"/pull", adminToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	env := setupAPI(t)
	token := env.createUser(t, "alice", "correct-horse", "user")

	resp := env.request(t, http.MethodPost, "/api/v1/applications", token, map[string]any{
		"name":        "soil-sensors",
		"description": "field moisture probes",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[mutationResponse](t, resp)
	if created.Application == nil || created.Application.ID == "" {
		t.Fatal("create should return the application with an ID")
	}
	appID := created.Application.ID

	resp = env.request(t, http.MethodPut, "/api/v1/applications/"+appID, token, map[string]any{
		"name": "soil-sensors-v2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	updated := decodeBody[mutationResponse](t, resp)
	if updated.Application.Name != "soil-sensors-v2" {
		t.Errorf("updated name = %q, want soil-sensors-v2", updated.Application.Name)
	}

	resp = env.request(t, http.MethodDelete, "/api/v1/applications/"+appID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}

	resp = env.request(t, http.MethodGet, "/api/v1/applications/"+appID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestPushApplicationOnDemand(t *testing.T) {
	env := setupAPI(t)
	token := env.createUser(t, "alice", "correct-horse", "user")

	resp := env.request(t, http.MethodPost, "/api/v1/applications", token, map[string]any{
		"name": "soil-sensors",
	})
	created := decodeBody[mutationResponse](t, resp)

	// No network type links yet: the push succeeds with nothing to mirror.
	resp = env.request(t, http.MethodPost, "/api/v1/applications/"+created.Application.ID+"/push", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("push status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if logs, ok := body["remoteAccessLogs"]; ok && logs != nil {
		if arr, isArr := logs.([]any); isArr && len(arr) != 0 {
			t.Errorf("remoteAccessLogs = %v, want empty", arr)
		}
	}

	resp = env.request(t, http.MethodPost, "/api/v1/applications/app-missing/push", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("push unknown app status = %d, want 404", resp.StatusCode)
	}
}

func TestPushNetworkType(t *testing.T) {
	env := setupAPI(t)
	seedNetwork(t, env.store)
	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")
	userToken := env.createUser(t, "bob", "ordinary-pw", "user")

	resp := env.request(t, http.MethodPost, "/api/v1/network-types/nt-lora/push", userToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("push as user status = %d, want 403", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPost, "/api/v1/network-types/nt-lora/push", adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("push status = %d, want 200", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPost, "/api/v1/network-types/nt-missing/push", adminToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("push unknown type status = %d, want 404", resp.StatusCode)
	}
}

func TestOAuthCallback(t *testing.T) {
	env := setupAPI(t)

	network := &store.Network{
		Name:              "consented",
		NetworkProtocolID: "np-loraserver-v1",
		NetworkTypeID:     "nt-lora",
		BaseURL:           "https://lns.example.com/api",
		SecurityData: store.SecurityData{
			Username:   "admin",
			Password:   "vendor-secret",
			Status:     store.SecurityPending,
			Enabled:    true,
			OAuthState: "state-4f2a",
		},
	}
	if err := env.store.CreateNetwork(context.Background(), network); err != nil {
		t.Fatalf("CreateNetwork() error = %v", err)
	}

	resp := env.request(t, http.MethodGet, "/api/v1/oauth/callback?state=state-4f2a&code=consent-code", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback status = %d, want 200", resp.StatusCode)
	}

	refreshed, err := env.store.GetNetwork(context.Background(), network.ID)
	if err != nil {
		t.Fatalf("GetNetwork() error = %v", err)
	}
	if refreshed.SecurityData.OAuthState != "" {
		t.Error("state should be consumed by the callback")
	}
	if refreshed.SecurityData.AuthorizationCode != "consent-code" {
		t.Errorf("AuthorizationCode = %q, want consent-code", refreshed.SecurityData.AuthorizationCode)
	}
	if refreshed.SecurityData.Status != store.SecurityAuthorized {
		t.Errorf("Status = %q, want authorized after successful login", refreshed.SecurityData.Status)
	}

	resp = env.request(t, http.MethodGet, "/api/v1/oauth/callback?state=state-4f2a&code=again", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("replayed state status = %d, want 404", resp.StatusCode)
	}
}

func TestDeviceRequiresApplication(t *testing.T) {
	env := setupAPI(t)
	token := env.createUser(t, "alice", "correct-horse", "user")

	resp := env.request(t, http.MethodPost, "/api/v1/devices", token, map[string]any{
		"name":           "probe-1",
		"application_id": "app-missing",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUserManagement(t *testing.T) {
	env := setupAPI(t)
	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")
	userToken := env.createUser(t, "bob", "ordinary-pw", "user")

	// Non-admin cannot manage accounts.
	resp := env.request(t, http.MethodGet, "/api/v1/users", userToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("list as user status = %d, want 403", resp.StatusCode)
	}

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"valid", map[string]string{"username": "carol", "password": "long-enough-pw", "role": "user"}, http.StatusCreated},
		{"bad role", map[string]string{"username": "dave", "password": "long-enough-pw", "role": "owner"}, http.StatusBadRequest},
		{"short password", map[string]string{"username": "erin", "password": "short"}, http.StatusBadRequest},
		{"bad username", map[string]string{"username": "has spaces", "password": "long-enough-pw"}, http.StatusBadRequest},
		{"duplicate", map[string]string{"username": "bob", "password": "long-enough-pw"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.request(t, http.MethodPost, "/api/v1/users", adminToken, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuditTrail(t *testing.T) {
	env := setupAPI(t)
	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")

	resp := env.request(t, http.MethodPost, "/api/v1/companies", adminToken, map[string]string{
		"name": "Acme Farms",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create company status = %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodGet, "/api/v1/audit-logs?entity_type=company", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit status = %d, want 200", resp.StatusCode)
	}
	result := decodeBody[audit.ListResult](t, resp)
	if result.Total != 1 {
		t.Fatalf("Total = %d, want 1", result.Total)
	}
	entry := result.Logs[0]
	if entry.Action != audit.ActionCreate || entry.Source != audit.SourceAPI {
		t.Errorf("entry = %s/%s, want create/api", entry.Action, entry.Source)
	}
	if entry.UserID == "" {
		t.Error("audit entry should carry the caller's user ID")
	}
}

func TestIngestWithoutDispatcher(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodPost, "/api/v1/ingest/app-1/net-1", "", map[string]any{
		"devEUI": "0080000000000101",
		"data":   "AQI=",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestWSTicketFlow(t *testing.T) {
	env := setupAPI(t)
	token := env.createUser(t, "alice", "correct-horse", "user")

	resp := env.request(t, http.MethodPost, "/api/v1/auth/ws-ticket", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	ticket, _ := body["ticket"].(string) //nolint:errcheck // asserted below
	if ticket == "" {
		t.Fatal("ticket should be returned")
	}

	entry, ok := env.server.tickets.validate(ticket)
	if !ok {
		t.Fatal("freshly issued ticket should validate")
	}
	if entry.role != auth.RoleUser {
		t.Errorf("ticket role = %q, want user", entry.role)
	}

	// Single use.
	if _, ok := env.server.tickets.validate(ticket); ok {
		t.Error("ticket must not validate twice")
	}
}

func TestReferenceData(t *testing.T) {
	env := setupAPI(t)
	token := env.createUser(t, "alice", "correct-horse", "user")

	tests := []struct {
		path string
		min  int
	}{
		{"/api/v1/network-types", 2},
		{"/api/v1/network-protocols", 3},
		{"/api/v1/reporting-protocols", 2},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := env.request(t, http.MethodGet, tt.path, token, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			items := decodeBody[[]map[string]any](t, resp)
			if len(items) < tt.min {
				t.Errorf("len = %d, want >= %d (seeded reference data)", len(items), tt.min)
			}
		})
	}
}

func TestCreateNetworkValidation(t *testing.T) {
	env := setupAPI(t)
	adminToken := env.createUser(t, "root", "super-secret-pw", "admin")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing fields", map[string]any{"name": "x"}, http.StatusBadRequest},
		{"unknown protocol", map[string]any{
			"name":                "x",
			"network_protocol_id": "np-nonexistent",
			"base_url":            "https://example.com",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.request(t, http.MethodPost, "/api/v1/networks", adminToken, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

package ttnv2

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-1" || pass != "secret-1" {
			http.Error(w, "invalid client", http.StatusUnauthorized)
			return
		}
		var grant map[string]string
		json.NewDecoder(r.Body).Decode(&grant)
		switch grant["grant_type"] {
		case "client_credentials":
			json.NewEncoder(w).Encode(tokenReply{
				AccessToken: "at-full", RefreshToken: "rt-1", ExpiresIn: 3600,
			})
		case "refresh_token":
			if grant["refresh_token"] != "rt-1" {
				http.Error(w, "invalid refresh token", http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(tokenReply{
				AccessToken: "at-refreshed", ExpiresIn: 3600,
			})
		case "authorization_code":
			if grant["code"] != "consent-1" {
				http.Error(w, "invalid code", http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(tokenReply{
				AccessToken: "at-consent", RefreshToken: "rt-1", ExpiresIn: 3600,
			})
		default:
			http.Error(w, "unsupported grant", http.StatusBadRequest)
		}
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer at-full" && auth != "Bearer at-refreshed" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /applications", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]remoteApplication{
			{ID: "mousetraps", Name: "BobMouseTrapLv1", EUIs: []string{"70B3D57ED0000001"}},
			// No id: cannot be translated, must be skipped.
			{Name: "nameless"},
		})
	}))

	mux.HandleFunc("GET /applications/{app}/devices", authed(func(w http.ResponseWriter, r *http.Request) {
		var d remoteDevice
		d.DevID = "trap-7"
		d.Description = "basement trap"
		d.LorawanDevice.DevEUI = "0080000000000201"
		d.LorawanDevice.AppKey = "00000000000000000000000000000001"
		// The second device has no dev_id: cannot be translated, must be
		// skipped.
		json.NewEncoder(w).Encode(map[string]any{"devices": []remoteDevice{d, {}}})
	}))

	mux.HandleFunc("POST /applications/{app}/devices", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testNetwork(baseURL string) *store.Network {
	return &store.Network{
		ID:            "net-ttn",
		Name:          "ttn-community",
		NetworkTypeID: "nt-lora",
		BaseURL:       baseURL,
		SecurityData:  store.SecurityData{ClientID: "client-1", ClientSecret: "secret-1"},
	}
}

func TestLoginClientCredentials(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	network := testNetwork(srv.URL)

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != "at-full" {
		t.Errorf("Token = %q", sess.Token)
	}
	if network.SecurityData.RefreshToken != "rt-1" {
		t.Error("refresh token was not written back to securityData")
	}
	if network.SecurityData.TokenExpiry.IsZero() {
		t.Error("token expiry was not written back to securityData")
	}
}

func TestLoginPrefersRefreshToken(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	network := testNetwork(srv.URL)
	network.SecurityData.RefreshToken = "rt-1"

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != "at-refreshed" {
		t.Errorf("Token = %q, want the refresh grant result", sess.Token)
	}
}

func TestLoginExchangesConsentCode(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	network := testNetwork(srv.URL)
	network.SecurityData.AuthorizationCode = "consent-1"
	network.SecurityData.RefreshToken = "rt-1"

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != "at-consent" {
		t.Errorf("Token = %q, want the consent code to win over other grants", sess.Token)
	}
	if network.SecurityData.AuthorizationCode != "" {
		t.Error("the consent code is single use and must be cleared")
	}
}

func TestLoginFallsBackWhenCodeRejected(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	network := testNetwork(srv.URL)
	network.SecurityData.AuthorizationCode = "consent-spent"

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != "at-full" {
		t.Errorf("Token = %q, want the client credentials fallback", sess.Token)
	}
}

func TestLoginFallsBackWhenRefreshRejected(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	network := testNetwork(srv.URL)
	network.SecurityData.RefreshToken = "rt-revoked"

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != "at-full" {
		t.Errorf("Token = %q, want the client credentials fallback", sess.Token)
	}
}

func TestLoginWithoutClient(t *testing.T) {
	h := New(nil)
	network := testNetwork("http://unused")
	network.SecurityData = store.SecurityData{}

	if _, err := h.Login(context.Background(), network); !errors.Is(err, handlers.ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestPullApplications(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	ctx := context.Background()
	network := testNetwork(srv.URL)

	sess, _ := h.Login(ctx, network)
	apps, err := h.PullApplications(ctx, network, sess)
	if err != nil {
		t.Fatalf("PullApplications() error = %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("PullApplications() returned %d, want 1", len(apps))
	}
	got := apps[0]
	if got.RemoteID != "mousetraps" || got.Application.Name != "BobMouseTrapLv1" {
		t.Errorf("application = %+v", got)
	}
	if got.Settings["appEUI"] != "70B3D57ED0000001" {
		t.Errorf("Settings = %v", got.Settings)
	}
}

func TestPullDevicesUsesCompositeIDs(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	ctx := context.Background()
	network := testNetwork(srv.URL)

	sess, _ := h.Login(ctx, network)
	devices, err := h.PullDevices(ctx, network, sess, "mousetraps")
	if err != nil {
		t.Fatalf("PullDevices() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("PullDevices() returned %d, want 1", len(devices))
	}
	got := devices[0]
	if got.RemoteID != "mousetraps/trap-7" {
		t.Errorf("RemoteID = %q, want composite app/dev", got.RemoteID)
	}
	if got.Settings["appKey"] == "" {
		t.Error("key material missing from link settings")
	}
}

func TestPullDeviceProfilesIsEmpty(t *testing.T) {
	h := New(nil)
	profiles, err := h.PullDeviceProfiles(context.Background(), testNetwork(""), &handlers.Session{Token: "t"})
	if err != nil {
		t.Fatalf("PullDeviceProfiles() error = %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("PullDeviceProfiles() returned %d, want 0", len(profiles))
	}
}

func TestCreateDeviceReturnsCompositeID(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	ctx := context.Background()
	network := testNetwork(srv.URL)
	sess, _ := h.Login(ctx, network)

	link := &store.DeviceNetworkTypeLink{
		NetworkSettings: store.Settings{"devEUI": "0080000000000201"},
	}
	remoteID, err := h.CreateDevice(ctx, network, sess, "mousetraps", "", &store.Device{Name: "trap-9"}, link)
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if remoteID != "mousetraps/trap-9" {
		t.Errorf("remoteID = %q", remoteID)
	}
}

func TestSplitRemoteID(t *testing.T) {
	if _, _, err := splitRemoteID("no-slash"); !errors.Is(err, handlers.ErrMapping) {
		t.Errorf("splitRemoteID() error = %v, want ErrMapping", err)
	}
	app, dev, err := splitRemoteID("a/b")
	if err != nil || app != "a" || dev != "b" {
		t.Errorf("splitRemoteID() = %q %q %v", app, dev, err)
	}
}

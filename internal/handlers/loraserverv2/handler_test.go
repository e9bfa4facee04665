package loraserverv2

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

const testAPIKey = "v2-api-key"

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/internal/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "admin" || creds.Password != "secret" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"jwt": "v2-jwt"})
	})

	mux.HandleFunc("GET /api/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("applicationID") == "" {
			// Probe call from Test.
			json.NewEncoder(w).Encode(map[string]any{"result": []remoteDevice{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": []remoteDevice{{
				DevEUI:          "00800000000000ab",
				Name:            "valve-7",
				DeviceProfileID: "dp-9",
			}, {
				// No devEUI: cannot be translated, must be skipped.
				Name: "ghost",
			}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testNetwork(baseURL string, sec store.SecurityData) *store.Network {
	return &store.Network{
		ID:            "net-2",
		Name:          "lora-v2",
		NetworkTypeID: "nt-lora",
		BaseURL:       baseURL,
		SecurityData:  sec,
	}
}

func TestLoginWithAPIKey(t *testing.T) {
	h := New(nil)
	network := testNetwork("http://unused", store.SecurityData{APIKey: testAPIKey})

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != testAPIKey {
		t.Errorf("Token = %q, want the API key passed through", sess.Token)
	}
	if !sess.Expiry.IsZero() {
		t.Error("API key sessions must not expire")
	}
}

func TestLoginFallsBackToPassword(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	network := testNetwork(srv.URL, store.SecurityData{Username: "admin", Password: "secret"})

	sess, err := h.Login(context.Background(), network)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token != "v2-jwt" {
		t.Errorf("Token = %q, want the v1-style login result", sess.Token)
	}
}

func TestLoginWithoutCredentials(t *testing.T) {
	h := New(nil)
	network := testNetwork("http://unused", store.SecurityData{})

	if _, err := h.Login(context.Background(), network); !errors.Is(err, handlers.ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestTestValidatesAPIKey(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	ctx := context.Background()

	good := testNetwork(srv.URL, store.SecurityData{APIKey: testAPIKey})
	sess, _ := h.Login(ctx, good)
	if err := h.Test(ctx, good, sess); err != nil {
		t.Errorf("Test() with valid key error = %v", err)
	}

	bad := testNetwork(srv.URL, store.SecurityData{APIKey: "wrong"})
	sess, _ = h.Login(ctx, bad)
	if err := h.Test(ctx, bad, sess); !errors.Is(err, handlers.ErrAuth) {
		t.Errorf("Test() with bad key error = %v, want ErrAuth", err)
	}
}

func TestPullDevices(t *testing.T) {
	srv := fakeServer(t)
	h := New(nil)
	ctx := context.Background()
	network := testNetwork(srv.URL, store.SecurityData{APIKey: testAPIKey})

	sess, _ := h.Login(ctx, network)
	devices, err := h.PullDevices(ctx, network, sess, "12")
	if err != nil {
		t.Fatalf("PullDevices() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("PullDevices() returned %d, want only the translatable device", len(devices))
	}
	got := devices[0]
	if got.RemoteID != "00800000000000ab" || got.ProfileRemoteID != "dp-9" {
		t.Errorf("device = %+v", got)
	}
	if got.Settings["devEUI"] != "00800000000000ab" {
		t.Errorf("Settings = %v", got.Settings)
	}
}

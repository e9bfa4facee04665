package ttnv2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// do performs one JSON call against the network's API. authorization is
// placed on the request verbatim ("Bearer <token>" or "Basic <basic>");
// empty means unauthenticated. Status codes map onto the handler error
// contract the same way the LoRa Server handlers map them.
func (h *Handler) do(ctx context.Context, network *store.Network, authorization, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := strings.TrimRight(network.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", handlers.ErrRemote, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %v", handlers.ErrRemote, method, path, err)
	}
	return nil
}

func statusError(resp *http.Response, method, path string) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = handlers.ErrAuth
	case http.StatusNotFound:
		base = handlers.ErrNotFound
	case http.StatusConflict:
		base = handlers.ErrConflict
	default:
		base = handlers.ErrRemote
	}
	if msg == "" {
		return fmt.Errorf("%w: %s %s: status %d", base, method, path, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s %s: status %d: %s", base, method, path, resp.StatusCode, msg)
}

func bearer(session *handlers.Session) string {
	if session == nil || session.Token == "" {
		return ""
	}
	return "Bearer " + session.Token
}

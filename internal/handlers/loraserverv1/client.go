package loraserverv1

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

// pageLimit is the page size used for remote list calls.
const pageLimit = 100

// Do performs one authenticated JSON call against the network's API and
// decodes the response into out (when non-nil). Status codes map onto the
// handler error contract: 401/403 wrap ErrAuth, 404 ErrNotFound, 409
// ErrConflict, and everything else above 399 ErrRemote.
func (h *Handler) Do(ctx context.Context, network *store.Network, session *handlers.Session, method, path string, body, out any) error {
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
	if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", handlers.ErrRemote, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return h.statusError(resp, method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %v", handlers.ErrRemote, method, path, err)
	}
	return nil
}

func (h *Handler) statusError(resp *http.Response, method, path string) error {
	// Response bodies carry the vendor's error message; keep a snippet for
	// the access log but never more.
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

// listPage is the envelope wrapping every paginated list response.
type listPage[T any] struct {
	TotalCount string `json:"totalCount"`
	Result     []T    `json:"result"`
}

// listAll walks a paginated list endpoint until the server returns a short
// page. The path must already carry its own query string, or none.
func listAll[T any](ctx context.Context, h *Handler, network *store.Network, session *handlers.Session, path string) ([]T, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	var all []T
	for offset := 0; ; offset += pageLimit {
		var page listPage[T]
		paged := fmt.Sprintf("%s%slimit=%d&offset=%d", path, sep, pageLimit, offset)
		if err := h.Do(ctx, network, session, http.MethodGet, paged, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Result...)
		if len(page.Result) < pageLimit {
			return all, nil
		}
	}
}

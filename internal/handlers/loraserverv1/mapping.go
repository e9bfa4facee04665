package loraserverv1

import (
	"fmt"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Remote payload shapes. v1 serialises entities flat and IDs as strings.

type organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type application struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	OrganizationID   string `json:"organizationID"`
	ServiceProfileID string `json:"serviceProfileID"`
	PayloadCodec     string `json:"payloadCodec"`
	PayloadEncoder   string `json:"payloadEncoderScript"`
	PayloadDecoder   string `json:"payloadDecoderScript"`
}

// linkSettings captures the vendor fields that have no canonical home.
func (a application) linkSettings() store.Settings {
	s := store.Settings{"organizationID": a.OrganizationID}
	if a.ServiceProfileID != "" {
		s["serviceProfileID"] = a.ServiceProfileID
	}
	if a.PayloadCodec != "" {
		s["payloadCodec"] = a.PayloadCodec
	}
	if a.PayloadEncoder != "" {
		s["payloadEncoderScript"] = a.PayloadEncoder
	}
	if a.PayloadDecoder != "" {
		s["payloadDecoderScript"] = a.PayloadDecoder
	}
	return s
}

type deviceProfileSummary struct {
	DeviceProfileID string `json:"deviceProfileID"`
	Name            string `json:"name"`
	OrganizationID  string `json:"organizationID"`
	NetworkServerID string `json:"networkServerID"`
}

type deviceProfile struct {
	MacVersion        string `json:"macVersion"`
	RegParamsRevision string `json:"regParamsRevision"`
	SupportsJoin      bool   `json:"supportsJoin"`
	SupportsClassB    bool   `json:"supportsClassB"`
	SupportsClassC    bool   `json:"supportsClassC"`
	MaxEIRP           int    `json:"maxEIRP"`
	RxDelay1          int    `json:"rxDelay1"`
	RxDROffset1       int    `json:"rxDROffset1"`
	RxDataRate2       int    `json:"rxDataRate2"`
	RxFreq2           int    `json:"rxFreq2"`
}

// settings flattens the profile detail and its summary-level ownership
// fields into the opaque canonical blob.
func (p deviceProfile) settings(s deviceProfileSummary) store.Settings {
	return store.Settings{
		"organizationID":    s.OrganizationID,
		"networkServerID":   s.NetworkServerID,
		"macVersion":        p.MacVersion,
		"regParamsRevision": p.RegParamsRevision,
		"supportsJoin":      p.SupportsJoin,
		"supportsClassB":    p.SupportsClassB,
		"supportsClassC":    p.SupportsClassC,
		"maxEIRP":           p.MaxEIRP,
		"rxDelay1":          p.RxDelay1,
		"rxDROffset1":       p.RxDROffset1,
		"rxDataRate2":       p.RxDataRate2,
		"rxFreq2":           p.RxFreq2,
	}
}

type device struct {
	DevEUI          string `json:"devEUI"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ApplicationID   string `json:"applicationID"`
	DeviceProfileID string `json:"deviceProfileID"`
}

// applicationBody builds the create/update payload from the canonical
// application and its link settings.
func applicationBody(app *store.Application, link *store.ApplicationNetworkTypeLink) map[string]any {
	body := map[string]any{
		"name":        app.Name,
		"description": app.Description,
	}
	for _, key := range []string{
		"organizationID", "serviceProfileID",
		"payloadCodec", "payloadEncoderScript", "payloadDecoderScript",
	} {
		if v, ok := link.NetworkSettings[key]; ok {
			body[key] = v
		}
	}
	return body
}

// deviceProfileBody builds the create/update payload, wrapped the way v1
// expects, from the canonical profile's opaque settings.
func deviceProfileBody(profile *store.DeviceProfile) map[string]any {
	dp := map[string]any{"name": profile.Name}
	for k, v := range profile.NetworkSettings {
		dp[k] = v
	}
	return map[string]any{"deviceProfile": dp}
}

// deviceBody builds the create/update payload. appRemoteID and
// profileRemoteID are omitted when empty, since updates address the device
// by devEUI alone.
func deviceBody(dev *store.Device, link *store.DeviceNetworkTypeLink, appRemoteID, profileRemoteID string) map[string]any {
	body := map[string]any{
		"name":        dev.Name,
		"description": dev.Description,
	}
	if devEUI, ok := link.NetworkSettings["devEUI"].(string); ok {
		body["devEUI"] = devEUI
	}
	if appRemoteID != "" {
		body["applicationID"] = appRemoteID
	}
	if profileRemoteID != "" {
		body["deviceProfileID"] = profileRemoteID
	}
	return body
}

// linkDevEUI extracts the mandatory devEUI from a device link's settings.
func linkDevEUI(link *store.DeviceNetworkTypeLink) (string, error) {
	devEUI, ok := link.NetworkSettings["devEUI"].(string)
	if !ok || devEUI == "" {
		return "", fmt.Errorf("%w: device link has no devEUI", handlers.ErrMapping)
	}
	return devEUI, nil
}

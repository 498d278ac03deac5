// Package pinpoint wraps the celestial-triangulation service as a pure
// enrichment function: given a system and kill, it returns the nearest
// celestial and system/region names, or degrades gracefully when the
// service is unavailable.
package pinpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-campwatch/internal/activity/models"
)

// Request is the payload sent to the triangulation service for one event.
type Request struct {
	SystemID int32 `json:"solarSystemId"`
	KillID   int64 `json:"killId"`
}

// response mirrors the triangulation service's wire shape.
type response struct {
	NearestCelestial *struct {
		Name     string   `json:"name"`
		Distance *float64 `json:"distance,omitempty"`
	} `json:"nearestCelestial"`
	AtCelestial       bool    `json:"atCelestial"`
	TriangulationType *string `json:"triangulationType"`
	CelestialData     struct {
		SolarSystemName string  `json:"solarsystemname"`
		RegionName      string  `json:"regionname"`
		Security        *float64 `json:"security,omitempty"`
	} `json:"celestialData"`
}

// Client resolves an event's nearest celestial and system/region names.
type Client interface {
	Locate(ctx context.Context, req Request) (models.Pinpoint, error)
}

// HTTPClient is the default Client, a thin JSON-over-HTTP caller against a
// configured endpoint.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient builds a pinpoint client. An empty baseURL means the
// triangulation service isn't configured; Locate then always degrades
// gracefully to a zero-value Pinpoint — an unknown celestial resolves to a
// null pinpoint rather than an error.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Locate resolves req against the triangulation service. With no endpoint
// configured, or when the request cannot be built, it returns a zero-value
// Pinpoint and a nil error. A network error, a non-200 status or an
// undecodable body returns a zero-value Pinpoint together with an error.
func (c *HTTPClient) Locate(ctx context.Context, req Request) (models.Pinpoint, error) {
	if c.baseURL == "" {
		return models.Pinpoint{}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.Pinpoint{}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/locate", bytes.NewReader(body))
	if err != nil {
		return models.Pinpoint{}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.Pinpoint{}, fmt.Errorf("pinpoint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Pinpoint{}, fmt.Errorf("pinpoint service returned %d", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Pinpoint{}, fmt.Errorf("decode pinpoint response: %w", err)
	}

	return toPinpoint(out), nil
}

func toPinpoint(r response) models.Pinpoint {
	p := models.Pinpoint{
		AtCelestial: r.AtCelestial,
		SystemName:  r.CelestialData.SolarSystemName,
		RegionName:  r.CelestialData.RegionName,
	}
	if r.NearestCelestial != nil {
		name := r.NearestCelestial.Name
		p.NearestCelestial = &name
	}
	if r.TriangulationType != nil {
		p.TriangulationMethod = models.TriangulationMethod(*r.TriangulationType)
	}
	return p
}

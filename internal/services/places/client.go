package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wayfinder/internal/services"
)

const (
	defaultGeocodeURL  = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultSearchURL   = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	defaultBiasRadius  = 50000
	defaultHTTPTimeout = 10 * time.Second

	statusOK = "OK"
)

// Client wraps the Google geocode and text-search endpoints.
type Client struct {
	apiKey     string
	geocodeURL string
	searchURL  string
	biasRadius int
	httpClient *http.Client
}

// Option customizes the Places client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoints overrides the geocode and search URLs (useful for tests).
func WithEndpoints(geocodeURL, searchURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(geocodeURL) != "" {
			c.geocodeURL = strings.TrimSpace(geocodeURL)
		}
		if strings.TrimSpace(searchURL) != "" {
			c.searchURL = strings.TrimSpace(searchURL)
		}
	}
}

// WithBiasRadius sets the location bias radius in meters for text search.
func WithBiasRadius(meters int) Option {
	return func(c *Client) {
		if meters > 0 {
			c.biasRadius = meters
		}
	}
}

// NewClient constructs a Places client. An empty API key is allowed; callers
// should check HasCredentials before issuing lookups.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		geocodeURL: defaultGeocodeURL,
		searchURL:  defaultSearchURL,
		biasRadius: defaultBiasRadius,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// HasCredentials reports whether lookups can be attempted.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// GeocodeResult is the best geocoding match for a free-form address.
type GeocodeResult struct {
	FormattedAddress string
	Location         Location
}

// PlaceResult is the best text-search match for a candidate name.
type PlaceResult struct {
	Name             string
	PlaceID          string
	FormattedAddress string
	Location         Location
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string `json:"name"`
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form address to coordinates. A miss (no match or
// non-OK payload status) returns found=false without an error.
func (c *Client) Geocode(ctx context.Context, address string) (GeocodeResult, bool, error) {
	var empty GeocodeResult
	address = strings.TrimSpace(address)
	if address == "" {
		return empty, false, nil
	}
	if !c.HasCredentials() {
		return empty, false, services.Wrap(services.ErrConfiguration, "places", "geocode", "api key required", nil)
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	body, ok, err := c.get(ctx, c.geocodeURL, params, "geocode")
	if err != nil || !ok {
		return empty, false, err
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return empty, false, services.Wrap(services.ErrExternalTool, "places", "geocode", "decode response", err)
	}
	if decoded.Status != statusOK || len(decoded.Results) == 0 {
		return empty, false, nil
	}
	best := decoded.Results[0]
	return GeocodeResult{
		FormattedAddress: best.FormattedAddress,
		Location:         best.Geometry.Location,
	}, true, nil
}

// TextSearch resolves a place name, optionally biased toward a location.
// A miss returns found=false without an error.
func (c *Client) TextSearch(ctx context.Context, query string, bias *Location) (PlaceResult, bool, error) {
	var empty PlaceResult
	query = strings.TrimSpace(query)
	if query == "" {
		return empty, false, nil
	}
	if !c.HasCredentials() {
		return empty, false, services.Wrap(services.ErrConfiguration, "places", "text search", "api key required", nil)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if bias != nil {
		params.Set("location", fmt.Sprintf("%f,%f", bias.Latitude, bias.Longitude))
		params.Set("radius", fmt.Sprintf("%d", c.biasRadius))
	}

	body, ok, err := c.get(ctx, c.searchURL, params, "text search")
	if err != nil || !ok {
		return empty, false, err
	}

	var decoded textSearchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return empty, false, services.Wrap(services.ErrExternalTool, "places", "text search", "decode response", err)
	}
	if decoded.Status != statusOK || len(decoded.Results) == 0 {
		return empty, false, nil
	}
	best := decoded.Results[0]
	return PlaceResult{
		Name:             best.Name,
		PlaceID:          best.PlaceID,
		FormattedAddress: best.FormattedAddress,
		Location:         best.Geometry.Location,
	}, true, nil
}

// get issues the request and returns the body only for 2xx responses.
// Non-2xx statuses are misses, not errors.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, operation string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, services.Wrap(services.ErrValidation, "places", operation, "build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, services.Wrap(services.ErrExternalTool, "places", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, services.Wrap(services.ErrExternalTool, "places", operation, "read body", err)
	}
	return body, true, nil
}

package places_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"wayfinder/internal/services/places"
)

func TestGeocodeReturnsBestMatch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in request")
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Shibuya, Tokyo, Japan",
				"geometry": {"location": {"lat": 35.658, "lng": 139.7016}}
			}]
		}`))
	}))
	defer server.Close()

	client := places.NewClient("test-key", places.WithEndpoints(server.URL, server.URL))
	result, found, err := client.Geocode(context.Background(), "Shibuya, Tokyo")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if !found {
		t.Fatal("expected geocode hit")
	}
	if gotQuery != "Shibuya, Tokyo" {
		t.Fatalf("unexpected address param: %q", gotQuery)
	}
	if result.FormattedAddress != "Shibuya, Tokyo, Japan" {
		t.Fatalf("unexpected address: %q", result.FormattedAddress)
	}
	if result.Location.Latitude != 35.658 {
		t.Fatalf("unexpected latitude: %v", result.Location.Latitude)
	}
}

func TestGeocodeZeroResultsIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := places.NewClient("key", places.WithEndpoints(server.URL, server.URL))
	_, found, err := client.Geocode(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatalf("Geocode returned error for miss: %v", err)
	}
	if found {
		t.Fatal("expected miss for ZERO_RESULTS")
	}
}

func TestGeocodeHTTPErrorIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	client := places.NewClient("key", places.WithEndpoints(server.URL, server.URL))
	_, found, err := client.Geocode(context.Background(), "somewhere")
	if err != nil {
		t.Fatalf("Geocode returned error for HTTP failure: %v", err)
	}
	if found {
		t.Fatal("expected miss for non-2xx response")
	}
}

func TestTextSearchAppliesLocationBias(t *testing.T) {
	var gotLocation, gotRadius string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("location")
		gotRadius = r.URL.Query().Get("radius")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"name": "Ichiran Shibuya",
				"place_id": "ChIJ123",
				"formatted_address": "1-22-7 Jinnan, Shibuya",
				"geometry": {"location": {"lat": 35.661, "lng": 139.7}}
			}]
		}`))
	}))
	defer server.Close()

	client := places.NewClient("key",
		places.WithEndpoints(server.URL, server.URL),
		places.WithBiasRadius(25000))
	bias := &places.Location{Latitude: 35.658, Longitude: 139.7016}
	result, found, err := client.TextSearch(context.Background(), "Ichiran", bias)
	if err != nil {
		t.Fatalf("TextSearch failed: %v", err)
	}
	if !found {
		t.Fatal("expected search hit")
	}
	if result.PlaceID != "ChIJ123" {
		t.Fatalf("unexpected place id: %q", result.PlaceID)
	}
	if gotLocation == "" || gotRadius != "25000" {
		t.Fatalf("expected bias params, got location=%q radius=%q", gotLocation, gotRadius)
	}
}

func TestTextSearchWithoutBiasOmitsParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("location") || r.URL.Query().Has("radius") {
			t.Errorf("unexpected bias params: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"status": "OK", "results": [{"name": "X", "place_id": "p", "formatted_address": "a", "geometry": {"location": {"lat": 1, "lng": 2}}}]}`))
	}))
	defer server.Close()

	client := places.NewClient("key", places.WithEndpoints(server.URL, server.URL))
	if _, found, err := client.TextSearch(context.Background(), "X", nil); err != nil || !found {
		t.Fatalf("TextSearch: found=%v err=%v", found, err)
	}
}

func TestLookupsRequireCredentials(t *testing.T) {
	client := places.NewClient("")
	if client.HasCredentials() {
		t.Fatal("expected no credentials")
	}
	if _, _, err := client.Geocode(context.Background(), "x"); err == nil {
		t.Fatal("expected configuration error without key")
	}
	if _, _, err := client.TextSearch(context.Background(), "x", nil); err == nil {
		t.Fatal("expected configuration error without key")
	}
}

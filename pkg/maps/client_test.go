package maps

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestClientGeocodeRequest(t *testing.T) {
	respBody := `{"status":"OK","results":[{"geometry":{"location":{"lat":6.2442,"lng":-75.5812}}}]}`

	var capturedURL string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("test-key", WithBaseURL("http://maps.test/api"), WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	point, err := client.Geocode(context.Background(), "Cra 43A #1-50, Medellin")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://maps.test/api/geocode/json?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "key=test-key") {
		t.Fatalf("api key missing from URL %q", capturedURL)
	}
	if point == nil || point.Lat != 6.2442 || point.Lng != -75.5812 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestClientGeocodeZeroResults(t *testing.T) {
	respBody := `{"status":"ZERO_RESULTS","results":[]}`

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	point, err := client.Geocode(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if point != nil {
		t.Fatalf("expected nil point for zero results, got %+v", point)
	}
}

func TestClientGeocodeRejectedStatus(t *testing.T) {
	respBody := `{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Geocode(context.Background(), "somewhere"); err == nil {
		t.Fatal("expected error for rejected status")
	}
}

func TestClientGeocodeEmptyAddress(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Geocode(context.Background(), "  "); err == nil {
		t.Fatal("expected validation error")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

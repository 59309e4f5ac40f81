package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/roomsync/internal/shared"
	tu "github.com/desertthunder/roomsync/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://localhost:3333" {
				t.Errorf("expected default baseURL 'http://localhost:3333', got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected Accept header, got %q", r.Header.Get("Accept"))
				}
				w.Header().Set("X-Custom-Header", "test-value")
				json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("expected successful JSON response, got %+v", resp)
			}
			if resp.Headers.Get("X-Custom-Header") != "test-value" {
				t.Errorf("expected custom header 'test-value', got %s", resp.Headers.Get("X-Custom-Header"))
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.JSONData != nil {
				t.Error("expected response to not be JSON")
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).Get(context.Background(), "/test\x00invalid")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"test":"data"}` {
				t.Errorf("unexpected body %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		resp, err := NewAPIService(server.URL, nil).Post(context.Background(), "/test", []byte(`{"test":"data"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}
	})
}

func TestTracksAPI(t *testing.T) {
	t.Run("returns tracks in request order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks" {
				t.Errorf("expected /tracks, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("ids"); got != "b,a,missing" {
				t.Errorf("expected ids b,a,missing, got %s", got)
			}
			w.Write([]byte(`{"tracks":[
				{"id":"a","title":"Song A","artistName":"Artist","duration":1500},
				{"id":"b","title":"Song B","artistName":"Artist","duration":2000}
			]}`))
		}))
		defer server.Close()

		tracks, err := NewTracksAPI(NewAPIService(server.URL, nil)).FetchTracks(context.Background(), []string{"b", "a", "missing"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(tracks) != 2 || tracks[0].ID != "b" || tracks[1].ID != "a" {
			t.Fatalf("expected [b a], got %+v", tracks)
		}
		if tracks[1].Duration != 1500*time.Millisecond {
			t.Errorf("expected 1.5s, got %v", tracks[1].Duration)
		}
	})

	t.Run("splits large requests", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte(`{"tracks":[]}`))
		}))
		defer server.Close()

		ids := make([]string, maxIDsPerRequest+1)
		for i := range ids {
			ids[i] = "t"
		}
		if _, err := NewTracksAPI(NewAPIService(server.URL, nil)).FetchTracks(context.Background(), ids); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 requests, got %d", calls.Load())
		}
	})

	t.Run("error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewTracksAPI(NewAPIService(server.URL, nil)).FetchTracks(context.Background(), []string{"a"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"tracks":`))
		}))
		defer server.Close()

		_, err := NewTracksAPI(NewAPIService(server.URL, nil)).FetchTracks(context.Background(), []string{"a"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

		_, err := NewTracksAPI(NewAPIService("http://example.com", client)).FetchTracks(context.Background(), []string{"a"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestTokenSource(t *testing.T) {
	t.Run("static token", func(t *testing.T) {
		ts, err := TokenSource(context.Background(), shared.CredentialsConfig{AccessToken: "abc"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.AccessToken != "abc" || tok.Type() != "Bearer" {
			t.Errorf("unexpected token %+v", tok)
		}
	})

	t.Run("client credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"issued","token_type":"bearer","expires_in":3600}`))
		}))
		defer server.Close()

		ts, err := TokenSource(context.Background(), shared.CredentialsConfig{
			ClientID: "id", ClientSecret: "secret", TokenURL: server.URL, AccessToken: "ignored",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.AccessToken != "issued" {
			t.Errorf("expected issued token, got %s", tok.AccessToken)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := TokenSource(context.Background(), shared.CredentialsConfig{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("authenticated client sends bearer", func(t *testing.T) {
		var got []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = append(got, r.Header.Get("Authorization"))
		}))
		defer server.Close()

		ts, _ := TokenSource(context.Background(), shared.CredentialsConfig{AccessToken: "abc"})
		client := NewAuthenticatedClient(context.Background(), ts)
		if _, err := NewAPIService(server.URL, client).Get(context.Background(), "/"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !slices.Equal(got, []string{"Bearer abc"}) {
			t.Errorf("expected bearer header, got %v", got)
		}
	})
}

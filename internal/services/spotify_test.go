package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *SpotifyService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSpotifyService(tu.StaticToken("test_token"), SpotifyOpts{BaseURL: server.URL})
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewSpotifyService(tu.StaticToken("x"), SpotifyOpts{})
			if srv.baseURL != defaultSpotifyBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected default HTTP client")
			}
		})

		t.Run("From Config", func(t *testing.T) {
			cfg := shared.SpotifyConfig{APIURL: "http://example.test/v1", MaxRequestsPerSecond: 5}
			srv := NewSpotifyServiceFromConfig(cfg, tu.StaticToken("x"), nil)
			if srv.baseURL != cfg.APIURL {
				t.Errorf("expected base URL %s, got %s", cfg.APIURL, srv.baseURL)
			}
			if srv.limiter.Limit() != 5 {
				t.Errorf("expected limit 5, got %v", srv.limiter.Limit())
			}
		})
	})

	t.Run("SearchAlbum", func(t *testing.T) {
		t.Run("Returns First Album ID", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("expected /search, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
					t.Errorf("expected bearer header, got %q", got)
				}
				q := r.URL.Query()
				if q.Get("q") != "artist:Moderat album:II" {
					t.Errorf("unexpected query %q", q.Get("q"))
				}
				if q.Get("type") != "album" || q.Get("limit") != "1" {
					t.Errorf("unexpected type/limit: %v", q)
				}
				fmt.Fprint(w, `{"albums":{"items":[{"id":"album123","name":"II"}],"total":1}}`)
			})

			id, err := srv.SearchAlbum(context.Background(), "Moderat", "II")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "album123" {
				t.Errorf("expected album123, got %s", id)
			}
		})

		t.Run("No Results", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"albums":{"items":[],"total":0}}`)
			})

			id, err := srv.SearchAlbum(context.Background(), "Nobody", "Nothing")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "" {
				t.Errorf("expected empty ID, got %s", id)
			}
		})

		t.Run("Unauthorized Is Fatal", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			_, err := srv.SearchAlbum(context.Background(), "a", "b")
			if !errors.Is(err, shared.ErrAuth) || !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrAuth and ErrTokenExpired, got %v", err)
			}
			if !shared.IsFatal(err) {
				t.Error("expected error to be fatal")
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})

			_, err := srv.SearchAlbum(context.Background(), "a", "b")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if shared.IsFatal(err) {
				t.Error("expected error not to be fatal")
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"albums":`)
			})

			_, err := srv.SearchAlbum(context.Background(), "a", "b")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("AlbumTracks", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/albums/album123/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "50" {
				t.Errorf("expected limit 50, got %s", r.URL.Query().Get("limit"))
			}
			fmt.Fprint(w, `{"items":[{"uri":"spotify:track:1"},{"uri":"spotify:track:2"},{"uri":""}],"total":3}`)
		})

		uris, err := srv.AlbumTracks(context.Background(), "album123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(uris) != 2 || uris[0] != "spotify:track:1" || uris[1] != "spotify:track:2" {
			t.Errorf("unexpected URIs: %v", uris)
		}
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/pl1/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("limit") != "100" || q.Get("offset") != "200" {
				t.Errorf("unexpected paging params: %v", q)
			}
			if !strings.Contains(q.Get("fields"), "total") {
				t.Errorf("expected fields filter to include total, got %s", q.Get("fields"))
			}
			fmt.Fprint(w, `{"items":[{"track":{"uri":"spotify:track:a"}},{"track":null}],"total":202}`)
		})

		page, err := srv.PlaylistTracks(context.Background(), "pl1", 500, 200)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Total != 202 || page.Offset != 200 || page.Limit != 100 {
			t.Errorf("unexpected page metadata: %+v", page)
		}
		if len(page.URIs) != 1 || page.URIs[0] != "spotify:track:a" {
			t.Errorf("unexpected URIs: %v", page.URIs)
		}
	})

	t.Run("AddTracks", func(t *testing.T) {
		t.Run("Sends URIs And Position", func(t *testing.T) {
			var body map[string]any
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode body: %v", err)
					return
				}
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"snapshot_id":"snap"}`)
			})

			err := srv.AddTracks(context.Background(), "pl1", []string{"spotify:track:1", "spotify:track:2"}, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if uris, ok := body["uris"].([]any); !ok || len(uris) != 2 {
				t.Errorf("expected 2 uris, got %v", body["uris"])
			}
			if pos, ok := body["position"].(float64); !ok || pos != 0 {
				t.Errorf("expected position 0, got %v", body["position"])
			}
		})

		t.Run("Negative Position Omitted", func(t *testing.T) {
			var body map[string]any
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&body)
				fmt.Fprint(w, `{"snapshot_id":"snap"}`)
			})

			if err := srv.AddTracks(context.Background(), "pl1", []string{"spotify:track:1"}, -1); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, ok := body["position"]; ok {
				t.Error("expected position to be omitted")
			}
		})

		t.Run("Empty Is No-op", func(t *testing.T) {
			var calls atomic.Int32
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})

			if err := srv.AddTracks(context.Background(), "pl1", nil, 0); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if calls.Load() != 0 {
				t.Errorf("expected no requests, got %d", calls.Load())
			}
		})

		t.Run("Too Many URIs", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
			uris := make([]string, MaxTracksPerWrite+1)
			err := srv.AddTracks(context.Background(), "pl1", uris, 0)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("Failure Wraps ErrWrite", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			})

			err := srv.AddTracks(context.Background(), "pl1", []string{"spotify:track:1"}, 0)
			if !errors.Is(err, shared.ErrWrite) || !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrWrite wrapping ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Unauthorized Stays Fatal", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			err := srv.AddTracks(context.Background(), "pl1", []string{"spotify:track:1"}, 0)
			if !shared.IsFatal(err) {
				t.Errorf("expected fatal error, got %v", err)
			}
		})
	})

	t.Run("doRequest", func(t *testing.T) {
		t.Run("Token Error Propagates", func(t *testing.T) {
			tokenErr := fmt.Errorf("%w: %w", shared.ErrAuth, shared.ErrNotAuthenticated)
			srv := NewSpotifyService(tu.TokenFunc(func(ctx context.Context) (string, error) {
				return "", tokenErr
			}), SpotifyOpts{BaseURL: "http://127.0.0.1:0"})

			_, err := srv.SearchAlbum(context.Background(), "a", "b")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}
			srv := NewSpotifyService(tu.StaticToken("x"), SpotifyOpts{BaseURL: "http://example.test", HTTPClient: client})

			_, err := srv.AlbumTracks(context.Background(), "id")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			srv := NewSpotifyService(tu.StaticToken("x"), SpotifyOpts{BaseURL: "http://example.test", HTTPClient: client})

			_, err := srv.AlbumTracks(context.Background(), "id")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			srv := NewSpotifyService(tu.StaticToken("x"), SpotifyOpts{BaseURL: "http://example.test", MaxRequestsPerSecond: 0.001})
			srv.limiter.Allow()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := srv.SearchAlbum(ctx, "a", "b")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Cancelled In Flight", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, context.Canceled)}
			srv := NewSpotifyService(tu.StaticToken("x"), SpotifyOpts{BaseURL: "http://example.test", HTTPClient: client})

			_, err := srv.AlbumTracks(context.Background(), "id")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}

			err = srv.AddTracks(context.Background(), "pl1", []string{"spotify:track:1"}, 0)
			if !errors.Is(err, context.Canceled) || !errors.Is(err, shared.ErrWrite) {
				t.Errorf("expected ErrWrite wrapping context.Canceled, got %v", err)
			}
		})
	})
}

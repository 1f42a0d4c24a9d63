package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTokenFile(t *testing.T, token storedToken) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	encoded, err := json.Marshal(token)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	return path
}

func freshToken() storedToken {
	return storedToken{
		AccessToken:  "valid-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
	}
}

const playlistResponse = `{
  "items": [
    {
      "id": "pli-1",
      "snippet": {
        "title": "Some Video",
        "resourceId": {"videoId": "vid-1"}
      }
    }
  ]
}`

func TestNextEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer valid-token" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.URL.Query().Get("playlistId"); got != "PL123" {
			t.Errorf("unexpected playlist id: %q", got)
		}
		w.Write([]byte(playlistResponse))
	}))
	defer server.Close()

	client := NewClient(Config{
		PlaylistID: "PL123",
		BaseURL:    server.URL,
		TokenFile:  writeTokenFile(t, freshToken()),
	})

	entry, err := client.NextEntry(context.Background())
	if err != nil {
		t.Fatalf("NextEntry failed: %v", err)
	}
	if entry.PlaylistItemID != "pli-1" || entry.VideoID != "vid-1" || entry.Title != "Some Video" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.WatchURL() != "https://www.youtube.com/watch?v=vid-1" {
		t.Fatalf("unexpected watch url: %s", entry.WatchURL())
	}
}

func TestNextEntryEmptyPlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		PlaylistID: "PL123",
		BaseURL:    server.URL,
		TokenFile:  writeTokenFile(t, freshToken()),
	})

	if _, err := client.NextEntry(context.Background()); !errors.Is(err, ErrEmptyPlaylist) {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestRemoveEntry(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", r.Method)
		}
		deleted = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(Config{
		PlaylistID: "PL123",
		BaseURL:    server.URL,
		TokenFile:  writeTokenFile(t, freshToken()),
	})

	if err := client.RemoveEntry(context.Background(), "pli-9"); err != nil {
		t.Fatalf("RemoveEntry failed: %v", err)
	}
	if deleted != "pli-9" {
		t.Fatalf("expected delete of pli-9, got %q", deleted)
	}
}

func TestExpiredTokenIsRefreshedAndPersisted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("unexpected grant type: %q", got)
		}
		if got := r.Form.Get("refresh_token"); got != "refresh-token" {
			t.Errorf("unexpected refresh token: %q", got)
		}
		w.Write([]byte(`{"access_token":"new-token","expires_in":3600,"token_type":"Bearer"}`))
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer new-token" {
			t.Errorf("expected refreshed token, got %q", got)
		}
		w.Write([]byte(playlistResponse))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokenPath := writeTokenFile(t, storedToken{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(-time.Hour),
	})

	client := NewClient(Config{
		PlaylistID:   "PL123",
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/token",
		TokenFile:    tokenPath,
		ClientID:     "cid",
		ClientSecret: "secret",
	})

	if _, err := client.NextEntry(context.Background()); err != nil {
		t.Fatalf("NextEntry failed: %v", err)
	}

	raw, err := os.ReadFile(tokenPath)
	if err != nil {
		t.Fatalf("read token file: %v", err)
	}
	var persisted storedToken
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("parse persisted token: %v", err)
	}
	if persisted.AccessToken != "new-token" {
		t.Fatalf("expected persisted access token, got %q", persisted.AccessToken)
	}
	if persisted.RefreshToken != "refresh-token" {
		t.Fatal("refresh token should be carried over")
	}
	if !persisted.Expiry.After(time.Now()) {
		t.Fatal("expected future expiry on persisted token")
	}
}

func TestMissingRefreshTokenRejected(t *testing.T) {
	client := NewClient(Config{
		PlaylistID: "PL123",
		TokenFile:  writeTokenFile(t, storedToken{AccessToken: "only-access"}),
	})
	if _, err := client.NextEntry(context.Background()); err == nil {
		t.Fatal("expected error for token file without refresh token")
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeGist serves one gist file and records PATCH bodies
type fakeGist struct {
	mu      sync.Mutex
	content string
	gets    int
	patches int
	status  int
}

func (f *fakeGist) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "token test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.URL.Path != "/abc123" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.gets++
		files := map[string]interface{}{}
		if f.content != "" {
			files[gistFilename] = map[string]string{"content": f.content}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"files": files})
	case http.MethodPatch:
		f.patches++
		var payload struct {
			Files map[string]struct {
				Content string `json:"content"`
			} `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.content = payload.Files[gistFilename].Content
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestGistStore(t *testing.T, fake *fakeGist) *GistStore {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := NewGistStore("abc123", "test-token")
	if err != nil {
		t.Fatalf("NewGistStore() error = %v", err)
	}
	return s.WithBaseURL(server.URL)
}

func TestGistStore(t *testing.T) {
	fake := &fakeGist{}
	s := newTestGistStore(t, fake)
	exerciseStore(t, s)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.gets != 1 {
		t.Errorf("gist fetched %d times, want 1", fake.gets)
	}
	if fake.patches != 1 {
		t.Errorf("gist patched %d times, want 1", fake.patches)
	}

	var stored seenFile
	if err := json.Unmarshal([]byte(fake.content), &stored); err != nil {
		t.Fatalf("gist content is not JSON: %v", err)
	}
	if _, ok := stored.Attempts["10553003"]; !ok {
		t.Errorf("gist content = %s, want attempt 10553003", fake.content)
	}
}

func TestGistStore_LoadsExisting(t *testing.T) {
	fake := &fakeGist{content: `{"attempts":{"900":"{\"id\":\"900\"}"},"updated_at":"2024-01-15T00:00:00Z"}`}
	s := newTestGistStore(t, fake)

	value, found, err := s.Get(context.Background(), "900")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || string(value) != `{"id":"900"}` {
		t.Errorf("Get() = %q, %v", value, found)
	}
}

func TestGistStore_APIError(t *testing.T) {
	fake := &fakeGist{status: http.StatusForbidden}
	s := newTestGistStore(t, fake)

	_, _, err := s.Get(context.Background(), "1")
	if err == nil || err.Error() != "GitHub API error (status 403)" {
		t.Errorf("Get() error = %v", err)
	}
}

func TestGistStore_PatchFailureRollsBack(t *testing.T) {
	fake := &fakeGist{}
	s := newTestGistStore(t, fake)
	ctx := context.Background()

	if _, _, err := s.Get(ctx, "1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	fake.mu.Lock()
	fake.status = http.StatusInternalServerError
	fake.mu.Unlock()

	if err := s.Put(ctx, "1", []byte("{}")); err == nil {
		t.Fatal("Put() should fail when the gist cannot be updated")
	}
	if _, found, _ := s.Get(ctx, "1"); found {
		t.Error("failed Put() should not leave the id behind")
	}
}

func TestNewGistStore_Validation(t *testing.T) {
	tests := []struct {
		name   string
		gistID string
		token  string
	}{
		{"missing gist id", "", "token"},
		{"missing token", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGistStore(tt.gistID, tt.token)
			if !errors.Is(err, ErrNotConfigured) {
				t.Errorf("NewGistStore() error = %v, want ErrNotConfigured", err)
			}
		})
	}
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	gistAPIURL   = "https://api.github.com/gists"
	gistFilename = "seen.json"
	gistTimeout  = 15 * time.Second
)

// GistStore keeps the seen-set as one JSON file in a GitHub Gist. The file is
// read on first use and rewritten on every Put.
type GistStore struct {
	gistID      string
	githubToken string
	baseURL     string
	httpClient  *http.Client

	mu      sync.Mutex
	entries map[string]string
}

// NewGistStore creates a Gist-backed store
func NewGistStore(gistID, githubToken string) (*GistStore, error) {
	if gistID == "" {
		return nil, fmt.Errorf("gist ID: %w", ErrNotConfigured)
	}
	if githubToken == "" {
		return nil, fmt.Errorf("GitHub token: %w", ErrNotConfigured)
	}

	return &GistStore{
		gistID:      gistID,
		githubToken: githubToken,
		baseURL:     gistAPIURL,
		httpClient: &http.Client{
			Timeout: gistTimeout,
		},
	}, nil
}

// WithBaseURL points the store at a different API root
func (g *GistStore) WithBaseURL(url string) *GistStore {
	g.baseURL = url
	return g
}

func (g *GistStore) newRequest(ctx context.Context, method string, body []byte) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s", g.baseURL, g.gistID)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// load fetches the gist once. Caller holds g.mu.
func (g *GistStore) load(ctx context.Context) error {
	if g.entries != nil {
		return nil
	}

	req, err := g.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Don't include response body in error to prevent information leakage
		return fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}

	var gistResp struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gistResp); err != nil {
		return fmt.Errorf("decoding gist response: %w", err)
	}

	entries := make(map[string]string)
	if file, exists := gistResp.Files[gistFilename]; exists && file.Content != "" {
		var stored seenFile
		if err := json.Unmarshal([]byte(file.Content), &stored); err != nil {
			return fmt.Errorf("parsing seen-set: %w", err)
		}
		for id, v := range stored.Attempts {
			entries[id] = v
		}
	}
	g.entries = entries
	return nil
}

// save writes the whole seen-set back. Caller holds g.mu.
func (g *GistStore) save(ctx context.Context) error {
	content, err := json.MarshalIndent(seenFile{
		Attempts:  g.entries,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seen-set: %w", err)
	}

	payload := map[string]interface{}{
		"files": map[string]interface{}{
			gistFilename: map[string]string{
				"content": string(content),
			},
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := g.newRequest(ctx, http.MethodPatch, payloadBytes)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("updating gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}
	return nil
}

// Get implements Store
func (g *GistStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(ctx); err != nil {
		return nil, false, err
	}
	v, ok := g.entries[id]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

// Put implements Store
func (g *GistStore) Put(ctx context.Context, id string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(ctx); err != nil {
		return err
	}

	if _, ok := g.entries[id]; ok {
		return nil
	}
	g.entries[id] = string(value)
	if err := g.save(ctx); err != nil {
		delete(g.entries, id)
		return err
	}
	return nil
}

// Close implements Store
func (g *GistStore) Close() error { return nil }

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pfrederiksen/timus-feed/internal/attempt"
	"golang.org/x/net/html/charset"
)

const (
	StatusURL    = "https://timus.online/status.aspx"
	UserAgent    = "timus-feed/1.0 (github.com/pfrederiksen/timus-feed)"
	Timeout      = 30 * time.Second
	DefaultCount = 10
	Locale       = "ru"
)

// StatusError is returned when the status page answers with a non-2xx code
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Scraper fetches one author's recent submissions from the status page
type Scraper struct {
	client   *http.Client
	url      string
	authorID string
	count    int
	dom      bool
}

// New creates a new Scraper for the given author
func New(authorID string) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:      StatusURL,
		authorID: authorID,
		count:    DefaultCount,
	}
}

// WithURL points the scraper at a different status page
func (s *Scraper) WithURL(u string) *Scraper {
	if u != "" {
		s.url = u
	}
	return s
}

// WithCount sets how many submissions to request
func (s *Scraper) WithCount(n int) *Scraper {
	if n > 0 {
		s.count = n
	}
	return s
}

// WithDocumentParser switches from the streaming tokenizer to a goquery document walk
func (s *Scraper) WithDocumentParser(enabled bool) *Scraper {
	s.dom = enabled
	return s
}

// PageURL returns the status page URL with author, count and locale parameters
func (s *Scraper) PageURL() (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("parsing status URL: %w", err)
	}
	q := u.Query()
	q.Set("author", s.authorID)
	q.Set("count", strconv.Itoa(s.count))
	q.Set("locale", Locale)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchAttempts fetches the status page and returns its rows newest first.
// A transport error or non-2xx status fails the whole fetch.
func (s *Scraper) FetchAttempts(ctx context.Context) ([]*attempt.Attempt, error) {
	pageURL, err := s.PageURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return s.parseAttempts(resp.Body, resp.Header.Get("Content-Type"))
}

// parseAttempts decodes the body according to its declared charset and parses it
func (s *Scraper) parseAttempts(r io.Reader, contentType string) ([]*attempt.Attempt, error) {
	body, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding page charset: %w", err)
	}

	if s.dom {
		return ParseDocument(body)
	}
	return Parse(body)
}

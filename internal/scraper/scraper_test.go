package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestFetchAttempts(t *testing.T) {
	fixture := loadFixture(t)

	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  bool
		wantStatus int
		wantRows   int
	}{
		{
			name:       "successful fetch",
			body:       fixture,
			statusCode: http.StatusOK,
			wantRows:   3,
		},
		{
			name:       "not found aborts",
			body:       fixture,
			statusCode: http.StatusNotFound,
			wantError:  true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error aborts",
			body:       "",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "page without table",
			body:       "<html><body><p>Нет посылок</p></body></html>",
			statusCode: http.StatusOK,
			wantRows:   1, // the trailing empty record
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "timus-feed") {
					t.Errorf("User-Agent = %q, should contain 'timus-feed'", userAgent)
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := New("123456").WithURL(server.URL)
			rows, err := s.FetchAttempts(context.Background())

			if tt.wantError {
				if err == nil {
					t.Fatal("FetchAttempts() expected error, got nil")
				}
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("FetchAttempts() error = %v, want *StatusError", err)
				}
				if statusErr.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.wantStatus)
				}
				if rows != nil {
					t.Error("FetchAttempts() should not return rows on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("FetchAttempts() unexpected error: %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Errorf("FetchAttempts() returned %d rows, want %d", len(rows), tt.wantRows)
			}
		})
	}
}

func TestFetchAttempts_QueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("author") != "123456" {
			t.Errorf("author = %q, want 123456", q.Get("author"))
		}
		if q.Get("count") != "25" {
			t.Errorf("count = %q, want 25", q.Get("count"))
		}
		if q.Get("locale") != "ru" {
			t.Errorf("locale = %q, want ru", q.Get("locale"))
		}
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	s := New("123456").WithURL(server.URL).WithCount(25)
	if _, err := s.FetchAttempts(context.Background()); err != nil {
		t.Fatalf("FetchAttempts() error = %v", err)
	}
}

func TestFetchAttempts_Windows1251(t *testing.T) {
	page := `<table><tr class="even"><td class="id">1</td><td class="date">10:00:00</td><td class="date">01 фев 2024</td><td class="memory">120 КБ</td></tr></table>`
	encoded, err := charmap.Windows1251.NewEncoder().String(page)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		w.Write([]byte(encoded))
	}))
	defer server.Close()

	rows, err := New("1").WithURL(server.URL).FetchAttempts(context.Background())
	if err != nil {
		t.Fatalf("FetchAttempts() error = %v", err)
	}
	if got := rows[0].Get("memory"); got != "120 КБ" {
		t.Errorf("memory = %q, want %q", got, "120 КБ")
	}
	if got := rows[0].Get("date"); got != "10:00:00 01 фев 2024" {
		t.Errorf("date = %q, want %q", got, "10:00:00 01 фев 2024")
	}
}

func TestFetchAttempts_DocumentParser(t *testing.T) {
	fixture := loadFixture(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer server.Close()

	rows, err := New("123456").WithURL(server.URL).WithDocumentParser(true).FetchAttempts(context.Background())
	if err != nil {
		t.Fatalf("FetchAttempts() error = %v", err)
	}
	if len(rows) != 3 || rows[0].ID() != "10553003" {
		t.Errorf("FetchAttempts() rows = %d, first id %q", len(rows), rows[0].ID())
	}
}

func TestFetchAttempts_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New("1").WithURL(server.URL).FetchAttempts(ctx); err == nil {
		t.Error("FetchAttempts() expected error for canceled context")
	}
}

func TestNew(t *testing.T) {
	s := New("42")

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.client == nil {
		t.Error("scraper client is nil")
	}
	if s.url != StatusURL {
		t.Errorf("scraper url = %q, want %q", s.url, StatusURL)
	}
	if s.count != DefaultCount {
		t.Errorf("scraper count = %d, want %d", s.count, DefaultCount)
	}

	got, err := s.PageURL()
	if err != nil {
		t.Fatalf("PageURL() error = %v", err)
	}
	want := "https://timus.online/status.aspx?author=42&count=10&locale=ru"
	if got != want {
		t.Errorf("PageURL() = %q, want %q", got, want)
	}
}

func TestTokenize(t *testing.T) {
	html := `
		<table>
			<tr class="header"><td class="id">ID</td></tr>
			<tr class="even"><td class="id">7</td><td>x &amp; y</td></tr>
			<tr><td class="id">outside</td></tr>
		</table>`

	var got []Token
	if err := Tokenize(strings.NewReader(html), func(tok Token) { got = append(got, tok) }); err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []Token{
		RowToken(),
		CellToken("id"),
		TextToken("7"),
		BareCellToken(),
		TextToken("x & y"),
	}

	if len(got) != len(want) {
		t.Fatalf("Tokenize() emitted %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTokenKind_String(t *testing.T) {
	if RowStart.String() != "row" || CellStart.String() != "cell" || Text.String() != "text" {
		t.Error("unexpected TokenKind names")
	}
	if TokenKind(9).String() != "TokenKind(9)" {
		t.Errorf("unknown kind = %q", TokenKind(9).String())
	}
}

package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"normal short name", "Alice", "Alice"},
		{"exactly 16 chars", "1234567890123456", "1234567890123456"},
		{"long name truncated", "ThisIsAVeryLongUsername", "ThisIsAVeryLongU"},
		{"control chars stripped", "he\x00ll\x1bo", "hello"},
		{"ansi escape partial", "he\x1b[31mllo", "he[31mllo"},
		{"empty input", "", ""},
		{"pure control chars", "\x00\x01\x02\x1b", ""},
		{"multi-byte runes truncated by byte limit", "日本語のテスト名前", "日本語のテ"},
		{"emoji truncated by byte limit", "🎮Player🎮Name🎮", "🎮Player🎮Na"},
		{"mixed printable and control", "a\x00b\x01c\x02d", "abcd"},
		{"tabs stripped", "hello\tworld", "helloworld"},
		{"newlines stripped", "hello\nworld", "helloworld"},
		{"invalid utf-8 dropped", "ab\xffcd", "abcd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitizeName(tc.input)
			if got != tc.expect {
				t.Errorf("sanitizeName(%q) = %q, want %q", tc.input, got, tc.expect)
			}
		})
	}
}

func TestSessionID(t *testing.T) {
	a, b := sessionID("mira"), sessionID("mira")
	if a == b {
		t.Errorf("session ids collide: %q", a)
	}
	if !strings.HasPrefix(a, "mira-") {
		t.Errorf("id %q lacks the name", a)
	}
	if got := sessionID(""); !strings.HasPrefix(got, "guest-") {
		t.Errorf("anonymous id = %q", got)
	}
}

func TestSpectatorsRouting(t *testing.T) {
	sp := newSpectators(slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.Handle("GET /watch/{session}", sp)

	sp.open("mira-abc")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watch/nobody", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}

	// A known session reaches the hub, which rejects a plain GET as a bad handshake.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watch/mira-abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("known session status = %d, want 400", rec.Code)
	}

	sp.close("mira-abc")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watch/mira-abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("closed session status = %d, want 404", rec.Code)
	}
}

func TestLoadOrCreateHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_key")
	first := loadOrCreateHostKey(path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("host key not persisted: %v", err)
	}
	second := loadOrCreateHostKey(path)
	if string(first.PublicKey().Marshal()) != string(second.PublicKey().Marshal()) {
		t.Error("reloaded host key differs from the generated one")
	}
}

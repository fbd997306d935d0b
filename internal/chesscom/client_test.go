package chesscom

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:    baseURL,
		UserAgent:  "chessvault-test",
		MaxRetries: 3,
	})
}

func TestArchives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player/alice/games/archives" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "chessvault-test" {
			t.Errorf("user-agent = %q", ua)
		}
		fmt.Fprint(w, `{"archives":["a/2024/01","a/2024/02"]}`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Archives(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Archives: %v", err)
	}
	if len(got) != 2 || got[0] != "a/2024/01" {
		t.Errorf("archives = %v", got)
	}
}

func TestArchivesUnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Archives(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if got != nil {
		t.Errorf("archives = %v, want nil", got)
	}
}

func TestGetJSONRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			w.Header().Set("Retry-After", "0")
			http.Error(w, `{"message":"slow down"}`, http.StatusTooManyRequests)
		case 2:
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		default:
			fmt.Fprint(w, `{"archives":["a/2024/01"]}`)
		}
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Archives(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Archives after retries: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("archives = %v, want one entry", got)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server hit %d times, want 3", n)
	}
}

func TestGetJSONRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"down"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Archives(context.Background(), "alice")
	if err == nil {
		t.Fatal("want an error after exhausting retries")
	}
}

func TestMonthGamesSkipsBadEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"games":[
			{"uuid":"g1","time_control":"180","white":{"username":"alice","result":"win"},"black":{"username":"bob","result":"resigned"}},
			{"uuid":42},
			{"uuid":"g3","time_control":"600"}
		]}`)
	}))
	defer srv.Close()

	games, err := newTestClient(srv.URL).MonthGames(context.Background(), srv.URL+"/month")
	if err != nil {
		t.Fatalf("MonthGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2 (malformed entry skipped)", len(games))
	}
	if games[0].UUID != "g1" || games[1].UUID != "g3" {
		t.Errorf("uuids = %q, %q", games[0].UUID, games[1].UUID)
	}
	if games[0].White.Username != "alice" {
		t.Errorf("white = %q", games[0].White.Username)
	}
	if len(games[0].Raw) == 0 {
		t.Error("decoded games must keep their raw payload")
	}
}

func TestMonthGamesMissingArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "", http.StatusGone)
	}))
	defer srv.Close()

	games, err := newTestClient(srv.URL).MonthGames(context.Background(), srv.URL+"/month")
	if err != nil {
		t.Fatalf("410 should not be an error, got %v", err)
	}
	if games != nil {
		t.Errorf("games = %v, want nil", games)
	}
}

func TestPlayerProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/player/alice" {
			fmt.Fprint(w, `{"username":"alice","title":"FM","country":"https://api.chess.com/pub/country/NO"}`)
			return
		}
		http.Error(w, "", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	p, err := c.PlayerProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PlayerProfile: %v", err)
	}
	if p == nil || p.Title != "FM" {
		t.Fatalf("profile = %+v, want FM", p)
	}

	p, err = c.PlayerProfile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("missing profile should not error: %v", err)
	}
	if p != nil {
		t.Errorf("profile = %+v, want nil", p)
	}

	p, err = c.PlayerProfile(context.Background(), "")
	if err != nil || p != nil {
		t.Errorf("empty username = (%+v, %v), want (nil, nil)", p, err)
	}
}

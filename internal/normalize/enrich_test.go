package normalize

import (
	"context"
	"errors"
	"testing"

	"chessvault/internal/chesscom"
	"chessvault/pkg/models"
)

func TestCountryCodeFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://api.chess.com/pub/country/NO", "NO", true},
		{"https://api.chess.com/pub/country/us", "us", true},
		{"https://api.chess.com/pub/country/NOR", "", false},
		{"https://api.chess.com/pub/player/foo", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got := CountryCodeFromURL(tc.url)
		if !tc.ok {
			if got != nil {
				t.Errorf("CountryCodeFromURL(%q) = %q, want nil", tc.url, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Errorf("CountryCodeFromURL(%q) = %v, want %q", tc.url, got, tc.want)
		}
	}
}

func TestProfileCacheSingleLookup(t *testing.T) {
	calls := 0
	cache := NewProfileCache(func(ctx context.Context, username string) (*chesscom.Profile, error) {
		calls++
		return &chesscom.Profile{Username: username, Title: "GM"}, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		p := cache.Get(ctx, "Alice")
		if p == nil || p.Title != "GM" {
			t.Fatalf("Get returned %v, want the GM profile", p)
		}
	}
	// case variants hit the same entry
	if p := cache.Get(ctx, "ALICE"); p == nil {
		t.Fatal("case-insensitive lookup missed the cache")
	}
	if calls != 1 {
		t.Errorf("lookup called %d times, want 1", calls)
	}
	if cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Len())
	}
}

func TestProfileCacheNegativeAndError(t *testing.T) {
	calls := 0
	cache := NewProfileCache(func(ctx context.Context, username string) (*chesscom.Profile, error) {
		calls++
		if username == "ghost" {
			return nil, nil
		}
		return nil, errors.New("upstream flaked")
	})

	ctx := context.Background()
	if p := cache.Get(ctx, "ghost"); p != nil {
		t.Errorf("missing profile = %v, want nil", p)
	}
	if p := cache.Get(ctx, "flaky"); p != nil {
		t.Errorf("errored profile = %v, want nil", p)
	}
	// both outcomes are cached
	cache.Get(ctx, "ghost")
	cache.Get(ctx, "flaky")
	if calls != 2 {
		t.Errorf("lookup called %d times, want 2", calls)
	}
	if p := cache.Get(ctx, ""); p != nil {
		t.Errorf("empty name = %v, want nil", p)
	}
}

func TestEnricherFillsBothSides(t *testing.T) {
	joined := int64(1600000000)
	fide := 2100
	cache := NewProfileCache(func(ctx context.Context, username string) (*chesscom.Profile, error) {
		switch username {
		case "alice":
			return &chesscom.Profile{
				Username: "alice",
				Title:    "FM",
				Status:   "premium",
				Name:     "Alice Example",
				Country:  "https://api.chess.com/pub/country/NO",
				Joined:   &joined,
				FIDE:     &fide,
			}, nil
		default:
			return nil, nil
		}
	})
	e := &Enricher{Cache: cache}

	rec := models.GameRecord{Username: "alice", OpponentUsername: "ghost"}
	e.Enrich(context.Background(), &rec)

	if rec.UserTitle == nil || *rec.UserTitle != "FM" {
		t.Errorf("user_title = %v, want FM", rec.UserTitle)
	}
	if rec.UserCountryCode == nil || *rec.UserCountryCode != "NO" {
		t.Errorf("user_country_code = %v, want NO", rec.UserCountryCode)
	}
	if rec.UserFIDE == nil || *rec.UserFIDE != 2100 {
		t.Errorf("user_fide = %v, want 2100", rec.UserFIDE)
	}
	if rec.UserJoined == nil || *rec.UserJoined != joined {
		t.Errorf("user_joined = %v, want %d", rec.UserJoined, joined)
	}

	// opponent has no profile: every opponent_* field stays nil
	if rec.OpponentTitle != nil || rec.OpponentCountryCode != nil || rec.OpponentFIDE != nil {
		t.Error("missing opponent profile must leave opponent fields nil")
	}
}

func TestEnricherEmptyTitleStaysNil(t *testing.T) {
	cache := NewProfileCache(func(ctx context.Context, username string) (*chesscom.Profile, error) {
		return &chesscom.Profile{Username: username, Status: "basic"}, nil
	})
	e := &Enricher{Cache: cache}

	rec := models.GameRecord{Username: "alice", OpponentUsername: "bob"}
	e.Enrich(context.Background(), &rec)

	if rec.UserTitle != nil {
		t.Errorf("user_title = %q, want nil for an untitled player", *rec.UserTitle)
	}
	if rec.UserStatus == nil || *rec.UserStatus != "basic" {
		t.Errorf("user_status = %v, want basic", rec.UserStatus)
	}
}

package normalize

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"chessvault/internal/chesscom"
	"chessvault/pkg/models"
)

// ProfileLookup resolves a username to a profile, or nil when the
// account does not exist. internal/chesscom.Client.PlayerProfile
// satisfies it.
type ProfileLookup func(ctx context.Context, username string) (*chesscom.Profile, error)

// ProfileCache memoizes profile lookups for the lifetime of one run,
// keyed by lowercased username. Negative results ("no such player") are
// cached too, so each name is looked up at most once.
type ProfileCache struct {
	mu       sync.Mutex
	lookup   ProfileLookup
	profiles map[string]*chesscom.Profile
}

func NewProfileCache(lookup ProfileLookup) *ProfileCache {
	return &ProfileCache{
		lookup:   lookup,
		profiles: make(map[string]*chesscom.Profile),
	}
}

// Get returns the cached profile for name, performing the external
// lookup on first encounter. Lookup errors are treated as "not found"
// and cached: a flaky profile must not fail game processing.
func (c *ProfileCache) Get(ctx context.Context, name string) *chesscom.Profile {
	if name == "" {
		return nil
	}
	key := strings.ToLower(name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.profiles[key]; ok {
		return p
	}
	p, err := c.lookup(ctx, name)
	if err != nil {
		p = nil
	}
	c.profiles[key] = p
	return p
}

// Len reports how many usernames have been resolved (found or not).
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.profiles)
}

var reCountryCode = regexp.MustCompile(`/country/([A-Za-z]{2})$`)

// CountryCodeFromURL extracts the two-letter code from an API country
// reference like "https://api.chess.com/pub/country/NO".
func CountryCodeFromURL(url string) *string {
	if url == "" {
		return nil
	}
	m := reCountryCode.FindStringSubmatch(url)
	if m == nil {
		return nil
	}
	return &m[1]
}

// Enricher grafts profile attributes onto normalized records.
type Enricher struct {
	Cache *ProfileCache
}

// Enrich fills the user_* and opponent_* profile fields of rec in place.
// A missing profile leaves the corresponding fields nil, so the record
// stays schema-compatible with the unenriched case.
func (e *Enricher) Enrich(ctx context.Context, rec *models.GameRecord) {
	if p := e.Cache.Get(ctx, rec.Username); p != nil {
		rec.UserTitle = optStr(p.Title)
		rec.UserStatus = optStr(p.Status)
		rec.UserNameFull = optStr(p.Name)
		rec.UserLocation = optStr(p.Location)
		rec.UserCountryCode = CountryCodeFromURL(p.Country)
		rec.UserJoined = p.Joined
		rec.UserLastOnline = p.LastOnline
		rec.UserFIDE = p.FIDE
		rec.UserVerified = p.Verified
	}

	if p := e.Cache.Get(ctx, rec.OpponentUsername); p != nil {
		rec.OpponentTitle = optStr(p.Title)
		rec.OpponentStatus = optStr(p.Status)
		rec.OpponentNameFull = optStr(p.Name)
		rec.OpponentLocation = optStr(p.Location)
		rec.OpponentCountryCode = CountryCodeFromURL(p.Country)
		rec.OpponentJoined = p.Joined
		rec.OpponentLastOnline = p.LastOnline
		rec.OpponentFIDE = p.FIDE
		rec.OpponentVerified = p.Verified
	}
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

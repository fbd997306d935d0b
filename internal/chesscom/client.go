package chesscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the published Chess.com data API root. The client
// takes the base URL explicitly so tests and mirrors can point elsewhere.
const DefaultBaseURL = "https://api.chess.com/pub"

// ErrNotFound marks a 404/410 response. Callers treat it as "no data",
// not as a failure.
var ErrNotFound = errors.New("chesscom: resource not found")

type Config struct {
	BaseURL    string
	UserAgent  string
	Sleep      time.Duration // pause after each successful request
	MaxRetries int
	Timeout    time.Duration
}

type Client struct {
	baseURL    string
	userAgent  string
	sleep      time.Duration
	maxRetries int
	http       *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		sleep:      cfg.Sleep,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: cfg.Timeout},
	}
}

type httpError struct {
	Status int
	Body   string
}

func (e httpError) Error() string { return fmt.Sprintf("http %d: %s", e.Status, e.Body) }

// getJSON fetches url and decodes the body into v. 429 and 5xx are
// retried with a growing pause (Retry-After is honored when numeric);
// 404/410 return ErrNotFound.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	var last error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}

		if res.StatusCode == http.StatusOK {
			err := json.NewDecoder(res.Body).Decode(v)
			res.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", url, err)
			}
			if c.sleep > 0 {
				select {
				case <-time.After(c.sleep):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		}

		if res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone {
			res.Body.Close()
			return ErrNotFound
		}

		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&msg)
		res.Body.Close()
		last = httpError{Status: res.StatusCode, Body: msg.Message}

		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			delay := time.Duration(250*(attempt+1)) * time.Millisecond
			if res.StatusCode == http.StatusTooManyRequests {
				if ra := res.Header.Get("Retry-After"); ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
						delay = time.Duration(secs) * time.Second
					}
				}
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		break
	}
	return last
}

// Archives returns the ordered list of monthly archive URLs for a user.
// Unknown users and users with no games yield an empty slice.
func (c *Client) Archives(ctx context.Context, username string) ([]string, error) {
	var idx struct {
		Archives []string `json:"archives"`
	}
	url := fmt.Sprintf("%s/player/%s/games/archives", c.baseURL, username)
	if err := c.getJSON(ctx, url, &idx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return idx.Archives, nil
}

// MonthGames returns the games of one monthly archive. Each game is
// decoded individually so a single malformed entry is skipped instead of
// losing the whole month.
func (c *Client) MonthGames(ctx context.Context, archiveURL string) ([]Game, error) {
	var month struct {
		Games []json.RawMessage `json:"games"`
	}
	if err := c.getJSON(ctx, archiveURL, &month); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	games := make([]Game, 0, len(month.Games))
	for i, raw := range month.Games {
		var g Game
		if err := json.Unmarshal(raw, &g); err != nil {
			log.Printf("[chesscom] skipping undecodable game %d in %s: %v", i, archiveURL, err)
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

// PlayerProfile returns a public profile, or nil when the account does
// not exist.
func (c *Client) PlayerProfile(ctx context.Context, username string) (*Profile, error) {
	if username == "" {
		return nil, nil
	}
	var p Profile
	url := fmt.Sprintf("%s/player/%s", c.baseURL, username)
	if err := c.getJSON(ctx, url, &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

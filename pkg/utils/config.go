package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("CHESSVAULT_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("CHESSVAULT_JWT_ISSUER")
	if issuer == "" {
		issuer = "chessvault"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("CHESSVAULT_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

// FetchConfig holds the knobs of the archive fetcher. The API base is a
// startup value passed into the client, never read as ambient state by
// the fetch code itself.
type FetchConfig struct {
	APIBase   string
	UserAgent string
	Sleep     time.Duration
}

func LoadFetchConfig() FetchConfig {
	base := os.Getenv("CHESSVAULT_API_BASE")
	if base == "" {
		base = "https://api.chess.com/pub"
	}

	// Chess.com asks for an identifying User-Agent
	agent := os.Getenv("CHESSVAULT_USER_AGENT")
	if agent == "" {
		agent = "chessvault/1.0"
	}

	sleep := 500 * time.Millisecond
	if ms := os.Getenv("CHESSVAULT_SLEEP_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= 0 {
			sleep = time.Duration(v) * time.Millisecond
		}
	}

	return FetchConfig{
		APIBase:   base,
		UserAgent: agent,
		Sleep:     sleep,
	}
}

package auth

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func protectedRouter(t *testing.T, ts TokenService, repo *Repo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(ts, repo), func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			t.Error("claims missing on an authenticated request")
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	ts := testTokenService()
	token, _, err := ts.Sign(&User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	r := protectedRouter(t, ts, nil)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := get(r, tc.header); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRequireAuthTokenVersion(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`
		CREATE TABLE users (
		  id TEXT PRIMARY KEY,
		  username TEXT NOT NULL UNIQUE,
		  password_hash TEXT NOT NULL,
		  token_version INTEGER NOT NULL DEFAULT 0,
		  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		t.Fatalf("create users: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO users (id, username, password_hash, token_version)
		VALUES ('u1', 'alice', 'x', 1)`); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	ts := testTokenService()
	r := protectedRouter(t, ts, NewRepo(db))

	current, _, err := ts.Sign(&User{ID: "u1", Username: "alice", TokenVersion: 1})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if w := get(r, "Bearer "+current); w.Code != http.StatusOK {
		t.Errorf("current version: status = %d, want 200", w.Code)
	}

	// issued before the last logout/password change
	stale, _, err := ts.Sign(&User{ID: "u1", Username: "alice", TokenVersion: 0})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if w := get(r, "Bearer "+stale); w.Code != http.StatusUnauthorized {
		t.Errorf("stale version: status = %d, want 401", w.Code)
	}
}

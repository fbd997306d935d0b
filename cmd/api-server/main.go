package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"chessvault/internal/archive"
	"chessvault/internal/auth"
	"chessvault/internal/chesscom"
	"chessvault/internal/games"
	"chessvault/internal/normalize"
	"chessvault/internal/progress"
	"chessvault/pkg/database"
	"chessvault/pkg/utils"
)

func main() {
	// cancelled during shutdown so in-flight background fetches stop
	srvCtx, srvCancel := context.WithCancel(context.Background())
	defer srvCancel()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Progress feeds first (so binding errors surface early)
	hub := progress.NewHub()
	router.GET("/ws", progress.WSHandler(hub))
	tcpSrv := progress.NewServer(":7070", hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Games (public, read-only)
	gamesRepo := games.NewRepo(db)
	gamesHandler := games.NewHandler(gamesRepo)
	gamesHandler.RegisterRoutes(router.Group("/games"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.RequireAuth(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
		})
	})

	// Fetch trigger (protected): runs one archive fetch in the
	// background, streaming progress to the hub and upserting results.
	fetchCfg := utils.LoadFetchConfig()
	var fetchBusy atomic.Bool
	protected.POST("/fetch", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Enrich   bool   `json:"enrich_profiles"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
			return
		}

		if !fetchBusy.CompareAndSwap(false, true) {
			c.JSON(http.StatusConflict, gin.H{"error": "a fetch is already running"})
			return
		}

		username := strings.TrimSpace(req.Username)
		enrich := req.Enrich
		go func() {
			defer fetchBusy.Store(false)

			client := chesscom.NewClient(chesscom.Config{
				BaseURL:   fetchCfg.APIBase,
				UserAgent: fetchCfg.UserAgent,
				Sleep:     fetchCfg.Sleep,
			})
			runner := &archive.Runner{Source: client, Notifier: hub}
			if enrich {
				runner.Enricher = &normalize.Enricher{
					Cache: normalize.NewProfileCache(client.PlayerProfile),
				}
			}

			records, err := runner.Run(srvCtx, username)
			if err != nil {
				log.Printf("[fetch] %s failed: %v", username, err)
				return
			}
			saved, err := archive.SaveToDatabase(srvCtx, db, records)
			if err != nil {
				log.Printf("[fetch] save for %s failed: %v", username, err)
				return
			}
			log.Printf("[fetch] %s: upserted %d games", username, saved)
		}()

		c.JSON(http.StatusAccepted, gin.H{"status": "fetch started", "username": username})
	})

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	srvCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}

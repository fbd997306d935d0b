package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"chessvault/internal/archive"
	"chessvault/internal/chesscom"
	"chessvault/internal/normalize"
	"chessvault/pkg/database"
	"chessvault/pkg/utils"
)

func main() {
	var (
		username   = flag.String("username", "", "Chess.com username (required)")
		out        = flag.String("out", "", "output path, in form ndjson:/path/to/file.ndjson (required)")
		saveDB     = flag.Bool("save-db", false, "also upsert records into the local SQLite database")
		enrich     = flag.Bool("enrich-profiles", false, "enrich records with player profile data (country/title/etc.)")
		sleep      = flag.Duration("sleep", 0, "pause between requests (overrides CHESSVAULT_SLEEP_MS)")
		maxRetries = flag.Int("max-retries", 3, "HTTP retry attempts")
		userAgent  = flag.String("user-agent", "", "custom User-Agent header")
	)
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "-username is required")
		os.Exit(2)
	}
	if !strings.HasPrefix(*out, "ndjson:") {
		fmt.Fprintln(os.Stderr, "-out must be in form ndjson:/path/to/file.ndjson")
		os.Exit(2)
	}
	ndjsonPath := strings.TrimPrefix(*out, "ndjson:")

	cfg := utils.LoadFetchConfig()
	if *userAgent != "" {
		cfg.UserAgent = *userAgent
	}
	if *sleep > 0 {
		cfg.Sleep = *sleep
	}

	client := chesscom.NewClient(chesscom.Config{
		BaseURL:    cfg.APIBase,
		UserAgent:  cfg.UserAgent,
		Sleep:      cfg.Sleep,
		MaxRetries: *maxRetries,
	})

	runner := &archive.Runner{Source: client}
	if *enrich {
		cache := normalize.NewProfileCache(client.PlayerProfile)
		runner.Enricher = &normalize.Enricher{Cache: cache}
	}

	ctx := context.Background()
	started := time.Now()
	records, err := runner.Run(ctx, *username)
	if err != nil {
		if errors.Is(err, archive.ErrNoArchives) {
			fmt.Println("No archives found or user not found.")
			os.Exit(1)
		}
		log.Fatalf("fetch failed: %v", err)
	}

	wrote, err := archive.WriteNDJSON(ndjsonPath, records)
	if err != nil {
		log.Fatalf("write ndjson failed: %v", err)
	}
	log.Printf("[fetch] wrote %d games to %s in %s", wrote, ndjsonPath, time.Since(started).Round(time.Second))

	if *saveDB {
		db := database.MustOpen(database.DefaultConfig())
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
		saved, err := archive.SaveToDatabase(ctx, db, records)
		if err != nil {
			log.Fatalf("save failed: %v", err)
		}
		log.Printf("[fetch] upserted %d games into the database", saved)
	}

	if runner.Enricher != nil {
		log.Printf("[fetch] resolved %d profiles", runner.Enricher.Cache.Len())
	}
}

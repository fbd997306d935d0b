package main

import (
	"context"
	"flag"
	"log"
	"time"

	"chessvault/internal/archive"
	"chessvault/pkg/database"
)

func main() {
	var (
		in = flag.String("in", "data/games.ndjson", "input NDJSON path")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := archive.ReadNDJSON(*in)
	if err != nil {
		log.Fatalf("read %s failed: %v", *in, err)
	}
	if len(records) == 0 {
		log.Fatalf("no records in %s", *in)
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	saved, err := archive.SaveToDatabase(ctx, db, records)
	if err != nil {
		log.Fatalf("import failed after %d rows: %v", saved, err)
	}

	log.Printf("✅ imported %d of %d games from %s", saved, len(records), *in)
}

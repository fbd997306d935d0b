package archive

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"chessvault/internal/chesscom"
	"chessvault/internal/normalize"
	"chessvault/internal/progress"
	"chessvault/pkg/models"
)

// ErrNoArchives means the account does not exist or has never played.
var ErrNoArchives = errors.New("archive: no archives found for user")

// GamesSource is the slice of the Chess.com API the runner needs.
// internal/chesscom.Client satisfies it.
type GamesSource interface {
	Archives(ctx context.Context, username string) ([]string, error)
	MonthGames(ctx context.Context, archiveURL string) ([]chesscom.Game, error)
}

// Notifier receives progress events during a run.
type Notifier interface {
	Notify(ev progress.FetchEvent)
}

// LogNotifier writes progress to the standard logger. Used when no hub
// is attached.
type LogNotifier struct{}

func (LogNotifier) Notify(ev progress.FetchEvent) {
	switch ev.Type {
	case progress.EventFetchStart:
		log.Printf("[fetch] %s: %d monthly archives", ev.Username, ev.ArchivesTotal)
	case progress.EventFetchArchive:
		log.Printf("[fetch] %s: %d/%d archives, %d games", ev.Username, ev.ArchivesDone, ev.ArchivesTotal, ev.Games)
	case progress.EventFetchDone:
		log.Printf("[fetch] %s: done, %d games", ev.Username, ev.Games)
	}
}

// Runner walks a user's complete archive list month by month,
// normalizing every game. Fetching is sequential on purpose: the
// upstream API has implicit rate limits and one slow polite pass beats
// a fast banned one.
type Runner struct {
	Source   GamesSource
	Enricher *normalize.Enricher // optional profile enrichment
	Notifier Notifier            // optional; defaults to LogNotifier
}

// Run fetches and normalizes the full game history of username.
// A month that fails to fetch is logged and skipped; only a missing
// archive index aborts the run (ErrNoArchives).
func (r *Runner) Run(ctx context.Context, username string) ([]models.GameRecord, error) {
	notify := r.Notifier
	if notify == nil {
		notify = LogNotifier{}
	}

	archives, err := r.Source.Archives(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return nil, ErrNoArchives
	}

	runID := uuid.NewString()
	notify.Notify(progress.FetchEvent{
		Type:          progress.EventFetchStart,
		RunID:         runID,
		Username:      username,
		ArchivesTotal: len(archives),
		At:            time.Now().UTC(),
	})

	var records []models.GameRecord
	for i, archiveURL := range archives {
		games, err := r.Source.MonthGames(ctx, archiveURL)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			// soft-fail the month: a multi-year history should survive
			// one bad archive
			log.Printf("[fetch] skipping archive %s: %v", archiveURL, err)
			continue
		}

		for _, g := range games {
			rec := normalize.NormalizeGame(username, g)
			if r.Enricher != nil {
				r.Enricher.Enrich(ctx, &rec)
			}
			records = append(records, rec)
		}

		notify.Notify(progress.FetchEvent{
			Type:          progress.EventFetchArchive,
			RunID:         runID,
			Username:      username,
			Archive:       archiveURL,
			ArchivesDone:  i + 1,
			ArchivesTotal: len(archives),
			Games:         len(records),
			At:            time.Now().UTC(),
		})
	}

	notify.Notify(progress.FetchEvent{
		Type:          progress.EventFetchDone,
		RunID:         runID,
		Username:      username,
		ArchivesDone:  len(archives),
		ArchivesTotal: len(archives),
		Games:         len(records),
		At:            time.Now().UTC(),
	})
	return records, nil
}

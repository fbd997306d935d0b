package progress

import "time"

const (
	EventFetchStart   = "fetch.start"
	EventFetchArchive = "fetch.archive"
	EventFetchDone    = "fetch.done"
)

// FetchEvent is broadcast to subscribers while an archive fetch runs.
type FetchEvent struct {
	Type          string    `json:"type"` // one of the Event* constants
	RunID         string    `json:"run_id"`
	Username      string    `json:"username"`
	Archive       string    `json:"archive,omitempty"` // monthly archive URL
	ArchivesDone  int       `json:"archives_done"`
	ArchivesTotal int       `json:"archives_total"`
	Games         int       `json:"games"` // records accumulated so far
	At            time.Time `json:"at"`
}

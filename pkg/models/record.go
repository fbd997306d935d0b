package models

import "encoding/json"

// SchemaVersion identifies the GameRecord wire layout. Bump when fields
// are added or renamed so downstream consumers can detect mixed files.
const SchemaVersion = 1

// GameRecord is the normalized, flat form of one Chess.com game from the
// point of view of the requested username.
//
// Every raw game payload is mapped into this structure first, then we
// write NDJSON and the DB from this representation. Optional fields are
// pointers and are omitted from JSON when absent; booleans default to
// false when the source data cannot be classified.
type GameRecord struct {
	SchemaVersion int `json:"schema_version"`

	// Identity
	Username         string `json:"username"`
	UserColor        string `json:"user_color"` // "white" or "black"
	OpponentUsername string `json:"opponent_username,omitempty"`
	// PerspectiveResolved is false when neither side of the payload
	// matched the requested username and the subject was assumed to be
	// white. Downstream consumers can filter or flag these rows.
	PerspectiveResolved bool `json:"perspective_resolved"`

	// Game meta
	URL                string  `json:"url,omitempty"`
	UUID               string  `json:"uuid,omitempty"`
	Rated              *bool   `json:"rated,omitempty"`
	Rules              string  `json:"rules,omitempty"` // e.g. "chess", "chess960"
	TimeClass          string  `json:"time_class,omitempty"`
	TimeControl        string  `json:"time_control,omitempty"`
	TimeControlMode    *string `json:"time_control_mode,omitempty"`
	TimeControlSeconds *int    `json:"time_control_seconds,omitempty"`
	IncrementSeconds   *int    `json:"increment_seconds,omitempty"`
	IsDaily            bool    `json:"is_daily"`
	IsChess960         bool    `json:"is_chess960"`
	HasInitialFEN      bool    `json:"has_initial_fen"`
	HasClockIncrement  bool    `json:"has_clock_increment"`

	// Ratings
	UserRating     *int `json:"user_rating,omitempty"`
	OpponentRating *int `json:"opponent_rating,omitempty"`
	RatingDelta    *int `json:"rating_delta,omitempty"`

	// Results
	UserResult             *string `json:"user_result,omitempty"`
	Winner                 *string `json:"winner,omitempty"` // "white"/"black", nil on draws
	IsWin                  bool    `json:"is_win"`
	IsLoss                 bool    `json:"is_loss"`
	IsDraw                 bool    `json:"is_draw"`
	ResultReason           *string `json:"result_reason,omitempty"`
	IsTimeout              bool    `json:"is_timeout"`
	IsAbandoned            bool    `json:"is_abandoned"`
	IsAgreedDraw           bool    `json:"is_agreed_draw"`
	IsThreefold            bool    `json:"is_threefold"`
	Is50Move               bool    `json:"is_50move"`
	IsInsufficientMaterial bool    `json:"is_insufficient_material"`
	PointsUser             float64 `json:"points_user"`
	PointsOpponent         float64 `json:"points_opponent"`

	// Opening
	ECO              *string `json:"eco,omitempty"`
	ECOFamily        *string `json:"eco_family,omitempty"`
	OpeningName      *string `json:"opening_name,omitempty"`
	OpeningVariation *string `json:"opening_variation,omitempty"`

	// Timing
	StartTime       *int64  `json:"start_time,omitempty"`
	EndTime         *int64  `json:"end_time,omitempty"`
	StartTsUTC      *string `json:"start_ts_utc,omitempty"`
	EndTsUTC        *string `json:"end_ts_utc,omitempty"`
	DurationSeconds *int64  `json:"duration_seconds,omitempty"`

	// PGN derivations
	PGNMoveCount     *int              `json:"pgn_move_count,omitempty"`
	EndByCheckmate   bool              `json:"end_by_checkmate"`
	EndByResignation bool              `json:"end_by_resignation"`
	EndByStalemate   bool              `json:"end_by_stalemate"`
	PGNTags          map[string]string `json:"pgn_tags,omitempty"`

	// Board state
	FENFinal     *string `json:"fen_final,omitempty"`
	InitialSetup *string `json:"initial_setup,omitempty"`
	TCN          *string `json:"tcn,omitempty"`

	// Accuracies (only on analyzed games)
	AccuracyWhite *float64 `json:"accuracy_white,omitempty"`
	AccuracyBlack *float64 `json:"accuracy_black,omitempty"`

	// Profile enrichment for the requested user (optional)
	UserTitle       *string `json:"user_title,omitempty"`
	UserStatus      *string `json:"user_status,omitempty"`
	UserNameFull    *string `json:"user_name_full,omitempty"`
	UserLocation    *string `json:"user_location,omitempty"`
	UserCountryCode *string `json:"user_country_code,omitempty"`
	UserJoined      *int64  `json:"user_joined,omitempty"`
	UserLastOnline  *int64  `json:"user_last_online,omitempty"`
	UserFIDE        *int    `json:"user_fide,omitempty"`
	UserVerified    *bool   `json:"user_verified,omitempty"`

	// Profile enrichment for the opponent (optional)
	OpponentTitle       *string `json:"opponent_title,omitempty"`
	OpponentStatus      *string `json:"opponent_status,omitempty"`
	OpponentNameFull    *string `json:"opponent_name_full,omitempty"`
	OpponentLocation    *string `json:"opponent_location,omitempty"`
	OpponentCountryCode *string `json:"opponent_country_code,omitempty"`
	OpponentJoined      *int64  `json:"opponent_joined,omitempty"`
	OpponentLastOnline  *int64  `json:"opponent_last_online,omitempty"`
	OpponentFIDE        *int    `json:"opponent_fide,omitempty"`
	OpponentVerified    *bool   `json:"opponent_verified,omitempty"`

	// Raw is the verbatim payload the record was built from, kept for
	// traceability.
	Raw json.RawMessage `json:"raw,omitempty"`
}

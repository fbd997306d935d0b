package models

// GameRow is the subset of a normalized game the API serves from the
// games table. The full record is available under RecordJSON.
type GameRow struct {
	UUID               string   `json:"uuid"`
	Username           string   `json:"username"`
	UserColor          string   `json:"user_color,omitempty"`
	OpponentUsername   string   `json:"opponent_username,omitempty"`
	URL                string   `json:"url,omitempty"`
	Rated              bool     `json:"rated"`
	Rules              string   `json:"rules,omitempty"`
	TimeClass          string   `json:"time_class,omitempty"`
	TimeControl        string   `json:"time_control,omitempty"`
	UserRating         int      `json:"user_rating,omitempty"`
	OpponentRating     int      `json:"opponent_rating,omitempty"`
	UserResult         string   `json:"user_result,omitempty"`
	Winner             string   `json:"winner,omitempty"`
	IsWin              bool     `json:"is_win"`
	IsLoss             bool     `json:"is_loss"`
	IsDraw             bool     `json:"is_draw"`
	PointsUser         *float64 `json:"points_user,omitempty"`
	ECO                string   `json:"eco,omitempty"`
	OpeningName        string   `json:"opening_name,omitempty"`
	EndTsUTC           string   `json:"end_ts_utc,omitempty"`
	DurationSeconds    int64    `json:"duration_seconds,omitempty"`
	PGNMoveCount       int      `json:"pgn_move_count,omitempty"`
	TimeControlSeconds int      `json:"time_control_seconds,omitempty"`
}

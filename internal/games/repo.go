package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"chessvault/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Username  string // games fetched for this account
	Opponent  string // substring match
	TimeClass string
	Color     string // "white" or "black"
	Result    string // "win", "loss" or "draw"
	Rated     *bool
	ECO       string
	Limit     int
	Offset    int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// GetByUUID returns the full normalized record for one game, or nil
// when the game is not stored.
func (r *Repo) GetByUUID(ctx context.Context, uuid string) (*models.GameRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT record_json
		FROM games
		WHERE uuid = ?
	`, uuid)

	var recordJSON string
	if err := row.Scan(&recordJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByUUID: %w", err)
	}

	var rec models.GameRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", uuid, err)
	}
	return &rec, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.GameRow, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.GameRow, 0, q.Limit)
	for rows.Next() {
		g, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

const rowColumns = `
	uuid, username, user_color, opponent_username, url, rated, rules,
	time_class, time_control, time_control_seconds, user_rating,
	opponent_rating, user_result, winner, is_win, is_loss, is_draw,
	points_user, eco, opening_name, end_ts_utc, duration_seconds,
	pgn_move_count
`

func scanRow(rows *sql.Rows) (models.GameRow, error) {
	var (
		g          models.GameRow
		userColor  sql.NullString
		opponent   sql.NullString
		url        sql.NullString
		rated      sql.NullBool
		rules      sql.NullString
		timeClass  sql.NullString
		timeCtl    sql.NullString
		timeCtlSec sql.NullInt64
		userRating sql.NullInt64
		oppRating  sql.NullInt64
		userResult sql.NullString
		winner     sql.NullString
		points     sql.NullFloat64
		eco        sql.NullString
		opening    sql.NullString
		endTs      sql.NullTime
		duration   sql.NullInt64
		moveCount  sql.NullInt64
	)

	if err := rows.Scan(
		&g.UUID, &g.Username, &userColor, &opponent, &url, &rated, &rules,
		&timeClass, &timeCtl, &timeCtlSec, &userRating, &oppRating,
		&userResult, &winner, &g.IsWin, &g.IsLoss, &g.IsDraw,
		&points, &eco, &opening, &endTs, &duration, &moveCount,
	); err != nil {
		return g, err
	}

	g.UserColor = userColor.String
	g.OpponentUsername = opponent.String
	g.URL = url.String
	g.Rated = rated.Bool
	g.Rules = rules.String
	g.TimeClass = timeClass.String
	g.TimeControl = timeCtl.String
	if timeCtlSec.Valid {
		g.TimeControlSeconds = int(timeCtlSec.Int64)
	}
	if userRating.Valid {
		g.UserRating = int(userRating.Int64)
	}
	if oppRating.Valid {
		g.OpponentRating = int(oppRating.Int64)
	}
	g.UserResult = userResult.String
	g.Winner = winner.String
	if points.Valid {
		p := points.Float64
		g.PointsUser = &p
	}
	g.ECO = eco.String
	g.OpeningName = opening.String
	if endTs.Valid {
		g.EndTsUTC = endTs.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if duration.Valid {
		g.DurationSeconds = duration.Int64
	}
	if moveCount.Valid {
		g.PGNMoveCount = int(moveCount.Int64)
	}
	return g, nil
}

// buildListSQL builds either COUNT(*) or the row SELECT, with filters
// ANDed together. Newest games first.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := "SELECT " + rowColumns + " FROM games"
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM games`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Username) != "" {
		where = append(where, "LOWER(username) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(q.Username)))
	}

	if strings.TrimSpace(q.Opponent) != "" {
		where = append(where, "LOWER(opponent_username) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Opponent))+"%")
	}

	if strings.TrimSpace(q.TimeClass) != "" {
		where = append(where, "LOWER(time_class) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(q.TimeClass)))
	}

	if q.Color == "white" || q.Color == "black" {
		where = append(where, "user_color = ?")
		args = append(args, q.Color)
	}

	switch q.Result {
	case "win":
		where = append(where, "is_win = 1")
	case "loss":
		where = append(where, "is_loss = 1")
	case "draw":
		where = append(where, "is_draw = 1")
	}

	if q.Rated != nil {
		where = append(where, "rated = ?")
		args = append(args, *q.Rated)
	}

	if strings.TrimSpace(q.ECO) != "" {
		eco := strings.ToUpper(strings.TrimSpace(q.ECO))
		if len(eco) == 1 {
			// single letter filters the whole ECO family
			where = append(where, "eco_family = ?")
		} else {
			where = append(where, "eco = ?")
		}
		args = append(args, eco)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY end_ts_utc DESC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

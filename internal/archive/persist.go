package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chessvault/pkg/models"
)

// SaveToDatabase upserts normalized records into the `games` table,
// keyed by game UUID. The end_ts_utc column is stored as a proper
// timestamp; an absent or unparseable value becomes NULL rather than
// failing the batch. Records without a UUID cannot be keyed for upsert
// and are skipped; they remain in the NDJSON output.
func SaveToDatabase(ctx context.Context, db *sql.DB, records []models.GameRecord) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (
		  uuid, username, user_color, opponent_username, url, rated, rules,
		  time_class, time_control, time_control_mode, time_control_seconds,
		  increment_seconds, user_rating, opponent_rating, user_result, winner,
		  is_win, is_loss, is_draw, points_user, points_opponent,
		  eco, eco_family, opening_name, end_time, end_ts_utc,
		  duration_seconds, pgn_move_count, record_json
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
		  username = excluded.username,
		  user_color = excluded.user_color,
		  opponent_username = excluded.opponent_username,
		  url = excluded.url,
		  rated = excluded.rated,
		  rules = excluded.rules,
		  time_class = excluded.time_class,
		  time_control = excluded.time_control,
		  time_control_mode = excluded.time_control_mode,
		  time_control_seconds = excluded.time_control_seconds,
		  increment_seconds = excluded.increment_seconds,
		  user_rating = excluded.user_rating,
		  opponent_rating = excluded.opponent_rating,
		  user_result = excluded.user_result,
		  winner = excluded.winner,
		  is_win = excluded.is_win,
		  is_loss = excluded.is_loss,
		  is_draw = excluded.is_draw,
		  points_user = excluded.points_user,
		  points_opponent = excluded.points_opponent,
		  eco = excluded.eco,
		  eco_family = excluded.eco_family,
		  opening_name = excluded.opening_name,
		  end_time = excluded.end_time,
		  end_ts_utc = excluded.end_ts_utc,
		  duration_seconds = excluded.duration_seconds,
		  pgn_move_count = excluded.pgn_move_count,
		  record_json = excluded.record_json
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for i := range records {
		rec := &records[i]
		if rec.UUID == "" {
			continue
		}

		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return saved, fmt.Errorf("marshal record %s: %w", rec.UUID, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			rec.UUID,
			rec.Username,
			rec.UserColor,
			rec.OpponentUsername,
			rec.URL,
			boolVal(rec.Rated),
			rec.Rules,
			rec.TimeClass,
			rec.TimeControl,
			rec.TimeControlMode,
			rec.TimeControlSeconds,
			rec.IncrementSeconds,
			rec.UserRating,
			rec.OpponentRating,
			rec.UserResult,
			rec.Winner,
			rec.IsWin,
			rec.IsLoss,
			rec.IsDraw,
			rec.PointsUser,
			rec.PointsOpponent,
			rec.ECO,
			rec.ECOFamily,
			rec.OpeningName,
			rec.EndTime,
			EndTimestamp(rec),
			rec.DurationSeconds,
			rec.PGNMoveCount,
			string(recordJSON),
		); err != nil {
			return saved, fmt.Errorf("exec upsert for %s: %w", rec.UUID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return saved, fmt.Errorf("commit tx: %w", err)
	}
	return saved, nil
}

// EndTimestamp parses the record's ISO end timestamp into a nullable
// DB value. Invalid input is an explicit NULL, never an error.
func EndTimestamp(rec *models.GameRecord) sql.NullTime {
	if rec.EndTsUTC == nil {
		return sql.NullTime{}
	}
	t, err := time.Parse(time.RFC3339, *rec.EndTsUTC)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func boolVal(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"chessvault/pkg/database"
)

func main() {
	var (
		gamesOut = flag.String("games", "data/games.csv", "output CSV path for games")
		username = flag.String("username", "", "only export games fetched for this account")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportGames(ctx, db, *gamesOut, *username); err != nil {
		log.Fatalf("export games failed: %v", err)
	}

	log.Printf("exported games to %s", *gamesOut)
}

func exportGames(ctx context.Context, db *sql.DB, outPath, username string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"uuid", "username", "user_color", "opponent_username", "url", "rated",
		"rules", "time_class", "time_control", "user_rating", "opponent_rating",
		"user_result", "winner", "is_win", "is_loss", "is_draw", "points_user",
		"eco", "opening_name", "end_ts_utc", "duration_seconds", "pgn_move_count",
	}); err != nil {
		return err
	}

	query := `
        SELECT uuid, username, user_color, opponent_username, url, rated,
               rules, time_class, time_control, user_rating, opponent_rating,
               user_result, winner, is_win, is_loss, is_draw, points_user,
               eco, opening_name, end_ts_utc, duration_seconds, pgn_move_count
        FROM games
    `
	var args []any
	if username != "" {
		query += " WHERE LOWER(username) = LOWER(?)"
		args = append(args, username)
	}
	query += " ORDER BY end_ts_utc DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			uuid       string
			user       string
			userColor  sql.NullString
			opponent   sql.NullString
			url        sql.NullString
			rated      sql.NullBool
			rules      sql.NullString
			timeClass  sql.NullString
			timeCtl    sql.NullString
			userRating sql.NullInt64
			oppRating  sql.NullInt64
			userResult sql.NullString
			winner     sql.NullString
			isWin      bool
			isLoss     bool
			isDraw     bool
			points     sql.NullFloat64
			eco        sql.NullString
			opening    sql.NullString
			endTs      sql.NullTime
			duration   sql.NullInt64
			moveCount  sql.NullInt64
		)

		if err := rows.Scan(
			&uuid, &user, &userColor, &opponent, &url, &rated, &rules,
			&timeClass, &timeCtl, &userRating, &oppRating,
			&userResult, &winner, &isWin, &isLoss, &isDraw, &points,
			&eco, &opening, &endTs, &duration, &moveCount,
		); err != nil {
			return err
		}

		endTsStr := ""
		if endTs.Valid {
			endTsStr = endTs.Time.UTC().Format(time.RFC3339)
		}
		pointsStr := ""
		if points.Valid {
			pointsStr = strconv.FormatFloat(points.Float64, 'f', -1, 64)
		}

		if err := w.Write([]string{
			uuid,
			user,
			userColor.String,
			opponent.String,
			url.String,
			strconv.FormatBool(rated.Bool),
			rules.String,
			timeClass.String,
			timeCtl.String,
			nullInt(userRating),
			nullInt(oppRating),
			userResult.String,
			winner.String,
			strconv.FormatBool(isWin),
			strconv.FormatBool(isLoss),
			strconv.FormatBool(isDraw),
			pointsStr,
			eco.String,
			opening.String,
			endTsStr,
			nullInt(duration),
			nullInt(moveCount),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func nullInt(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

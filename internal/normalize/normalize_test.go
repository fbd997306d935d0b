package normalize

import (
	"encoding/json"
	"testing"

	"chessvault/internal/chesscom"
)

func sampleGame() chesscom.Game {
	rated := true
	aliceRating := 1500
	bobRating := 1480
	start := int64(1710500000)
	end := int64(1710500420)
	accW := 91.2
	accB := 74.5
	return chesscom.Game{
		URL:         "https://www.chess.com/game/live/1234",
		UUID:        "abcd-1234",
		PGN:         samplePGN,
		FEN:         "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/3P1N2/PPP2PPP/RNBQ1RK1 b kq - 1 5",
		Rated:       &rated,
		Rules:       "chess",
		TimeClass:   "blitz",
		TimeControl: "180+2",
		StartTime:   &start,
		EndTime:     &end,
		White: chesscom.Player{
			Username: "Alice",
			Rating:   &aliceRating,
			Result:   "win",
		},
		Black: chesscom.Player{
			Username: "Bob",
			Rating:   &bobRating,
			Result:   "checkmated",
		},
		Accuracies: &chesscom.Accuracies{White: &accW, Black: &accB},
	}
}

func TestNormalizeGameWhitePerspective(t *testing.T) {
	rec := NormalizeGame("alice", sampleGame())

	if rec.UserColor != "white" {
		t.Errorf("user_color = %q, want white", rec.UserColor)
	}
	if !rec.PerspectiveResolved {
		t.Error("perspective should resolve for a matching username")
	}
	if rec.OpponentUsername != "Bob" {
		t.Errorf("opponent = %q, want Bob", rec.OpponentUsername)
	}
	if !rec.IsWin || rec.IsLoss || rec.IsDraw {
		t.Errorf("result flags = win:%v loss:%v draw:%v, want win only", rec.IsWin, rec.IsLoss, rec.IsDraw)
	}
	if rec.PointsUser != 1.0 || rec.PointsOpponent != 0.0 {
		t.Errorf("points = %v/%v, want 1/0", rec.PointsUser, rec.PointsOpponent)
	}
	if rec.Winner == nil || *rec.Winner != "white" {
		t.Errorf("winner = %v, want white", rec.Winner)
	}
	if !rec.EndByCheckmate {
		t.Error("checkmate of the opponent should set end_by_checkmate")
	}
	if rec.UserRating == nil || *rec.UserRating != 1500 {
		t.Errorf("user_rating = %v, want 1500", rec.UserRating)
	}
	if rec.OpponentRating == nil || *rec.OpponentRating != 1480 {
		t.Errorf("opponent_rating = %v, want 1480", rec.OpponentRating)
	}
	if rec.ECO == nil || *rec.ECO != "C50" {
		t.Errorf("eco = %v, want C50", rec.ECO)
	}
	if rec.ECOFamily == nil || *rec.ECOFamily != "C" {
		t.Errorf("eco_family = %v, want C", rec.ECOFamily)
	}
	if rec.PGNMoveCount == nil || *rec.PGNMoveCount != 5 {
		t.Errorf("pgn_move_count = %v, want 5", rec.PGNMoveCount)
	}
	if rec.TimeControlSeconds == nil || *rec.TimeControlSeconds != 180 {
		t.Errorf("time_control_seconds = %v, want 180", rec.TimeControlSeconds)
	}
	if rec.IncrementSeconds == nil || *rec.IncrementSeconds != 2 {
		t.Errorf("increment_seconds = %v, want 2", rec.IncrementSeconds)
	}
	if !rec.HasClockIncrement {
		t.Error("increment of 2 should set has_clock_increment")
	}
	if rec.DurationSeconds == nil || *rec.DurationSeconds != 420 {
		t.Errorf("duration_seconds = %v, want 420", rec.DurationSeconds)
	}
	if rec.EndTsUTC == nil || *rec.EndTsUTC == "" {
		t.Error("end_ts_utc should be set when end_time is present")
	}
	if rec.AccuracyWhite == nil || *rec.AccuracyWhite != 91.2 {
		t.Errorf("accuracy_white = %v, want 91.2", rec.AccuracyWhite)
	}
}

func TestNormalizeGameBlackPerspective(t *testing.T) {
	rec := NormalizeGame("BOB", sampleGame())

	if rec.UserColor != "black" {
		t.Errorf("user_color = %q, want black", rec.UserColor)
	}
	if rec.OpponentUsername != "Alice" {
		t.Errorf("opponent = %q, want Alice", rec.OpponentUsername)
	}
	if !rec.IsLoss || rec.IsWin || rec.IsDraw {
		t.Errorf("result flags = win:%v loss:%v draw:%v, want loss only", rec.IsWin, rec.IsLoss, rec.IsDraw)
	}
	if rec.PointsUser != 0.0 || rec.PointsOpponent != 1.0 {
		t.Errorf("points = %v/%v, want 0/1", rec.PointsUser, rec.PointsOpponent)
	}
	if rec.UserResult == nil || *rec.UserResult != "checkmated" {
		t.Errorf("user_result = %v, want checkmated", rec.UserResult)
	}
	if rec.UserRating == nil || *rec.UserRating != 1480 {
		t.Errorf("user_rating = %v, want 1480", rec.UserRating)
	}
}

func TestNormalizeGameUnresolvedPerspective(t *testing.T) {
	rec := NormalizeGame("carol", sampleGame())

	if rec.PerspectiveResolved {
		t.Error("unknown username must flag the record as unresolved")
	}
	if rec.UserColor != "white" {
		t.Errorf("unresolved default user_color = %q, want white", rec.UserColor)
	}
	if rec.OpponentUsername != "Bob" {
		t.Errorf("opponent = %q, want Bob", rec.OpponentUsername)
	}
}

func TestNormalizeGameDraw(t *testing.T) {
	g := sampleGame()
	g.White.Result = "agreed"
	g.Black.Result = "agreed"
	rec := NormalizeGame("alice", g)

	if !rec.IsDraw || rec.IsWin || rec.IsLoss {
		t.Errorf("result flags = win:%v loss:%v draw:%v, want draw only", rec.IsWin, rec.IsLoss, rec.IsDraw)
	}
	if rec.PointsUser != 0.5 || rec.PointsOpponent != 0.5 {
		t.Errorf("points = %v/%v, want 0.5/0.5", rec.PointsUser, rec.PointsOpponent)
	}
	if rec.Winner != nil {
		t.Errorf("winner = %q, want nil for a draw", *rec.Winner)
	}
	if !rec.IsAgreedDraw {
		t.Error("agreed result should set is_agreed_draw")
	}
}

func TestNormalizeGamePointsSumToOne(t *testing.T) {
	results := []string{"win", "checkmated", "resigned", "timeout", "agreed", "stalemate", "repetition", "insufficient", "50move", ""}
	for _, r := range results {
		g := sampleGame()
		g.White.Result = r
		g.Black.Result = "resigned"
		rec := NormalizeGame("alice", g)
		sum := rec.PointsUser + rec.PointsOpponent
		if sum != 1.0 {
			t.Errorf("result %q: points sum = %v, want 1.0", r, sum)
		}
	}
}

func TestNormalizeGameExclusiveResultFlags(t *testing.T) {
	results := []string{"win", "checkmated", "resigned", "timeout", "lose", "abandoned",
		"agreed", "stalemate", "repetition", "timevsinsufficient", "insufficient", "50move", "draw"}
	for _, r := range results {
		g := sampleGame()
		g.White.Result = r
		rec := NormalizeGame("alice", g)
		set := 0
		for _, flag := range []bool{rec.IsWin, rec.IsLoss, rec.IsDraw} {
			if flag {
				set++
			}
		}
		if set != 1 {
			t.Errorf("result %q: %d of win/loss/draw set, want exactly 1", r, set)
		}
	}
}

func TestNormalizeGameEmptyPGN(t *testing.T) {
	g := sampleGame()
	g.PGN = ""
	rec := NormalizeGame("alice", g)

	if rec.ECO != nil {
		t.Errorf("eco = %q, want nil without a PGN", *rec.ECO)
	}
	if rec.PGNMoveCount != nil {
		t.Errorf("pgn_move_count = %d, want nil without a PGN", *rec.PGNMoveCount)
	}
	if len(rec.PGNTags) != 0 {
		t.Errorf("pgn_tags = %v, want empty", rec.PGNTags)
	}
	// structured fields are unaffected
	if !rec.IsWin {
		t.Error("structured result should survive a missing PGN")
	}
}

func TestNormalizeGameTimestampsIndependent(t *testing.T) {
	g := sampleGame()
	g.StartTime = nil
	rec := NormalizeGame("alice", g)

	if rec.StartTsUTC != nil {
		t.Errorf("start_ts_utc = %q, want nil", *rec.StartTsUTC)
	}
	if rec.EndTsUTC == nil {
		t.Error("end_ts_utc should still convert when start_time is absent")
	}
	if rec.DurationSeconds != nil {
		t.Errorf("duration_seconds = %d, want nil without both timestamps", *rec.DurationSeconds)
	}
}

func TestNormalizeGameDailyAndVariantFlags(t *testing.T) {
	g := sampleGame()
	g.TimeControl = "1/86400"
	g.TimeClass = "daily"
	g.Rules = "chess960"
	g.InitialSetup = "nrkbqrbn/pppppppp/8/8/8/8/PPPPPPPP/NRKBQRBN w - - 0 1"
	rec := NormalizeGame("alice", g)

	if !rec.IsDaily {
		t.Error("slash time control should mark the game daily")
	}
	if !rec.IsChess960 {
		t.Error("chess960 rules should set is_chess960")
	}
	if !rec.HasInitialFEN {
		t.Error("initial_setup should set has_initial_fen")
	}
	if rec.InitialSetup == nil {
		t.Error("initial_setup should be carried through")
	}
}

func TestNormalizeGameTerminationFallback(t *testing.T) {
	g := sampleGame()
	g.PGN = ""
	g.White.Result = ""
	g.Black.Result = ""
	g.Termination = "Alice won by resignation"
	rec := NormalizeGame("alice", g)

	if !rec.EndByResignation {
		t.Error("free-text termination should set end_by_resignation")
	}
	if rec.EndByCheckmate {
		t.Error("end_by_checkmate should stay false")
	}
	if rec.UserResult != nil {
		t.Errorf("user_result = %q, want nil without structured codes", *rec.UserResult)
	}
}

func TestNormalizeGameIdempotent(t *testing.T) {
	g := sampleGame()
	a := NormalizeGame("alice", g)
	b := NormalizeGame("alice", g)

	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(ja) != string(jb) {
		t.Error("normalizing the same game twice must produce identical records")
	}
}

package normalize

import (
	"strings"
	"time"

	"chessvault/internal/chesscom"
	"chessvault/pkg/models"
)

// Result-code membership sets, as Chess.com reports them per player.
var (
	lossCodes = map[string]bool{
		"checkmated": true,
		"resigned":   true,
		"timeout":    true,
		"lose":       true,
		"abandoned":  true,
	}
	drawCodes = map[string]bool{
		"agreed":             true,
		"stalemate":          true,
		"repetition":         true,
		"timevsinsufficient": true,
		"insufficient":       true,
		"50move":             true,
		"draw":               true,
	}
)

// NormalizeGame flattens one raw game payload into a GameRecord from the
// point of view of username. It is a pure function: malformed or missing
// sub-fields degrade to nil/false, never to an error, so one bad game
// cannot halt a multi-year batch.
func NormalizeGame(username string, g chesscom.Game) models.GameRecord {
	rec := models.GameRecord{
		SchemaVersion: models.SchemaVersion,
		Username:      username,
	}

	// Perspective: the side whose username matches (case-insensitive)
	// is "me". When neither matches we keep the historical default of
	// white, but flag the record as unresolved.
	lower := strings.ToLower(username)
	me, opp := g.White, g.Black
	rec.UserColor = "white"
	rec.PerspectiveResolved = true
	switch {
	case strings.ToLower(g.White.Username) == lower:
	case strings.ToLower(g.Black.Username) == lower:
		me, opp = g.Black, g.White
		rec.UserColor = "black"
	default:
		rec.PerspectiveResolved = false
	}
	rec.OpponentUsername = opp.Username

	// Meta
	rec.URL = g.URL
	rec.UUID = g.UUID
	rec.Rated = g.Rated
	rec.Rules = g.Rules
	rec.TimeClass = g.TimeClass
	rec.TimeControl = g.TimeControl

	// Timing: each timestamp converts independently; duration needs both.
	rec.StartTime = g.StartTime
	rec.EndTime = g.EndTime
	rec.StartTsUTC = isoUTC(g.StartTime)
	rec.EndTsUTC = isoUTC(g.EndTime)
	if g.StartTime != nil && g.EndTime != nil {
		d := *g.EndTime - *g.StartTime
		if d < 0 {
			d = 0
		}
		rec.DurationSeconds = &d
	}

	base, inc, mode := ParseTimeControl(g.TimeControl)
	rec.TimeControlSeconds = base
	rec.IncrementSeconds = inc
	rec.TimeControlMode = mode

	// PGN-derived fields
	rec.ECO = ExtractTag(g.PGN, "ECO")
	if rec.ECO != nil && *rec.ECO != "" {
		fam := string((*rec.ECO)[0])
		rec.ECOFamily = &fam
	}
	rec.OpeningName = ExtractTag(g.PGN, "Opening")
	rec.OpeningVariation = ExtractTag(g.PGN, "Variation")
	termination := ExtractTag(g.PGN, "Termination")
	if termination == nil && g.Termination != "" {
		termination = &g.Termination
	}
	resultTag := ExtractTag(g.PGN, "Result")
	rec.PGNMoveCount = EstimateMoveCount(g.PGN)
	rec.PGNTags = ExtractTags(g.PGN)

	// Result classification: the structured per-player code wins, the
	// PGN Result tag is the fallback.
	var myResult *string
	if me.Result != "" {
		r := me.Result
		myResult = &r
	} else if resultTag != nil && *resultTag != "" {
		myResult = resultTag
	}
	rec.UserResult = myResult

	my := ""
	if myResult != nil {
		my = *myResult
	}
	rec.IsWin = my == "win"
	rec.IsLoss = lossCodes[my]
	rec.IsDraw = drawCodes[my]

	// Winner side from the structured codes; nil covers draws and
	// unresolved games.
	if g.White.Result == "win" {
		w := "white"
		rec.Winner = &w
	} else if g.Black.Result == "win" {
		b := "black"
		rec.Winner = &b
	}

	if myResult != nil {
		rec.ResultReason = myResult
	} else {
		rec.ResultReason = termination
	}

	// Ratings
	rec.UserRating = me.Rating
	rec.OpponentRating = opp.Rating
	// Delta only when the payload carries an explicit change; post-game
	// ratings are not reliable enough to compute one.
	rec.RatingDelta = me.RatingChange

	// Ending causes: either the result code or the free-text termination
	// may be the only populated signal, so both are checked.
	rec.EndByCheckmate = (my == "win" && opp.Result == "checkmated") || terminationHas(termination, "checkmate")
	rec.EndByResignation = (my == "win" && opp.Result == "resigned") || terminationHas(termination, "resign")
	rec.EndByStalemate = strings.Contains(my, "stalemate") || terminationHas(termination, "stalemate")
	rec.IsTimeout = strings.Contains(my, "timeout") || terminationHas(termination, "timeout")
	rec.IsAbandoned = strings.Contains(my, "abandoned") || terminationHas(termination, "abandon")
	rec.IsAgreedDraw = my == "agreed"
	rec.IsThreefold = my == "repetition"
	rec.Is50Move = my == "50move"
	rec.IsInsufficientMaterial = my == "insufficient" || my == "timevsinsufficient"

	// Points from the requested user's perspective; a draw is exactly
	// 0.5 on both sides.
	switch {
	case rec.IsWin:
		rec.PointsUser = 1.0
	case rec.IsDraw:
		rec.PointsUser = 0.5
	default:
		rec.PointsUser = 0.0
	}
	if rec.PointsUser == 0.5 {
		rec.PointsOpponent = 0.5
	} else {
		rec.PointsOpponent = 1.0 - rec.PointsUser
	}

	// Variant and clock flags
	rec.IsDaily = strings.Contains(g.TimeControl, "/")
	rec.IsChess960 = g.Rules == "chess960" ||
		(rec.PGNTags["SetUp"] == "1" && rec.PGNTags["FEN"] != "")
	rec.HasInitialFEN = g.InitialSetup != "" || rec.PGNTags["FEN"] != ""
	rec.HasClockIncrement = inc != nil && *inc > 0

	// Board state
	if g.FEN != "" {
		rec.FENFinal = &g.FEN
	}
	if g.InitialSetup != "" {
		rec.InitialSetup = &g.InitialSetup
	}
	if g.TCN != "" {
		rec.TCN = &g.TCN
	}

	if g.Accuracies != nil {
		rec.AccuracyWhite = g.Accuracies.White
		rec.AccuracyBlack = g.Accuracies.Black
	}

	rec.Raw = g.Raw
	return rec
}

func isoUTC(epoch *int64) *string {
	if epoch == nil {
		return nil
	}
	s := time.Unix(*epoch, 0).UTC().Format(time.RFC3339)
	return &s
}

func terminationHas(termination *string, substr string) bool {
	return termination != nil && strings.Contains(strings.ToLower(*termination), substr)
}

package chesscom

import "encoding/json"

// Game is one entry of a monthly archive as Chess.com publishes it.
// Fields the normalizer does not read are still captured verbatim in Raw.
type Game struct {
	URL          string      `json:"url"`
	UUID         string      `json:"uuid"`
	PGN          string      `json:"pgn"`
	FEN          string      `json:"fen"`
	TCN          string      `json:"tcn"`
	Rated        *bool       `json:"rated"`
	Rules        string      `json:"rules"` // "chess", "chess960", ...
	TimeClass    string      `json:"time_class"`
	TimeControl  string      `json:"time_control"`
	StartTime    *int64      `json:"start_time"` // daily games only
	EndTime      *int64      `json:"end_time"`
	InitialSetup string      `json:"initial_setup"`
	Termination  string      `json:"termination"` // present on some API versions only
	White        Player      `json:"white"`
	Black        Player      `json:"black"`
	Accuracies   *Accuracies `json:"accuracies"`

	// Raw holds the verbatim JSON this Game was decoded from.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the payload and keeps a copy of the original
// bytes so normalized records can carry the untouched source.
func (g *Game) UnmarshalJSON(b []byte) error {
	type plain Game
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*g = Game(p)
	g.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// Player is one side of a game.
type Player struct {
	Username string `json:"username"`
	Rating   *int   `json:"rating"`
	Result   string `json:"result"` // "win", "checkmated", "agreed", ...
	UUID     string `json:"uuid"`
	// RatingChange is set by some API wrappers; the raw API usually
	// omits it, in which case no delta is derived.
	RatingChange *int `json:"rating_change"`
}

// Accuracies are engine accuracy scores, present on analyzed games only.
type Accuracies struct {
	White *float64 `json:"white"`
	Black *float64 `json:"black"`
}

// Profile is the public player profile.
type Profile struct {
	Username   string `json:"username"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Country    string `json:"country"` // API URL ending in /country/XX
	Joined     *int64 `json:"joined"`
	LastOnline *int64 `json:"last_online"`
	FIDE       *int   `json:"fide"`
	Verified   *bool  `json:"verified"`
}

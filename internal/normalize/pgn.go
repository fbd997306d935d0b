package normalize

import (
	"regexp"
	"strconv"
)

// standardTags is the fixed set of tag-pairs harvested from every game.
// Absence of any one tag does not affect the others.
var standardTags = []string{
	"Event", "Site", "Date", "Round", "White", "Black", "Result",
	"UTCDate", "UTCTime", "StartTime", "EndTime", "TimeControl", "Termination",
	"ECO", "Opening", "Variation", "CurrentPosition", "SetUp", "FEN", "Link",
	"Annotator", "Title", "EventDate",
}

var (
	tagPatterns  = buildTagPatterns()
	reMoveNumber = regexp.MustCompile(`\b(\d+)\.\s`)
)

func buildTagPatterns() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(standardTags))
	for _, tag := range standardTags {
		m[tag] = tagPattern(tag)
	}
	return m
}

func tagPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\s+"([^"]*)"\]`)
}

// ExtractTag returns the value of one PGN tag-pair, or nil when the tag
// is missing. Tag names are matched case-sensitively, as they appear in
// standard PGN. An empty value is a valid result.
func ExtractTag(pgn, tag string) *string {
	if pgn == "" {
		return nil
	}
	re, ok := tagPatterns[tag]
	if !ok {
		re = tagPattern(tag)
	}
	m := re.FindStringSubmatch(pgn)
	if m == nil {
		return nil
	}
	return &m[1]
}

// ExtractTags harvests the standard tag set from a PGN. Only tags that
// are actually present appear as keys.
func ExtractTags(pgn string) map[string]string {
	if pgn == "" {
		return map[string]string{}
	}
	out := make(map[string]string, len(standardTags))
	for _, tag := range standardTags {
		if v := ExtractTag(pgn, tag); v != nil {
			out[tag] = *v
		}
	}
	return out
}

// EstimateMoveCount returns the last move-number label found in the PGN
// ("1. e4 e5 2. Nf3 ..." gives 2), or nil when none exists. This counts
// move-number markers, not plies, and does no SAN parsing.
func EstimateMoveCount(pgn string) *int {
	if pgn == "" {
		return nil
	}
	matches := reMoveNumber.FindAllStringSubmatch(pgn, -1)
	if len(matches) == 0 {
		return nil
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return nil
	}
	return &n
}

package outfit

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Saved outfits persist the full per-dimension breakdown as JSON. The older
// mobile builds stored only a human-readable "Score: NN%" notes string; that
// format is still written for display and parsed when reading rows predating
// breakdown persistence. The legacy parser recovers the total only — it does
// not invent dimension values.

var legacyScorePattern = regexp.MustCompile(`Score:\s*(\d{1,3})%`)

// FormatScoreNotes renders the legacy display string. The total is rounded to
// an integer percent, so the round trip loses up to half a percent.
func FormatScoreNotes(score Score) string {
	return fmt.Sprintf("Score: %d%%", int(math.Round(score.Total*100)))
}

// ParseScoreNotes recovers a total score from a legacy notes string. The
// returned Score has no breakdown. ok is false when the string carries no
// score marker.
func ParseScoreNotes(notes string) (Score, bool) {
	m := legacyScorePattern.FindStringSubmatch(notes)
	if m == nil {
		return Score{}, false
	}
	percent, err := strconv.Atoi(m[1])
	if err != nil || percent > 100 {
		return Score{}, false
	}
	return Score{Total: float64(percent) / 100}, true
}

// MarshalScore serializes a score with its breakdown for persistence.
func MarshalScore(score Score) (string, error) {
	raw, err := json.Marshal(score)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// UnmarshalScore restores a persisted score. An empty payload yields a zero
// Score without error so callers can fall back to the legacy notes string.
func UnmarshalScore(raw string) (Score, error) {
	var score Score
	if raw == "" {
		return score, nil
	}
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return Score{}, err
	}
	return score, nil
}

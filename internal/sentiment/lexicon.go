package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// lexicon maps lower-case words to a valence in [-4, 4].
var lexicon = map[string]float64{
	"beat": 2.0, "beats": 2.0, "bullish": 2.6, "boost": 1.8, "boosts": 1.8,
	"gain": 2.0, "gains": 2.0, "growth": 1.9, "high": 1.0, "higher": 1.3,
	"jump": 1.6, "jumps": 1.6, "outperform": 2.1, "profit": 1.9, "profits": 1.9,
	"rally": 2.2, "rallies": 2.2, "record": 1.2, "rebound": 1.5, "rise": 1.5,
	"rises": 1.5, "soar": 2.5, "soars": 2.5, "strong": 2.2, "surge": 2.3,
	"surges": 2.3, "upgrade": 2.0, "upgraded": 2.0, "win": 2.8, "wins": 2.8,
	"good": 1.9, "great": 3.1, "positive": 2.6, "optimistic": 2.3, "buy": 0.8,
	"bearish": -2.6, "concern": -1.4, "concerns": -1.4, "crash": -3.0,
	"cut": -1.2, "cuts": -1.2, "decline": -1.7, "declines": -1.7, "downgrade": -2.0,
	"downgraded": -2.0, "drop": -1.6, "drops": -1.6, "fall": -1.6, "falls": -1.6,
	"fear": -2.2, "fears": -2.2, "fraud": -3.0, "lawsuit": -2.0, "loss": -2.1,
	"losses": -2.1, "low": -1.1, "lower": -1.2, "miss": -1.8, "misses": -1.8,
	"plunge": -2.6, "plunges": -2.6, "recall": -1.6, "risk": -1.1, "sell": -0.8,
	"selloff": -2.3, "slump": -2.2, "tumble": -2.3, "tumbles": -2.3, "weak": -1.9,
	"worst": -3.1, "bad": -2.5, "negative": -2.7, "warning": -1.9, "layoffs": -2.2,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "isn't": true,
	"doesn't": true, "didn't": true, "won't": true, "can't": true,
}

// Score returns a compound sentiment in [-1, 1] for a headline. Word
// valences are summed, a negation within the three preceding words flips a
// valence, and the sum is normalized with x/sqrt(x*x+15).
func Score(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	sum := 0.0
	for i, w := range words {
		v, ok := lexicon[w]
		if !ok {
			continue
		}
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if negations[words[j]] {
				v *= -0.74
				break
			}
		}
		sum += v
	}
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+15)
}

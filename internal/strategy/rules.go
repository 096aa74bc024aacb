package strategy

import (
	"fmt"
	"math"

	"StockSignal/internal/model"
)

// Rules holds the tunable thresholds of the scoring rule set.
type Rules struct {
	RSIOversold float64 `yaml:"rsi_oversold"`
}

// DefaultRules returns the standard thresholds.
func DefaultRules() Rules {
	return Rules{RSIOversold: 30}
}

func defined(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// trendRule: short MA above long MA.
func trendRule(r *model.IndicatorRow, _ Rules) (model.RuleHit, bool) {
	if !defined(r.MAShort, r.MALong) || r.MAShort <= r.MALong {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:       "MA trend",
		Points:     1,
		Commentary: fmt.Sprintf("MA short %.2f > MA long %.2f", r.MAShort, r.MALong),
	}, true
}

// oversoldRule: RSI under the oversold threshold.
func oversoldRule(r *model.IndicatorRow, rules Rules) (model.RuleHit, bool) {
	if !defined(r.RSI) || r.RSI >= rules.RSIOversold {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:       "RSI oversold",
		Points:     1,
		Commentary: fmt.Sprintf("RSI=%.0f", r.RSI),
	}, true
}

// lowerBandRule: close below the lower Bollinger band.
func lowerBandRule(r *model.IndicatorRow, _ Rules) (model.RuleHit, bool) {
	if !defined(r.Close, r.BBLower) || r.Close >= r.BBLower {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:       "Below lower band",
		Points:     1,
		Commentary: fmt.Sprintf("close %.2f < %.2f", r.Close, r.BBLower),
	}, true
}

// volumeRule: volume spike on this bar.
func volumeRule(r *model.IndicatorRow, _ Rules) (model.RuleHit, bool) {
	if !r.VolumeSpike {
		return model.RuleHit{}, false
	}
	return model.RuleHit{Name: "Volume spike", Points: 1, Commentary: fmt.Sprintf("volume %.0f", r.Volume)}, true
}

// supportRule: close broke below support.
func supportRule(r *model.IndicatorRow, _ Rules) (model.RuleHit, bool) {
	if !defined(r.Close, r.Support) || r.Close >= r.Support {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:       "Below support",
		Points:     1,
		Commentary: fmt.Sprintf("close %.2f < %.2f", r.Close, r.Support),
	}, true
}

// resistanceRule: close broke above resistance.
func resistanceRule(r *model.IndicatorRow, _ Rules) (model.RuleHit, bool) {
	if !defined(r.Close, r.Resistance) || r.Close <= r.Resistance {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:       "Above resistance",
		Points:     -1,
		Commentary: fmt.Sprintf("close %.2f > %.2f", r.Close, r.Resistance),
	}, true
}

var ruleSet = []func(*model.IndicatorRow, Rules) (model.RuleHit, bool){
	trendRule,
	oversoldRule,
	lowerBandRule,
	volumeRule,
	supportRule,
	resistanceRule,
}

// MinScore and MaxScore bound the score of the default rule set.
const (
	MinScore = -1
	MaxScore = 5
)

// Package strategy turns indicator rows into signal scores and trade hints.
package strategy

import (
	"github.com/sirupsen/logrus"

	"StockSignal/internal/model"
)

// Explain returns every rule that fired for row, in rule order.
func Explain(row *model.IndicatorRow, rules Rules) []model.RuleHit {
	if row == nil {
		return nil
	}
	var hits []model.RuleHit
	for _, rule := range ruleSet {
		if hit, ok := rule(row, rules); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

// Score maps one row to its signed integer score. It never panics;
// an internal failure scores 0 and is logged to the standard logger.
func Score(row *model.IndicatorRow, rules Rules) int {
	return score(row, rules, logrus.StandardLogger())
}

func score(row *model.IndicatorRow, rules Rules, log logrus.FieldLogger) (total int) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("score row: %v", r)
			total = 0
		}
	}()
	for _, hit := range Explain(row, rules) {
		total += hit.Points
	}
	return total
}

// ScoreAll scores every row independently. Recovered rule failures are
// logged to log, or to the standard logger when log is nil.
func ScoreAll(rows []model.IndicatorRow, rules Rules, log logrus.FieldLogger) []model.ScoredRow {
	if log == nil {
		log = logrus.StandardLogger()
	}
	out := make([]model.ScoredRow, len(rows))
	for i := range rows {
		out[i] = model.ScoredRow{
			IndicatorRow: rows[i],
			Score:        score(&rows[i], rules, log),
		}
	}
	return out
}

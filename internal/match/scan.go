package match

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/dedupe-cli/internal/model"
)

// ScanStats summarizes one duplicate scan for reporting.
type ScanStats struct {
	Records  int                       `json:"records" yaml:"records"`
	Pairs    int                       `json:"pairs" yaml:"pairs"`
	ByReason map[model.MatchReason]int `json:"by_reason" yaml:"by_reason"`
}

// FindDuplicates enumerates every unordered pair of records exactly once,
// classifies each, and returns the candidates sorted by score descending.
// The sort is stable: ties keep enumeration order, so output is
// deterministic for a given input order. O(n^2) comparisons; review sets are
// operator-bounded, typically a few thousand records.
func FindDuplicates(records []model.Contact) []model.CandidatePair {
	pairs, _ := Scan(records)
	return pairs
}

// Scan is FindDuplicates plus summary statistics.
func Scan(records []model.Contact) ([]model.CandidatePair, ScanStats) {
	stats := ScanStats{
		Records:  len(records),
		ByReason: make(map[model.MatchReason]int),
	}

	var pairs []model.CandidatePair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			m := Classify(records[i], records[j])
			if m == nil {
				continue
			}
			pairs = append(pairs, model.CandidatePair{
				A:      records[i],
				B:      records[j],
				Score:  m.Score,
				Reason: m.Reason,
			})
			stats.ByReason[m.Reason]++
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})

	stats.Pairs = len(pairs)
	zap.L().Debug("duplicate scan complete",
		zap.Int("records", stats.Records),
		zap.Int("pairs", stats.Pairs),
	)
	return pairs, stats
}

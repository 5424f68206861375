// Package stats derives rating aggregates. Every function is pure and its
// result does not depend on input order.
package stats

import (
	"sort"
	"time"

	"github.com/Clark-Hu/store-rating/internal/domain"
)

// Distribution maps each score 1..5 to its number of occurrences. All five
// keys are always present.
type Distribution map[int]int

// Summary is the aggregate of a set of ratings.
type Summary struct {
	Count        int
	Average      float64
	Distribution Distribution
}

func emptyDistribution() Distribution {
	d := make(Distribution, domain.MaxScore-domain.MinScore+1)
	for s := domain.MinScore; s <= domain.MaxScore; s++ {
		d[s] = 0
	}
	return d
}

// Aggregate returns count, mean rounded to one decimal (0 when empty), and the
// score distribution. Scores outside [1,5] are ignored.
func Aggregate(scores []int) Summary {
	dist := emptyDistribution()
	var sum, count int
	for _, s := range scores {
		if s < domain.MinScore || s > domain.MaxScore {
			continue
		}
		dist[s]++
		sum += s
		count++
	}
	return Summary{Count: count, Average: roundedMean(sum, count), Distribution: dist}
}

// roundedMean rounds sum/count to one decimal, half away from zero, using
// integer arithmetic so the result is exact.
func roundedMean(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	tenths := (sum*20 + count) / (count * 2)
	return float64(tenths) / 10
}

// ByStore aggregates scores per store id. Stores without scores are absent;
// callers use Aggregate(nil) for them.
func ByStore(scores []domain.StoreScore) map[string]Summary {
	grouped := make(map[string][]int)
	for _, s := range scores {
		grouped[s.StoreID] = append(grouped[s.StoreID], s.Score)
	}
	out := make(map[string]Summary, len(grouped))
	for id, values := range grouped {
		out[id] = Aggregate(values)
	}
	return out
}

// MonthTrend is the aggregate of ratings created within one calendar month (UTC).
type MonthTrend struct {
	Month   time.Time
	Summary Summary
}

// Monthly groups scores by the UTC month of their creation time, ascending.
func Monthly(scores []domain.StoreScore) []MonthTrend {
	grouped := make(map[time.Time][]int)
	for _, s := range scores {
		t := s.CreatedAt.UTC()
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		grouped[month] = append(grouped[month], s.Score)
	}

	trends := make([]MonthTrend, 0, len(grouped))
	for month, values := range grouped {
		trends = append(trends, MonthTrend{Month: month, Summary: Aggregate(values)})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month.Before(trends[j].Month) })
	return trends
}

// RoleTally returns counts for every defined role, filling missing roles with zero.
func RoleTally(counts map[domain.Role]int) map[domain.Role]int {
	out := make(map[domain.Role]int, len(domain.Roles))
	for _, r := range domain.Roles {
		out[r] = counts[r]
	}
	return out
}

package stats

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/store-rating/internal/domain"
)

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, 0.0, got.Average)
	assert.Equal(t, Distribution{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, got.Distribution)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		scores  []int
		count   int
		average float64
		dist    Distribution
	}{
		{"single", []int{4}, 1, 4.0, Distribution{1: 0, 2: 0, 3: 0, 4: 1, 5: 0}},
		{"round-up", []int{4, 4, 3, 4}, 4, 3.8, Distribution{1: 0, 2: 0, 3: 1, 4: 3, 5: 0}},
		{"round-down", []int{1, 2, 2}, 3, 1.7, Distribution{1: 1, 2: 2, 3: 0, 4: 0, 5: 0}},
		{"half-up", []int{2, 3, 2, 2}, 4, 2.3, Distribution{1: 0, 2: 3, 3: 1, 4: 0, 5: 0}},
		{"all-fives", []int{5, 5, 5}, 3, 5.0, Distribution{1: 0, 2: 0, 3: 0, 4: 0, 5: 3}},
		{"ignores out-of-range", []int{0, 6, 3}, 1, 3.0, Distribution{1: 0, 2: 0, 3: 1, 4: 0, 5: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.scores)
			assert.Equal(t, tt.count, got.Count)
			assert.InDelta(t, tt.average, got.Average, 1e-9)
			assert.Equal(t, tt.dist, got.Distribution)
		})
	}
}

func TestAggregateMatchesRoundedMean(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 1 + rnd.Intn(40)
		scores := make([]int, n)
		sum := 0
		for j := range scores {
			scores[j] = 1 + rnd.Intn(5)
			sum += scores[j]
		}
		want := math.Round(float64(sum*10)/float64(n)) / 10
		got := Aggregate(scores)
		require.InDelta(t, want, got.Average, 1e-9, "scores=%v", scores)

		rnd.Shuffle(len(scores), func(a, b int) { scores[a], scores[b] = scores[b], scores[a] })
		require.Equal(t, got, Aggregate(scores), "aggregate must not depend on order")
	}
}

func TestByStore(t *testing.T) {
	scores := []domain.StoreScore{
		{StoreID: "a", Score: 4},
		{StoreID: "b", Score: 1},
		{StoreID: "a", Score: 5},
	}
	got := ByStore(scores)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got["a"].Count)
	assert.InDelta(t, 4.5, got["a"].Average, 1e-9)
	assert.Equal(t, 1, got["b"].Distribution[1])
	_, ok := got["missing"]
	assert.False(t, ok)
}

func TestMonthly(t *testing.T) {
	jan := time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 2, 8, 0, 0, 0, time.UTC)
	scores := []domain.StoreScore{
		{Score: 2, CreatedAt: feb},
		{Score: 5, CreatedAt: jan},
		{Score: 4, CreatedAt: feb},
		{Score: 3, CreatedAt: jan.Add(-24 * time.Hour)},
	}

	trends := Monthly(scores)
	require.Len(t, trends, 2)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), trends[0].Month)
	assert.Equal(t, 2, trends[0].Summary.Count)
	assert.InDelta(t, 4.0, trends[0].Summary.Average, 1e-9)
	assert.Equal(t, time.February, trends[1].Month.Month())
	assert.InDelta(t, 3.0, trends[1].Summary.Average, 1e-9)

	assert.Empty(t, Monthly(nil))
}

func TestRoleTally(t *testing.T) {
	got := RoleTally(map[domain.Role]int{domain.RoleUser: 3})
	assert.Equal(t, map[domain.Role]int{
		domain.RoleAdmin:      0,
		domain.RoleUser:       3,
		domain.RoleStoreOwner: 0,
	}, got)
}

package aggregate

import (
	"testing"

	"github.com/oxcrypt/oxprof/common"
	"github.com/oxcrypt/oxprof/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) *aggregator {
	agg, err := NewAggregator(taxonomy.NewSubsystemCategorizer(), 20, 3)
	require.NoError(t, err)

	return agg
}

func TestNewAggregator(t *testing.T) {
	t.Parallel()

	t.Run("nil categorizer should error", func(t *testing.T) {
		agg, err := NewAggregator(nil, 20, 3)

		assert.Nil(t, agg)
		assert.True(t, agg.IsInterfaceNil())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil categorizer")
	})
	t.Run("invalid bounds should error", func(t *testing.T) {
		agg, err := NewAggregator(taxonomy.NewSubsystemCategorizer(), 0, 3)
		assert.Nil(t, agg)
		assert.Error(t, err)

		agg, err = NewAggregator(taxonomy.NewSubsystemCategorizer(), 20, 0)
		assert.Nil(t, agg)
		assert.Error(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		agg, err := NewAggregator(taxonomy.NewSubsystemCategorizer(), 20, 3)

		assert.NotNil(t, agg)
		assert.False(t, agg.IsInterfaceNil())
		assert.Nil(t, err)
	})
}

func TestAggregate_PartitionSumEqualsTotal(t *testing.T) {
	t.Parallel()

	samples := []common.Sample{
		{Label: "fuser::dispatch", Count: 400},
		{Label: "aes::encrypt_block", Count: 250},
		{Label: "pthread_mutex_lock", Count: 200},
		{Label: "memcpy", Count: 100},
		{Label: "moka::cache::get", Count: 50},
	}

	result := newTestAggregator(t).Aggregate(samples)

	require.Equal(t, float64(1000), result.TotalCount)

	partitionSum := 0.0
	for _, cat := range result.Categories {
		partitionSum += cat.TotalCount
	}
	assert.Equal(t, result.TotalCount, partitionSum)
}

func TestAggregate_DuplicateLabelsSummed(t *testing.T) {
	t.Parallel()

	samples := []common.Sample{
		{Label: "memcpy", Count: 10},
		{Label: "fuser::dispatch", Count: 30},
		{Label: "memcpy", Count: 5},
	}

	result := newTestAggregator(t).Aggregate(samples)

	require.Equal(t, float64(45), result.TotalCount)
	require.Equal(t, 2, len(result.TopSamples))
	assert.Equal(t, "fuser::dispatch", result.TopSamples[0].Label)
	assert.Equal(t, "memcpy", result.TopSamples[1].Label)
	assert.Equal(t, float64(15), result.TopSamples[1].Count)
}

func TestAggregate_RankingStableOnTies(t *testing.T) {
	t.Parallel()

	samples := []common.Sample{
		{Label: "first_seen", Count: 10},
		{Label: "second_seen", Count: 10},
		{Label: "third_seen", Count: 20},
		{Label: "fourth_seen", Count: 10},
	}

	result := newTestAggregator(t).Aggregate(samples)

	require.Equal(t, 4, len(result.TopSamples))
	assert.Equal(t, "third_seen", result.TopSamples[0].Label)
	// equal counts keep extraction order
	assert.Equal(t, "first_seen", result.TopSamples[1].Label)
	assert.Equal(t, "second_seen", result.TopSamples[2].Label)
	assert.Equal(t, "fourth_seen", result.TopSamples[3].Label)
}

func TestAggregate_TopNBounded(t *testing.T) {
	t.Parallel()

	agg, err := NewAggregator(taxonomy.NewSubsystemCategorizer(), 2, 1)
	require.NoError(t, err)

	samples := []common.Sample{
		{Label: "a", Count: 1},
		{Label: "b", Count: 2},
		{Label: "c", Count: 3},
	}

	result := agg.Aggregate(samples)

	require.Equal(t, 2, len(result.TopSamples))
	assert.Equal(t, "c", result.TopSamples[0].Label)
	assert.Equal(t, "b", result.TopSamples[1].Label)

	for _, cat := range result.Categories {
		assert.LessOrEqual(t, len(cat.TopSamples), 1)
	}
}

func TestAggregate_Percentages(t *testing.T) {
	t.Parallel()

	samples := []common.Sample{
		{Label: "aes::encrypt", Count: 75},
		{Label: "memcpy", Count: 25},
	}

	result := newTestAggregator(t).Aggregate(samples)

	pcts := result.CategoryPercentages()
	assert.InDelta(t, 75.0, pcts["Encryption/Decryption"], 1e-9)
	assert.InDelta(t, 25.0, pcts["Other"], 1e-9)
	assert.InDelta(t, 75.0, result.TopSamples[0].Percentage, 1e-9)
}

func TestAggregate_EmptyInput(t *testing.T) {
	t.Parallel()

	result := newTestAggregator(t).Aggregate(nil)

	assert.Equal(t, float64(0), result.TotalCount)
	assert.Empty(t, result.Categories)
	assert.Empty(t, result.TopSamples)
}

func TestAggregate_ZeroTotalNoDivisionFault(t *testing.T) {
	t.Parallel()

	samples := []common.Sample{
		{Label: "idle", Count: 0},
	}

	result := newTestAggregator(t).Aggregate(samples)

	require.Equal(t, 1, len(result.Categories))
	assert.Equal(t, float64(0), result.Categories[0].Percentage)
	assert.Equal(t, float64(0), result.TopSamples[0].Percentage)
}

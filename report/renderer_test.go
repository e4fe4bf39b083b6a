package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oxcrypt/oxprof/aggregate"
	"github.com/oxcrypt/oxprof/common"
	"github.com/oxcrypt/oxprof/logscan"
	"github.com/oxcrypt/oxprof/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateOf(t *testing.T, samples []common.Sample) aggregate.Result {
	agg, err := aggregate.NewAggregator(taxonomy.NewContentionCategorizer(), 20, 3)
	require.NoError(t, err)

	return agg.Aggregate(samples)
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	t.Run("nil writer should error", func(t *testing.T) {
		r, err := NewRenderer(nil, 70)

		assert.Nil(t, r)
		assert.Error(t, err)
	})
	t.Run("invalid width should error", func(t *testing.T) {
		r, err := NewRenderer(&bytes.Buffer{}, 3)

		assert.Nil(t, r)
		assert.Error(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		r, err := NewRenderer(&bytes.Buffer{}, 70)

		assert.NotNil(t, r)
		assert.False(t, r.IsInterfaceNil())
		assert.Nil(t, err)
	})
}

func TestRenderHotspots(t *testing.T) {
	t.Parallel()

	buff := &bytes.Buffer{}
	r, _ := NewRenderer(buff, 70)

	result := aggregateOf(t, []common.Sample{
		{Label: "__pthread_cond_wait", Count: 60},
		{Label: "memcpy", Count: 40},
	})

	r.RenderHotspots(result)
	output := buff.String()

	assert.Contains(t, output, "TOP 2 HOTTEST FUNCTIONS")
	assert.Contains(t, output, "__pthread_cond_wait")
	// ranked descending
	assert.Less(t,
		strings.Index(output, "__pthread_cond_wait"),
		strings.Index(output, "memcpy"))
	assert.Contains(t, output, "60.0%")
}

func TestRenderHotspots_Empty(t *testing.T) {
	t.Parallel()

	buff := &bytes.Buffer{}
	r, _ := NewRenderer(buff, 70)

	r.RenderHotspots(aggregateOf(t, nil))

	assert.Contains(t, buff.String(), "no hotspots found")
	assert.NotContains(t, buff.String(), "NaN")
}

func TestRenderHotspots_TruncatesLongLabels(t *testing.T) {
	t.Parallel()

	buff := &bytes.Buffer{}
	r, _ := NewRenderer(buff, 20)

	longLabel := "<oxcrypt_core::vault::Vault as fuser::Filesystem>::read_encrypted_chunk"
	r.RenderHotspots(aggregateOf(t, []common.Sample{{Label: longLabel, Count: 10}}))

	assert.NotContains(t, buff.String(), longLabel)
	assert.Contains(t, buff.String(), "...")
}

func TestRenderCategories(t *testing.T) {
	t.Parallel()

	buff := &bytes.Buffer{}
	r, _ := NewRenderer(buff, 70)

	result := aggregateOf(t, []common.Sample{
		{Label: "__pthread_cond_wait", Count: 50},
		{Label: "memcpy", Count: 50},
	})

	r.RenderCategories(result)
	output := buff.String()

	assert.Contains(t, output, "BREAKDOWN BY SUBSYSTEM")
	assert.Contains(t, output, "Lock Wait")
	assert.Contains(t, output, "Other")
	// 50% at one glyph per 2% makes a 25 glyph bar
	assert.Contains(t, output, strings.Repeat("█", 25))
	assert.NotContains(t, output, strings.Repeat("█", 26))
	// top member samples listed under their category
	assert.Contains(t, output, "└─")
}

func TestTruncateLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateLabel("short", 10))
	assert.Equal(t, "exactly_10", truncateLabel("exactly_10", 10))
	assert.Equal(t, "longer_...", truncateLabel("longer_than_ten", 10))
	assert.Equal(t, 10, len(truncateLabel("longer_than_ten", 10)))
}

func TestRenderOperationCounts(t *testing.T) {
	t.Parallel()

	buff := &bytes.Buffer{}
	r, _ := NewRenderer(buff, 70)

	r.RenderOperationCounts(logscan.OperationCounts{StatCalls: 12, CacheHits: 7})
	output := buff.String()

	assert.Contains(t, output, "stat_calls: 12")
	assert.Contains(t, output, "cache_hits: 7")
	assert.NotContains(t, output, "read_calls")
}

func TestRenderTiming(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		buff := &bytes.Buffer{}
		r, _ := NewRenderer(buff, 70)

		r.RenderTiming("concurrent", common.TimingResult{MeanMs: 5090, SigmaMs: 11.71}, true)

		assert.Contains(t, buff.String(), "concurrent: 5090.00 ms ± 11.71 ms")
	})
	t.Run("absent", func(t *testing.T) {
		buff := &bytes.Buffer{}
		r, _ := NewRenderer(buff, 70)

		r.RenderTiming("concurrent", common.TimingResult{}, false)

		assert.Contains(t, buff.String(), "concurrent: could not extract metrics")
	})
}

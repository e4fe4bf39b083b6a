package flamegraph

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSVG = `<?xml version="1.0" standalone="no"?>
<svg version="1.1" width="1200" height="422" xmlns="http://www.w3.org/2000/svg">
<g class="func_g">
<title>all (1000 samples, 100.00%)</title>
<rect x="10" y="385" width="1180" height="15"/>
</g>
<g class="func_g">
<title>fuser::request::dispatch (400 samples, 40.00%)</title>
<rect x="10" y="369" width="472" height="15"/>
</g>
<g class="func_g">
<title>&lt;aes_gcm_siv::AesGcmSiv&gt;::encrypt (250 samples, 25.00%)</title>
<rect x="10" y="353" width="295" height="15"/>
</g>
<g class="func_g">
<title>__pthread_cond_wait (350 samples, 35.00%)</title>
<rect x="482" y="369" width="413" height="15"/>
</g>
</svg>`

func TestExtract(t *testing.T) {
	t.Parallel()

	samples := Extract(sampleSVG)

	require.Equal(t, 4, len(samples))
	assert.Equal(t, "all", samples[0].Label)
	assert.Equal(t, float64(1000), samples[0].Count)
	assert.Equal(t, float64(100), samples[0].Percentage)
	assert.Equal(t, "<aes_gcm_siv::AesGcmSiv>::encrypt", samples[2].Label)
	assert.Equal(t, float64(250), samples[2].Count)
	assert.Equal(t, "__pthread_cond_wait", samples[3].Label)
}

func TestExtract_PercentageAbsent(t *testing.T) {
	t.Parallel()

	content := `<title>vault::read_chunk (42 samples)</title>`

	samples := Extract(content)

	require.Equal(t, 1, len(samples))
	assert.Equal(t, "vault::read_chunk", samples[0].Label)
	assert.Equal(t, float64(42), samples[0].Count)
	assert.Equal(t, float64(0), samples[0].Percentage)
}

func TestExtract_EntityDecoding(t *testing.T) {
	t.Parallel()

	content := `<title>&lt;T as core::ops::Fn&amp;Drop&gt; (7 samples, 0.70%)</title>`

	samples := Extract(content)

	require.Equal(t, 1, len(samples))
	assert.Equal(t, "<T as core::ops::Fn&Drop>", samples[0].Label)
}

func TestExtract_MalformedRecordSkipped(t *testing.T) {
	t.Parallel()

	content := ""
	for i := 0; i < 10; i++ {
		content += fmt.Sprintf("<title>func_%d (%d samples, 1.00%%)</title>\n", i, i+1)
	}
	// corrupt annotation amid the valid ones: truncated count
	content += "<title>broken ( samples, 1.00%)</title>\n"

	samples := Extract(content)

	assert.Equal(t, 10, len(samples))
}

func TestExtract_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("<svg><title>no annotation here</title></svg>"))
}

func TestExtractTree_SumsDuplicateLabels(t *testing.T) {
	t.Parallel()

	// same leaf label at two call sites with independent counts
	content := `<svg xmlns="http://www.w3.org/2000/svg">
<g><title>parent_a (30 samples, 30.00%)</title></g>
<g><title>memcpy (10 samples, 10.00%)</title></g>
<g><title>parent_b (20 samples, 20.00%)</title></g>
<g><title>memcpy (5 samples, 5.00%)</title></g>
</svg>`

	samples := ExtractTree(content)

	require.Equal(t, 3, len(samples))
	assert.Equal(t, "parent_a", samples[0].Label)
	assert.Equal(t, "memcpy", samples[1].Label)
	assert.Equal(t, float64(15), samples[1].Count)
	assert.Equal(t, "parent_b", samples[2].Label)
}

func TestExtractTree_DecodesEntities(t *testing.T) {
	t.Parallel()

	content := `<svg><g><title>&lt;Vault as Read&gt;::read (3 samples, 0.30%)</title></g></svg>`

	samples := ExtractTree(content)

	require.Equal(t, 1, len(samples))
	assert.Equal(t, "<Vault as Read>::read", samples[0].Label)
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file should error", func(t *testing.T) {
		samples, err := ExtractFile(filepath.Join(t.TempDir(), "missing.svg"))

		assert.Nil(t, samples)
		assert.Error(t, err)
		assert.True(t, IsArtifactNotFound(err))
	})
	t.Run("should work", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flame.svg")
		require.NoError(t, os.WriteFile(path, []byte(sampleSVG), 0o644))

		samples, err := ExtractFile(path)

		assert.NoError(t, err)
		assert.Equal(t, 4, len(samples))
	})
}

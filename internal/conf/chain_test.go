package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChainFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadChainConfigScalarWeights(t *testing.T) {
	t.Parallel()

	path := writeChainFile(t, "chain.yaml", "volume: 1.0\nfrequency: 0.5\n")

	chain, err := LoadChainConfig(path)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.InDelta(t, 1.0, chain["volume"].Weight, 1e-9)
	assert.InDelta(t, 0.5, chain["frequency"].Weight, 1e-9)
	assert.Empty(t, chain["volume"].Params)
}

func TestLoadChainConfigParameterObjects(t *testing.T) {
	t.Parallel()

	path := writeChainFile(t, "chain.json", `{
		"volume_dynamic": {
			"weight": 0.75,
			"dynamic_range": 40,
			"min_input": 1000,
			"max_input": 100
		}
	}`)

	chain, err := LoadChainConfig(path)
	require.NoError(t, err)

	entry, ok := chain["volume_dynamic"]
	require.True(t, ok)
	assert.InDelta(t, 0.75, entry.Weight, 1e-9)
	assert.InDelta(t, 40, entry.Params["dynamic_range"], 1e-9)
	assert.InDelta(t, 1000, entry.Params["min_input"], 1e-9)
	assert.InDelta(t, 100, entry.Params["max_input"], 1e-9)
	assert.NotContains(t, entry.Params, "weight")
}

func TestLoadChainConfigMissingWeightDefaultsToOne(t *testing.T) {
	t.Parallel()

	path := writeChainFile(t, "chain.yaml", "volume:\n  dynamic_range: 10\n")

	chain, err := LoadChainConfig(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, chain["volume"].Weight, 1e-9)
}

func TestLoadChainConfigEmptyPathReturnsDefault(t *testing.T) {
	t.Parallel()

	chain, err := LoadChainConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultChainConfig(), chain)
}

func TestLoadChainConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadChainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := writeChainFile(t, "empty.yaml", "")
	_, err = LoadChainConfig(empty)
	assert.Error(t, err)

	invalid := writeChainFile(t, "bad.yaml", "- just\n- a\n- list\n")
	_, err = LoadChainConfig(invalid)
	assert.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	valid := &Settings{}
	valid.Audio.SampleRate = DefaultSampleRate
	valid.Audio.ChunkSize = DefaultChunkSize
	valid.Chain.NumOutputs = DefaultNumOutputs
	valid.VAD.Mode = DefaultVADMode
	require.NoError(t, ValidateSettings(valid))

	badRate := *valid
	badRate.Audio.SampleRate = 0
	assert.Error(t, ValidateSettings(&badRate))

	badMode := *valid
	badMode.VAD.Mode = 4
	assert.Error(t, ValidateSettings(&badMode))

	badOrder := *valid
	badOrder.Audio.HighPass.Enabled = true
	badOrder.Audio.HighPass.Order = 0
	assert.Error(t, ValidateSettings(&badOrder))
}

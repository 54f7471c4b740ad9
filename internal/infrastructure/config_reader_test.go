package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermalblock-rb/internal/domain"
)

func TestReadConfigParsesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
xblocks: 3
yblocks: 2
rbsize: 12
estimator_norm: h1
tolerance: 1.0e-6
log_level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	reader := NewYAMLConfigReader(zap.NewNop())
	config, err := reader.ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.XBlocks)
	assert.Equal(t, 2, config.YBlocks)
	assert.Equal(t, 12, config.RBSize)
	assert.Equal(t, "h1", config.EstimatorNorm)
	assert.Equal(t, domain.NormEnergy, config.GetEstimatorNorm())
	assert.InDelta(t, 1e-6, config.Tolerance, 1e-18)
	assert.Equal(t, "debug", config.LogLevel)

	// Unset fields take defaults.
	assert.Equal(t, 20, config.GridN)
	assert.Equal(t, 3, config.Snapshots)
	assert.InDelta(t, 0.1, config.ParamMin, 1e-14)
	assert.InDelta(t, 1.0, config.ParamMax, 1e-14)
	assert.GreaterOrEqual(t, config.Workers, 1)
}

func TestReadConfigMissingFileUsesDefaults(t *testing.T) {
	reader := NewYAMLConfigReader(zap.NewNop())
	config, err := reader.ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2, config.XBlocks)
	assert.Equal(t, 2, config.YBlocks)
	assert.Equal(t, 10, config.RBSize)
	assert.Equal(t, "trivial", config.EstimatorNorm)
	assert.Equal(t, domain.NormTrivial, config.GetEstimatorNorm())
}

func TestReadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("xblocks: [not a number"), 0o644))

	reader := NewYAMLConfigReader(zap.NewNop())
	_, err := reader.ReadConfig(path)
	require.Error(t, err)
}

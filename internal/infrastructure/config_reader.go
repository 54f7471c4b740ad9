package infrastructure

import (
	"os"
	"runtime"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"thermalblock-rb/internal/domain"
)

type YAMLConfigReader struct {
	logger *zap.Logger
}

func NewYAMLConfigReader(logger *zap.Logger) *YAMLConfigReader {
	return &YAMLConfigReader{logger: logger}
}

func (r *YAMLConfigReader) ReadConfig(path string) (*domain.Config, error) {
	var config domain.Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Запускаем со значениями по умолчанию
		r.logger.Warn("Config file not found, using defaults", zap.String("path", path))
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	// Устанавливаем значения по умолчанию
	r.setDefaults(&config)

	return &config, nil
}

func (r *YAMLConfigReader) setDefaults(config *domain.Config) {
	if config.XBlocks == 0 {
		config.XBlocks = 2
	}
	if config.YBlocks == 0 {
		config.YBlocks = 2
	}
	if config.GridN == 0 {
		config.GridN = 20
	}
	if config.Snapshots == 0 {
		config.Snapshots = 3
	}
	if config.RBSize == 0 {
		config.RBSize = 10
	}
	if config.ParamMin == 0 {
		config.ParamMin = 0.1
	}
	if config.ParamMax == 0 {
		config.ParamMax = 1.0
	}
	if config.Workers == 0 {
		config.Workers = max(1, runtime.NumCPU()-1)
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.EstimatorNorm == "" {
		config.EstimatorNorm = "trivial"
	}
	if config.Decimals == 0 {
		config.Decimals = 6
	}
}

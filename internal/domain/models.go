package domain

// Config представляет конфигурацию запуска
type Config struct {
	XBlocks       int     `yaml:"xblocks"`
	YBlocks       int     `yaml:"yblocks"`
	GridN         int     `yaml:"grid_n"`
	Snapshots     int     `yaml:"snapshots"`
	RBSize        int     `yaml:"rbsize"`
	Tolerance     float64 `yaml:"tolerance"`
	EstimatorNorm string  `yaml:"estimator_norm"`
	ParamMin      float64 `yaml:"param_min"`
	ParamMax      float64 `yaml:"param_max"`
	Workers       int     `yaml:"workers"`
	LogLevel      string  `yaml:"log_level"`
	LogFile       string  `yaml:"log_file"`
	Decimals      int     `yaml:"decimals"`
}

func (c *Config) GetEstimatorNorm() EstimatorNorm {
	switch c.EstimatorNorm {
	case "h1", "energy":
		return NormEnergy
	default:
		return NormTrivial
	}
}

// EstimatorNorm представляет норму оценщика ошибки
type EstimatorNorm int

const (
	NormTrivial EstimatorNorm = iota
	NormEnergy
)

package main

import (
	"flag"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/app"
	"thermalblock-rb/internal/discretizer"
	"thermalblock-rb/internal/domain"
	"thermalblock-rb/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	xblocks := flag.Int("xblocks", 0, "Number of blocks in x direction")
	yblocks := flag.Int("yblocks", 0, "Number of blocks in y direction")
	gridN := flag.Int("grid", 0, "Structured grid resolution")
	snapshots := flag.Int("snapshots", 0, "Training snapshots per diffusion entry")
	rbsize := flag.Int("rbsize", 0, "Target reduced basis size")
	tolerance := flag.Float64("tolerance", 0, "Greedy error tolerance")
	norm := flag.String("estimator-norm", "", "Estimator norm (trivial, h1)")
	workers := flag.Int("workers", 0, "Number of workers")
	logLevel := flag.String("log-level", "", "Log level")
	flag.Parse()

	// Инициализация логгера
	logger := initLogger("info")
	defer logger.Sync()

	// Чтение конфигурации
	configReader := infrastructure.NewYAMLConfigReader(logger)
	config, err := configReader.ReadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to read config", zap.Error(err))
	}
	applyFlags(config, *xblocks, *yblocks, *gridN, *snapshots, *rbsize, *tolerance, *norm, *workers, *logLevel)

	// Обновляем уровень логирования
	logger = initLogger(config.LogLevel, config.LogFile)

	// Инициализация компонентов
	problem := discretizer.NewThermalBlockProblem(config.XBlocks, config.YBlocks, config.ParamMin, config.ParamMax)
	disc, err := discretizer.DiscretizeEllipticCG(problem, config.GridN, logger)
	if err != nil {
		logger.Fatal("Failed to discretize problem", zap.Error(err))
	}
	reduced := app.NewReducedSimulator(logger, disc, config)
	detailed := app.NewDetailedSimulator(logger, disc)

	logger.Info("Starting reduced basis construction",
		zap.Int("xblocks", config.XBlocks),
		zap.Int("yblocks", config.YBlocks),
		zap.Int("dim", disc.Dim),
		zap.Int("rbsize", config.RBSize),
		zap.String("estimator_norm", config.EstimatorNorm),
		zap.Int("workers", config.Workers))

	// Пробный параметр в середине допустимой области
	probe := domain.ConstantParameter(problem.ParameterType(), (config.ParamMin+config.ParamMax)/2)

	tic := time.Now()
	uReduced, err := reduced.Solve(probe)
	if err != nil {
		logger.Fatal("Reduced solve failed", zap.Error(err))
	}
	logger.Info("Reduced solve done (including first-use basis construction)",
		zap.Duration("elapsed", time.Since(tic)),
		zap.Int("basis_size", reduced.Data().Basis.Len()))

	tic = time.Now()
	uDetailed, err := detailed.Solve(probe)
	if err != nil {
		logger.Fatal("Detailed solve failed", zap.Error(err))
	}
	logger.Info("Detailed solve done", zap.Duration("elapsed", time.Since(tic)))

	bound, err := reduced.Estimate(probe)
	if err != nil {
		logger.Fatal("Error estimation failed", zap.Error(err))
	}
	var diff mat.VecDense
	diff.SubVec(uDetailed, uReduced)
	normName := ""
	if config.GetEstimatorNorm() == domain.NormEnergy {
		normName = "h1"
	}
	logger.Info("Reduced vs detailed at probe parameter",
		zap.Float64("error", detailed.FOM().Norm(normName, &diff)),
		zap.Float64("estimated_bound", bound))

	// Запись результатов
	writer := infrastructure.NewTXTResultWriter(logger)
	fmtVal := func(val float64) string {
		return strconv.FormatFloat(val, 'f', config.Decimals, 64)
	}

	if err := writer.WriteHistory("greedy_history.txt", reduced.Data().History); err != nil {
		logger.Error("Failed to write greedy history", zap.Error(err))
	}
	coords, grid := disc.SolutionGrid(uReduced)
	if err := writer.WriteSolutionGrid("solution_reduced.txt", coords, grid, fmtVal); err != nil {
		logger.Error("Failed to write reduced solution", zap.Error(err))
	}

	logger.Info("Reduced basis run completed successfully")
}

func applyFlags(config *domain.Config, xblocks, yblocks, gridN, snapshots, rbsize int, tolerance float64, norm string, workers int, logLevel string) {
	if xblocks > 0 {
		config.XBlocks = xblocks
	}
	if yblocks > 0 {
		config.YBlocks = yblocks
	}
	if gridN > 0 {
		config.GridN = gridN
	}
	if snapshots > 0 {
		config.Snapshots = snapshots
	}
	if rbsize > 0 {
		config.RBSize = rbsize
	}
	if tolerance > 0 {
		config.Tolerance = tolerance
	}
	if norm != "" {
		config.EstimatorNorm = norm
	}
	if workers > 0 {
		config.Workers = workers
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
}

// initLogger initializes the logger with the specified level and log file name.
func initLogger(level string, logfileName ...string) *zap.Logger {
	config := zap.NewProductionConfig()

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	outputPaths := []string{"stderr"}
	for _, item := range logfileName {
		if item != "" {
			outputPaths = append(outputPaths, item)
		}
	}

	config.OutputPaths = outputPaths
	config.ErrorOutputPaths = outputPaths
	config.EncoderConfig.TimeKey = "t"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.DisableCaller = false

	logger, _ := config.Build()
	return logger
}

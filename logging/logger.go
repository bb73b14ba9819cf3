package logging

import "go.uber.org/zap"

// New creates a zap logger for env. "production" logs JSON at info, "development"
// logs console output at debug and anything else falls back to the example logger.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	}
	return zap.NewExample(), nil
}

// NewSugared is New as a SugaredLogger, falling back to a no-op logger on error
func NewSugared(env string) *zap.SugaredLogger {
	logger, err := New(env)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

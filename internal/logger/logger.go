package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given level preset: "dev" writes coloured
// console output at debug level, "prod" writes JSON at info level.
func New(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "dev", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "prod":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	// CLI output goes to stdout; keep diagnostics on stderr.
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}

// Quiet is like New but only reports warnings and above, for interactive
// commands where request logging would drown the output.
func Quiet(level string) (*zap.Logger, error) {
	l, err := New(level)
	if err != nil {
		return nil, err
	}
	return l.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel)), nil
}
